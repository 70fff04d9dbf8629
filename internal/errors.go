package internal

import (
	"errors"
	"fmt"
)

// Send gating errors surfaced to the user as inline notices, never sent
// over the network.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotWritable  = errors.New("conversation is read-only or a send is already in flight")
)

// StorageError represents errors accessing the local key-value database
type StorageError struct {
	Key string
	Op  string // "open", "get", "set", "delete"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RequestError represents a failed backend request (transport failure or
// a non-2xx status).
type RequestError struct {
	Method string
	Path   string
	Status int // zero when the request never reached the backend
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request error: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("request error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding data
type ParseError struct {
	Source string // "localKV", "response"
	Key    string // storage key or endpoint path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
