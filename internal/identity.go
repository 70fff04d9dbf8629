package internal

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Storage keys shared with the other localKV consumers.
const (
	anonIDKey     = "anonId"
	cachedUserKey = "user"
)

// UserProfile is the cached authenticated user: one immutable-until-replaced
// value holding identity and tokens, stored under a single key.
type UserProfile struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ResolveIdentity returns the durable identity used to partition local
// storage and correlate with the backend: the authenticated id, else the
// email, else a generated anonymous token persisted for reuse. Never empty,
// and stable across calls for the same input.
func ResolveIdentity(user *UserProfile, kv *KV) string {
	if user != nil {
		if user.ID != "" {
			return user.ID
		}
		if user.Email != "" {
			return user.Email
		}
	}

	if kv != nil {
		if value, ok, err := kv.Get(anonIDKey); err == nil && ok && value != "" {
			return value
		}
	}

	token := "anon-" + uuid.NewString()
	if kv != nil {
		if err := kv.Set(anonIDKey, token); err != nil {
			LogWarn("Failed to persist anonymous identity: %v", err)
		}
	}
	return token
}

// LoadCachedUser reads the cached user profile. A missing or corrupt entry
// is treated as not logged in.
func LoadCachedUser(kv *KV) *UserProfile {
	value, ok, err := kv.Get(cachedUserKey)
	if err != nil || !ok {
		return nil
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		LogWarn("Failed to parse cached user profile, treating as logged out: %v", err)
		return nil
	}
	return &user
}

// SaveCachedUser persists the user profile for later commands.
func SaveCachedUser(kv *KV, user *UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return &ParseError{Source: "localKV", Key: cachedUserKey, Err: err}
	}
	return kv.Set(cachedUserKey, string(data))
}

// ClearCachedUser logs the user out locally.
func ClearCachedUser(kv *KV) error {
	return kv.Delete(cachedUserKey)
}
