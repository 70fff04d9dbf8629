package internal

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Realtime event types pushed by the backend.
const (
	EventTyping         = "typing"
	EventStopTyping     = "stop_typing"
	EventAgentConnected = "agent_connected"
)

// SocketEvent is one inbound event from the realtime channel. Typed
// events carry a Type; anything else is a raw chat message.
type SocketEvent struct {
	Type      string   `json:"type,omitempty"`
	UserID    string   `json:"userId,omitempty"`
	AgentName string   `json:"agentName,omitempty"`
	Message   *Message `json:"-"`
}

// Socket is a best-effort realtime channel. Every HTTP-driven flow works
// without it; when the dial fails the caller logs and moves on.
type Socket struct {
	conn   *websocket.Conn
	events chan SocketEvent
	done   chan struct{}
}

// DialSocket connects the realtime channel for a user. The returned
// socket delivers inbound events until the connection drops or Close is
// called.
func DialSocket(ctx context.Context, wsBase, userID string) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsBase+"/"+userID, nil)
	if err != nil {
		return nil, &RequestError{Method: "DIAL", Path: wsBase, Err: err}
	}

	s := &Socket{
		conn:   conn,
		events: make(chan SocketEvent, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the inbound event stream. The channel closes when the
// connection ends.
func (s *Socket) Events() <-chan SocketEvent {
	return s.events
}

func (s *Socket) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				LogDebug("Realtime channel closed: %v", err)
			}
			return
		}

		var event SocketEvent
		if err := json.Unmarshal(data, &event); err != nil {
			LogWarn("Failed to parse realtime event: %v", err)
			continue
		}

		if event.Type == "" {
			// Raw chat message rather than a typed event.
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil || msg.Text == "" {
				LogDebug("Ignoring unrecognized realtime payload")
				continue
			}
			event.Message = &msg
		}
		s.events <- event
	}
}

// SendMessage pushes a raw chat message over the channel.
func (s *Socket) SendMessage(msg Message, domain string) error {
	payload := map[string]interface{}{
		"id":        msg.ID,
		"text":      msg.Text,
		"sender":    msg.Sender,
		"domain":    domain,
		"timestamp": msg.Timestamp,
	}
	return s.conn.WriteJSON(payload)
}

// SendTyping signals that the user started or stopped typing.
func (s *Socket) SendTyping(userID string, stop bool) error {
	event := EventTyping
	if stop {
		event = EventStopTyping
	}
	return s.conn.WriteJSON(map[string]string{"type": event, "userId": userID})
}

// Close tears the channel down. Events that arrive after teardown are
// discarded by the closed stream, never applied anywhere.
func (s *Socket) Close() error {
	close(s.done)
	return s.conn.Close()
}
