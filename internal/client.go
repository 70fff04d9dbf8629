package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// CustomerProfilePayload mirrors the customer_profile object the backend
// expects on every chat request.
type CustomerProfilePayload struct {
	CustomerID           string            `json:"customer_id"`
	PreviousInteractions []string          `json:"previous_interactions"`
	PurchaseHistory      []string          `json:"purchase_history"`
	PreferenceSettings   map[string]string `json:"preference_settings"`
	SentimentHistory     []string          `json:"sentiment_history"`
	ActiveCaseID         string            `json:"active_case_id"`
}

// HistoryTurn is one entry of the trailing conversation context sent with
// a chat request.
type HistoryTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	UserQuery           string                 `json:"user_query"`
	SessionID           string                 `json:"session_id"`
	CustomerProfile     CustomerProfilePayload `json:"customer_profile"`
	ConversationHistory []HistoryTurn          `json:"conversation_history"`
	Domain              string                 `json:"domain"`
}

// ChatResponse is the backend's answer to a chat request.
type ChatResponse struct {
	BotResponse string `json:"bot_response"`
	CaseStatus  string `json:"case_status,omitempty"`
	CaseID      string `json:"case_id,omitempty"`
}

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the backend's answer to a registration.
type RegisterResponse struct {
	CustomerID string `json:"customer_id"`
	Role       string `json:"role,omitempty"`
}

// LoginResponse is the backend's answer to POST /login.
type LoginResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Ticket is a server-persisted support ticket as returned by GET /tickets.
type Ticket struct {
	ID                  string        `json:"_id"`
	Subject             string        `json:"subject"`
	Description         string        `json:"description"`
	Domain              string        `json:"domain"`
	CustomerID          string        `json:"customer_id"`
	Status              string        `json:"status"`
	CreatedAt           string        `json:"created_at"`
	UpdatedAt           string        `json:"updated_at"`
	ConversationHistory []HistoryTurn `json:"conversation_history,omitempty"`
}

// CustomerDetail is the profile an agent sees for a customer.
type CustomerDetail struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Tier          string `json:"tier"`
	LastSentiment string `json:"last_sentiment"`
}

// Client talks to the Echo support backend over HTTP.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "echo-cli").
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{http: http, baseURL: baseURL}
}

// errorDetail pulls the backend's detail field out of an error body.
type errorDetail struct {
	Detail json.RawMessage `json:"detail"`
}

// wrapResponse converts a resty outcome into a typed error, or nil on 2xx.
func wrapResponse(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		return &RequestError{Method: method, Path: path, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}

	detail := ""
	var body errorDetail
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && len(body.Detail) > 0 {
		detail = string(body.Detail)
	}
	return &RequestError{Method: method, Path: path, Status: resp.StatusCode(), Detail: detail}
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/register")
	if err := wrapResponse("POST", "/register", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for access and refresh tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/login")
	if err := wrapResponse("POST", "/login", resp, err); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &ParseError{Source: "response", Key: "/login", Err: errors.New("missing access_token")}
	}
	return &out, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context, token string) (*UserProfile, error) {
	var out UserProfile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/me")
	if err := wrapResponse("GET", "/me", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendChat posts a user query with its trailing context and returns the
// bot's reply.
func (c *Client) SendChat(ctx context.Context, token string, req *ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetResult(&out).
		Post("/chat")
	if err := wrapResponse("POST", "/chat", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the flat, server-persisted message log for the
// authenticated user.
func (c *Client) History(ctx context.Context, token string) ([]HistoryRecord, error) {
	var out []HistoryRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/history")
	if err := wrapResponse("GET", "/history", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Tickets lists support tickets. Agent or admin role required by the
// backend.
func (c *Client) Tickets(ctx context.Context, token string) ([]Ticket, error) {
	var out []Ticket
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/tickets")
	if err := wrapResponse("GET", "/tickets", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTicketStatus changes a ticket's status. A resolution message is
// required when resolving, and that is validated here before any network
// call is made.
func (c *Client) UpdateTicketStatus(ctx context.Context, token, ticketID, status, resolutionMessage string) error {
	if status == "resolved" && resolutionMessage == "" {
		return fmt.Errorf("a resolution message is required to resolve a ticket")
	}

	body := map[string]string{"status": status}
	if resolutionMessage != "" {
		body["resolution_message"] = resolutionMessage
	}

	path := "/tickets/" + ticketID + "/status"
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		Put(path)
	return wrapResponse("PUT", path, resp, err)
}

// CustomerProfile fetches the support-facing profile for a customer.
func (c *Client) CustomerProfile(ctx context.Context, token, customerID string) (*CustomerDetail, error) {
	var out CustomerDetail
	path := "/customer/" + customerID + "/profile"
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get(path)
	if err := wrapResponse("GET", path, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLoginURL returns the browser entry point for the Google OAuth flow.
// The exchange happens entirely between browser and backend; this client
// only hands the user the door.
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/auth/google/login"
}

// GithubLoginURL returns the browser entry point for the GitHub OAuth flow.
func (c *Client) GithubLoginURL() string {
	return c.baseURL + "/auth/github/login"
}
