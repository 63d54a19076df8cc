package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// API paths relative to the base URL
const (
	PathLogin          = "/auth/login"
	PathUsers          = "/users"
	PathCollectionsAll = "/collections/all"
	PathCollections    = "/collections/"
	skipBrowserWarning = "ngrok-skip-browser-warning"
)

type AccountType string

const (
	AccountResidential AccountType = "residential"
	AccountCommercial  AccountType = "commercial"
)

func (t AccountType) Valid() bool {
	return t == AccountResidential || t == AccountCommercial
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Type        AccountType `json:"type"`
	Document    string      `json:"document"`
}

type RegisterRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	Address  string      `json:"address"`
	Phone    string      `json:"phone"`
	Document string      `json:"document"`
	Password string      `json:"password"`
}

// Amount is sent as a string and accepted as either a string or a number
type Amount string

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

type Material struct {
	Kind   string `json:"tipo"`
	Amount Amount `json:"amount"`
	Unit   string `json:"unit"`
}

type CollectionPoint struct {
	ID        int64      `json:"id"`
	Address   string     `json:"address"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Materials []Material `json:"materials"`
}

type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "pending"
	StatusCollected ScheduleStatus = "collected"
)

type ScheduleRequest struct {
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	Address   string         `json:"address"`
	Materials []Material     `json:"materials"`
	Status    ScheduleStatus `json:"status"`
}

// Login exchanges a credential pair for a token and identity
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	resp, err := c.Call(ctx, http.MethodPost, PathLogin, Credentials{Username: username, Password: password}, nil)
	if err != nil {
		return LoginResponse{}, err
	}
	var out LoginResponse
	if err := resp.Decode(&out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Register creates a user account and returns the API's representation of it
func (c *Client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	resp, err := c.Call(ctx, http.MethodPost, PathUsers, req, browserWarningHeader())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

func (c *Client) ListCollectionPoints(ctx context.Context, skip, limit int) ([]CollectionPoint, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	resp, err := c.Call(ctx, http.MethodGet, PathCollectionsAll+"?"+q.Encode(), nil, browserWarningHeader())
	if err != nil {
		return nil, err
	}
	var points []CollectionPoint
	if err := resp.Decode(&points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) CreateSchedule(ctx context.Context, req ScheduleRequest) (json.RawMessage, error) {
	resp, err := c.Call(ctx, http.MethodPost, PathCollections, req, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

func browserWarningHeader() http.Header {
	h := http.Header{}
	h.Set(skipBrowserWarning, "true")
	return h
}
