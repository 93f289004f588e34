package mustersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mustersdk: %d %s", e.StatusCode, e.Message)
}

// Client talks to a muster deployment. Session cookies issued by login and
// refresh are kept in an in-memory jar, so a Client behaves like a signed-in
// browser. Not safe for concurrent use across different accounts.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the given base URL, e.g.
// "https://muster.example.com".
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Login signs in and stores the session cookies for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{Username: username, Password: password}, &out)
	return out, err
}

// Refresh trades the refresh cookie for a fresh cookie pair.
func (c *Client) Refresh(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", nil, &out)
	return out, err
}

// Logout clears the session cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, &out)
	return out, err
}

// ChangePassword rotates the signed-in account's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}

// CreateUser registers a new account. Requires an admin session.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodPost, "/v1/users", req, &out)
	return out, err
}

// DeleteUser removes an account. Requires an admin session.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+userID, nil, nil)
}

// CreateArmy creates a roster owned by the signed-in account.
func (c *Client) CreateArmy(ctx context.Context, req ArmyRequest) (ArmyResponse, error) {
	var out ArmyResponse
	err := c.do(ctx, http.MethodPost, "/v1/armies", req, &out)
	return out, err
}

// ListArmies lists the visible rosters.
func (c *Client) ListArmies(ctx context.Context) ([]ArmyResponse, error) {
	var out []ArmyResponse
	err := c.do(ctx, http.MethodGet, "/v1/armies", nil, &out)
	return out, err
}

// GetArmy fetches one roster.
func (c *Client) GetArmy(ctx context.Context, armyID string) (ArmyResponse, error) {
	var out ArmyResponse
	err := c.do(ctx, http.MethodGet, "/v1/armies/"+armyID, nil, &out)
	return out, err
}

// UpdateArmy replaces a roster's fields.
func (c *Client) UpdateArmy(ctx context.Context, armyID string, req ArmyRequest) (ArmyResponse, error) {
	var out ArmyResponse
	err := c.do(ctx, http.MethodPut, "/v1/armies/"+armyID, req, &out)
	return out, err
}

// DeleteArmy removes a roster and its units.
func (c *Client) DeleteArmy(ctx context.Context, armyID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/armies/"+armyID, nil, nil)
}

// AddUnit appends a unit to a roster.
func (c *Client) AddUnit(ctx context.Context, armyID string, req UnitRequest) (UnitResponse, error) {
	var out UnitResponse
	err := c.do(ctx, http.MethodPost, "/v1/armies/"+armyID+"/units", req, &out)
	return out, err
}

// ListUnits lists the units of a roster.
func (c *Client) ListUnits(ctx context.Context, armyID string) ([]UnitResponse, error) {
	var out []UnitResponse
	err := c.do(ctx, http.MethodGet, "/v1/armies/"+armyID+"/units", nil, &out)
	return out, err
}

// UpdateUnit replaces a unit's fields.
func (c *Client) UpdateUnit(ctx context.Context, armyID, unitID string, req UnitRequest) (UnitResponse, error) {
	var out UnitResponse
	err := c.do(ctx, http.MethodPut, "/v1/armies/"+armyID+"/units/"+unitID, req, &out)
	return out, err
}

// RemoveUnit deletes a unit from a roster.
func (c *Client) RemoveUnit(ctx context.Context, armyID, unitID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/armies/"+armyID+"/units/"+unitID, nil, nil)
}

// Livez reports basic process health.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", nil, &out)
	return out, err
}

// Readyz reports dependency health.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
