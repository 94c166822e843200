package transport

import (
	"context"
	"net/http"
	"time"
)

type UserDetails struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

type User struct {
	ID          string      `json:"_id"`
	Email       string      `json:"email"`
	Type        string      `json:"type"`
	Active      bool        `json:"active"`
	UserDetails UserDetails `json:"userDetails"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Type        string `json:"type,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Stats struct {
	TotalUsers  int            `json:"totalUsers"`
	ActiveUsers int            `json:"activeUsers"`
	ByType      map[string]int `json:"byType"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var user User
	if _, err := c.Do(ctx, http.MethodPost, "/api/v1/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var user User
	if _, err := c.Do(ctx, http.MethodPost, "/api/v1/login", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout drops the session cookie from the jar. Tokens already copied
// elsewhere stay valid until they expire.
func (c *Client) Logout(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.Do(ctx, http.MethodPost, "/api/v1/logout", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Hydrate refreshes the session cookie.
func (c *Client) Hydrate(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.Do(ctx, http.MethodPost, "/api/v1/hydrate", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if _, err := c.Do(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// StatsSummary reads the cached variant of Stats.
func (c *Client) StatsSummary(ctx context.Context) (*Stats, error) {
	var stats Stats
	if _, err := c.Do(ctx, http.MethodGet, "/api/v1/stats/summary", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
