package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"acidbase/internal/domain"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the domain sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

// HTTP talks to an acidbase server.
type HTTP struct {
	Base  string
	HTTP  *http.Client
	Token string
}

// NewHTTP returns a client for base using httpClient, or http.DefaultClient
// when it is nil.
func NewHTTP(base string, httpClient *http.Client) *HTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: httpClient}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *HTTP) WithToken(token string) *HTTP {
	cp := *c
	cp.Token = token
	return &cp
}

type createRequest struct {
	Parameters domain.SimulationParameters `json:"parameters"`
}

type createResponse struct {
	Simulation domain.Simulation `json:"simulation"`
	Results    domain.Results    `json:"results"`
}

func (c *HTTP) CreateSimulation(
	ctx context.Context,
	params domain.SimulationParameters,
) (domain.Simulation, domain.Results, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/api/simulations", createRequest{Parameters: params}, &out); err != nil {
		return domain.Simulation{}, domain.Results{}, err
	}
	return out.Simulation, out.Results, nil
}

func (c *HTTP) GetSimulation(ctx context.Context, id string) (domain.Simulation, error) {
	var out domain.Simulation
	err := c.do(ctx, http.MethodGet, "/api/simulations/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *HTTP) GetResults(ctx context.Context, simulationID string) (domain.Results, error) {
	var out domain.Results
	err := c.do(ctx, http.MethodGet, "/api/simulations/"+url.PathEscape(simulationID)+"/results", nil, &out)
	return out, err
}

func (c *HTTP) ListSimulations(ctx context.Context) ([]domain.Simulation, error) {
	var out []domain.Simulation
	err := c.do(ctx, http.MethodGet, "/api/simulations", nil, &out)
	return out, err
}

func (c *HTTP) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{username, email, password}, &out)
	return out, err
}

func (c *HTTP) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}, &out)
	return out.Token, out.User, err
}

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: msg.Message}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.APIClient = (*HTTP)(nil)
