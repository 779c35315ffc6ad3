package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

const (
	defaultHTTPTimeout        = 15 * time.Second
	defaultHTTPConnectTimeout = 5 * time.Second
	defaultHTTPTLSTimeout     = 5 * time.Second

	// APIPrefix is prepended to every endpoint path.
	APIPrefix = "/api/v1"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	dialer := &net.Dialer{Timeout: defaultHTTPConnectTimeout}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: defaultHTTPTLSTimeout,
		},
		Timeout: timeout,
	}
}

// envelope is the wrapper every authority response carries.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type jobsResponse struct {
	envelope
	Jobs []model.Job `json:"jobs"`
}

type jobResponse struct {
	envelope
	Job model.Job `json:"job"`
}

type companiesResponse struct {
	envelope
	Companies []model.Company `json:"companies"`
}

type companyResponse struct {
	envelope
	Company model.Company `json:"company"`
}

type usersResponse struct {
	envelope
	Users []model.User `json:"users"`
}

type userResponse struct {
	envelope
	User model.User `json:"user"`
}

type applicationResponse struct {
	envelope
	Application model.Application `json:"application"`
}

type ackResponse struct {
	envelope
}

func (e envelope) failed() (bool, string) { return !e.Success, e.Message }

type enveloped interface {
	failed() (bool, string)
}

// Client talks to the authority over HTTP JSON.
type Client struct {
	base    string
	http    *http.Client
	session *Session
}

// NewClient returns a Client rooted at apiURL (scheme and host, optionally
// with a path prefix). The session is consulted on every request.
func NewClient(apiURL string, session *Session, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must include scheme and host", apiURL)
	}
	if session == nil {
		session = &Session{}
	}
	return &Client{
		base:    strings.TrimRight(u.String(), "/") + APIPrefix,
		http:    newHTTPClient(timeout),
		session: session,
	}, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

func call[R enveloped](ctx context.Context, c *Client, method, path string, args any) (R, error) {
	var result R

	var body io.Reader
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return result, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return result, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	r, err := c.http.Do(req)
	if err != nil {
		return result, &TransportError{Err: err}
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return result, &TransportError{Err: err}
	}

	if r.StatusCode < 200 || r.StatusCode > 299 {
		var env envelope
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			msg = env.Message
		}
		if r.StatusCode == http.StatusUnauthorized {
			c.session.Invalidate()
		}
		return result, &StatusError{Code: r.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if failed, msg := result.failed(); failed {
		return result, &StatusError{Code: r.StatusCode, Message: msg}
	}
	return result, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	r, err := call[jobsResponse](ctx, c, http.MethodGet, "/jobs", nil)
	return r.Jobs, err
}

func (c *Client) GetJob(ctx context.Context, id string) (model.Job, error) {
	r, err := call[jobResponse](ctx, c, http.MethodGet, "/jobs/"+url.PathEscape(id), nil)
	return r.Job, err
}

func (c *Client) CreateJob(ctx context.Context, f model.JobFields) (model.Job, error) {
	r, err := call[jobResponse](ctx, c, http.MethodPost, "/jobs", f)
	return r.Job, err
}

func (c *Client) UpdateJob(ctx context.Context, id string, f model.JobFields) (model.Job, error) {
	r, err := call[jobResponse](ctx, c, http.MethodPut, "/jobs/"+url.PathEscape(id), f)
	return r.Job, err
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	_, err := call[ackResponse](ctx, c, http.MethodDelete, "/jobs/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) ListCompanies(ctx context.Context) ([]model.Company, error) {
	r, err := call[companiesResponse](ctx, c, http.MethodGet, "/companies", nil)
	return r.Companies, err
}

func (c *Client) CreateCompany(ctx context.Context, f model.CompanyFields) (model.Company, error) {
	r, err := call[companyResponse](ctx, c, http.MethodPost, "/companies", f)
	return r.Company, err
}

func (c *Client) SetCompanyStatus(ctx context.Context, id string, status approval.Status) (model.Company, error) {
	path := fmt.Sprintf("/companies/%s/%s", url.PathEscape(id), url.PathEscape(string(status)))
	r, err := call[companyResponse](ctx, c, http.MethodPut, path, nil)
	return r.Company, err
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	_, err := call[ackResponse](ctx, c, http.MethodDelete, "/companies/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	r, err := call[usersResponse](ctx, c, http.MethodGet, "/users", nil)
	return r.Users, err
}

func (c *Client) CreateUser(ctx context.Context, f model.UserFields) (model.User, error) {
	r, err := call[userResponse](ctx, c, http.MethodPost, "/users", f)
	return r.User, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := call[ackResponse](ctx, c, http.MethodDelete, "/users/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) ApplyToJob(ctx context.Context, jobID string) (model.Application, error) {
	r, err := call[applicationResponse](ctx, c, http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/apply", nil)
	return r.Application, err
}

var _ RemoteGateway = (*Client)(nil)
