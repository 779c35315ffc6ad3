package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/authority"
	"jobmate/board-client/internal/gateway"
	"jobmate/board-client/internal/model"
)

var secret = []byte("gateway-test")

func newClient(t *testing.T, repo authority.Repository, role model.Role) (*gateway.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(authority.NewServer(repo, secret).Handler())
	t.Cleanup(srv.Close)

	tok, err := authority.IssueToken(secret, "u-"+string(role), role, time.Hour)
	assert.Equal(t, err, nil)
	sess, err := gateway.NewSession(tok)
	assert.Equal(t, err, nil)

	c, err := gateway.NewClient(srv.URL, sess, 5*time.Second)
	assert.Equal(t, err, nil)
	return c, srv
}

func jobFields(companyID string) model.JobFields {
	return model.JobFields{
		Title: "Go Dev", Description: "d", Requirements: []string{"go"}, Salary: 10,
		Location: "Pune", JobType: "Full Time", ExperienceLevel: "1", Position: 1, CompanyID: companyID,
	}
}

// ── Round trips ──────────────────────────────────────────────

func TestClient_JobLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t, authority.NewMemory(), model.RoleAdmin)

	created, err := c.CreateJob(ctx, jobFields("c1"))
	assert.Equal(t, err, nil)
	assert.NotEqual(t, "", created.ID)

	f := jobFields("c1")
	f.Title = "Senior Go Dev"
	updated, err := c.UpdateJob(ctx, created.ID, f)
	assert.Equal(t, err, nil)
	assert.Equal(t, "Senior Go Dev", updated.Title)

	got, err := c.GetJob(ctx, created.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, "Senior Go Dev", got.Title)

	app, err := c.ApplyToJob(ctx, created.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, "u-admin", app.ApplicantID)

	jobs, err := c.ListJobs(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, 1, jobs[0].ApplicantCount())

	assert.Equal(t, c.DeleteJob(ctx, created.ID), nil)
	jobs, _ = c.ListJobs(ctx)
	assert.Equal(t, 0, len(jobs))
}

func TestClient_CompaniesAndUsers(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t, authority.NewMemory(), model.RoleAdmin)

	co, err := c.CreateCompany(ctx, model.CompanyFields{Name: "Acme"})
	assert.Equal(t, err, nil)
	assert.Equal(t, approval.StatusPending, co.Status)

	co, err = c.SetCompanyStatus(ctx, co.ID, approval.StatusRejected)
	assert.Equal(t, err, nil)
	assert.Equal(t, approval.StatusRejected, co.Status)

	u, err := c.CreateUser(ctx, model.UserFields{
		Fullname: "Ada", Email: "ada@example.com", PhoneNumber: "1", Password: "secret1", Role: model.RoleRecruiter,
	})
	assert.Equal(t, err, nil)

	users, err := c.ListUsers(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, u.ID, users[0].ID)

	assert.Equal(t, c.DeleteUser(ctx, u.ID), nil)
	assert.Equal(t, c.DeleteCompany(ctx, co.ID), nil)
	companies, _ := c.ListCompanies(ctx)
	assert.Equal(t, 0, len(companies))
}

// ── Failures ─────────────────────────────────────────────────

func TestClient_StatusErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t, authority.NewMemory(), model.RoleStudent)

	_, err := c.ListUsers(ctx)
	var se *gateway.StatusError
	assert.Equal(t, true, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "insufficient role", se.Message)
	assert.Equal(t, false, errors.Is(err, gateway.ErrUnauthorized))

	_, err = c.GetJob(ctx, "missing")
	assert.Equal(t, true, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClient_UnauthorizedInvalidatesSession(t *testing.T) {
	srv := httptest.NewServer(authority.NewServer(authority.NewMemory(), []byte("other-secret")).Handler())
	defer srv.Close()

	tok, _ := authority.IssueToken(secret, "u1", model.RoleAdmin, time.Hour)
	sess, _ := gateway.NewSession(tok)
	var hooks atomic.Int32
	sess.OnInvalidate(func() { hooks.Add(1) })

	c, _ := gateway.NewClient(srv.URL, sess, time.Second)
	_, err := c.ListCompanies(context.Background())

	assert.Equal(t, true, errors.Is(err, gateway.ErrUnauthorized))
	assert.Equal(t, int32(1), hooks.Load())
	assert.Equal(t, "", sess.Token())
	assert.Equal(t, false, sess.IsAdmin())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := gateway.NewClient(url, nil, time.Second)
	_, err := c.ListJobs(context.Background())
	var te *gateway.TransportError
	assert.Equal(t, true, errors.As(err, &te))
}

func TestClient_SendsRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"jobs":[]}`))
	}))
	defer srv.Close()

	c, _ := gateway.NewClient(srv.URL, nil, time.Second)
	_, err := c.ListJobs(context.Background())
	assert.Equal(t, err, nil)
	assert.NotEqual(t, "", seen)
}

func TestClient_UnsuccessfulEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Jobs not found."}`))
	}))
	defer srv.Close()

	c, _ := gateway.NewClient(srv.URL, nil, time.Second)
	_, err := c.ListJobs(context.Background())
	var se *gateway.StatusError
	assert.Equal(t, true, errors.As(err, &se))
	assert.Equal(t, "Jobs not found.", se.Message)
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := gateway.NewClient("localhost", nil, time.Second)
	assert.NotEqual(t, err, nil)
}
