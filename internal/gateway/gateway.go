// Package gateway is the client side of the authority's CRUD contract.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

// RemoteGateway is everything the client core needs from the authority.
// List endpoints return complete, unpaginated collections.
type RemoteGateway interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	CreateJob(ctx context.Context, f model.JobFields) (model.Job, error)
	UpdateJob(ctx context.Context, id string, f model.JobFields) (model.Job, error)
	DeleteJob(ctx context.Context, id string) error

	ListCompanies(ctx context.Context) ([]model.Company, error)
	CreateCompany(ctx context.Context, f model.CompanyFields) (model.Company, error)
	SetCompanyStatus(ctx context.Context, id string, status approval.Status) (model.Company, error)
	DeleteCompany(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, f model.UserFields) (model.User, error)
	DeleteUser(ctx context.Context, id string) error

	ApplyToJob(ctx context.Context, jobID string) (model.Application, error)
}

// ErrUnauthorized is matched by every 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-success response from the authority.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authority returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("authority returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// TransportError means the request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
