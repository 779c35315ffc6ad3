// Package authority is a reference implementation of the HTTP contract the
// board client talks to. It is used for local development and as the
// server side of gateway tests.
package authority

import (
	"context"
	"errors"
	"fmt"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

// Repository is the authority's storage.
type Repository interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	CreateJob(ctx context.Context, f model.JobFields, createdBy string) (model.Job, error)
	UpdateJob(ctx context.Context, id string, f model.JobFields) (model.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ApplyToJob(ctx context.Context, jobID, userID string) (model.Application, error)

	ListCompanies(ctx context.Context) ([]model.Company, error)
	CreateCompany(ctx context.Context, f model.CompanyFields) (model.Company, error)
	SetCompanyStatus(ctx context.Context, id string, to approval.Status) (model.Company, error)
	DeleteCompany(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, f model.UserFields) (model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when the write contradicts current state.
var ErrConflict = errors.New("conflict")

// ErrAlreadyApplied is returned on a second application to the same job.
var ErrAlreadyApplied = fmt.Errorf("%w: already applied to this job", ErrConflict)

// transitionError reports a company status change that I4 forbids.
func transitionError(from, to approval.Status) error {
	return fmt.Errorf("%w: company status %s → %s is not allowed", ErrConflict, from, to)
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
