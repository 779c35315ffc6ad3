// Package syncer pulls authoritative collections into the store.
package syncer

import (
	"context"
	"log/slog"

	"jobmate/board-client/internal/gateway"
	"jobmate/board-client/internal/mutation"
	"jobmate/board-client/internal/store"
)

// Viewer reports whether the session may see admin-only collections.
type Viewer interface {
	IsAdmin() bool
}

// Syncer refreshes the store from the authority. A failed fetch leaves the
// affected collection untouched.
type Syncer struct {
	gw     gateway.RemoteGateway
	store  *store.Store
	viewer Viewer
}

func New(gw gateway.RemoteGateway, s *store.Store, viewer Viewer) *Syncer {
	return &Syncer{gw: gw, store: s, viewer: viewer}
}

// RefreshJobs replaces the job collection.
func (s *Syncer) RefreshJobs(ctx context.Context) error {
	jobs, err := s.gw.ListJobs(ctx)
	if err != nil {
		return mutation.Classify("listJobs", err)
	}
	s.store.Jobs.IngestMany(jobs)
	return nil
}

// admin is checked again after every role-gated fetch: a 401 elsewhere may
// have invalidated the session while the list was in flight.
func (s *Syncer) admin() bool {
	return s.viewer != nil && s.viewer.IsAdmin()
}

// RefreshCompanies replaces the company collection. Admin only.
func (s *Syncer) RefreshCompanies(ctx context.Context) error {
	companies, err := s.gw.ListCompanies(ctx)
	if err != nil {
		return mutation.Classify("listCompanies", err)
	}
	if !s.admin() {
		slog.Info("session lost admin rights during refresh; companies dropped")
		return nil
	}
	s.store.Companies.IngestMany(companies)
	return nil
}

// RefreshUsers replaces the user collection. Admin only.
func (s *Syncer) RefreshUsers(ctx context.Context) error {
	users, err := s.gw.ListUsers(ctx)
	if err != nil {
		return mutation.Classify("listUsers", err)
	}
	if !s.admin() {
		slog.Info("session lost admin rights during refresh; users dropped")
		return nil
	}
	s.store.Users.IngestMany(users)
	return nil
}

// Refresh reloads jobs, plus companies and users for admins. It stops at
// the first failure.
func (s *Syncer) Refresh(ctx context.Context) error {
	if err := s.RefreshJobs(ctx); err != nil {
		return err
	}
	if !s.admin() {
		return nil
	}
	if err := s.RefreshCompanies(ctx); err != nil {
		return err
	}
	if err := s.RefreshUsers(ctx); err != nil {
		return err
	}
	slog.Info("store refreshed",
		"jobs", s.store.Jobs.Len(),
		"companies", s.store.Companies.Len(),
		"users", s.store.Users.Len())
	return nil
}

// FetchJob upserts a single job.
func (s *Syncer) FetchJob(ctx context.Context, id string) error {
	job, err := s.gw.GetJob(ctx, id)
	if err != nil {
		return mutation.Classify("getJob", err)
	}
	s.store.Jobs.IngestOne(job)
	return nil
}
