package store

import (
	"log/slog"

	"jobmate/board-client/internal/model"
)

// Store is the session-wide entity cache.
type Store struct {
	Jobs      *Collection[model.Job]
	Companies *Collection[model.Company]
	Users     *Collection[model.User]
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Jobs:      newCollection[model.Job](model.KindJob),
		Companies: newCollection[model.Company](model.KindCompany),
		Users:     newCollection[model.User](model.KindUser),
	}
}

// Evict removes a record of the given kind; unknown kinds are ignored.
func (s *Store) Evict(kind model.Kind, id string) bool {
	switch kind {
	case model.KindJob:
		return s.Jobs.Evict(id)
	case model.KindCompany:
		return s.Companies.Evict(id)
	case model.KindUser:
		return s.Users.Evict(id)
	}
	return false
}

// ClearRoleGated drops the collections only admins can fetch. Called when
// the session is invalidated.
func (s *Store) ClearRoleGated() {
	s.Users.Clear()
	s.Companies.Clear()
	slog.Info("role-gated collections cleared")
}
