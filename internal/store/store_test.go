package store_test

import (
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
	"jobmate/board-client/internal/store"
)

func ids(jobs []model.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestIngestMany_LastCallWins(t *testing.T) {
	s := store.New()
	s.Jobs.IngestMany([]model.Job{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	s.Jobs.IngestMany([]model.Job{{ID: "4"}, {ID: "2", Title: "new"}})

	assert.Equal(t, []string{"4", "2"}, ids(s.Jobs.List()))
	_, ok := s.Jobs.Get("1")
	assert.Equal(t, false, ok)
	j, ok := s.Jobs.Get("2")
	assert.Equal(t, true, ok)
	assert.Equal(t, "new", j.Title)
}

func TestIngestMany_EmptyClearsCollection(t *testing.T) {
	s := store.New()
	s.Companies.IngestMany([]model.Company{{ID: "c1"}})
	s.Companies.IngestMany(nil)
	assert.Equal(t, 0, s.Companies.Len())
}

func TestIngestMany_DuplicateInBatchKeepsFirstPositionLastValue(t *testing.T) {
	s := store.New()
	s.Jobs.IngestMany([]model.Job{{ID: "1", Title: "a"}, {ID: "2"}, {ID: "1", Title: "b"}})
	assert.Equal(t, []string{"1", "2"}, ids(s.Jobs.List()))
	j, _ := s.Jobs.Get("1")
	assert.Equal(t, "b", j.Title)
}

func TestIngestMany_SkipsMissingIdentifier(t *testing.T) {
	s := store.New()
	skipped := s.Jobs.IngestMany([]model.Job{{ID: "1"}, {Title: "orphan"}})
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, s.Jobs.Len())
}

func TestIngestOne_ReplaceKeepsPosition(t *testing.T) {
	s := store.New()
	s.Jobs.IngestMany([]model.Job{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	s.Jobs.IngestOne(model.Job{ID: "2", Title: "updated"})
	s.Jobs.IngestOne(model.Job{ID: "4"})

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(s.Jobs.List()))
	j, _ := s.Jobs.Get("2")
	assert.Equal(t, "updated", j.Title)
}

func TestIngestOne_ReplacesWholesale(t *testing.T) {
	s := store.New()
	s.Jobs.IngestOne(model.Job{ID: "1", Title: "t", Location: "Pune"})
	s.Jobs.IngestOne(model.Job{ID: "1", Title: "t2"})
	j, _ := s.Jobs.Get("1")
	assert.Equal(t, "", j.Location)
}

func TestIngestOne_RejectsMissingIdentifier(t *testing.T) {
	s := store.New()
	assert.Equal(t, false, s.Users.IngestOne(model.User{Fullname: "x"}))
	assert.Equal(t, 0, s.Users.Len())
}

func TestEvict_AbsentIsNoop(t *testing.T) {
	s := store.New()
	s.Jobs.IngestMany([]model.Job{{ID: "1"}, {ID: "2"}})
	v := s.Jobs.Version()

	assert.Equal(t, false, s.Jobs.Evict("missing"))
	assert.Equal(t, v, s.Jobs.Version())
	assert.Equal(t, true, s.Jobs.Evict("1"))
	assert.Equal(t, []string{"2"}, ids(s.Jobs.List()))
}

func TestStoreEvict_ByKind(t *testing.T) {
	s := store.New()
	s.Users.IngestOne(model.User{ID: "u1"})
	assert.Equal(t, true, s.Evict(model.KindUser, "u1"))
	assert.Equal(t, false, s.Evict(model.Kind("other"), "u1"))
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := store.New()
	s.Jobs.IngestOne(model.Job{ID: "1", Applications: []model.Application{{ApplicantID: "u1"}}})

	j, _ := s.Jobs.Get("1")
	j.Applications[0].ApplicantID = "tampered"
	j.Title = "tampered"

	again, _ := s.Jobs.Get("1")
	assert.Equal(t, "u1", again.Applications[0].ApplicantID)
	assert.Equal(t, "", again.Title)
}

func TestClearRoleGated(t *testing.T) {
	s := store.New()
	s.Jobs.IngestOne(model.Job{ID: "j"})
	s.Users.IngestOne(model.User{ID: "u"})
	s.Companies.IngestOne(model.Company{ID: "c", Status: approval.StatusPending})

	s.ClearRoleGated()

	assert.Equal(t, 1, s.Jobs.Len())
	assert.Equal(t, 0, s.Users.Len())
	assert.Equal(t, 0, s.Companies.Len())
}

func TestConcurrentIngestOne(t *testing.T) {
	s := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Jobs.IngestOne(model.Job{ID: "same", Position: n})
			_ = s.Jobs.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, s.Jobs.Len())
}

func TestUpdate_AppliesInPlace(t *testing.T) {
	s := store.New()
	s.Jobs.IngestMany([]model.Job{{ID: "1"}, {ID: "2", Title: "a"}, {ID: "3"}})
	v := s.Jobs.Version()

	ok := s.Jobs.Update("2", func(j model.Job) model.Job {
		j.Title = "b"
		j.Applications = append(j.Applications, model.Application{ApplicantID: "u"})
		return j
	})
	assert.Equal(t, true, ok)
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Jobs.List()))
	j, _ := s.Jobs.Get("2")
	assert.Equal(t, "b", j.Title)
	assert.Equal(t, 1, j.ApplicantCount())
	assert.Equal(t, v+1, s.Jobs.Version())
}

func TestUpdate_AbsentIsNoop(t *testing.T) {
	s := store.New()
	s.Jobs.IngestOne(model.Job{ID: "1"})
	v := s.Jobs.Version()

	called := false
	ok := s.Jobs.Update("missing", func(j model.Job) model.Job {
		called = true
		return j
	})
	assert.Equal(t, false, ok)
	assert.Equal(t, false, called)
	assert.Equal(t, 1, s.Jobs.Len())
	assert.Equal(t, v, s.Jobs.Version())
}

func TestUpdate_RejectsIdentifierChange(t *testing.T) {
	s := store.New()
	s.Jobs.IngestOne(model.Job{ID: "1", Title: "a"})

	ok := s.Jobs.Update("1", func(j model.Job) model.Job {
		j.ID = "2"
		return j
	})
	assert.Equal(t, false, ok)
	j, _ := s.Jobs.Get("1")
	assert.Equal(t, "a", j.Title)
	_, found := s.Jobs.Get("2")
	assert.Equal(t, false, found)
}

func TestUpdate_SerialisedWithEvict(t *testing.T) {
	s := store.New()
	for i := 0; i < 200; i++ {
		s.Jobs.IngestOne(model.Job{ID: "1"})
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Jobs.Update("1", func(j model.Job) model.Job {
				j.Title = "applied"
				return j
			})
		}()
		go func() {
			defer wg.Done()
			s.Jobs.Evict("1")
		}()
		wg.Wait()
		_, ok := s.Jobs.Get("1")
		assert.Equal(t, false, ok)
	}
}
