package saved_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"jobmate/board-client/internal/model"
	"jobmate/board-client/internal/saved"
)

func titles(jobs []model.Job) []string {
	out := []string{}
	for _, j := range jobs {
		out = append(out, j.Title)
	}
	return out
}

func TestAdd_Idempotent(t *testing.T) {
	s := saved.New()
	j := model.Job{ID: "1", Title: "Go Dev"}

	assert.Equal(t, true, s.Add("u", j))
	assert.Equal(t, false, s.Add("u", j))
	assert.Equal(t, 1, len(s.List("u")))
}

func TestAdd_KeepsSnapshot(t *testing.T) {
	s := saved.New()
	j := model.Job{ID: "1", Title: "Go Dev", Requirements: []string{"go"}}
	s.Add("u", j)

	j.Title = "renamed"
	j.Requirements[0] = "rust"
	s.Add("u", j)

	got := s.List("u")
	assert.Equal(t, "Go Dev", got[0].Title)
	assert.Equal(t, "go", got[0].Requirements[0])
}

func TestAdd_RejectsMissingIdentifiers(t *testing.T) {
	s := saved.New()
	assert.Equal(t, false, s.Add("", model.Job{ID: "1"}))
	assert.Equal(t, false, s.Add("u", model.Job{Title: "x"}))
	assert.Equal(t, 0, len(s.List("u")))
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	s := saved.New()
	s.Add("u", model.Job{ID: "1", Title: "a"})

	assert.Equal(t, false, s.Remove("u", "missing"))
	assert.Equal(t, false, s.Remove("nobody", "1"))
	assert.Equal(t, []string{"a"}, titles(s.List("u")))
}

func TestList_InsertionOrderPerUser(t *testing.T) {
	s := saved.New()
	s.Add("u", model.Job{ID: "2", Title: "b"})
	s.Add("u", model.Job{ID: "1", Title: "a"})
	s.Add("v", model.Job{ID: "3", Title: "c"})
	s.Remove("u", "2")
	s.Add("u", model.Job{ID: "2", Title: "b"})

	assert.Equal(t, []string{"a", "b"}, titles(s.List("u")))
	assert.Equal(t, []string{"c"}, titles(s.List("v")))
	assert.Equal(t, true, s.IsSaved("v", "3"))
	assert.Equal(t, false, s.IsSaved("u", "3"))
}

// ── Persistence ──────────────────────────────────────────────

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.db")
	ctx := context.Background()

	db, err := saved.OpenSQLite(path)
	assert.Equal(t, err, nil)
	s, err := saved.Open(ctx, db)
	assert.Equal(t, err, nil)
	s.Add("u", model.Job{ID: "1", Title: "a", Company: &model.CompanyRef{Name: "Acme"}})
	s.Add("u", model.Job{ID: "2", Title: "b"})
	s.Add("u", model.Job{ID: "2", Title: "b"})
	s.Remove("u", "1")
	s.Add("u", model.Job{ID: "3", Title: "c"})
	assert.Equal(t, db.Close(), nil)

	db, err = saved.OpenSQLite(path)
	assert.Equal(t, err, nil)
	defer db.Close()
	reopened, err := saved.Open(ctx, db)
	assert.Equal(t, err, nil)

	assert.Equal(t, []string{"b", "c"}, titles(reopened.List("u")))
}

type failingPersister struct{ loadErr error }

func (f failingPersister) Load(context.Context) ([]saved.Entry, error) { return nil, f.loadErr }
func (failingPersister) Put(context.Context, saved.Entry) error         { return errors.New("disk full") }
func (failingPersister) Delete(context.Context, string, string) error  { return errors.New("disk full") }

func TestPersistFailureDoesNotFailMemoryOperation(t *testing.T) {
	s, err := saved.Open(context.Background(), failingPersister{})
	assert.Equal(t, err, nil)

	assert.Equal(t, true, s.Add("u", model.Job{ID: "1"}))
	assert.Equal(t, true, s.IsSaved("u", "1"))
	assert.Equal(t, true, s.Remove("u", "1"))
	assert.Equal(t, false, s.IsSaved("u", "1"))
}

func TestOpen_LoadError(t *testing.T) {
	_, err := saved.Open(context.Background(), failingPersister{loadErr: errors.New("boom")})
	assert.NotEqual(t, err, nil)
}

// mapPersister keeps rows in a map and yields inside every write to widen
// the gap between the memory change and the row change.
type mapPersister struct {
	mu   sync.Mutex
	rows map[string]saved.Entry
}

func (m *mapPersister) Load(context.Context) ([]saved.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]saved.Entry, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	return out, nil
}

func (m *mapPersister) Put(_ context.Context, e saved.Entry) error {
	runtime.Gosched()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[e.UserID+"/"+e.Job.ID] = e
	return nil
}

func (m *mapPersister) Delete(_ context.Context, userID, jobID string) error {
	runtime.Gosched()
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID+"/"+jobID)
	return nil
}

func (m *mapPersister) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[key]
	return ok
}

func TestConcurrentAddRemove_PersisterMatchesMemory(t *testing.T) {
	p := &mapPersister{rows: make(map[string]saved.Entry)}
	s, err := saved.Open(context.Background(), p)
	assert.Equal(t, err, nil)
	job := model.Job{ID: "1", Title: "a"}

	for i := 0; i < 500; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Add("u", job)
		}()
		go func() {
			defer wg.Done()
			s.Remove("u", "1")
		}()
		wg.Wait()
		assert.Equal(t, s.IsSaved("u", "1"), p.has("u/1"))
	}

	reopened, err := saved.Open(context.Background(), p)
	assert.Equal(t, err, nil)
	assert.Equal(t, s.IsSaved("u", "1"), reopened.IsSaved("u", "1"))
}
