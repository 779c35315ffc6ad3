// Package mutation performs remote writes and reconciles the store with the
// authority's answer. The store only ever reflects confirmed writes.
package mutation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/events"
	"jobmate/board-client/internal/gateway"
	"jobmate/board-client/internal/model"
	"jobmate/board-client/internal/store"
)

const publishTimeout = 2 * time.Second

// Identity names the user on whose behalf mutations run.
type Identity interface {
	UserID() string
}

type anonymous struct{}

func (anonymous) UserID() string { return "" }

// Result describes a finished mutation. Exactly one record field is set on
// commit, none on rejection or delete.
type Result struct {
	MutationID string
	Op         string
	State      State
	History    []State

	Job         *model.Job
	Company     *model.Company
	User        *model.User
	Application *model.Application
}

// Outcome is what Submit delivers.
type Outcome struct {
	Result *Result
	Err    error
}

// ─── Coordinator ─────────────────────────────────────────────────────────────

// Coordinator runs the validate → in-flight → committed/rejected protocol
// for every remote write.
type Coordinator struct {
	store *store.Store
	gw    gateway.RemoteGateway
	who   Identity
	pub   events.Publisher

	mu      sync.Mutex
	pending map[string]approval.Status

	wg sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithIdentity sets the user applying to jobs.
func WithIdentity(who Identity) Option {
	return func(c *Coordinator) { c.who = who }
}

// WithPublisher sets where committed mutations are announced.
func WithPublisher(p events.Publisher) Option {
	return func(c *Coordinator) { c.pub = p }
}

// New returns a Coordinator writing through gw and reconciling s.
func New(s *store.Store, gw gateway.RemoteGateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   s,
		gw:      gw,
		who:     anonymous{},
		pub:     events.Noop{},
		pending: make(map[string]approval.Status),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// step is one mutation: a local check, the remote call and the store update
// applied only after the call succeeds.
type step struct {
	op       string
	kind     model.Kind
	validate func() error
	remote   func(ctx context.Context) error
	commit   func(r *Result) (entityID string)
	// release runs once the outcome is known, if validate passed.
	release func()
}

// execute drives s through the state machine. The returned Result is never
// nil; on failure it records where the mutation stopped.
func (c *Coordinator) execute(ctx context.Context, s step) (*Result, error) {
	t := newTracker(ulid.Make().String(), s.op)
	res := func() *Result {
		return &Result{MutationID: t.id, Op: t.op, State: t.state, History: append([]State(nil), t.history...)}
	}

	defer markIssued(ctx)
	t.mustTransition(StateValidating)
	if s.validate != nil {
		if err := s.validate(); err != nil {
			t.mustTransition(StateRejected)
			return res(), Classify(s.op, err)
		}
	}
	if s.release != nil {
		defer s.release()
	}
	if err := ctx.Err(); err != nil {
		t.mustTransition(StateRejected)
		return res(), Classify(s.op, err)
	}

	t.mustTransition(StateInFlight)
	markIssued(ctx)
	// Once issued the request must be allowed to reconcile.
	if err := s.remote(context.WithoutCancel(ctx)); err != nil {
		t.mustTransition(StateRejected)
		merr := Classify(s.op, err)
		slog.Warn("mutation rejected", "mutationId", t.id, "op", s.op, "kind", merr.Kind, "err", err)
		return res(), merr
	}

	r := res()
	entityID := s.commit(r)
	t.mustTransition(StateCommitted)
	r.State, r.History = t.state, append([]State(nil), t.history...)

	c.publish(ctx, events.Event{
		MutationID: t.id,
		Op:         s.op,
		Kind:       string(s.kind),
		EntityID:   entityID,
		At:         time.Now().UTC(),
	})
	return r, nil
}

// publish announces a commit. Failures are logged only.
func (c *Coordinator) publish(ctx context.Context, ev events.Event) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := c.pub.Publish(pctx, ev); err != nil {
		slog.Warn("publish EVENT_ENTITY_CHANGED failed", "op", ev.Op, "err", err)
	}
}

type issuedKey struct{}

// markIssued tells a waiting Submit that validation is over.
func markIssued(ctx context.Context) {
	if f, ok := ctx.Value(issuedKey{}).(func()); ok {
		f()
	}
}

// Submit runs fn in the background and returns once fn's mutation has been
// issued or rejected, so overlays such as PendingStatus are already visible.
// The mutation completes and reconciles the store even if the caller stops
// listening or ctx is cancelled.
func (c *Coordinator) Submit(ctx context.Context, fn func(ctx context.Context) (*Result, error)) <-chan Outcome {
	out := make(chan Outcome, 1)
	issued := make(chan struct{})
	signal := sync.OnceFunc(func() { close(issued) })
	ctx = context.WithValue(context.WithoutCancel(ctx), issuedKey{}, signal)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer signal()
		r, err := fn(ctx)
		out <- Outcome{Result: r, Err: err}
	}()
	<-issued
	return out
}

// Wait blocks until every submitted mutation has finished.
func (c *Coordinator) Wait() { c.wg.Wait() }

// ─── Jobs ────────────────────────────────────────────────────────────────────

// CreateJob posts a new job and caches the record the authority returns.
func (c *Coordinator) CreateJob(ctx context.Context, f model.JobFields) (*Result, error) {
	var job model.Job
	return c.execute(ctx, step{
		op:       "createJob",
		kind:     model.KindJob,
		validate: func() error { return validateFields(f) },
		remote: func(ctx context.Context) (err error) {
			job, err = c.gw.CreateJob(ctx, f)
			return err
		},
		commit: func(r *Result) string {
			c.store.Jobs.IngestOne(job)
			r.Job = &job
			return job.ID
		},
	})
}

// UpdateJob replaces a job's editable fields once the authority confirms.
func (c *Coordinator) UpdateJob(ctx context.Context, id string, f model.JobFields) (*Result, error) {
	var job model.Job
	return c.execute(ctx, step{
		op:   "updateJob",
		kind: model.KindJob,
		validate: func() error {
			if id == "" {
				return invalid("job id is required")
			}
			return validateFields(f)
		},
		remote: func(ctx context.Context) (err error) {
			job, err = c.gw.UpdateJob(ctx, id, f)
			return err
		},
		commit: func(r *Result) string {
			c.store.Jobs.IngestOne(job)
			r.Job = &job
			return job.ID
		},
	})
}

// DeleteJob removes a job from the store after the authority deletes it.
func (c *Coordinator) DeleteJob(ctx context.Context, id string) (*Result, error) {
	return c.deleteStep(ctx, "deleteJob", model.KindJob, id, c.gw.DeleteJob)
}

// ApplyToJob records the session user's application and appends it to the
// cached job.
func (c *Coordinator) ApplyToJob(ctx context.Context, jobID string) (*Result, error) {
	userID := c.who.UserID()
	var app model.Application
	return c.execute(ctx, step{
		op:   "applyToJob",
		kind: model.KindJob,
		validate: func() error {
			if jobID == "" {
				return invalid("job id is required")
			}
			if userID == "" {
				return invalid("log in to apply")
			}
			if j, ok := c.store.Jobs.Get(jobID); ok && j.HasApplicant(userID) {
				return invalid("already applied to job %s", jobID)
			}
			return nil
		},
		remote: func(ctx context.Context) (err error) {
			app, err = c.gw.ApplyToJob(ctx, jobID)
			return err
		},
		commit: func(r *Result) string {
			if app.ApplicantID == "" {
				app.ApplicantID = userID
			}
			r.Application = &app
			ok := c.store.Jobs.Update(jobID, func(j model.Job) model.Job {
				if !j.HasApplicant(app.ApplicantID) {
					j.Applications = append(j.Applications, app)
				}
				return j
			})
			if !ok {
				slog.Info("applied job not cached; nothing to reconcile", "jobId", jobID)
			}
			return jobID
		},
	})
}

// ─── Companies ───────────────────────────────────────────────────────────────

// CreateCompany registers a company; it starts out pending.
func (c *Coordinator) CreateCompany(ctx context.Context, f model.CompanyFields) (*Result, error) {
	var co model.Company
	return c.execute(ctx, step{
		op:       "createCompany",
		kind:     model.KindCompany,
		validate: func() error { return validateFields(f) },
		remote: func(ctx context.Context) (err error) {
			co, err = c.gw.CreateCompany(ctx, f)
			return err
		},
		commit: func(r *Result) string {
			c.store.Companies.IngestOne(co)
			r.Company = &co
			return co.ID
		},
	})
}

// SetCompanyStatus accepts or rejects a pending company. The decision is
// visible through PendingStatus while the request is in flight; the store
// changes only when the authority confirms it.
func (c *Coordinator) SetCompanyStatus(ctx context.Context, id string, to approval.Status) (*Result, error) {
	var co model.Company
	return c.execute(ctx, step{
		op:   "setCompanyStatus",
		kind: model.KindCompany,
		validate: func() error {
			if !approval.IsDecision(to) {
				return invalid("status %q is not a decision", to)
			}
			cached, ok := c.store.Companies.Get(id)
			if !ok {
				return invalid("company %s is not loaded", id)
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			if inflight, busy := c.pending[id]; busy {
				return invalid("company %s already has a %s decision in flight", id, inflight)
			}
			if !approval.IsTransitionAllowed(cached.Status, to) {
				return invalid("company status %s → %s is not allowed", cached.Status, to)
			}
			c.pending[id] = to
			return nil
		},
		remote: func(ctx context.Context) (err error) {
			co, err = c.gw.SetCompanyStatus(ctx, id, to)
			return err
		},
		commit: func(r *Result) string {
			c.store.Companies.IngestOne(co)
			r.Company = &co
			return co.ID
		},
		release: func() {
			c.mu.Lock()
			delete(c.pending, id)
			c.mu.Unlock()
		},
	})
}

// PendingStatus returns the decision in flight for company id, if any.
func (c *Coordinator) PendingStatus(id string) (approval.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.pending[id]
	return s, ok
}

// CompanyStatus is the status to display: the in-flight decision if there
// is one, else the cached status.
func (c *Coordinator) CompanyStatus(id string) (approval.Status, bool) {
	if s, ok := c.PendingStatus(id); ok {
		return s, true
	}
	co, ok := c.store.Companies.Get(id)
	if !ok {
		return "", false
	}
	return co.Status, true
}

// DeleteCompany removes a company after the authority deletes it.
func (c *Coordinator) DeleteCompany(ctx context.Context, id string) (*Result, error) {
	return c.deleteStep(ctx, "deleteCompany", model.KindCompany, id, c.gw.DeleteCompany)
}

// ─── Users ───────────────────────────────────────────────────────────────────

// CreateUser creates an account and caches the returned user.
func (c *Coordinator) CreateUser(ctx context.Context, f model.UserFields) (*Result, error) {
	var u model.User
	return c.execute(ctx, step{
		op:       "createUser",
		kind:     model.KindUser,
		validate: func() error { return validateFields(f) },
		remote: func(ctx context.Context) (err error) {
			u, err = c.gw.CreateUser(ctx, f)
			return err
		},
		commit: func(r *Result) string {
			c.store.Users.IngestOne(u)
			r.User = &u
			return u.ID
		},
	})
}

// DeleteUser removes a user after the authority deletes it.
func (c *Coordinator) DeleteUser(ctx context.Context, id string) (*Result, error) {
	return c.deleteStep(ctx, "deleteUser", model.KindUser, id, c.gw.DeleteUser)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// deleteStep removes the record only after the authority confirms.
func (c *Coordinator) deleteStep(ctx context.Context, op string, kind model.Kind, id string, del func(context.Context, string) error) (*Result, error) {
	return c.execute(ctx, step{
		op:   op,
		kind: kind,
		validate: func() error {
			if id == "" {
				return invalid("%s id is required", kind)
			}
			return nil
		},
		remote: func(ctx context.Context) error { return del(ctx, id) },
		commit: func(*Result) string {
			c.store.Evict(kind, id)
			return id
		},
	})
}

func validateFields(f any) error {
	if err := model.Validate(f); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}
