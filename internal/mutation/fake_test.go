package mutation_test

import (
	"context"
	"sync"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/gateway"
	"jobmate/board-client/internal/model"
)

// fakeGateway counts calls per method and answers with canned values.
// When gate is non-nil every write blocks until it is closed.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	err  error
	gate chan struct{}
	// started is signalled when a write reaches the gateway.
	started chan struct{}

	job     model.Job
	company model.Company
	user    model.User
	app     model.Application
}

func newFake() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int)}
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

func (f *fakeGateway) hit(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	gate, started, err := f.gate, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeGateway) ListJobs(ctx context.Context) ([]model.Job, error) {
	return []model.Job{f.job}, f.hit(ctx, "ListJobs")
}

func (f *fakeGateway) GetJob(ctx context.Context, id string) (model.Job, error) {
	return f.job, f.hit(ctx, "GetJob")
}

func (f *fakeGateway) CreateJob(ctx context.Context, _ model.JobFields) (model.Job, error) {
	return f.job, f.hit(ctx, "CreateJob")
}

func (f *fakeGateway) UpdateJob(ctx context.Context, _ string, _ model.JobFields) (model.Job, error) {
	return f.job, f.hit(ctx, "UpdateJob")
}

func (f *fakeGateway) DeleteJob(ctx context.Context, _ string) error {
	return f.hit(ctx, "DeleteJob")
}

func (f *fakeGateway) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return []model.Company{f.company}, f.hit(ctx, "ListCompanies")
}

func (f *fakeGateway) CreateCompany(ctx context.Context, _ model.CompanyFields) (model.Company, error) {
	return f.company, f.hit(ctx, "CreateCompany")
}

func (f *fakeGateway) SetCompanyStatus(ctx context.Context, id string, s approval.Status) (model.Company, error) {
	c := f.company
	c.ID, c.Status = id, s
	return c, f.hit(ctx, "SetCompanyStatus")
}

func (f *fakeGateway) DeleteCompany(ctx context.Context, _ string) error {
	return f.hit(ctx, "DeleteCompany")
}

func (f *fakeGateway) ListUsers(ctx context.Context) ([]model.User, error) {
	return []model.User{f.user}, f.hit(ctx, "ListUsers")
}

func (f *fakeGateway) CreateUser(ctx context.Context, _ model.UserFields) (model.User, error) {
	return f.user, f.hit(ctx, "CreateUser")
}

func (f *fakeGateway) DeleteUser(ctx context.Context, _ string) error {
	return f.hit(ctx, "DeleteUser")
}

func (f *fakeGateway) ApplyToJob(ctx context.Context, _ string) (model.Application, error) {
	return f.app, f.hit(ctx, "ApplyToJob")
}

var _ gateway.RemoteGateway = (*fakeGateway)(nil)

type user string

func (u user) UserID() string { return string(u) }
