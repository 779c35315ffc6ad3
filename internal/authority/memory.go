package authority

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

// Memory is a Repository held entirely in process.
type Memory struct {
	mu        sync.RWMutex
	jobs      []model.Job
	companies []model.Company
	users     []model.User
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func indexOf[T model.Entity[T]](items []T, id string) int {
	return slices.IndexFunc(items, func(x T) bool { return x.EntityID() == id })
}

func cloneAll[T model.Entity[T]](items []T) []T {
	out := make([]T, 0, len(items))
	for _, x := range items {
		out = append(out, x.Clone())
	}
	return out
}

// companyRef looks up the embedded company summary for a job. Caller holds mu.
func (m *Memory) companyRef(id string) *model.CompanyRef {
	i := indexOf(m.companies, id)
	if i < 0 {
		return nil
	}
	c := m.companies[i]
	return &model.CompanyRef{ID: c.ID, Name: c.Name, Logo: c.Logo}
}

func (m *Memory) ListJobs(context.Context) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.jobs), nil
}

func (m *Memory) GetJob(_ context.Context, id string) (model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.jobs, id)
	if i < 0 {
		return model.Job{}, ErrNotFound
	}
	return m.jobs[i].Clone(), nil
}

func (m *Memory) CreateJob(_ context.Context, f model.JobFields, createdBy string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := model.Job{
		ID:           uuid.NewString(),
		CreatedBy:    createdBy,
		CreatedAt:    m.now().UTC(),
		Applications: []model.Application{},
	}
	applyJobFields(&j, f)
	j.Company = m.companyRef(f.CompanyID)
	m.jobs = append(m.jobs, j)
	return j.Clone(), nil
}

func (m *Memory) UpdateJob(_ context.Context, id string, f model.JobFields) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.jobs, id)
	if i < 0 {
		return model.Job{}, ErrNotFound
	}
	applyJobFields(&m.jobs[i], f)
	m.jobs[i].Company = m.companyRef(f.CompanyID)
	return m.jobs[i].Clone(), nil
}

func applyJobFields(j *model.Job, f model.JobFields) {
	j.Title = f.Title
	j.Description = f.Description
	j.Requirements = slices.Clone(f.Requirements)
	j.Salary = f.Salary
	j.Location = f.Location
	j.JobType = f.JobType
	j.ExperienceLevel = f.ExperienceLevel
	j.Position = f.Position
	j.CompanyID = f.CompanyID
}

func (m *Memory) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.jobs, id)
	if i < 0 {
		return ErrNotFound
	}
	m.jobs = slices.Delete(m.jobs, i, i+1)
	return nil
}

func (m *Memory) ApplyToJob(_ context.Context, jobID, userID string) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.jobs, jobID)
	if i < 0 {
		return model.Application{}, ErrNotFound
	}
	if m.jobs[i].HasApplicant(userID) {
		return model.Application{}, ErrAlreadyApplied
	}
	a := model.Application{ApplicantID: userID, CreatedAt: m.now().UTC()}
	m.jobs[i].Applications = append(m.jobs[i].Applications, a)
	return a, nil
}

func (m *Memory) ListCompanies(context.Context) ([]model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.companies), nil
}

func (m *Memory) CreateCompany(_ context.Context, f model.CompanyFields) (model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := model.Company{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		Website:     f.Website,
		Location:    f.Location,
		Logo:        f.Logo,
		Status:      approval.StatusPending,
		UserID:      f.UserID,
	}
	m.companies = append(m.companies, c)
	return c, nil
}

func (m *Memory) SetCompanyStatus(_ context.Context, id string, to approval.Status) (model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.companies, id)
	if i < 0 {
		return model.Company{}, ErrNotFound
	}
	from := m.companies[i].Status
	if !approval.IsTransitionAllowed(from, to) {
		return model.Company{}, transitionError(from, to)
	}
	m.companies[i].Status = to
	return m.companies[i], nil
}

func (m *Memory) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.companies, id)
	if i < 0 {
		return ErrNotFound
	}
	m.companies = slices.Delete(m.companies, i, i+1)
	return nil
}

func (m *Memory) ListUsers(context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.users), nil
}

func (m *Memory) CreateUser(_ context.Context, f model.UserFields) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.users, func(u model.User) bool { return u.Email == f.Email }) {
		return model.User{}, &emailTakenError{email: f.Email}
	}
	u := newUser(uuid.NewString(), f)
	m.users = append(m.users, u)
	return u.Clone(), nil
}

func newUser(id string, f model.UserFields) model.User {
	return model.User{
		ID:          id,
		Fullname:    f.Fullname,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Role:        f.Role,
		Profile: model.Profile{
			EducationalQualification: f.EducationalQualification,
			YearOfPassing:            f.YearOfPassing,
		},
	}
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.users, id)
	if i < 0 {
		return ErrNotFound
	}
	m.users = slices.Delete(m.users, i, i+1)
	return nil
}

type emailTakenError struct{ email string }

func (e *emailTakenError) Error() string { return "user already exists with email " + e.email }
func (e *emailTakenError) Unwrap() error { return ErrConflict }

var _ Repository = (*Memory)(nil)
