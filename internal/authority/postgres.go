package authority

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/board-client/internal/approval"
	"jobmate/board-client/internal/model"
)

// Schema creates the authority's tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id                        TEXT PRIMARY KEY,
	fullname                  TEXT NOT NULL,
	email                     TEXT NOT NULL UNIQUE,
	phone_number              TEXT NOT NULL DEFAULT '',
	role                      TEXT NOT NULL,
	bio                       TEXT NOT NULL DEFAULT '',
	skills                    TEXT[] NOT NULL DEFAULT '{}',
	educational_qualification TEXT NOT NULL DEFAULT '',
	year_of_passing           TEXT NOT NULL DEFAULT '',
	created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS companies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	website     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	logo        TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	user_id     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	requirements     TEXT[] NOT NULL DEFAULT '{}',
	salary           DOUBLE PRECISION NOT NULL,
	location         TEXT NOT NULL,
	job_type         TEXT NOT NULL,
	experience_level TEXT NOT NULL,
	position         INTEGER NOT NULL,
	company_id       TEXT NOT NULL,
	created_by       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS applications (
	job_id       TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	applicant_id TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (job_id, applicant_id)
);
`

// Postgres is a Repository on PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema applies Schema.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensureSchema: %w", err)
	}
	return nil
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

const jobSelect = `
	SELECT j.id, j.title, j.description, j.requirements, j.salary, j.location,
	       j.job_type, j.experience_level, j.position, j.company_id,
	       c.id, c.name, c.logo, j.created_by, j.created_at
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id`

func scanJob(row pgx.Row) (model.Job, error) {
	var (
		j                       model.Job
		refID, refName, refLogo *string
	)
	if err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Salary, &j.Location,
		&j.JobType, &j.ExperienceLevel, &j.Position, &j.CompanyID,
		&refID, &refName, &refLogo, &j.CreatedBy, &j.CreatedAt,
	); err != nil {
		return model.Job{}, err
	}
	if refID != nil {
		j.Company = &model.CompanyRef{ID: *refID, Name: deref(refName), Logo: deref(refLogo)}
	}
	j.Applications = []model.Application{}
	return j, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// applications loads the applications of the given jobs, keyed by job id.
func (p *Postgres) applications(ctx context.Context, jobIDs []string) (map[string][]model.Application, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT job_id, applicant_id, created_at FROM applications
		 WHERE job_id = ANY($1) ORDER BY created_at, applicant_id`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("applications query: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Application)
	for rows.Next() {
		var (
			jobID string
			a     model.Application
		)
		if err := rows.Scan(&jobID, &a.ApplicantID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("applications scan: %w", err)
		}
		out[jobID] = append(out[jobID], a)
	}
	return out, rows.Err()
}

func (p *Postgres) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := p.pool.Query(ctx, jobSelect+` ORDER BY j.created_at DESC, j.id`)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	ids := make([]string, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, j)
		ids = append(ids, j.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listJobs rows: %w", err)
	}

	apps, err := p.applications(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if a, ok := apps[jobs[i].ID]; ok {
			jobs[i].Applications = a
		}
	}
	return jobs, nil
}

func (p *Postgres) GetJob(ctx context.Context, id string) (model.Job, error) {
	j, err := scanJob(p.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Job{}, ErrNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("getJob: %w", err)
	}
	apps, err := p.applications(ctx, []string{id})
	if err != nil {
		return model.Job{}, err
	}
	if a, ok := apps[id]; ok {
		j.Applications = a
	}
	return j, nil
}

func (p *Postgres) CreateJob(ctx context.Context, f model.JobFields, createdBy string) (model.Job, error) {
	id := uuid.NewString()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, description, requirements, salary, location,
		                   job_type, experience_level, position, company_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, f.Title, f.Description, f.Requirements, f.Salary, f.Location,
		f.JobType, f.ExperienceLevel, f.Position, f.CompanyID, createdBy,
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("createJob: %w", err)
	}
	return p.GetJob(ctx, id)
}

func (p *Postgres) UpdateJob(ctx context.Context, id string, f model.JobFields) (model.Job, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE jobs SET title = $1, description = $2, requirements = $3, salary = $4,
		                 location = $5, job_type = $6, experience_level = $7,
		                 position = $8, company_id = $9
		 WHERE id = $10`,
		f.Title, f.Description, f.Requirements, f.Salary,
		f.Location, f.JobType, f.ExperienceLevel,
		f.Position, f.CompanyID, id,
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("updateJob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Job{}, ErrNotFound
	}
	return p.GetJob(ctx, id)
}

func (p *Postgres) DeleteJob(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "jobs", id)
}

func (p *Postgres) ApplyToJob(ctx context.Context, jobID, userID string) (model.Application, error) {
	var a model.Application
	err := p.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, applicant_id)
		 SELECT id, $2 FROM jobs WHERE id = $1
		 ON CONFLICT (job_id, applicant_id) DO NOTHING
		 RETURNING applicant_id, created_at`,
		jobID, userID,
	).Scan(&a.ApplicantID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := p.GetJob(ctx, jobID); getErr != nil {
			return model.Application{}, getErr
		}
		return model.Application{}, ErrAlreadyApplied
	}
	if err != nil {
		return model.Application{}, fmt.Errorf("applyToJob: %w", err)
	}
	return a, nil
}

// ─── Companies ───────────────────────────────────────────────────────────────

const companySelect = `
	SELECT id, name, description, website, location, logo, status, user_id
	FROM companies`

func scanCompany(row pgx.Row) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Website, &c.Location, &c.Logo, &c.Status, &c.UserID)
	return c, err
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := p.pool.Query(ctx, companySelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listCompanies query: %w", err)
	}
	defer rows.Close()

	out := make([]model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("listCompanies scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) getCompany(ctx context.Context, id string) (model.Company, error) {
	c, err := scanCompany(p.pool.QueryRow(ctx, companySelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Company{}, ErrNotFound
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("getCompany: %w", err)
	}
	return c, nil
}

func (p *Postgres) CreateCompany(ctx context.Context, f model.CompanyFields) (model.Company, error) {
	c, err := scanCompany(p.pool.QueryRow(ctx,
		`INSERT INTO companies (id, name, description, website, location, logo, status, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, name, description, website, location, logo, status, user_id`,
		uuid.NewString(), f.Name, f.Description, f.Website, f.Location, f.Logo,
		string(approval.StatusPending), f.UserID,
	))
	if err != nil {
		return model.Company{}, fmt.Errorf("createCompany: %w", err)
	}
	return c, nil
}

// SetCompanyStatus only updates rows that are still pending, so two racing
// decisions cannot both win.
func (p *Postgres) SetCompanyStatus(ctx context.Context, id string, to approval.Status) (model.Company, error) {
	if !approval.IsDecision(to) {
		return model.Company{}, &ValidationError{Msg: fmt.Sprintf("status %q is not a decision", to)}
	}
	c, err := scanCompany(p.pool.QueryRow(ctx,
		`UPDATE companies SET status = $1
		 WHERE id = $2 AND status = $3
		 RETURNING id, name, description, website, location, logo, status, user_id`,
		string(to), id, string(approval.StatusPending),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := p.getCompany(ctx, id)
		if getErr != nil {
			return model.Company{}, getErr
		}
		return model.Company{}, transitionError(current.Status, to)
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("setCompanyStatus: %w", err)
	}
	return c, nil
}

func (p *Postgres) DeleteCompany(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "companies", id)
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (p *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, fullname, email, phone_number, role, bio, skills,
		        educational_qualification, year_of_passing
		 FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listUsers query: %w", err)
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Fullname, &u.Email, &u.PhoneNumber, &u.Role, &u.Profile.Bio, &u.Profile.Skills,
			&u.Profile.EducationalQualification, &u.Profile.YearOfPassing,
		); err != nil {
			return nil, fmt.Errorf("listUsers scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateUser(ctx context.Context, f model.UserFields) (model.User, error) {
	u := newUser(uuid.NewString(), f)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, fullname, email, phone_number, role, educational_qualification, year_of_passing)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Fullname, u.Email, u.PhoneNumber, string(u.Role),
		u.Profile.EducationalQualification, u.Profile.YearOfPassing,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.User{}, &emailTakenError{email: f.Email}
	}
	if err != nil {
		return model.User{}, fmt.Errorf("createUser: %w", err)
	}
	return u, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "users", id)
}

// deleteByID removes one row from table. table is never user input.
func (p *Postgres) deleteByID(ctx context.Context, table, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*Postgres)(nil)
