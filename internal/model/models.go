// Package model defines the records cached by the board client and the
// field sets sent to the authority when creating or updating them.
package model

import (
	"slices"
	"time"

	"jobmate/board-client/internal/approval"
)

// Kind names an entity collection.
type Kind string

const (
	KindJob     Kind = "job"
	KindCompany Kind = "company"
	KindUser    Kind = "user"
)

// Role values mirror the authority's user roles.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Entity is implemented by every record the store can hold.
type Entity[T any] interface {
	EntityID() string
	Clone() T
}

// CompanyRef is the company summary the authority embeds in each job.
type CompanyRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Application is a single applicant entry nested under a Job.
type Application struct {
	ApplicantID string    `json:"applicant"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Job is a listing as returned by the authority.
type Job struct {
	ID              string        `json:"_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Requirements    []string      `json:"requirements,omitempty"`
	Location        string        `json:"location"`
	Salary          float64       `json:"salary"`
	JobType         string        `json:"jobType"`
	ExperienceLevel string        `json:"experienceLevel"`
	Position        int           `json:"position"`
	CompanyID       string        `json:"companyId,omitempty"`
	Company         *CompanyRef   `json:"company,omitempty"`
	CreatedBy       string        `json:"created_by,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	Applications    []Application `json:"applications"`
}

func (j Job) EntityID() string { return j.ID }

// Clone returns a deep copy so callers never share slices with the store.
func (j Job) Clone() Job {
	cp := j
	cp.Requirements = slices.Clone(j.Requirements)
	cp.Applications = slices.Clone(j.Applications)
	if j.Company != nil {
		c := *j.Company
		cp.Company = &c
	}
	return cp
}

// CompanyName returns the embedded company's name, or "" when the job
// carries no company reference.
func (j Job) CompanyName() string {
	if j.Company == nil {
		return ""
	}
	return j.Company.Name
}

// ApplicantCount is the number surfaced as "applicants".
func (j Job) ApplicantCount() int { return len(j.Applications) }

// HasApplicant reports whether userID already applied.
func (j Job) HasApplicant(userID string) bool {
	if userID == "" {
		return false
	}
	for _, a := range j.Applications {
		if a.ApplicantID == userID {
			return true
		}
	}
	return false
}

// Company is an employer record.
type Company struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Website     string          `json:"website,omitempty"`
	Location    string          `json:"location,omitempty"`
	Logo        string          `json:"logo,omitempty"`
	Status      approval.Status `json:"status"`
	UserID      string          `json:"userId,omitempty"`
}

func (c Company) EntityID() string { return c.ID }
func (c Company) Clone() Company   { return c }

// Profile holds the user's public profile fields.
type Profile struct {
	Bio                      string   `json:"bio,omitempty"`
	Skills                   []string `json:"skills,omitempty"`
	Resume                   string   `json:"resume,omitempty"`
	ResumeOriginalName       string   `json:"resumeOriginalName,omitempty"`
	EducationalQualification string   `json:"educationalQualification,omitempty"`
	YearOfPassing            string   `json:"yearOfPassing,omitempty"`
}

// User is an account record.
type User struct {
	ID          string  `json:"_id"`
	Fullname    string  `json:"fullname"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber,omitempty"`
	Role        Role    `json:"role"`
	Profile     Profile `json:"profile"`
}

func (u User) EntityID() string { return u.ID }

func (u User) Clone() User {
	cp := u
	cp.Profile.Skills = slices.Clone(u.Profile.Skills)
	return cp
}

// DaysAgo returns the number of whole days between created and now;
// 0 means "today".
func DaysAgo(created, now time.Time) int {
	if created.IsZero() || now.Before(created) {
		return 0
	}
	return int(now.Sub(created) / (24 * time.Hour))
}
