package model

// JobFields is the body of a create or update job request.
type JobFields struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Requirements    []string `json:"requirements" validate:"required,min=1,dive,required"`
	Salary          float64  `json:"salary" validate:"gt=0"`
	Location        string   `json:"location" validate:"required"`
	JobType         string   `json:"jobType" validate:"required"`
	ExperienceLevel string   `json:"experienceLevel" validate:"required"`
	Position        int      `json:"position" validate:"gt=0"`
	CompanyID       string   `json:"companyId" validate:"required"`
}

// FieldsOf extracts the editable fields of an existing job, e.g. to seed an
// admin edit form.
func FieldsOf(j Job) JobFields {
	return JobFields{
		Title:           j.Title,
		Description:     j.Description,
		Requirements:    append([]string(nil), j.Requirements...),
		Salary:          j.Salary,
		Location:        j.Location,
		JobType:         j.JobType,
		ExperienceLevel: j.ExperienceLevel,
		Position:        j.Position,
		CompanyID:       j.CompanyID,
	}
}

// CompanyFields is the body of a create company request.
type CompanyFields struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Website     string `json:"website" validate:"omitempty,url"`
	Location    string `json:"location"`
	Logo        string `json:"logo"`
	UserID      string `json:"userId"`
}

// UserFields is the body of a create user request.
type UserFields struct {
	Fullname                 string `json:"fullname" validate:"required"`
	Email                    string `json:"email" validate:"required,email"`
	PhoneNumber              string `json:"phoneNumber" validate:"required"`
	Password                 string `json:"password" validate:"required,min=6"`
	Role                     Role   `json:"role" validate:"required,oneof=student recruiter admin"`
	EducationalQualification string `json:"educationalQualification"`
	YearOfPassing            string `json:"yearOfPassing"`
}
