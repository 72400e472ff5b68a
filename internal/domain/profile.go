package domain

import "context"

type PersonalInfo struct {
	Name            string  `json:"name" validate:"max=100"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Phone           string  `json:"phone" validate:"omitempty,valid_phone"`
	Location        string  `json:"location" validate:"max=100"`
	CurrentPosition string  `json:"current_position" validate:"max=100"`
	Website         *string `json:"website,omitempty" validate:"omitempty,url"`
}

type WorkExperience struct {
	Title       string `json:"title" validate:"required,max=100"`
	Company     string `json:"company" validate:"required,max=100"`
	Location    string `json:"location" validate:"max=100"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description" validate:"max=2000"`
}

type Education struct {
	Institution string  `json:"institution" validate:"required,max=150"`
	Degree      string  `json:"degree" validate:"max=100"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	GPA         *string `json:"gpa,omitempty"`
}

// Profile is the auto-fill source data for one user. WorkExperience and
// Education keep the order the user entered them in.
type Profile struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"user_id" validate:"required"`
	PersonalInfo         PersonalInfo     `json:"personal_info"`
	WorkExperience       []WorkExperience `json:"work_experience" validate:"dive"`
	Education            []Education      `json:"education" validate:"dive"`
	Skills               []string         `json:"skills" validate:"dive,max=50"`
	CustomFields         map[string]any   `json:"custom_fields,omitempty"`
	CompletionPercentage int              `json:"completion_percentage" validate:"min=0,max=100"`
}

type ProfilePatch struct {
	PersonalInfo         *PersonalInfo     `json:"personal_info,omitempty" validate:"omitempty"`
	WorkExperience       *[]WorkExperience `json:"work_experience,omitempty" validate:"omitempty,dive"`
	Education            *[]Education      `json:"education,omitempty" validate:"omitempty,dive"`
	Skills               *[]string         `json:"skills,omitempty" validate:"omitempty,dive,max=50"`
	CustomFields         map[string]any    `json:"custom_fields,omitempty"`
	CompletionPercentage *int              `json:"completion_percentage,omitempty" validate:"omitempty,min=0,max=100"`
}

func (p ProfilePatch) Apply(profile *Profile) {
	if p.PersonalInfo != nil {
		profile.PersonalInfo = *p.PersonalInfo
	}
	if p.WorkExperience != nil {
		profile.WorkExperience = *p.WorkExperience
	}
	if p.Education != nil {
		profile.Education = *p.Education
	}
	if p.Skills != nil {
		profile.Skills = *p.Skills
	}
	if p.CustomFields != nil {
		profile.CustomFields = p.CustomFields
	}
	if p.CompletionPercentage != nil {
		profile.CompletionPercentage = *p.CompletionPercentage
	}
}

// IsEmpty reports whether the patch names no field at all.
func (p ProfilePatch) IsEmpty() bool {
	return p.PersonalInfo == nil && p.WorkExperience == nil && p.Education == nil &&
		p.Skills == nil && p.CustomFields == nil && p.CompletionPercentage == nil
}

// ToProfile builds a new profile for userID from the patch, used when an
// upsert finds no existing record.
func (p ProfilePatch) ToProfile(userID string) *Profile {
	profile := &Profile{
		UserID:         userID,
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
		Skills:         []string{},
	}
	p.Apply(profile)
	return profile
}

// DefaultProfileCompletion is the completion score of a profile seeded at registration.
const DefaultProfileCompletion = 20

// NewDefaultProfile seeds a profile from the registration data.
func NewDefaultProfile(u *User) *Profile {
	info := PersonalInfo{Name: u.Name, Email: u.Email}
	if u.Phone != nil {
		info.Phone = *u.Phone
	}
	if u.Location != nil {
		info.Location = *u.Location
	}
	if u.CurrentPosition != nil {
		info.CurrentPosition = *u.CurrentPosition
	}
	return &Profile{
		UserID:               u.ID,
		PersonalInfo:         info,
		WorkExperience:       []WorkExperience{},
		Education:            []Education{},
		Skills:               []string{},
		CompletionPercentage: DefaultProfileCompletion,
	}
}

// ProfileRepository allows one profile per user; a second Create for the
// same user fails with ErrDuplicateKey.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error)
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error)
}
