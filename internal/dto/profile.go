package dto

import "github.com/plataform/plataform-api/internal/models"

// PublicProfile is the subset visible to anyone. It deliberately omits
// email, role and rate fields.
type PublicProfile struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	Aura        int     `json:"aura"`
	Specialty   *string `json:"specialty,omitempty"`
	MemberSince string  `json:"member_since"`
}

// FullProfile is returned only when the caller is the subject.
type FullProfile struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Role            models.UserRole `json:"role"`
	Aura            int             `json:"aura"`
	Specialty       *string         `json:"specialty,omitempty"`
	ExperienceYears int             `json:"experience_years"`
	Verified        bool            `json:"verified"`
	HourlyRate      *float64        `json:"hourly_rate,omitempty"`
	Birthday        *string         `json:"birthday,omitempty"`
	Ranking         *int            `json:"ranking,omitempty"`
	MemberSince     string          `json:"member_since"`
}
