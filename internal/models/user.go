package models

import "time"

// UserRole represents the closed set of account roles.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User represents an account stored in the users table. Aura is the
// mutable leaderboard score; specialty, verified and hourly_rate carry
// teacher semantics but live on the shared row.
type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Username        string     `db:"username" json:"username"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            UserRole   `db:"role" json:"role"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Birthday        *time.Time `db:"birthday" json:"birthday,omitempty"`
	Aura            int        `db:"aura" json:"aura"`
	Specialty       *string    `db:"specialty" json:"specialty,omitempty"`
	ExperienceYears int        `db:"experience_years" json:"experience_years"`
	Verified        bool       `db:"verified" json:"verified"`
	HourlyRate      *float64   `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Active          bool       `db:"active" json:"active"`
	JoinedAt        time.Time  `db:"joined_at" json:"joined_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// StudentFilter captures the search criteria for listing students.
type StudentFilter struct {
	// Search matches case-insensitively against first name, last name
	// or email.
	Search string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
