package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles. RoleDeactivated is a terminal state, not a
// registerable role.
const (
	RolePatient     Role = "patient"
	RoleTherapist   Role = "therapist"
	RoleAdmin       Role = "admin"
	RoleDeactivated Role = "deactivated"
)

// ParseRole maps a submitted role string onto the closed set of active roles.
// Deactivated is deliberately excluded: accounts only reach it through the
// admin deactivation flow.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient:
		return RolePatient, true
	case RoleTherapist:
		return RoleTherapist, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// DashboardPath returns the post-login landing path for the role.
func (r Role) DashboardPath() string {
	switch r {
	case RoleTherapist:
		return "/therapist/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/patient/dashboard"
	}
}

// Account represents a user in the system. One table holds patients,
// therapists and admins, distinguished by Role.
type Account struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password;type:varchar(255);not null" json:"-"` // Never expose this via JSON
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`

	// NHSNumber is the stable health identifier linking the account to its
	// treatment history, independent of the row id.
	NHSNumber string `gorm:"column:nhs_number;type:varchar(20);uniqueIndex;not null" json:"nhsNumber"`

	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Surname     string    `gorm:"type:varchar(100);not null" json:"surname"`
	DateOfBirth time.Time `gorm:"column:dob;type:date" json:"dateOfBirth"`
	Address     string    `gorm:"type:text" json:"address"`
	Email       string    `gorm:"type:varchar(200)" json:"email"`

	// Workflow fields: a nullable free-text illness description and the
	// attended flag ("has an active, therapist-assigned plan").
	Illness  *string `gorm:"type:text" json:"illness,omitempty"`
	Attended bool    `gorm:"not null;default:false" json:"attended"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName pins the historical table name.
func (Account) TableName() string { return "patients" }

func (a *Account) IsDeactivated() bool {
	return a.Role == RoleDeactivated
}

func (a *Account) IsPatient() bool {
	return a.Role == RolePatient
}

func (a *Account) IsTherapist() bool {
	return a.Role == RoleTherapist
}
