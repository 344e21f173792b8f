package models

import "time"

// Role identifies the kind of authenticated principal.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleIntern     Role = "intern"
)

// IsAdmin reports whether the role belongs to the admin principal kind.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Admin represents an administrator stored in the admins table.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name.
func (a Admin) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

// ApprovalStatus is the admission state of an intern.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether the status belongs to the vocabulary.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Intern represents a registered intern. IsApproved mirrors
// ApprovalStatus == approved on every write.
type Intern struct {
	ID                string         `db:"id" json:"id"`
	Email             string         `db:"email" json:"email"`
	MatricNumber      string         `db:"matric_number" json:"matric_number"`
	PasswordHash      string         `db:"password_hash" json:"-"`
	FirstName         string         `db:"first_name" json:"first_name"`
	LastName          string         `db:"last_name" json:"last_name"`
	PhoneNumber       *string        `db:"phone_number" json:"phone_number,omitempty"`
	Institution       *string        `db:"institution" json:"institution,omitempty"`
	Department        *string        `db:"department" json:"department,omitempty"`
	IsApproved        bool           `db:"is_approved" json:"is_approved"`
	ApprovalStatus    ApprovalStatus `db:"approval_status" json:"approval_status"`
	ApprovedBy        *string        `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt        *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason   *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	HasProfilePicture bool           `db:"has_profile_picture" json:"has_profile_picture"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`

	ProfilePicture *Attachment `db:"-" json:"-"`
}

// FullName joins first and last name.
func (i Intern) FullName() string {
	return joinName(i.FirstName, i.LastName)
}

// InternFilter captures filtering criteria for the intern directory.
type InternFilter struct {
	Status *ApprovalStatus
	Search string
	Page   PageRequest
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
