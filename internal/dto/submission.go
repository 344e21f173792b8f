package dto

import "github.com/noah-isme/intern-portal-api/internal/models"

// SubmitLogbookRequest is a weekly logbook. Week uses ISO notation
// (2026-W09) and defaults to the current week.
type SubmitLogbookRequest struct {
	Week       string             `json:"week" form:"week" validate:"omitempty,iso_week"`
	Activities string             `json:"activities" form:"activities" validate:"required,max=10000"`
	Challenges string             `json:"challenges" form:"challenges" validate:"omitempty,max=5000"`
	Learnings  string             `json:"learnings" form:"learnings" validate:"omitempty,max=5000"`
	Attachment *models.Attachment `json:"-" form:"-"`
}

// SubmitLeaveRequest asks for leave between two inclusive dates (YYYY-MM-DD).
type SubmitLeaveRequest struct {
	LeaveType  string             `json:"leave_type" form:"leave_type" validate:"required,oneof=sick personal academic emergency other"`
	Reason     string             `json:"reason" form:"reason" validate:"required,max=2000"`
	StartDate  string             `json:"start_date" form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string             `json:"end_date" form:"end_date" validate:"required,datetime=2006-01-02"`
	Attachment *models.Attachment `json:"-" form:"-"`
}

// SubmitComplaintRequest raises a complaint or suggestion.
type SubmitComplaintRequest struct {
	Category string `json:"category" validate:"required,oneof=complaint suggestion"`
	Subject  string `json:"subject" validate:"required,max=255"`
	Body     string `json:"body" validate:"required,max=5000"`
}

// UploadProjectRequest hands in a project file. The file is mandatory.
type UploadProjectRequest struct {
	Title       string             `form:"title" validate:"required,max=255"`
	Description string             `form:"description" validate:"omitempty,max=2000"`
	File        *models.Attachment `form:"-" validate:"required"`
}
