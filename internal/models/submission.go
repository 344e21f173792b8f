package models

import "time"

// LogbookStatus is the grading state of a weekly logbook.
type LogbookStatus string

const (
	LogbookPending LogbookStatus = "pending"
	LogbookGraded  LogbookStatus = "graded"
)

// LogbookGrades lists the accepted letter grades.
var LogbookGrades = []string{"A", "B", "C", "D", "E", "F"}

// Logbook is a weekly report submitted by an intern.
type Logbook struct {
	ID             string        `db:"id" json:"id"`
	InternID       string        `db:"intern_id" json:"intern_id"`
	InternName     string        `db:"intern_name" json:"intern_name,omitempty"`
	Week           string        `db:"week" json:"week"`
	ISOYear        int           `db:"iso_year" json:"-"`
	ISOWeek        int           `db:"iso_week" json:"-"`
	Activities     string        `db:"activities" json:"activities"`
	Challenges     *string       `db:"challenges" json:"challenges,omitempty"`
	Learnings      *string       `db:"learnings" json:"learnings,omitempty"`
	HasAttachment  bool          `db:"has_attachment" json:"has_attachment"`
	AttachmentName *string       `db:"attachment_name" json:"attachment_name,omitempty"`
	Status         LogbookStatus `db:"status" json:"status"`
	Grade          *string       `db:"grade" json:"grade,omitempty"`
	Feedback       *string       `db:"feedback" json:"feedback,omitempty"`
	GradedBy       *string       `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt       *time.Time    `db:"graded_at" json:"graded_at,omitempty"`
	SubmittedAt    time.Time     `db:"submitted_at" json:"submitted_at"`

	Attachment *Attachment `db:"-" json:"-"`
}

// LeaveStatus is the review state of a leave request. The pending value is
// capitalised as stored.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest asks for time off between two dates inclusive.
type LeaveRequest struct {
	ID             string      `db:"id" json:"id"`
	InternID       string      `db:"intern_id" json:"intern_id"`
	InternName     string      `db:"intern_name" json:"intern_name,omitempty"`
	LeaveType      string      `db:"leave_type" json:"leave_type"`
	Reason         string      `db:"reason" json:"reason"`
	StartDate      time.Time   `db:"start_date" json:"start_date"`
	EndDate        time.Time   `db:"end_date" json:"end_date"`
	HasAttachment  bool        `db:"has_attachment" json:"has_attachment"`
	AttachmentName *string     `db:"attachment_name" json:"attachment_name,omitempty"`
	Status         LeaveStatus `db:"status" json:"status"`
	ReviewNote     *string     `db:"review_note" json:"review_note,omitempty"`
	ReviewedBy     *string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	SubmittedAt    time.Time   `db:"submitted_at" json:"submitted_at"`

	Attachment *Attachment `db:"-" json:"-"`
}

// ComplaintStatus is the review state of a complaint or suggestion.
type ComplaintStatus string

const (
	ComplaintPending   ComplaintStatus = "pending"
	ComplaintResolved  ComplaintStatus = "resolved"
	ComplaintDismissed ComplaintStatus = "dismissed"
)

// Complaint is a complaint or suggestion raised by an intern.
type Complaint struct {
	ID          string          `db:"id" json:"id"`
	InternID    string          `db:"intern_id" json:"intern_id"`
	InternName  string          `db:"intern_name" json:"intern_name,omitempty"`
	Category    string          `db:"category" json:"category"`
	Subject     string          `db:"subject" json:"subject"`
	Body        string          `db:"body" json:"body"`
	Status      ComplaintStatus `db:"status" json:"status"`
	Response    *string         `db:"response" json:"response,omitempty"`
	ReviewedBy  *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submitted_at"`
}

// ProjectStatusSubmitted is the only state of a project upload.
const ProjectStatusSubmitted = "submitted"

// ProjectUpload is a project file handed in by an intern.
type ProjectUpload struct {
	ID          string    `db:"id" json:"id"`
	InternID    string    `db:"intern_id" json:"intern_id"`
	InternName  string    `db:"intern_name" json:"intern_name,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Filename    string    `db:"filename" json:"filename"`
	MimeType    string    `db:"mime_type" json:"mime_type"`
	Size        int64     `db:"size" json:"size"`
	Status      string    `db:"status" json:"status"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`

	File *Attachment `db:"-" json:"-"`
}

// SubmissionFilter narrows submission listings. A nil InternID lists every
// intern's rows.
type SubmissionFilter struct {
	InternID *string
	Status   string
	Page     PageRequest
}
