package dto

// GradeLogbookRequest grades a pending logbook.
type GradeLogbookRequest struct {
	Grade    string `json:"grade" validate:"required,oneof=A B C D E F"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

// ReviewLeaveRequest approves or rejects a pending leave request.
type ReviewLeaveRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}

// ReviewComplaintRequest resolves or dismisses a pending complaint.
type ReviewComplaintRequest struct {
	Status   string `json:"status" validate:"required,oneof=resolved dismissed"`
	Response string `json:"response" validate:"omitempty,max=5000"`
}
