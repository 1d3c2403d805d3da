package application

import "time"

// Status is the lifecycle state of an application. Pending is the initial
// state; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ValidDecision reports whether s is an acceptable review outcome.
func ValidDecision(s Status) bool {
	return s == StatusApproved || s == StatusRejected
}

// Application is a citizen's submission against a scheme. FormData is an
// opaque blob; its structure is not validated here.
type Application struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SchemeID     string    `json:"scheme_id"`
	FormData     string    `json:"form_data"`
	Status       Status    `json:"status"`
	AdminRemarks string    `json:"admin_remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ReviewedAt   time.Time `json:"reviewed_at,omitempty"`
}
