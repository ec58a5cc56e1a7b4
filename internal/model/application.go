package model

import (
	"fmt"
	"time"
)

// Status is the application tracking state. Values mirror the status
// column in the applications table.
type Status string

const (
	StatusNotApplied    Status = "not_applied"
	StatusApplied       Status = "applied"
	StatusInterview     Status = "interview"
	StatusRejected      Status = "rejected"
	StatusOffer         Status = "offer"
	StatusNotInterested Status = "not_interested"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNotApplied, StatusApplied, StatusInterview, StatusRejected, StatusOffer, StatusNotInterested:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Application tracks the candidate's progress on one posting. At most one
// exists per posting; it is created lazily on the first status-changing
// action.
type Application struct {
	ID              int64
	PostingID       int64
	Status          Status
	AppliedDate     *time.Time
	RejectionReason string
	Notes           string
	CoverLetter     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Interview is one scheduled interview for an application.
type Interview struct {
	ID            int64
	ApplicationID int64
	ScheduledDate time.Time
	Type          string // phone, video, onsite
	Interviewer   string
	Notes         string
	Outcome       string // passed, rejected, waiting
	CreatedAt     time.Time
}
