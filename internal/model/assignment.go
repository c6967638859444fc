package model

import "time"

// Status is the lifecycle state of an assignment.
//
// The state machine is tiny and one-directional:
//
//	(none) --submit--> Pending --decide--> Accepted | Rejected
//
// Accepted and Rejected are terminal: no task edit or status change is
// permitted afterwards, and a re-submit against a terminal record is rejected
// outright.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Valid reports whether s is one of the three known states. The store checks
// it when scanning rows so a corrupted status value never reaches the
// service layer.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Assignment is one task submitted by a user to one admin.
//
// SubmitterID and AdminID are weak references (by ID) into the users table,
// not live object references. The uniqueness key is the triple
// (SubmitterID, Task, AdminID): a submitter has at most one live assignment
// per (task, admin) pair, enforced by a UNIQUE index in the store.
type Assignment struct {
	ID          string    `json:"id"          db:"id"`
	SubmitterID string    `json:"submitterId" db:"submitter_id"`
	AdminID     string    `json:"adminId"     db:"admin_id"`
	Task        string    `json:"task"        db:"task"`
	Status      Status    `json:"status"      db:"status"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// AssignmentWithSubmitter is the raw join row the store returns for an
// admin's listing: the assignment plus the submitter's username. The service
// layer turns it into an AssignmentView.
type AssignmentWithSubmitter struct {
	Assignment
	SubmitterUsername string `db:"submitter_username"`
}

// AssignmentView is the admin-facing read model for GET /assignments.
//
// It joins the submitter's username onto the assignment and carries
// timestamps pre-formatted for display (dd/mm/yyyy, 12-hour clock) instead of
// RFC 3339 — the listing is consumed directly by the admin dashboard.
type AssignmentView struct {
	TaskID    string `json:"TaskId"`
	Task      string `json:"task"`
	Username  string `json:"userName"` // submitter's username
	Status    Status `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
