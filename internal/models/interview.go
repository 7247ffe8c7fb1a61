package models

import (
	"time"

	"github.com/lib/pq"
)

// InterviewStatus captures the approval state of an interview.
type InterviewStatus string

const (
	InterviewStatusPending  InterviewStatus = "PENDING"
	InterviewStatusApproved InterviewStatus = "APPROVED"
	InterviewStatusRejected InterviewStatus = "REJECTED"
)

// Terminal reports whether no further transition is possible from s.
func (s InterviewStatus) Terminal() bool {
	return s == InterviewStatusApproved || s == InterviewStatusRejected
}

// Interview is a point-in-time meeting between a recruiter and one or more applicants for a job.
type Interview struct {
	ID               string          `db:"id" json:"id"`
	JobID            string          `db:"job_id" json:"jobId"`
	RecruiterID      string          `db:"recruiter_id" json:"recruiterId"`
	ApplicantIDs     pq.StringArray  `db:"applicant_ids" json:"applicantIds"`
	DateTime         time.Time       `db:"date_time" json:"dateTime"`
	Status           InterviewStatus `db:"status" json:"status"`
	CoordinatorID    *string         `db:"coordinator_id" json:"coordinatorId,omitempty"`
	MeetingReference *string         `db:"meeting_reference" json:"meetingReference,omitempty"`
	NotifiedImminent bool            `db:"notified_imminent" json:"notifiedImminent"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
	ApprovedAt       *time.Time      `db:"approved_at" json:"approvedAt,omitempty"`
}

// HasMeetingReference reports whether a non-empty meeting reference has been assigned.
func (i *Interview) HasMeetingReference() bool {
	return i.MeetingReference != nil && *i.MeetingReference != ""
}

// Participants returns applicants followed by the recruiter.
func (i *Interview) Participants() []string {
	ids := make([]string, 0, len(i.ApplicantIDs)+1)
	ids = append(ids, i.ApplicantIDs...)
	return append(ids, i.RecruiterID)
}

// ReminderWindow bounds the interview times a reminder tick selects: From inclusive, To exclusive.
type ReminderWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside the window.
func (w ReminderWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// InterviewRangeFilter constrains schedule exports.
type InterviewRangeFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// JobSummary is the read-only slice of a job posting used by notification templates.
type JobSummary struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Company     string `db:"company" json:"company"`
	RecruiterID string `db:"recruiter_id" json:"recruiterId"`
}
