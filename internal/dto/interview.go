package dto

import (
	"time"

	"github.com/noah-isme/placement-api/internal/models"
)

// ScheduleInterviewRequest is the POST /interviews payload.
type ScheduleInterviewRequest struct {
	JobID        string   `json:"jobId" validate:"required,max=64"`
	DateTime     string   `json:"dateTime" validate:"required"`
	ApplicantIDs []string `json:"applicantIds" validate:"required,min=1,max=200,dive,required,max=64"`
}

// ScheduleInterviewResponse reports the created interview and whether notifications already went out.
type ScheduleInterviewResponse struct {
	Interview         *models.Interview       `json:"interview"`
	NotificationsSent bool                    `json:"notificationsSent"`
	AwaitingApproval  bool                    `json:"awaitingApproval"`
	Delivery          *models.DeliverySummary `json:"delivery,omitempty"`
}

// ApproveInterviewResponse reports the approved interview and the notification outcome.
type ApproveInterviewResponse struct {
	Interview *models.Interview       `json:"interview"`
	Delivery  *models.DeliverySummary `json:"delivery,omitempty"`
}

// AssignMeetingReferenceRequest is the PUT /interviews/:id/meeting-reference payload.
type AssignMeetingReferenceRequest struct {
	Reference string `json:"reference" validate:"required,max=500"`
}

// InterviewExportQuery mirrors GET /interviews/export filters.
type InterviewExportQuery struct {
	Format string
	From   time.Time
	To     time.Time
}

// ExportFile is a rendered schedule export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReminderRunResponse reports the outcome of one reminder tick.
type ReminderRunResponse struct {
	RanAt            time.Time `json:"ranAt"`
	Candidates       int       `json:"candidates"`
	Notified         int       `json:"notified"`
	Failed           int       `json:"failed"`
	MissingReference int       `json:"missingReference"`
}
