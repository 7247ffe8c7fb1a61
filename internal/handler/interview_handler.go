package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type interviewService interface {
	Schedule(ctx context.Context, req dto.ScheduleInterviewRequest, actor models.Actor) (*dto.ScheduleInterviewResponse, error)
	ListPending(ctx context.Context, actor models.Actor) ([]models.Interview, error)
	Approve(ctx context.Context, id string, actor models.Actor) (*dto.ApproveInterviewResponse, error)
	AssignMeetingReference(ctx context.Context, id string, req dto.AssignMeetingReferenceRequest, actor models.Actor) (*models.Interview, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Interview, error)
	Export(ctx context.Context, query dto.InterviewExportQuery, actor models.Actor) (*dto.ExportFile, error)
}

type reminderRunner interface {
	Tick(ctx context.Context, now time.Time) (*dto.ReminderRunResponse, error)
}

// InterviewHandler exposes interview scheduling endpoints.
type InterviewHandler struct {
	service   interviewService
	reminders reminderRunner
	now       func() time.Time
}

// NewInterviewHandler constructs an interview handler. reminders may be nil.
func NewInterviewHandler(service interviewService, reminders reminderRunner) *InterviewHandler {
	return &InterviewHandler{service: service, reminders: reminders, now: time.Now}
}

// Schedule godoc
// @Summary Schedule an interview
// @Description Coordinators create approved interviews and notify applicants at once; recruiters create pending interviews.
// @Tags Interviews
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleInterviewRequest true "Interview payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interviews [post]
func (h *InterviewHandler) Schedule(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.Schedule(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListPending godoc
// @Summary List interviews awaiting approval
// @Tags Interviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /interviews/pending [get]
func (h *InterviewHandler) ListPending(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Approve godoc
// @Summary Approve a pending interview
// @Description Notifies every applicant and the recruiter. Delivery failures are reported in the payload, not as errors.
// @Tags Interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interviews/{id}/approve [post]
func (h *InterviewHandler) Approve(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AssignMeetingReference godoc
// @Summary Set the meeting link or location of an approved interview
// @Tags Interviews
// @Accept json
// @Produce json
// @Param id path string true "Interview ID"
// @Param payload body dto.AssignMeetingReferenceRequest true "Meeting reference"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interviews/{id}/meeting-reference [put]
func (h *InterviewHandler) AssignMeetingReference(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AssignMeetingReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.AssignMeetingReference(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ListMine godoc
// @Summary List my approved interviews
// @Tags Interviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /interviews/mine [get]
func (h *InterviewHandler) ListMine(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Export godoc
// @Summary Export the approved interview schedule
// @Tags Interviews
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /interviews/export [get]
func (h *InterviewHandler) Export(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "interview service not configured"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.InterviewExportQuery{Format: c.Query("format")}
	var err error
	if query.From, err = parseQueryTime(c.Query("from")); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from must be RFC3339 or YYYY-MM-DD"))
		return
	}
	if query.To, err = parseQueryTime(c.Query("to")); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "to must be RFC3339 or YYYY-MM-DD"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

// RunReminders godoc
// @Summary Run one reminder tick now
// @Description Operational endpoint; the tick is idempotent and never re-sends a reminder.
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /internal/reminders/run [post]
func (h *InterviewHandler) RunReminders(c *gin.Context) {
	if h.reminders == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "interview reminders are disabled"))
		return
	}
	report, err := h.reminders.Tick(c.Request.Context(), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

func parseQueryTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
