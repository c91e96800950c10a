package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/middleware"
	"github.com/quizgate/quizgate-backend/internal/model"
	"github.com/quizgate/quizgate-backend/internal/response"
	"github.com/quizgate/quizgate-backend/internal/service"
	"github.com/quizgate/quizgate-backend/internal/validator"
)

// StudentPortalHandler handles student-facing endpoints: exam listing
// with eligibility, and the attempt lifecycle.
type StudentPortalHandler struct {
	attemptService *service.AttemptService
	examService    *service.ExamService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	attemptService *service.AttemptService,
	examService *service.ExamService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		attemptService: attemptService,
		examService:    examService,
	}
}

// ListExams godoc
// GET /api/v1/student/exams
// Returns all exams with the calling student's remaining attempts and,
// when a cooldown is running, the next eligible timestamp.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	views, err := h.examService.ListExamsFor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if views == nil {
		views = []model.ExamView{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": views})
}

// ListMyAttempts godoc
// GET /api/v1/student/attempts
func (h *StudentPortalHandler) ListMyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	views, err := h.attemptService.ListAttempts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if views == nil {
		views = []model.AttemptView{}
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": views})
}

// StartAttempt godoc
// POST /api/v1/student/attempts
// Starts a new attempt, or returns the attempt that is already open
// (idempotent). The body is optional: without an exam_id the most
// recently modified exam is attempted.
func (h *StudentPortalHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), claims.UserID, req.ExamID)
	if err != nil {
		failAttemptStart(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// SubmitAttempt godoc
// POST /api/v1/student/attempts/:attempt_id/submit
func (h *StudentPortalHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// failAttemptStart maps engine rejections to response codes. Anything
// unmatched is a storage fault and surfaces as a generic internal error.
func failAttemptStart(c *gin.Context, err error) {
	var cooldown *service.CooldownError
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, service.ErrNoExamAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrNoExamAvailable)
	case errors.Is(err, service.ErrMaxAttemptsExceeded):
		response.Fail(c, http.StatusConflict, response.ErrMaxAttemptsExceeded)
	case errors.As(err, &cooldown):
		response.FailWithFields(c, http.StatusTooManyRequests, response.ErrCooldownActive, map[string]string{
			"next_eligible_at": cooldown.NextEligibleAt.UTC().Format(time.RFC3339),
		})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
