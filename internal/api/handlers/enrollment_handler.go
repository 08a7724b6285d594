package handlers

import (
	"errors"
	"net/http"

	domain "academic-registrar/internal/domain/academic"
	serviceInterfaces "academic-registrar/internal/interfaces/service"
	"academic-registrar/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
// Contention gets 503 so load balancers and clients know to retry.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict, "Offering is full"
	case errors.Is(err, domain.ErrDuplicateEnrollment):
		return http.StatusConflict, "Student is already enrolled in this offering"
	case errors.Is(err, domain.ErrGradeLocked):
		return http.StatusConflict, "Enrollment already has a final grade"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "Enrollment is in a terminal state"
	case errors.Is(err, domain.ErrReferentialViolation):
		return http.StatusConflict, "Dependent records exist"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, domain.ErrInvalidGrade):
		return http.StatusBadRequest, "Invalid grade"
	case errors.Is(err, domain.ErrContentionTimeout):
		return http.StatusServiceUnavailable, "Operation timed out under contention, retry"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusForError(err)
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
		Errors:  err.Error(),
	})
}

// EnrollmentHandler handles enrollment lifecycle HTTP requests
type EnrollmentHandler struct {
	enrollmentService serviceInterfaces.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentService serviceInterfaces.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
	}
}

// Enroll handles POST /api/v1/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req serviceInterfaces.EnrollRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		validationErrors := validator.FormatValidationError(err)
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validationErrors,
		})
		return
	}

	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	response, err := h.enrollmentService.Enroll(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Enrollment created",
		Data:    response,
	})
}

// SetGrade handles POST /api/v1/enrollments/:enrollment_id/grade
func (h *EnrollmentHandler) SetGrade(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid enrollment ID format",
		})
		return
	}

	type gradeBody struct {
		Grade string `json:"grade" validate:"required,oneof=A B C D F P"`
	}
	var body gradeBody

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	if err := validator.ValidateStruct(&body); err != nil {
		validationErrors := validator.FormatValidationError(err)
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validationErrors,
		})
		return
	}

	enrollment, err := h.enrollmentService.SetGrade(c.Request.Context(), enrollmentID, domain.Grade(body.Grade))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Grade recorded",
		Data:    enrollment,
	})
}

// Withdraw handles POST /api/v1/enrollments/:enrollment_id/withdraw
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid enrollment ID format",
		})
		return
	}

	enrollment, err := h.enrollmentService.Withdraw(c.Request.Context(), enrollmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Enrollment withdrawn",
		Data:    enrollment,
	})
}

// GetStudentEnrollments handles GET /api/v1/students/:student_id/enrollments
func (h *EnrollmentHandler) GetStudentEnrollments(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	enrollments, err := h.enrollmentService.GetStudentEnrollments(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Enrollments retrieved successfully",
		Data:    map[string]interface{}{"enrollments": enrollments},
	})
}
