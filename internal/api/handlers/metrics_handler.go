package handlers

import (
	"net/http"
	"strconv"

	domain "academic-registrar/internal/domain/academic"
	serviceInterfaces "academic-registrar/internal/interfaces/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MetricsHandler serves the derived academic metrics
type MetricsHandler struct {
	metricsService serviceInterfaces.MetricsService
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metricsService serviceInterfaces.MetricsService) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
	}
}

// GetGPA handles GET /api/v1/students/:student_id/gpa
func (h *MetricsHandler) GetGPA(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	gpa, err := h.metricsService.GPA(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "GPA computed successfully",
		Data:    map[string]interface{}{"student_id": studentID, "gpa": gpa},
	})
}

// GetTranscript handles GET /api/v1/students/:student_id/transcript
func (h *MetricsHandler) GetTranscript(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	transcript, err := h.metricsService.Transcript(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Transcript retrieved successfully",
		Data:    map[string]interface{}{"student_id": studentID, "transcript": transcript},
	})
}

// GetCredits handles GET /api/v1/students/:student_id/credits
func (h *MetricsHandler) GetCredits(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	credits, err := h.metricsService.CreditsCompleted(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Credits computed successfully",
		Data:    map[string]interface{}{"student_id": studentID, "credits_completed": credits},
	})
}

// GetProgramRank handles GET /api/v1/programs/:program_id/ranking
func (h *MetricsHandler) GetProgramRank(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("program_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid program ID format",
		})
		return
	}

	ranking, err := h.metricsService.ProgramRank(c.Request.Context(), programID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Program ranking computed successfully",
		Data:    map[string]interface{}{"program_id": programID, "ranking": ranking},
	})
}

// GetAvailability handles GET /api/v1/offerings/:offering_id/availability
func (h *MetricsHandler) GetAvailability(c *gin.Context) {
	offeringID, err := uuid.Parse(c.Param("offering_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid offering ID format",
		})
		return
	}

	availability, err := h.metricsService.Availability(c.Request.Context(), offeringID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Availability retrieved successfully",
		Data:    availability,
	})
}

// GetAvailableCourses handles GET /api/v1/offerings/available
func (h *MetricsHandler) GetAvailableCourses(c *gin.Context) {
	semester := domain.Semester(c.Query("semester"))
	if !semester.Valid() {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "semester must be one of Spring, Summer, Fall",
		})
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "year must be an integer",
		})
		return
	}

	listings, err := h.metricsService.AvailableCourses(c.Request.Context(), semester, year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Available offerings retrieved successfully",
		Data:    map[string]interface{}{"offerings": listings},
	})
}
