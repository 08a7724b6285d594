package handlers

import (
	"context"
	"net/http"
	"time"

	domain "academic-registrar/internal/domain/academic"
	serviceInterfaces "academic-registrar/internal/interfaces/service"
	"academic-registrar/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegistrarHandler handles student and offering administration requests
type RegistrarHandler struct {
	registrarService serviceInterfaces.RegistrarService
}

// NewRegistrarHandler creates a new registrar handler
func NewRegistrarHandler(registrarService serviceInterfaces.RegistrarService) *RegistrarHandler {
	return &RegistrarHandler{
		registrarService: registrarService,
	}
}

// CreateStudentRequest is the admission payload.
type CreateStudentRequest struct {
	FirstName      string    `json:"first_name" validate:"required,min=1,max=100"`
	LastName       string    `json:"last_name" validate:"required,min=1,max=100"`
	Email          string    `json:"email" validate:"required,email"`
	DateOfBirth    time.Time `json:"date_of_birth" validate:"required"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	ProgramID      uuid.UUID `json:"program_id" validate:"required"`
}

// CreateStudent handles POST /api/v1/students
func (h *RegistrarHandler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest

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

	student := &domain.Student{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		DateOfBirth:    req.DateOfBirth,
		EnrollmentDate: req.EnrollmentDate,
		ProgramID:      req.ProgramID,
	}

	created, err := h.registrarService.AddStudent(c.Request.Context(), student)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Student created successfully",
		Data:    created,
	})
}

// GetStudent handles GET /api/v1/students/:student_id
func (h *RegistrarHandler) GetStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	student, err := h.registrarService.GetStudent(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Student retrieved successfully",
		Data:    student,
	})
}

// DeleteStudent handles DELETE /api/v1/students/:student_id
func (h *RegistrarHandler) DeleteStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	if err := h.registrarService.DeleteStudent(c.Request.Context(), studentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Student deleted, enrollments removed and seats released",
	})
}

// CreateOfferingRequest is the offering creation payload.
type CreateOfferingRequest struct {
	CourseID     uuid.UUID `json:"course_id" validate:"required"`
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	Semester     string    `json:"semester" validate:"required,oneof=Spring Summer Fall"`
	Year         int       `json:"year" validate:"required,min=2000,max=2100"`
	Room         string    `json:"room"`
	MaxStudents  int       `json:"max_students" validate:"required,min=1"`
}

// CreateOffering handles POST /api/v1/offerings
func (h *RegistrarHandler) CreateOffering(c *gin.Context) {
	var req CreateOfferingRequest

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

	offering := &domain.CourseOffering{
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
		Semester:     domain.Semester(req.Semester),
		Year:         req.Year,
		Room:         req.Room,
		MaxStudents:  req.MaxStudents,
	}

	created, err := h.registrarService.CreateOffering(c.Request.Context(), offering)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Offering created successfully",
		Data:    created,
	})
}

// DeleteDepartment handles DELETE /api/v1/departments/:department_id
func (h *RegistrarHandler) DeleteDepartment(c *gin.Context) {
	h.restrictedDelete(c, "department_id", h.registrarService.DeleteDepartment, "Department deleted")
}

// DeleteCourse handles DELETE /api/v1/courses/:course_id
func (h *RegistrarHandler) DeleteCourse(c *gin.Context) {
	h.restrictedDelete(c, "course_id", h.registrarService.DeleteCourse, "Course deleted")
}

// DeleteInstructor handles DELETE /api/v1/instructors/:instructor_id
func (h *RegistrarHandler) DeleteInstructor(c *gin.Context) {
	h.restrictedDelete(c, "instructor_id", h.registrarService.DeleteInstructor, "Instructor deleted")
}

// DeleteProgram handles DELETE /api/v1/programs/:program_id
func (h *RegistrarHandler) DeleteProgram(c *gin.Context) {
	h.restrictedDelete(c, "program_id", h.registrarService.DeleteProgram, "Program deleted")
}

func (h *RegistrarHandler) restrictedDelete(
	c *gin.Context,
	param string,
	deleteFn func(ctx context.Context, id uuid.UUID) error,
	message string,
) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid ID format",
		})
		return
	}

	if err := deleteFn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: message,
	})
}
