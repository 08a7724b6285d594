package router

import (
	"academic-registrar/internal/api/handlers"
	"academic-registrar/internal/api/middleware"
	"academic-registrar/internal/config"
	"academic-registrar/internal/infrastructure/cache"
	"academic-registrar/internal/infrastructure/repository"
	interfaces "academic-registrar/internal/interfaces/infrastructure"
	"academic-registrar/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires the repositories, services and handlers onto a gin engine.
// The cache is read-side only; every seat-mutating path goes straight to the
// database repositories.
func NewRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(cors.Default())
	r.Use(gin.Recovery())

	cfg := config.Get()
	cacheService := cache.NewRedisCacheWithConfig(&cfg.Cache)

	departmentRepo := repository.NewDepartmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	var idempotencyRepo interfaces.IdempotencyRepository = repository.NewRedisIdempotencyRepository(cacheService.GetClient())

	enrollmentService := service.NewEnrollmentService(
		studentRepo,
		offeringRepo,
		enrollmentRepo,
		idempotencyRepo,
		cacheService,
	)
	metricsService := service.NewMetricsService(
		studentRepo,
		offeringRepo,
		enrollmentRepo,
		cacheService,
	)
	registrarService := service.NewRegistrarService(
		departmentRepo,
		programRepo,
		studentRepo,
		courseRepo,
		instructorRepo,
		offeringRepo,
		cacheService,
	)

	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	metricsHandler := handlers.NewMetricsHandler(metricsService)
	registrarHandler := handlers.NewRegistrarHandler(registrarService)
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/live", healthHandler.LivenessCheck)

	v1 := r.Group("/api/v1")
	{
		enrollments := v1.Group("/enrollments")
		{
			enrollments.POST("", enrollmentHandler.Enroll)
			enrollments.POST("/:enrollment_id/grade", enrollmentHandler.SetGrade)
			enrollments.POST("/:enrollment_id/withdraw", enrollmentHandler.Withdraw)
		}

		students := v1.Group("/students")
		{
			students.POST("", registrarHandler.CreateStudent)
			students.GET("/:student_id", registrarHandler.GetStudent)
			students.DELETE("/:student_id", registrarHandler.DeleteStudent)
			students.GET("/:student_id/enrollments", enrollmentHandler.GetStudentEnrollments)
			students.GET("/:student_id/gpa", metricsHandler.GetGPA)
			students.GET("/:student_id/transcript", metricsHandler.GetTranscript)
			students.GET("/:student_id/credits", metricsHandler.GetCredits)
		}

		programs := v1.Group("/programs")
		{
			programs.GET("/:program_id/ranking", metricsHandler.GetProgramRank)
			programs.DELETE("/:program_id", registrarHandler.DeleteProgram)
		}

		offerings := v1.Group("/offerings")
		{
			offerings.POST("", registrarHandler.CreateOffering)
			offerings.GET("/available", metricsHandler.GetAvailableCourses)
			offerings.GET("/:offering_id/availability", metricsHandler.GetAvailability)
		}

		v1.DELETE("/departments/:department_id", registrarHandler.DeleteDepartment)
		v1.DELETE("/courses/:course_id", registrarHandler.DeleteCourse)
		v1.DELETE("/instructors/:instructor_id", registrarHandler.DeleteInstructor)
	}

	return r
}
