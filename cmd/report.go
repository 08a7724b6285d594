package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"academic-registrar/internal/config"
	domain "academic-registrar/internal/domain/academic"
	"academic-registrar/internal/infrastructure/database"
	"academic-registrar/internal/infrastructure/repository"
	"academic-registrar/pkg/logger"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate reports over the academic records",
	Long:  "Render department, semester, at-risk and course reports as tables",
}

var reportDepartmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "Per-department counts of programs, courses, instructors and students",
	Run:   runReportDepartments,
}

var reportSemesterCmd = &cobra.Command{
	Use:   "semester <Spring|Summer|Fall> <year>",
	Short: "Enrollment summary for one term",
	Args:  cobra.ExactArgs(2),
	Run:   runReportSemester,
}

var reportAtRiskCmd = &cobra.Command{
	Use:   "at-risk",
	Short: "Students whose GPA is below the configured threshold",
	Run:   runReportAtRisk,
}

var reportCourseCmd = &cobra.Command{
	Use:   "course <course_id>",
	Short: "Per-term enrollment and grade statistics for one course",
	Args:  cobra.ExactArgs(1),
	Run:   runReportCourse,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportDepartmentsCmd)
	reportCmd.AddCommand(reportSemesterCmd)
	reportCmd.AddCommand(reportAtRiskCmd)
	reportCmd.AddCommand(reportCourseCmd)
}

func reportingRepo() *repository.ReportingRepository {
	cfg := config.Get()
	db, err := database.NewConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.Username,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	return repository.NewReportingRepository(db)
}

func runReportDepartments(cmd *cobra.Command, args []string) {
	repo := reportingRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := repo.DepartmentSummary(ctx)
	if err != nil {
		logger.Error("Department summary failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\nDepartment Summary")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Department", "Programs", "Courses", "Instructors", "Students"})

	for _, row := range rows {
		table.Append([]string{
			row.DepartmentName,
			strconv.Itoa(row.TotalPrograms),
			strconv.Itoa(row.TotalCourses),
			strconv.Itoa(row.TotalInstructors),
			strconv.Itoa(row.TotalStudents),
		})
	}

	table.Render()
}

func runReportSemester(cmd *cobra.Command, args []string) {
	semester := domain.Semester(args[0])
	if !semester.Valid() {
		color.Red("Invalid semester %q, expected Spring, Summer or Fall", args[0])
		os.Exit(1)
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		color.Red("Invalid year %q", args[1])
		os.Exit(1)
	}

	repo := reportingRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	row, err := repo.SemesterReport(ctx, semester, year)
	if err != nil {
		logger.Error("Semester report failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\n%s %d Enrollment Report", semester, year)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Courses Offered", "Unique Students", "Enrollments", "Capacity", "Enrolled", "Fill Rate"})
	table.Append([]string{
		strconv.Itoa(row.CoursesOffered),
		strconv.Itoa(row.UniqueStudents),
		strconv.Itoa(row.TotalEnrollments),
		strconv.Itoa(row.TotalCapacity),
		strconv.Itoa(row.TotalEnrolled),
		fmt.Sprintf("%.1f%%", row.OverallFillRate),
	})
	table.Render()
}

func runReportAtRisk(cmd *cobra.Command, args []string) {
	repo := reportingRepo()
	threshold := config.Get().Registrar.AtRiskGPAThreshold

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := repo.StudentsAtRisk(ctx, threshold)
	if err != nil {
		logger.Error("At-risk report failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\nStudents At Risk (GPA below %.2f)", threshold)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Student", "Email", "Program", "Completed", "GPA", "Failed"})

	for _, row := range rows {
		table.Append([]string{
			row.StudentName,
			row.Email,
			row.ProgramName,
			strconv.Itoa(row.CoursesCompleted),
			fmt.Sprintf("%.2f", row.GPA),
			strconv.Itoa(row.FailedCourses),
		})
	}

	table.Render()
	if len(rows) == 0 {
		color.Green("No students below the threshold.")
	}
}

func runReportCourse(cmd *cobra.Command, args []string) {
	courseID, err := uuid.Parse(args[0])
	if err != nil {
		color.Red("Invalid course ID %q", args[0])
		os.Exit(1)
	}

	repo := reportingRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := repo.CourseEnrollmentStats(ctx, courseID)
	if err != nil {
		logger.Error("Course stats failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\nCourse Enrollment Statistics")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Term", "Capacity", "Enrolled", "Fill Rate", "Enrollments", "A", "B", "C", "D/F"})

	for _, row := range rows {
		table.Append([]string{
			row.Term,
			strconv.Itoa(row.MaxStudents),
			strconv.Itoa(row.CurrentEnrollment),
			fmt.Sprintf("%.1f%%", row.FillRate),
			strconv.Itoa(row.TotalEnrollments),
			strconv.Itoa(row.GradeA),
			strconv.Itoa(row.GradeB),
			strconv.Itoa(row.GradeC),
			strconv.Itoa(row.GradeDF),
		})
	}

	table.Render()
}
