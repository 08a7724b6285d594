package cmd

import (
	"fmt"
	"os"
	"time"

	"academic-registrar/internal/config"
	"academic-registrar/pkg/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	seedStudents  int
	seedOfferings int
	seedCapacity  int
)

// seedCmd loads a small but complete data set: one department tree, a
// cohort of students and a term of offerings, all with known UUIDs printed
// so the loadtest command can reuse them.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample academic data",
	Long: `Populate the database with a department, programs, instructors,
courses, a cohort of students and one term of course offerings.`,
	Run: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedStudents, "students", 200, "number of students to create")
	seedCmd.Flags().IntVar(&seedOfferings, "offerings", 10, "number of course offerings to create")
	seedCmd.Flags().IntVar(&seedCapacity, "capacity", 30, "max students per offering")
}

type seedRow map[string]interface{}

func runSeed(cmd *cobra.Command, args []string) {
	cfg := config.Get()
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Username,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	start := time.Now()

	departmentID := uuid.New()
	if _, err := db.NamedExec(
		`INSERT INTO departments (department_id, name, building, head)
		 VALUES (:department_id, :name, :building, :head)`,
		seedRow{"department_id": departmentID, "name": "Computer Science", "building": "Turing Hall", "head": "Prof. B. Kernighan"},
	); err != nil {
		logger.Error("Failed to seed department: %v", err)
		os.Exit(1)
	}

	programID := uuid.New()
	if _, err := db.NamedExec(
		`INSERT INTO programs (program_id, name, code, department_id, duration_years, total_credits, level)
		 VALUES (:program_id, :name, :code, :department_id, :duration_years, :total_credits, :level)`,
		seedRow{"program_id": programID, "name": "BSc Computer Science", "code": "BSCS",
			"department_id": departmentID, "duration_years": 3, "total_credits": 180, "level": 6},
	); err != nil {
		logger.Error("Failed to seed program: %v", err)
		os.Exit(1)
	}

	instructorID := uuid.New()
	if _, err := db.NamedExec(
		`INSERT INTO instructors (instructor_id, first_name, last_name, email, department_id, hire_date, title, status)
		 VALUES (:instructor_id, :first_name, :last_name, :email, :department_id, :hire_date, :title, :status)`,
		seedRow{"instructor_id": instructorID, "first_name": "Grace", "last_name": "Hoppler",
			"email": "g.hoppler@example.edu", "department_id": departmentID,
			"hire_date": time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC), "title": "Senior Lecturer", "status": "Active"},
	); err != nil {
		logger.Error("Failed to seed instructor: %v", err)
		os.Exit(1)
	}

	courseRows := make([]seedRow, 0, seedOfferings)
	courseIDs := make([]uuid.UUID, 0, seedOfferings)
	for i := 0; i < seedOfferings; i++ {
		courseID := uuid.New()
		courseIDs = append(courseIDs, courseID)
		courseRows = append(courseRows, seedRow{
			"course_id":     courseID,
			"code":          fmt.Sprintf("CS%03d", 100+i),
			"name":          fmt.Sprintf("Core Topic %d", i+1),
			"credits":       10,
			"level":         6,
			"department_id": departmentID,
		})
	}
	if _, err := db.NamedExec(
		`INSERT INTO courses (course_id, code, name, credits, level, department_id)
		 VALUES (:course_id, :code, :name, :credits, :level, :department_id)`,
		courseRows,
	); err != nil {
		logger.Error("Failed to seed courses: %v", err)
		os.Exit(1)
	}

	studentRows := make([]seedRow, 0, seedStudents)
	for i := 0; i < seedStudents; i++ {
		studentRows = append(studentRows, seedRow{
			"student_id":      uuid.New(),
			"first_name":      "Student",
			"last_name":       fmt.Sprintf("Number%04d", i+1),
			"email":           fmt.Sprintf("student%04d@example.edu", i+1),
			"date_of_birth":   time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%365),
			"enrollment_date": time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			"program_id":      programID,
			"status":          "Active",
		})
	}
	if _, err := db.NamedExec(
		`INSERT INTO students (student_id, first_name, last_name, email, date_of_birth, enrollment_date, program_id, status)
		 VALUES (:student_id, :first_name, :last_name, :email, :date_of_birth, :enrollment_date, :program_id, :status)`,
		studentRows,
	); err != nil {
		logger.Error("Failed to seed students: %v", err)
		os.Exit(1)
	}

	offeringRows := make([]seedRow, 0, seedOfferings)
	for i, courseID := range courseIDs {
		offeringID := uuid.New()
		offeringRows = append(offeringRows, seedRow{
			"offering_id":        offeringID,
			"course_id":          courseID,
			"instructor_id":      instructorID,
			"semester":           "Fall",
			"year":               2025,
			"room":               fmt.Sprintf("TH-%d", 100+i),
			"max_students":       seedCapacity,
			"current_enrollment": 0,
		})
		fmt.Printf("offering %s  course CS%03d\n", offeringID, 100+i)
	}
	if _, err := db.NamedExec(
		`INSERT INTO course_offerings (offering_id, course_id, instructor_id, semester, year, room, max_students, current_enrollment)
		 VALUES (:offering_id, :course_id, :instructor_id, :semester, :year, :room, :max_students, :current_enrollment)`,
		offeringRows,
	); err != nil {
		logger.Error("Failed to seed offerings: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d students, %d courses and %d offerings in %v\n",
		seedStudents, seedOfferings, seedOfferings, time.Since(start))
}
