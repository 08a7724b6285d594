package academic

import "github.com/google/uuid"

// Read models for the reporting queries. Field names match the SQL column
// aliases so gorm's Raw().Scan() can hydrate them directly.

type DepartmentSummaryRow struct {
	DepartmentName   string `json:"department_name"`
	TotalPrograms    int    `json:"total_programs"`
	TotalCourses     int    `json:"total_courses"`
	TotalInstructors int    `json:"total_instructors"`
	TotalStudents    int    `json:"total_students"`
}

type SemesterReportRow struct {
	CoursesOffered   int     `json:"courses_offered"`
	UniqueStudents   int     `json:"unique_students"`
	TotalEnrollments int     `json:"total_enrollments"`
	TotalCapacity    int     `json:"total_capacity"`
	TotalEnrolled    int     `json:"total_enrolled"`
	OverallFillRate  float64 `json:"overall_fill_rate"`
}

type AtRiskRow struct {
	StudentID        uuid.UUID `json:"student_id"`
	StudentName      string    `json:"student_name"`
	Email            string    `json:"email"`
	ProgramName      string    `json:"program_name"`
	CoursesCompleted int       `json:"courses_completed"`
	GPA              float64   `json:"gpa"`
	FailedCourses    int       `json:"failed_courses"`
}

type CourseTermStatsRow struct {
	Term              string  `json:"term"`
	MaxStudents       int     `json:"max_students"`
	CurrentEnrollment int     `json:"current_enrollment"`
	FillRate          float64 `json:"fill_rate"`
	TotalEnrollments  int     `json:"total_enrollments"`
	GradeA            int     `json:"grade_a"`
	GradeB            int     `json:"grade_b"`
	GradeC            int     `json:"grade_c"`
	GradeDF           int     `json:"grade_df"`
}
