package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.ReportingRepository = (*ReportingRepository)(nil)

// ReportingRepository runs the aggregate reports as raw SQL. These are pure
// reads over settled state and tolerate running outside the serializable
// write path.
type ReportingRepository struct {
	db *gorm.DB
}

func NewReportingRepository(db *gorm.DB) *ReportingRepository {
	return &ReportingRepository{db: db}
}

func (r *ReportingRepository) DepartmentSummary(ctx context.Context) ([]*domain.DepartmentSummaryRow, error) {
	var rows []*domain.DepartmentSummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			d.name AS department_name,
			COUNT(DISTINCT p.program_id) AS total_programs,
			COUNT(DISTINCT c.course_id) AS total_courses,
			COUNT(DISTINCT i.instructor_id) AS total_instructors,
			COUNT(DISTINCT s.student_id) AS total_students
		FROM departments d
		LEFT JOIN programs p ON d.department_id = p.department_id
		LEFT JOIN courses c ON d.department_id = c.department_id
		LEFT JOIN instructors i ON d.department_id = i.department_id
		LEFT JOIN students s ON p.program_id = s.program_id
		GROUP BY d.department_id, d.name
		ORDER BY total_students DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportingRepository) SemesterReport(ctx context.Context, semester domain.Semester, year int) (*domain.SemesterReportRow, error) {
	var row domain.SemesterReportRow
	err := r.db.WithContext(ctx).Raw(`
		WITH term AS (
			SELECT offering_id, max_students, current_enrollment
			FROM course_offerings
			WHERE semester = @semester AND year = @year
		)
		SELECT
			(SELECT COUNT(*) FROM term) AS courses_offered,
			COUNT(DISTINCT e.student_id) AS unique_students,
			COUNT(e.enrollment_id) AS total_enrollments,
			(SELECT COALESCE(SUM(max_students), 0) FROM term) AS total_capacity,
			(SELECT COALESCE(SUM(current_enrollment), 0) FROM term) AS total_enrolled,
			CASE WHEN (SELECT COALESCE(SUM(max_students), 0) FROM term) = 0 THEN 0
				ELSE ROUND((SELECT SUM(current_enrollment) FROM term)::numeric
					/ (SELECT SUM(max_students) FROM term) * 100, 1)
			END AS overall_fill_rate
		FROM term
		LEFT JOIN enrollments e ON term.offering_id = e.offering_id`,
		map[string]interface{}{"semester": semester, "year": year}).Scan(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ReportingRepository) StudentsAtRisk(ctx context.Context, gpaThreshold float64) ([]*domain.AtRiskRow, error) {
	var rows []*domain.AtRiskRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			s.student_id,
			s.first_name || ' ' || s.last_name AS student_name,
			s.email,
			p.name AS program_name,
			COUNT(e.enrollment_id) AS courses_completed,
			ROUND(AVG(
				CASE e.grade
					WHEN 'A' THEN 4.0
					WHEN 'B' THEN 3.0
					WHEN 'C' THEN 2.0
					WHEN 'D' THEN 1.0
					WHEN 'F' THEN 0.0
				END
			)::numeric, 2) AS gpa,
			COUNT(CASE WHEN e.grade = 'F' THEN 1 END) AS failed_courses
		FROM students s
		JOIN programs p ON s.program_id = p.program_id
		JOIN enrollments e ON s.student_id = e.student_id
		WHERE e.grade IS NOT NULL AND s.status = 'Active'
		GROUP BY s.student_id, student_name, s.email, p.name
		HAVING AVG(
			CASE e.grade
				WHEN 'A' THEN 4.0
				WHEN 'B' THEN 3.0
				WHEN 'C' THEN 2.0
				WHEN 'D' THEN 1.0
				WHEN 'F' THEN 0.0
			END
		) < ?
		ORDER BY gpa ASC`, gpaThreshold).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportingRepository) CourseEnrollmentStats(ctx context.Context, courseID uuid.UUID) ([]*domain.CourseTermStatsRow, error) {
	var rows []*domain.CourseTermStatsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			co.semester || ' ' || co.year AS term,
			co.max_students,
			co.current_enrollment,
			ROUND(co.current_enrollment::numeric / co.max_students * 100, 1) AS fill_rate,
			COUNT(e.enrollment_id) AS total_enrollments,
			COUNT(CASE WHEN e.grade = 'A' THEN 1 END) AS grade_a,
			COUNT(CASE WHEN e.grade = 'B' THEN 1 END) AS grade_b,
			COUNT(CASE WHEN e.grade = 'C' THEN 1 END) AS grade_c,
			COUNT(CASE WHEN e.grade IN ('D', 'F') THEN 1 END) AS grade_df
		FROM course_offerings co
		LEFT JOIN enrollments e ON co.offering_id = e.offering_id
		WHERE co.course_id = ?
		GROUP BY co.offering_id, term, co.max_students, co.current_enrollment, co.year, co.semester
		ORDER BY co.year DESC, co.semester`, courseID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
