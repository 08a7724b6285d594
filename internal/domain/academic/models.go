package academic

import (
	"time"

	"github.com/google/uuid"
)

// Department owns programs, courses and instructors.
type Department struct {
	DepartmentID uuid.UUID `json:"department_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name         string    `json:"name" gorm:"unique;not null"`
	Building     string    `json:"building"`
	Head         string    `json:"head"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ProgramLevel follows the national qualification framework (4=certificate .. 7=masters).
type ProgramLevel int

const (
	Level4 ProgramLevel = 4
	Level5 ProgramLevel = 5
	Level6 ProgramLevel = 6
	Level7 ProgramLevel = 7
)

// Program is a degree program offered by a department.
type Program struct {
	ProgramID     uuid.UUID    `json:"program_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string       `json:"name" gorm:"not null"`
	Code          string       `json:"code" gorm:"unique;not null"`
	DepartmentID  uuid.UUID    `json:"department_id" gorm:"type:uuid;not null"`
	DurationYears int          `json:"duration_years" gorm:"not null;check:duration_years > 0"`
	TotalCredits  int          `json:"total_credits" gorm:"not null;check:total_credits > 0"`
	Level         ProgramLevel `json:"level" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	Department    Department   `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// StudentStatus is the administrative status of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "Active"
	StudentSuspended StudentStatus = "Suspended"
	StudentGraduated StudentStatus = "Graduated"
	StudentWithdrawn StudentStatus = "Withdrawn"
)

// Student belongs to one program.
type Student struct {
	StudentID      uuid.UUID     `json:"student_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	FirstName      string        `json:"first_name" gorm:"not null"`
	LastName       string        `json:"last_name" gorm:"not null"`
	Email          string        `json:"email" gorm:"unique;not null"`
	DateOfBirth    time.Time     `json:"date_of_birth" gorm:"not null"`
	EnrollmentDate time.Time     `json:"enrollment_date" gorm:"not null"`
	ProgramID      uuid.UUID     `json:"program_id" gorm:"type:uuid;not null"`
	Status         StudentStatus `json:"status" gorm:"type:text;not null;default:Active"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Program        Program       `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

// Course is a unit of study owned by a department.
type Course struct {
	CourseID       uuid.UUID    `json:"course_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Code           string       `json:"code" gorm:"unique;not null"`
	Name           string       `json:"name" gorm:"not null"`
	Credits        int          `json:"credits" gorm:"not null;check:credits > 0"`
	Level          ProgramLevel `json:"level" gorm:"not null"`
	DepartmentID   uuid.UUID    `json:"department_id" gorm:"type:uuid;not null"`
	PrerequisiteID *string      `json:"prerequisite_code,omitempty" gorm:"column:prerequisite_code"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	Department     Department   `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// InstructorStatus is the employment status of an instructor.
type InstructorStatus string

const (
	InstructorActive  InstructorStatus = "Active"
	InstructorOnLeave InstructorStatus = "OnLeave"
	InstructorRetired InstructorStatus = "Retired"
)

// Instructor teaches course offerings for a department.
type Instructor struct {
	InstructorID uuid.UUID        `json:"instructor_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	FirstName    string           `json:"first_name" gorm:"not null"`
	LastName     string           `json:"last_name" gorm:"not null"`
	Email        string           `json:"email" gorm:"unique;not null"`
	DepartmentID uuid.UUID        `json:"department_id" gorm:"type:uuid;not null"`
	HireDate     time.Time        `json:"hire_date" gorm:"not null"`
	Title        string           `json:"title"`
	Status       InstructorStatus `json:"status" gorm:"type:text;not null;default:Active"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	Department   Department       `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// Semester is the term in which an offering runs.
type Semester string

const (
	Spring Semester = "Spring"
	Summer Semester = "Summer"
	Fall   Semester = "Fall"
)

// Order returns the within-year ordering of a semester (Spring < Summer < Fall).
func (s Semester) Order() int {
	switch s {
	case Spring:
		return 1
	case Summer:
		return 2
	case Fall:
		return 3
	}
	return 0
}

// Valid reports whether s is a known semester.
func (s Semester) Valid() bool {
	return s.Order() != 0
}

// CourseOffering is a scheduled instance of a course. CurrentEnrollment is a
// denormalized seat counter and must only change inside the same transaction
// as the enrollment row it accounts for.
type CourseOffering struct {
	OfferingID        uuid.UUID  `json:"offering_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CourseID          uuid.UUID  `json:"course_id" gorm:"type:uuid;not null"`
	InstructorID      uuid.UUID  `json:"instructor_id" gorm:"type:uuid;not null"`
	Semester          Semester   `json:"semester" gorm:"type:text;not null"`
	Year              int        `json:"year" gorm:"not null;check:year BETWEEN 2000 AND 2100"`
	Room              string     `json:"room"`
	MaxStudents       int        `json:"max_students" gorm:"not null;check:max_students > 0"`
	CurrentEnrollment int        `json:"current_enrollment" gorm:"not null;default:0;check:current_enrollment >= 0"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	Version           int        `json:"version" gorm:"default:1"`
	Course            Course     `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Instructor        Instructor `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
}

// SeatsRemaining returns max seats minus the current enrollment.
func (o *CourseOffering) SeatsRemaining() int {
	return o.MaxStudents - o.CurrentEnrollment
}

// AvailabilityStatus classifies how full an offering is.
type AvailabilityStatus string

const (
	OfferingFull       AvailabilityStatus = "Full"
	OfferingAlmostFull AvailabilityStatus = "Almost Full"
	OfferingAvailable  AvailabilityStatus = "Available"
)

// Availability classifies the offering: Full at zero seats remaining,
// Almost Full at 90% or more occupancy, Available otherwise.
func (o *CourseOffering) Availability() AvailabilityStatus {
	switch {
	case o.CurrentEnrollment >= o.MaxStudents:
		return OfferingFull
	case float64(o.CurrentEnrollment) >= float64(o.MaxStudents)*0.9:
		return OfferingAlmostFull
	default:
		return OfferingAvailable
	}
}

// EnrollmentStatus is the lifecycle state of an enrollment.
// Enrolled is the only non-terminal state.
type EnrollmentStatus string

const (
	StatusEnrolled  EnrollmentStatus = "Enrolled"
	StatusCompleted EnrollmentStatus = "Completed"
	StatusWithdrawn EnrollmentStatus = "Withdrawn"
	StatusFailed    EnrollmentStatus = "Failed"
)

// Terminal reports whether no transition may leave this status.
func (s EnrollmentStatus) Terminal() bool {
	return s != StatusEnrolled
}

// OccupiesSeat reports whether an enrollment in this status counts against
// the offering's capacity.
func (s EnrollmentStatus) OccupiesSeat() bool {
	return s == StatusEnrolled || s == StatusCompleted
}

// Enrollment links a student to a course offering. Grade is nil while no
// grade has been recorded.
type Enrollment struct {
	EnrollmentID   uuid.UUID        `json:"enrollment_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudentID      uuid.UUID        `json:"student_id" gorm:"type:uuid;not null"`
	OfferingID     uuid.UUID        `json:"offering_id" gorm:"type:uuid;not null"`
	EnrollmentDate time.Time        `json:"enrollment_date" gorm:"not null"`
	Grade          *Grade           `json:"grade,omitempty" gorm:"type:text"`
	Status         EnrollmentStatus `json:"status" gorm:"type:text;not null;default:Enrolled"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	Version        int              `json:"version" gorm:"default:1"`
	Student        Student          `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Offering       CourseOffering   `json:"offering,omitempty" gorm:"foreignKey:OfferingID"`
}
