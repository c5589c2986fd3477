package models

// RoleType is the kind of actor a bearer token resolves to.
type RoleType string

const (
	RoleCompany RoleType = "company"
	RoleCollege RoleType = "college"
	RoleStudent RoleType = "student"
)

// StaffRole is a college staff member's position.
type StaffRole string

const (
	StaffRoleTPO     StaffRole = "college-tpo"
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleFaculty StaffRole = "faculty"
)

// CanApproveJobs reports whether the role may approve or reject job linkages.
func (r StaffRole) CanApproveJobs() bool {
	return r == StaffRoleTPO || r == StaffRoleAdmin
}

// Company defines the posting company, read from the 'companies' table
type Company struct {
	ID      int64  `json:"id" db:"id"`
	AuthUID string `json:"-" db:"auth_uid"`
	Name    string `json:"name" db:"name"`
}

// College defines a college, read from the 'colleges' table
type College struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CollegeStaff defines a college-side user, read from the 'college_staff' table
type CollegeStaff struct {
	ID        int64     `json:"id" db:"id"`
	AuthUID   string    `json:"-" db:"auth_uid"`
	CollegeID int64     `json:"collegeId" db:"college_id"`
	Name      string    `json:"name" db:"name"`
	Role      StaffRole `json:"role" db:"role"`
}

// Student is the academic snapshot used for eligibility and offers.
type Student struct {
	ID             int64    `json:"id" db:"id"`
	AuthUID        string   `json:"-" db:"auth_uid"`
	CollegeID      int64    `json:"collegeId" db:"college_id"`
	Name           string   `json:"name" db:"name"`
	Department     string   `json:"department" db:"department"`
	PassingYear    int      `json:"passingYear" db:"passing_year"`
	DeadBacklogs   int      `json:"deadBacklogs" db:"dead_backlogs"`
	LiveBacklogs   int      `json:"liveBacklogs" db:"live_backlogs"`
	SemesterGrades []string `json:"semesterGrades" db:"semester_grades"`
}

// Actor is the caller behind a bearer token. Exactly one of Company, Staff
// and Student is set, matching Role.
type Actor struct {
	UID     string
	Role    RoleType
	Company *Company
	Staff   *CollegeStaff
	Student *Student
}
