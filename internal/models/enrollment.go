package models

const EnrollmentActive = "active"

type Enrollment struct {
	CourseID   string `json:"courseId"`
	EnrolledAt string `json:"enrolledAt"`
	Status     string `json:"status"`
}

// ProgrammedLesson is a calendar day a user marked for learning, stored
// under users/{uid}/programmedLessons/{yyyymmdd}.
type ProgrammedLesson struct {
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
}
