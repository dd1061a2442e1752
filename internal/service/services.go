package service

import (
	"github.com/robbertpopa/itec-web-2025/internal/service/auth"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/discussion"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/enrollment"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/management"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/query"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson/schedule"
	"github.com/robbertpopa/itec-web-2025/internal/service/user"
)

// Collection is everything the HTTP layer serves.
type Collection struct {
	Auth       auth.Provider
	Users      *user.UserService
	Courses    *query.CourseQueryService
	Management *management.CourseManagementService
	Enrollment *enrollment.EnrollmentService
	Discussion *discussion.DiscussionService
	Lessons    *lesson.LessonService
	Schedule   *schedule.ScheduleService
}
