package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
var ErrInvalidToken = errors.New("invalid token")
var ErrCourseNotFound = errors.New("course not found")
var ErrNotCourseOwner = errors.New("you are not the course owner")
var ErrForbidden = errors.New("cannot access another user's data")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
var ErrImageNotFound = errors.New("image not found")
var ErrObjectNotFound = errors.New("object not found")
var ErrInvalidInput = errors.New("invalid input")
var ErrNotSupported = errors.New("operation not supported by the configured provider")
var ErrQueueEmpty = errors.New("no waiting tasks")
var ErrTaskClaimed = errors.New("task was already claimed")
var ErrNodeNotFound = errors.New("node not found")
var ErrPageOutOfRange = errors.New("page out of range")
var ErrControllerClosed = errors.New("listing controller closed")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrDecoding = errors.New("DECODING")
var ErrSummarizerDisabled = errors.New("summarizer api key is not configured")
