package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode enumerates every domain failure the services can raise. Controllers
// translate codes to HTTP statuses; nothing else crosses the boundary.
type ErrorCode string

const (
	MemberNotFound        ErrorCode = "MEMBER_NOT_FOUND"
	MemberNotMatch        ErrorCode = "MEMBER_NOT_MATCH"
	MemberEmailDuplicated ErrorCode = "MEMBER_EMAIL_DUPLICATED"
	NoAuthentication      ErrorCode = "NO_AUTHENTICATION"
	EnrollDuplicated      ErrorCode = "ENROLL_CHALLENGE_CANNOT_BE_DUPLICATED"
	TargetTimeRequired    ErrorCode = "CHALLENGE_TARGET_TIME_NOT_NULL"
	ChallengeTypeUnknown  ErrorCode = "CHALLENGE_TYPE_UNKNOWN"
	ChallengeNotFound     ErrorCode = "CHALLENGE_NOT_FOUND"
	HistoryAlreadyWritten ErrorCode = "HISTORY_ALREADY_WRITTEN"
)

type BusinessError struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *BusinessError) Error() string {
	return string(e.Code) + ": " + e.Message
}

var (
	ErrMemberNotFound        = &BusinessError{MemberNotFound, http.StatusNotFound, "member not found"}
	ErrMemberNotMatch        = &BusinessError{MemberNotMatch, http.StatusUnauthorized, "invalid credentials"}
	ErrMemberEmailDuplicated = &BusinessError{MemberEmailDuplicated, http.StatusConflict, "email already registered"}
	ErrNoAuthentication      = &BusinessError{NoAuthentication, http.StatusUnauthorized, "no authentication"}
	ErrEnrollDuplicated      = &BusinessError{EnrollDuplicated, http.StatusConflict, "a challenge is already in progress"}
	ErrTargetTimeRequired    = &BusinessError{TargetTimeRequired, http.StatusBadRequest, "target time is required for this challenge type"}
	ErrChallengeTypeUnknown  = &BusinessError{ChallengeTypeUnknown, http.StatusBadRequest, "unknown challenge type"}
	ErrChallengeNotFound     = &BusinessError{ChallengeNotFound, http.StatusNotFound, "no challenge in progress"}
	ErrHistoryAlreadyWritten = &BusinessError{HistoryAlreadyWritten, http.StatusConflict, "already watered today"}
)

// HandleError maps a business error to its HTTP status; anything else is
// logged and reported as a 500.
func HandleError(c *gin.Context, err error) {
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		Error(c, bizErr.Status, bizErr.Message)
		return
	}
	LogInternalError(c, err)
}
