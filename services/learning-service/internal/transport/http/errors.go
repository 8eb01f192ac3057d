package handlers

import (
	"errors"
	"net/http"

	"learningcenter/pkg/apierr"
	"learningcenter/pkg/response"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/gin-gonic/gin"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{domain.ErrCourseNotFound, http.StatusNotFound, "course_not_found"},
	{domain.ErrEnrollmentNotFound, http.StatusNotFound, "enrollment_not_found"},
	{domain.ErrStudentNotFound, http.StatusNotFound, "student_not_found"},
	{domain.ErrProfileNotFound, http.StatusNotFound, "profile_not_found"},
	{domain.ErrTutorialNotInPath, http.StatusNotFound, "tutorial_not_in_path"},
	{domain.ErrTutorialNotInLedger, http.StatusNotFound, "tutorial_not_in_ledger"},
	{domain.ErrTutorialAlreadyInProgress, http.StatusConflict, "tutorial_already_in_progress"},
	{domain.ErrTutorialAlreadyStartedOrCompleted, http.StatusConflict, "tutorial_already_started_or_completed"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrEnrollmentNotConfirmed, http.StatusConflict, "enrollment_not_confirmed"},
	{domain.ErrEnrollmentExists, http.StatusConflict, "enrollment_exists"},
	{domain.ErrCourseTitleTaken, http.StatusConflict, "course_title_taken"},
	{domain.ErrStudentAlreadyExists, http.StatusConflict, "student_already_exists"},
	{domain.ErrProfileEmailTaken, http.StatusConflict, "profile_email_taken"},
	{domain.ErrEmptyPath, http.StatusUnprocessableEntity, "empty_learning_path"},
}

func toAPIError(err error) error {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return apierr.New(m.status, m.code, err)
		}
	}
	return err
}

func respondError(c *gin.Context, err error) {
	response.RespondAPIError(c, toAPIError(err))
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "bad_request", err)
}
