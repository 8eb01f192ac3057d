package handlers

import (
	"context"

	"learningcenter/pkg/response"
	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollments *usecase.EnrollmentUseCase
}

func NewEnrollmentHandler(enrollments *usecase.EnrollmentUseCase) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type requestEnrollmentReq struct {
	StudentRecordID string `json:"studentRecordId" binding:"required"`
	CourseID        uint   `json:"courseId" binding:"required,gt=0"`
}

// POST /api/v1/enrollments
func (h *EnrollmentHandler) Request(c *gin.Context) {
	var req requestEnrollmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	student, err := domain.ParseStudentRecordID(req.StudentRecordID)
	if err != nil {
		respondError(c, err)
		return
	}
	e, err := h.enrollments.Request(c.Request.Context(), student, req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondCreated(c, toEnrollmentResource(e, h.enrollments.Now()))
}

// GET /api/v1/enrollments
func (h *EnrollmentHandler) List(c *gin.Context) {
	list, err := h.enrollments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResources(list, h.enrollments.Now()))
}

// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetOne(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	e, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResource(e, h.enrollments.Now()))
}

// POST /api/v1/enrollments/:id/confirmations
func (h *EnrollmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.enrollments.Confirm)
}

// POST /api/v1/enrollments/:id/rejections
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	h.transition(c, h.enrollments.Reject)
}

// POST /api/v1/enrollments/:id/cancellations
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.enrollments.Cancel)
}

// POST /api/v1/enrollments/:id/tutorials/:tutorialId/starts
func (h *EnrollmentHandler) StartTutorial(c *gin.Context) {
	h.progress(c, h.enrollments.StartTutorial)
}

// POST /api/v1/enrollments/:id/tutorials/:tutorialId/completions
func (h *EnrollmentHandler) CompleteTutorial(c *gin.Context) {
	h.progress(c, h.enrollments.CompleteTutorial)
}

func (h *EnrollmentHandler) transition(c *gin.Context, apply func(context.Context, uint) (*domain.Enrollment, error)) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	e, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResource(e, h.enrollments.Now()))
}

func (h *EnrollmentHandler) progress(c *gin.Context, apply func(context.Context, uint, domain.TutorialID) (*domain.Enrollment, error)) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tutorial, ok := tutorialIDParam(c)
	if !ok {
		return
	}
	e, err := apply(c.Request.Context(), id, tutorial)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResource(e, h.enrollments.Now()))
}
