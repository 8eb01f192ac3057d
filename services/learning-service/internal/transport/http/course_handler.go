package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"learningcenter/pkg/response"
	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courses     *usecase.CourseUseCase
	enrollments *usecase.EnrollmentUseCase
}

func NewCourseHandler(courses *usecase.CourseUseCase, enrollments *usecase.EnrollmentUseCase) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments}
}

type courseReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondCreated(c, toCourseResource(course))
}

// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	list, err := h.courses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]courseResource, len(list))
	for i, course := range list {
		out[i] = toCourseResource(course)
	}
	response.RespondOK(c, out)
}

// GET /api/v1/courses/:courseId
func (h *CourseHandler) GetOne(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toCourseResource(course))
}

// PUT /api/v1/courses/:courseId
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toCourseResource(course))
}

// DELETE /api/v1/courses/:courseId
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/courses/:courseId/learning-path-items/:tutorialId?before=<tutorialId>
func (h *CourseHandler) AddPathItem(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	tutorial, ok := tutorialIDParam(c)
	if !ok {
		return
	}
	before := domain.NoTutorial
	if raw := c.Query("before"); raw != "" {
		b, err := domain.ParseTutorialID(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		before = b
	}
	view, err := h.courses.AddTutorial(c.Request.Context(), id, tutorial, before)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondCreated(c, toPathItemResource(view))
}

// GET /api/v1/courses/:courseId/learning-path-items
func (h *CourseHandler) ListPathItems(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	views, err := h.courses.PathItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]pathItemResource, len(views))
	for i, v := range views {
		out[i] = toPathItemResource(v)
	}
	response.RespondOK(c, out)
}

// GET /api/v1/courses/:courseId/learning-path-items/:tutorialId
func (h *CourseHandler) GetPathItem(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	tutorial, ok := tutorialIDParam(c)
	if !ok {
		return
	}
	view, err := h.courses.PathItem(c.Request.Context(), id, tutorial)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toPathItemResource(view))
}

// GET /api/v1/courses/:courseId/enrollments
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	id, ok := courseIDParam(c)
	if !ok {
		return
	}
	list, err := h.enrollments.ListByCourse(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResources(list, h.enrollments.Now()))
}

func courseIDParam(c *gin.Context) (uint, bool) {
	return uintParam(c, "courseId")
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return uint(v), true
}

func tutorialIDParam(c *gin.Context) (domain.TutorialID, bool) {
	t, err := domain.ParseTutorialID(c.Param("tutorialId"))
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return t, true
}
