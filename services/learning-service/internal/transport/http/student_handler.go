package handlers

import (
	"learningcenter/pkg/response"
	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	students    *usecase.StudentUseCase
	enrollments *usecase.EnrollmentUseCase
}

func NewStudentHandler(students *usecase.StudentUseCase, enrollments *usecase.EnrollmentUseCase) *StudentHandler {
	return &StudentHandler{students: students, enrollments: enrollments}
}

type createStudentReq struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req createStudentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	student, err := h.students.Create(c.Request.Context(), usecase.ProfileDetails{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Street:     req.Street,
		Number:     req.Number,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondCreated(c, toStudentResource(student))
}

// GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	list, err := h.students.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]studentResource, len(list))
	for i, s := range list {
		out[i] = toStudentResource(s)
	}
	response.RespondOK(c, out)
}

// GET /api/v1/students/:studentRecordId
func (h *StudentHandler) GetOne(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toStudentResource(student))
}

// GET /api/v1/students/:studentRecordId/enrollments
func (h *StudentHandler) ListEnrollments(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}
	list, err := h.enrollments.ListByStudent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, toEnrollmentResources(list, h.enrollments.Now()))
}

func recordIDParam(c *gin.Context) (domain.StudentRecordID, bool) {
	id, err := domain.ParseStudentRecordID(c.Param("studentRecordId"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return id, true
}
