package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// EnrollmentHandler exposes enrollment listing and validation endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	validation  *service.ValidationService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, validation *service.ValidationService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, validation: validation}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param cycleId query string false "Filter by cycle"
// @Param status query string false "Filter by display status"
// @Param kind query string false "Filter by kind"
// @Param search query string false "Search student name or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	filter := models.EnrollmentFilter{
		CycleID:   c.Query("cycleId"),
		Status:    models.ParseEnrollmentStatus(c.Query("status")),
		Kind:      models.ParseEnrollmentKind(c.Query("kind")),
		Search:    c.Query("search"),
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if c.Query("status") == "" {
		filter.Status = ""
	}
	if c.Query("kind") == "" {
		filter.Kind = ""
	}

	views, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Get godoc
// @Summary Get one enrollment with payment detail and proofs
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	view, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Approve godoc
// @Summary Approve an enrollment awaiting validation
// @Tags Validation
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/approve [post]
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	view, err := h.validation.Approve(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject godoc
// @Summary Reject an enrollment awaiting validation
// @Tags Validation
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body rejectRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reject [post]
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.validation.Reject(c.Request.Context(), c.Param("id"), req.Reason, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Cancel godoc
// @Summary Cancel an undecided enrollment
// @Tags Validation
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/cancel [post]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	view, err := h.validation.Cancel(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// CorrectPaymentDetail godoc
// @Summary Correct the payment detail of a payment-kind enrollment
// @Tags Validation
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.PaymentDetailRequest true "Payment detail"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payment-detail [put]
func (h *EnrollmentHandler) CorrectPaymentDetail(c *gin.Context) {
	var req service.PaymentDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.validation.CorrectPaymentDetail(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
