package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// ProofHandler exposes proof-file endpoints.
type ProofHandler struct {
	proofs *service.ProofService
}

// NewProofHandler constructs handler.
func NewProofHandler(proofs *service.ProofService) *ProofHandler {
	return &ProofHandler{proofs: proofs}
}

// Upload godoc
// @Summary Attach a proof file to an enrollment
// @Tags Proofs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param kind formData string true "Proof kind"
// @Param file formData file true "Proof document"
// @Success 201 {object} response.Envelope
// @Router /enrollments/{id}/proofs [post]
func (h *ProofHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	kind := models.ProofKind(c.PostForm("kind"))
	proof, err := h.proofs.Upload(c.Request.Context(), c.Param("id"), kind,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, proof)
}

// List godoc
// @Summary List proof files attached to an enrollment
// @Tags Proofs
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/proofs [get]
func (h *ProofHandler) List(c *gin.Context) {
	proofs, err := h.proofs.ListByEnrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proofs, nil)
}

// SignedURL godoc
// @Summary Issue a short-lived download token for a proof file
// @Tags Proofs
// @Produce json
// @Param id path string true "Proof file ID"
// @Success 200 {object} response.Envelope
// @Router /proofs/{id}/url [get]
func (h *ProofHandler) SignedURL(c *gin.Context) {
	signed, err := h.proofs.SignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signed, nil)
}

// Download godoc
// @Summary Download a proof file with a signed token
// @Tags Proofs
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /proof-downloads [get]
func (h *ProofHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	proof, file, err := h.proofs.Resolve(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := proof.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+proof.FileName+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
