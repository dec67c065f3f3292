package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/services"
)

type DocumentHandler struct {
	log        *logger.Logger
	docService services.DocumentGenerationService
}

func NewDocumentHandler(log *logger.Logger, dsvc services.DocumentGenerationService) *DocumentHandler {
	return &DocumentHandler{
		log:        log.With("handler", "DocumentHandler"),
		docService: dsvc,
	}
}

type generateDocumentsRequest struct {
	LessonID      uuid.UUID `json:"lesson_id" binding:"required"`
	DocumentTypes []string  `json:"document_types" binding:"required"`
	TemplateID    string    `json:"template_id"`
}

// POST /api/courses/:courseId/documents/generate
func (h *DocumentHandler) GenerateDocuments(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req generateDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	docs, err := h.docService.GenerateDocuments(c.Request.Context(), services.GenerateRequest{
		CourseID:      courseID,
		LessonID:      req.LessonID,
		DocumentTypes: req.DocumentTypes,
		TemplateID:    req.TemplateID,
	})
	if err != nil {
		var batchErr *docgen.BatchError
		var validationErr *docgen.ValidationError
		switch {
		case errors.As(err, &batchErr) && errors.As(err, &validationErr):
			RespondError(c, http.StatusUnprocessableEntity, "invalid_document_spec", err)
		case errors.As(err, &batchErr):
			RespondError(c, http.StatusUnprocessableEntity, "generation_failed", err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			RespondError(c, http.StatusNotFound, "not_found", err)
		default:
			RespondError(c, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

// GET /api/courses/:courseId/documents
func (h *DocumentHandler) ListCourseDocuments(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	docs, err := h.docService.ListCourseDocuments(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

// GET /api/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	doc, data, err := h.docService.DownloadDocument(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	contentType := docgen.ContentTypeFor(doc.DocumentType)
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	if err := h.docService.DeleteDocument(c.Request.Context(), docID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	RespondOK(c, gin.H{"deleted": docID})
}
