package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/libs/handlers"
)

// DocumentService is the interface that wraps document text extraction.
type DocumentService interface {
	// Method Parse extracts plain text from an uploaded document.
	// The file type is taken from the file name extension.
	Parse(fileName string, data []byte) (*models.ParsedDocument, error)
}

// DocumentHandler handles document upload HTTP requests
type DocumentHandler struct {
	handlers.BaseHandler
	documentService DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		documentService: documentService,
	}
}

// RegisterRoutes registers all document handler routes.
// Note: the router must already carry the admin middleware.
func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/documents/parse", h.Parse)
}

// Parse handles POST /admin/documents/parse
// @Summary Parse a document
// @Description Extract plain text from an uploaded PDF, markdown or text file
// @Tags admin-documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to parse"
// @Success 200 {object} models.ParsedDocument "Extracted text"
// @Failure 400 {object} map[string]string "Missing file or unsupported format"
// @Router /admin/documents/parse [post]
func (h *DocumentHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Error("failed to read uploaded file", zap.String("file_name", header.Filename), zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := h.documentService.Parse(header.Filename, data)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("document parsed", zap.String("file_name", doc.FileName), zap.Int("char_count", doc.CharCount))
	h.RespondJSON(w, http.StatusOK, doc)
}
