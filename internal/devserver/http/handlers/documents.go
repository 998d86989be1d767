package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Upload — POST /upload: multipart-загрузка файла на индексацию.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if hdr.Filename == "" {
		writeErrorMsg(w, http.StatusBadRequest, "No file selected")
		return
	}

	doc, err := h.svc.IngestDocument(r.Context(), id.UserID, hdr.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.UploadResult{
		Message:         "Document uploaded and processed successfully",
		DocumentID:      doc.DocumentID,
		Filename:        doc.Filename,
		ChunksProcessed: doc.ChunksProcessed,
		TotalChunks:     doc.TotalChunks,
	})
}

// ListDocuments — GET /documents.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	docs, err := h.svc.ListDocuments(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]models.Document, 0, len(docs))
	for i := range docs {
		out = append(out, docView(&docs[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents":       out,
		"total_documents": len(out),
	})
}

// Document — GET /documents/{document_id}.
func (h *Handlers) Document(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	docID := chi.URLParam(r, "document_id")

	doc, err := h.svc.DocumentForUser(r.Context(), id.UserID, docID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"document": docView(doc)})
}

// DeleteDocument — DELETE /documents/{document_id}.
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	docID := chi.URLParam(r, "document_id")

	if err := h.svc.DeleteDocument(r.Context(), id.UserID, docID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// Preview — GET /documents/{document_id}/preview.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	docID := chi.URLParam(r, "document_id")

	doc, err := h.svc.DocumentForUser(r.Context(), id.UserID, docID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := docView(doc)
	writeJSON(w, http.StatusOK, models.Preview{
		DocumentID:      view.DocumentID,
		Filename:        view.Filename,
		CreatedAt:       view.CreatedAt,
		FileType:        view.FileType,
		ChunksProcessed: view.ChunksProcessed,
		TotalChunks:     view.TotalChunks,
		UserID:          view.UserID,
	})
}

// Download — GET /documents/{document_id}/download: полный текст документа.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	docID := chi.URLParam(r, "document_id")

	doc, content, err := h.svc.DocumentContent(r.Context(), id.UserID, docID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	_, _ = w.Write([]byte(content))
}
