package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// ShareDocument — POST /documents/share.
func (h *Handlers) ShareDocument(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in struct {
		DocumentID      int64  `json:"document_id"`
		SharedWithEmail string `json:"shared_with_email"`
		PermissionLevel string `json:"permission_level"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in.SharedWithEmail = strings.TrimSpace(in.SharedWithEmail)
	if in.DocumentID == 0 || in.SharedWithEmail == "" {
		writeErrorMsg(w, http.StatusBadRequest, "document_id and shared_with_email are required")
		return
	}
	if in.PermissionLevel == "" {
		in.PermissionLevel = models.PermissionView
	}
	if !models.ValidPermission(in.PermissionLevel) {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid permission level")
		return
	}

	share, created, err := h.svc.ShareDocument(r.Context(), id.UserID, in.DocumentID, in.SharedWithEmail, in.PermissionLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Share permissions updated"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Document shared successfully",
		"share":   shareView(share),
	})
}

// SharedWithMe — GET /documents/shared-with-me.
func (h *Handlers) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	shared, err := h.svc.SharedWithMe(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]models.Document, 0, len(shared))
	for i := range shared {
		view := docView(&shared[i].Document)
		view.IsShared = true
		view.PermissionLevel = shared[i].PermissionLevel
		view.Owner = shared[i].Owner
		out = append(out, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{"shared_documents": out})
}

// DocumentShares — GET /documents/{document_id}/shares.
func (h *Handlers) DocumentShares(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	docID := chi.URLParam(r, "document_id")

	shares, err := h.svc.DocumentShares(r.Context(), id.UserID, docID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]models.Share, 0, len(shares))
	for i := range shares {
		out = append(out, shareView(&shares[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"shares": out})
}

// DeleteShare — DELETE /documents/shares/{share_id}.
func (h *Handlers) DeleteShare(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	shareID, err := strconv.ParseInt(chi.URLParam(r, "share_id"), 10, 64)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid share id")
		return
	}

	if err := h.svc.DeleteShare(r.Context(), id.UserID, shareID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Share deleted successfully"})
}
