package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// SubmitFeedback — POST /feedback.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in struct {
		AnswerID     string `json:"answer_id"`
		Rating       *int   `json:"rating"`
		FeedbackType string `json:"feedback_type"`
		Comment      string `json:"comment"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(in.AnswerID) == "" {
		writeErrorMsg(w, http.StatusBadRequest, "answer_id is required")
		return
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		writeErrorMsg(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	switch in.FeedbackType {
	case "", models.FeedbackHelpful, models.FeedbackNotHelpful:
	default:
		writeErrorMsg(w, http.StatusBadRequest, "Invalid feedback type")
		return
	}

	feedbackID, err := h.svc.SubmitFeedback(r.Context(), id.UserID, in.AnswerID, in.Rating, in.FeedbackType, in.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "Feedback submitted successfully",
		"feedback_id": feedbackID,
	})
}

// FeedbackStats — GET /feedback/stats.
func (h *Handlers) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	agg, recent, err := h.svc.FeedbackStats(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]models.Feedback, 0, len(recent))
	for i := range recent {
		out = append(out, feedbackView(&recent[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": models.FeedbackStats{
			TotalFeedback:   agg.TotalFeedback,
			HelpfulCount:    agg.HelpfulCount,
			NotHelpfulCount: agg.NotHelpfulCount,
			AverageRating:   agg.AverageRating,
		},
		"recent_feedback": out,
	})
}

// DeleteFeedback — DELETE /feedback/{feedback_id}.
func (h *Handlers) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	feedbackID := chi.URLParam(r, "feedback_id")

	if err := h.svc.DeleteFeedback(r.Context(), id.UserID, feedbackID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback deleted successfully"})
}
