package handlers

import (
	"net/http"
	"strings"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Ask — POST /ask: вопрос по проиндексированным документам.
func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in struct {
		Question string `json:"question"`
	}
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Question) == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Question is required")
		return
	}

	ans, err := h.svc.AnswerQuestion(r.Context(), id.UserID, in.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sources := make([]models.Source, 0, len(ans.Sources))
	for _, src := range ans.Sources {
		sources = append(sources, models.Source{
			Filename:   src.Filename,
			ChunkIndex: src.ChunkIndex,
		})
	}

	writeJSON(w, http.StatusOK, models.Answer{
		AnswerID:          ans.AnswerID,
		Answer:            ans.Answer,
		Confidence:        ans.Confidence,
		Sources:           sources,
		ContextChunksUsed: ans.ContextChunksUsed,
	})
}
