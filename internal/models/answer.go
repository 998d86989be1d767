package models

// Уровни уверенности ответа: high/medium — ответ построен по документам,
// general — релевантных фрагментов не нашлось и ответ дан без контекста.
const (
	ConfidenceHigh    = "high"
	ConfidenceMedium  = "medium"
	ConfidenceGeneral = "general"
)

// Source — фрагмент документа, использованный при построении ответа.
type Source struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// Answer — ответ Q&A-эндпойнта. AnswerID используется при отправке
// оценки ответа.
type Answer struct {
	AnswerID          string   `json:"answer_id,omitempty"`
	Answer            string   `json:"answer"`
	Confidence        string   `json:"confidence"`
	Sources           []Source `json:"sources"`
	ContextChunksUsed int      `json:"context_chunks_used,omitempty"`
}
