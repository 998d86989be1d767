package models

// Метки оценки ответа.
const (
	FeedbackHelpful    = "helpful"
	FeedbackNotHelpful = "not_helpful"
)

// Feedback — оценка ответа Q&A. Rating и Comment опциональны.
type Feedback struct {
	FeedbackID   string `json:"feedback_id"`
	AnswerID     string `json:"answer_id"`
	Rating       *int   `json:"rating"`
	FeedbackType string `json:"feedback_type,omitempty"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// FeedbackStats — агрегаты по оценкам текущего пользователя.
type FeedbackStats struct {
	TotalFeedback   int      `json:"total_feedback"`
	HelpfulCount    int      `json:"helpful_count"`
	NotHelpfulCount int      `json:"not_helpful_count"`
	AverageRating   *float64 `json:"average_rating"`
}
