package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	logctx "github.com/ANIRUDH-7600/Smartdoc/pkg/log"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// maxContextChunks — сколько лучших фрагментов попадает в ответ.
const maxContextChunks = 3

// Confidence-уровни ответа.
const (
	ConfidenceHigh    = "high"
	ConfidenceMedium  = "medium"
	ConfidenceGeneral = "general"
)

// Answer — результат Q&A по документам пользователя.
type Answer struct {
	AnswerID          string
	Answer            string
	Confidence        string
	Sources           []storage.ChunkRef
	ContextChunksUsed int
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"in": {}, "on": {}, "of": {}, "to": {}, "for": {}, "and": {}, "or": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "when": {}, "where": {},
	"why": {}, "does": {}, "do": {}, "about": {}, "with": {}, "this": {}, "that": {},
}

// AnswerQuestion отвечает на вопрос по фрагментам документов пользователя:
// фрагменты ранжируются по пересечению слов с вопросом, лучшие попадают
// в контекст ответа. Без единого совпадения ответ даётся без контекста
// (confidence = general).
func (s *Service) AnswerQuestion(ctx context.Context, userID int64, question string) (*Answer, error) {
	const op = "service.qa.AnswerQuestion"

	lg := logctx.From(ctx)

	refs, err := s.st.ChunksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	terms := queryTerms(question)

	type scored struct {
		ref   storage.ChunkRef
		score int
	}

	var matched []scored
	for _, ref := range refs {
		if sc := overlap(terms, ref.Content); sc > 0 {
			matched = append(matched, scored{ref: ref, score: sc})
		}
	}

	ans := &Answer{AnswerID: uuid.NewString()}

	if len(matched) == 0 || len(terms) == 0 {
		ans.Answer = "I couldn't find anything relevant in your documents. " +
			"Try rephrasing the question or uploading more material."
		ans.Confidence = ConfidenceGeneral

		return ans, nil
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
	if len(matched) > maxContextChunks {
		matched = matched[:maxContextChunks]
	}

	var b strings.Builder
	for i, m := range matched {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(excerpt(m.ref.Content))
		ans.Sources = append(ans.Sources, m.ref)
	}

	ans.Answer = b.String()
	ans.ContextChunksUsed = len(matched)

	// Доля слов вопроса, покрытых лучшим фрагментом, задаёт уверенность.
	best := float64(matched[0].score) / float64(len(terms))
	if best >= 0.6 {
		ans.Confidence = ConfidenceHigh
	} else {
		ans.Confidence = ConfidenceMedium
	}

	lg.Info("question_answered",
		slog.Int64("user_id", userID),
		slog.String("confidence", ans.Confidence),
		slog.Int("context_chunks", ans.ContextChunksUsed),
	)

	return ans, nil
}

// queryTerms возвращает значимые слова вопроса в нижнем регистре.
func queryTerms(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	seen := make(map[string]struct{}, len(fields))
	var terms []string
	for _, f := range fields {
		if _, stop := stopwords[f]; stop || len(f) < 2 {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}

		seen[f] = struct{}{}
		terms = append(terms, f)
	}

	return terms
}

// overlap считает, сколько слов вопроса встречается во фрагменте.
func overlap(terms []string, content string) int {
	lower := strings.ToLower(content)

	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}

	return score
}

// excerpt усекает фрагмент до первых двух предложений.
func excerpt(content string) string {
	const maxSentences = 2

	count := 0
	for i, r := range content {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count == maxSentences {
				return strings.TrimSpace(content[:i+1])
			}
		}
	}

	return strings.TrimSpace(content)
}
