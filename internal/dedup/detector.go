// Package dedup prevents near-duplicate questions from entering the
// question bank. Exact duplicates are rejected through a unique index
// on normalized text; near duplicates are found by an offline pairwise
// similarity scan.
package dedup

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
	"github.com/pmezard/go-difflib/difflib"
)

// Normalize returns the canonical comparison form of question text:
// lowercased, whitespace-collapsed, trailing punctuation stripped.
func Normalize(text string) string {
	return models.NormalizeText(text)
}

// questionSource is the slice of the question repository the detector
// needs.
type questionSource interface {
	FindByNormalizedText(ctx context.Context, normalized string, excludeID int64) (*models.Question, error)
	GetAll(ctx context.Context) ([]models.Question, error)
}

// Detector compares question text against the existing bank.
type Detector struct {
	questions questionSource
}

// NewDetector creates a detector over the given question repository.
func NewDetector(questions *database.QuestionRepository) *Detector {
	return &Detector{questions: questions}
}

// FindDuplicate returns the existing question whose normalized text
// exactly matches the candidate, or nil when there is none. excludeID
// skips one question, for edit-in-place checks. This is an indexed
// lookup, not a comparison scan.
func (d *Detector) FindDuplicate(ctx context.Context, candidateText string, excludeID int64) (*models.Question, error) {
	q, err := d.questions.FindByNormalizedText(ctx, Normalize(candidateText), excludeID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// SimilarPair is one flagged pair of near-duplicate questions.
// Similarity is a percentage rounded to one decimal.
type SimilarPair struct {
	ID1        int64   `json:"id1"`
	ID2        int64   `json:"id2"`
	Similarity float64 `json:"similarity"`
	Text1      string  `json:"text1"`
	Text2      string  `json:"text2"`
}

// SimilarPairs compares every question against every other and reports
// pairs whose similarity ratio is at or above threshold (in [0,1]).
// Quadratic over the bank by design: this is an offline curation tool,
// not a hot path, and the bank stays in the low thousands.
func (d *Detector) SimilarPairs(ctx context.Context, threshold float64) ([]SimilarPair, error) {
	questions, err := d.questions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return CompareAll(questions, threshold), nil
}

// CompareAll runs the pairwise similarity pass over an already-loaded
// question set.
func CompareAll(questions []models.Question, threshold float64) []SimilarPair {
	pairs := make([]SimilarPair, 0)
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			r := Ratio(questions[i].NormalizedText, questions[j].NormalizedText)
			if r >= threshold {
				pairs = append(pairs, SimilarPair{
					ID1:        questions[i].ID,
					ID2:        questions[j].ID,
					Similarity: math.Round(r*1000) / 10,
					Text1:      questions[i].Text,
					Text2:      questions[j].Text,
				})
			}
		}
	}
	return pairs
}

// Ratio returns the character-based similarity of two strings in
// [0,1], with difflib's SequenceMatcher semantics (matching-block
// ratio over the combined length).
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
