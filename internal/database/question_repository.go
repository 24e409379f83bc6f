package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/quizbrain/pkg/models"
)

// QuestionRepository handles database operations for questions
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

// validate checks the required fields of a question before any write.
func (r *QuestionRepository) validate(q *models.Question) error {
	var reasons []string
	if q.Text == "" {
		reasons = append(reasons, "question text is required")
	}
	if len(q.Options) < 2 {
		reasons = append(reasons, "at least two options are required")
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		reasons = append(reasons, fmt.Sprintf("correct index %d is out of range", q.CorrectIndex))
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// Create validates and inserts a new question. A question whose
// normalized text already exists is rejected with a ConflictError
// carrying the existing id.
func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.validate(q); err != nil {
		return err
	}

	q.NormalizedText = models.NormalizeText(q.Text)
	if existing, err := r.FindByNormalizedText(ctx, q.NormalizedText, 0); err == nil {
		return &ConflictError{ExistingID: existing.ID, Message: "duplicate question text"}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %v", err)
	}
	q.OptionsJSON = string(optionsJSON)

	query := `
		INSERT INTO questions (text, normalized_text, options, correct_index, explanation, category, difficulty, hint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if DB.DriverName() == "postgres" {
		err = DB.QueryRowContext(ctx, query+" RETURNING id, created_at",
			q.Text, q.NormalizedText, q.OptionsJSON, q.CorrectIndex,
			q.Explanation, q.Category, q.Difficulty, q.Hint,
		).Scan(&q.ID, &q.CreatedAt)
	} else {
		var result sql.Result
		result, err = DB.ExecContext(ctx, query,
			q.Text, q.NormalizedText, q.OptionsJSON, q.CorrectIndex,
			q.Explanation, q.Category, q.Difficulty, q.Hint,
		)
		if err == nil {
			q.ID, err = result.LastInsertId()
		}
	}
	if err != nil {
		// The unique index is the authority under concurrent inserts.
		if isUniqueViolation(err) {
			if existing, lookupErr := r.FindByNormalizedText(ctx, q.NormalizedText, 0); lookupErr == nil {
				return &ConflictError{ExistingID: existing.ID, Message: "duplicate question text"}
			}
			return &ConflictError{Message: "duplicate question text"}
		}
		return fmt.Errorf("failed to create question: %v", err)
	}
	return nil
}

// Update modifies an existing question, re-checking text uniqueness
// against every question except itself.
func (r *QuestionRepository) Update(ctx context.Context, q *models.Question) error {
	if err := r.validate(q); err != nil {
		return err
	}

	q.NormalizedText = models.NormalizeText(q.Text)
	if existing, err := r.FindByNormalizedText(ctx, q.NormalizedText, q.ID); err == nil {
		return &ConflictError{ExistingID: existing.ID, Message: "duplicate question text"}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %v", err)
	}
	q.OptionsJSON = string(optionsJSON)

	_, err = DB.ExecContext(ctx, `
		UPDATE questions SET
			text = $1, normalized_text = $2, options = $3, correct_index = $4,
			explanation = $5, category = $6, difficulty = $7, hint = $8
		WHERE id = $9
	`, q.Text, q.NormalizedText, q.OptionsJSON, q.CorrectIndex,
		q.Explanation, q.Category, q.Difficulty, q.Hint, q.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Message: "duplicate question text"}
		}
		return fmt.Errorf("failed to update question: %v", err)
	}
	return nil
}

// BulkCreate inserts a batch of questions, rejecting per-item
// duplicates and validation failures without aborting the batch.
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []models.Question) *models.BulkResult {
	result := &models.BulkResult{Errors: make([]string, 0)}

	for i := range questions {
		result.TotalProcessed++
		err := r.Create(ctx, &questions[i])
		switch {
		case err == nil:
			result.Added++
		default:
			var conflict *ConflictError
			var invalid *ValidationError
			switch {
			case errors.As(err, &conflict):
				result.Duplicates++
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, conflict))
			case errors.As(err, &invalid):
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, invalid))
			default:
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			}
		}
	}
	return result
}

// FindByNormalizedText looks a question up by its normalized text,
// optionally excluding one id (for edit-in-place checks). Returns
// ErrNotFound when no question matches. This is an indexed lookup,
// not a scan.
func (r *QuestionRepository) FindByNormalizedText(ctx context.Context, normalized string, excludeID int64) (*models.Question, error) {
	var q models.Question
	err := DB.GetContext(ctx, &q,
		"SELECT * FROM questions WHERE normalized_text = $1 AND id != $2", normalized, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find question by normalized text: %v", err)
	}
	decodeOptions(&q)
	return &q, nil
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := DB.GetContext(ctx, &q, "SELECT * FROM questions WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question by ID: %v", err)
	}
	decodeOptions(&q)
	return &q, nil
}

// GetAll returns every question in the bank
func (r *QuestionRepository) GetAll(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := DB.SelectContext(ctx, &questions, "SELECT * FROM questions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %v", err)
	}
	for i := range questions {
		decodeOptions(&questions[i])
	}
	return questions, nil
}

// Count returns the total question-bank size
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM questions")
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %v", err)
	}
	return count, nil
}

// Categories returns the distinct category tags present in the bank
func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := DB.SelectContext(ctx, &categories,
		"SELECT DISTINCT category FROM questions WHERE category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %v", err)
	}
	return categories, nil
}

// decodeOptions parses the stored JSON option list. A record whose
// options fail to parse is defaulted to an empty list and logged;
// processing continues for the rest of the set.
func decodeOptions(q *models.Question) {
	if q.OptionsJSON == "" {
		q.Options = []string{}
		return
	}
	if err := json.Unmarshal([]byte(q.OptionsJSON), &q.Options); err != nil {
		log.Printf("question %d has malformed options, defaulting to empty: %v", q.ID, err)
		q.Options = []string{}
	}
}
