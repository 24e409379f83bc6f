// Package importer loads questions into the bank from Excel or CSV
// files. Per-row failures are collected into the structured bulk
// result; a bad row never aborts the batch.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the column mapping for an import file. Columns
// are spreadsheet letters; for CSV files the same letters address
// zero-based positions (A is the first field).
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	TextColumn        string // Column with the question text
	OptionsColumn     string // Column with the options, separated by OptionsSeparator
	CorrectColumn     string // Column with the 1-based number of the correct option
	ExplanationColumn string // Column with the explanation
	CategoryColumn    string // Column with the category tag
	DifficultyColumn  string // Column with the difficulty tag
	HintColumn        string // Column with the optional hint tag
	OptionsSeparator  string // Separator between options, "|" by default
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TextColumn:        "A",
		OptionsColumn:     "B",
		CorrectColumn:     "C",
		ExplanationColumn: "D",
		CategoryColumn:    "E",
		DifficultyColumn:  "F",
		HintColumn:        "G",
		OptionsSeparator:  "|",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportQuestions imports questions from an Excel or CSV file.
func ImportQuestions(ctx context.Context, config ImportConfig) (*models.BulkResult, error) {
	if config.OptionsSeparator == "" {
		config.OptionsSeparator = "|"
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config ImportConfig) (*models.BulkResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	questionRepo := database.NewQuestionRepository()
	result := &models.BulkResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		processRow(ctx, row, config, questionRepo, result, i+1)
	}
	return result, nil
}

func importFromCSV(ctx context.Context, config ImportConfig) (*models.BulkResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	questionRepo := database.NewQuestionRepository()
	result := &models.BulkResult{Errors: make([]string, 0)}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		processRow(ctx, row, config, questionRepo, result, rowNum)
	}
	return result, nil
}

// processRow parses one row into a question and inserts it,
// classifying the outcome into the bulk result.
func processRow(ctx context.Context, row []string, config ImportConfig, questionRepo *database.QuestionRepository, result *models.BulkResult, rowNum int) {
	result.TotalProcessed++

	question, err := parseRow(row, config)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	err = questionRepo.Create(ctx, question)
	switch {
	case err == nil:
		result.Added++
	default:
		var conflict *database.ConflictError
		var invalid *database.ValidationError
		switch {
		case errors.As(err, &conflict):
			result.Duplicates++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, conflict))
		case errors.As(err, &invalid):
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, invalid))
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
}

func parseRow(row []string, config ImportConfig) (*models.Question, error) {
	text := cellValue(row, config.TextColumn)
	if text == "" {
		return nil, fmt.Errorf("question text is empty")
	}

	rawOptions := cellValue(row, config.OptionsColumn)
	options := make([]string, 0)
	for _, opt := range strings.Split(rawOptions, config.OptionsSeparator) {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("at least two options are required")
	}

	correctRaw := cellValue(row, config.CorrectColumn)
	correct, err := strconv.Atoi(strings.TrimSpace(correctRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid correct option number %q", correctRaw)
	}
	if correct < 1 || correct > len(options) {
		return nil, fmt.Errorf("correct option number %d is out of range", correct)
	}

	return &models.Question{
		Text:         text,
		Options:      options,
		CorrectIndex: correct - 1,
		Explanation:  cellValue(row, config.ExplanationColumn),
		Category:     cellValue(row, config.CategoryColumn),
		Difficulty:   cellValue(row, config.DifficultyColumn),
		Hint:         cellValue(row, config.HintColumn),
	}, nil
}

// cellValue returns the trimmed cell under a column letter, or "" when
// the row is too short or the column unset.
func cellValue(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts a spreadsheet column letter to a zero-based
// index: A=0, B=1, ..., AA=26.
func columnToIndex(column string) int {
	idx := 0
	for _, r := range strings.ToUpper(column) {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
