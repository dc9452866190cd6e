package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionAttempt is a single answered question inside a test result.
// Rows written by older clients omit subtopic/section; Normalize maps
// those to "Unknown" so every attempt still lands in a group.
type QuestionAttempt struct {
	Subtopic  string `json:"subtopic"`
	Section   string `json:"section"`
	IsCorrect bool   `json:"isCorrect"`
}

// UnknownLabel is the bucket for attempts missing a subtopic or section.
const UnknownLabel = "Unknown"

// Normalize substitutes the Unknown bucket for missing classification labels.
func (a QuestionAttempt) Normalize() QuestionAttempt {
	if a.Subtopic == "" {
		a.Subtopic = UnknownLabel
	}
	if a.Section == "" {
		a.Section = UnknownLabel
	}
	return a
}

// TestResult is one completed test attempt as stored in the test_results table.
// The analysis consumes only question_details; other columns are ignored.
type TestResult struct {
	UserID          string          `json:"user_id"`
	TestType        string          `json:"test_type"`
	QuestionDetails json.RawMessage `json:"question_details"`
}

// Attempts decodes the embedded question collection. The column is JSONB but
// some writers double-encode it, storing a JSON string that itself contains
// the encoded array; both shapes are accepted.
func (r TestResult) Attempts() ([]QuestionAttempt, error) {
	if len(r.QuestionDetails) == 0 {
		return nil, fmt.Errorf("decode question_details: empty payload")
	}

	var attempts []QuestionAttempt
	if err := json.Unmarshal(r.QuestionDetails, &attempts); err == nil {
		return attempts, nil
	}

	var encoded string
	if err := json.Unmarshal(r.QuestionDetails, &encoded); err != nil {
		return nil, fmt.Errorf("decode question_details: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &attempts); err != nil {
		return nil, fmt.Errorf("decode question_details string payload: %w", err)
	}
	return attempts, nil
}

// GroupKey identifies one aggregation bucket. It is a real composite key, not
// a delimiter-joined string, so labels containing a separator cannot collide.
type GroupKey struct {
	Subtopic string
	Section  string
}

// WeaknessStat is the finalized per-group view emitted by the analysis.
type WeaknessStat struct {
	Subtopic         string  `json:"subtopic"`
	Section          string  `json:"section"`
	ErrorRate        float64 `json:"error_rate"`
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
}

// WeaknessReport is the full response for one user's analysis.
type WeaknessReport struct {
	UserID             string         `json:"user_id"`
	Weaknesses         []WeaknessStat `json:"weaknesses"`
	TotalAreasAnalyzed int            `json:"total_areas_analyzed"`
}
