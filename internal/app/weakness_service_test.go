package app_test

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"weakness-analysis-service/internal/app"
	"weakness-analysis-service/internal/domain"
	"weakness-analysis-service/internal/infra/memory"
)

func TestAggregateSingleGroup(t *testing.T) {
	results := []domain.TestResult{
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
			{Subtopic: "Algebra", Section: "Math", IsCorrect: false},
		}),
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 1 {
		t.Fatalf("expected 1 group, got %d", len(weaknesses))
	}
	got := weaknesses[0]
	if got.Subtopic != "Algebra" || got.Section != "Math" {
		t.Fatalf("unexpected group %+v", got)
	}
	if got.TotalQuestions != 2 || got.CorrectAnswers != 1 || got.IncorrectAnswers != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if math.Abs(got.ErrorRate-50.0) > 1e-9 {
		t.Fatalf("expected error rate 50.0, got %v", got.ErrorRate)
	}
}

func TestAggregateSkipsMalformedRecords(t *testing.T) {
	results := []domain.TestResult{
		{UserID: "u1", QuestionDetails: json.RawMessage(`"not valid json at all`)},
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Geometry", Section: "Math", IsCorrect: false},
		}),
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 1 {
		t.Fatalf("expected malformed record to be skipped, got %d groups", len(weaknesses))
	}
	if weaknesses[0].Subtopic != "Geometry" {
		t.Fatalf("unexpected group %+v", weaknesses[0])
	}
}

func TestAggregateMergesGroupsAcrossResults(t *testing.T) {
	results := []domain.TestResult{
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
		}),
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Algebra", Section: "Math", IsCorrect: false},
			{Subtopic: "Algebra", Section: "Math", IsCorrect: false},
		}),
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 1 {
		t.Fatalf("expected counts to merge into one group, got %d", len(weaknesses))
	}
	got := weaknesses[0]
	if got.TotalQuestions != 3 || got.CorrectAnswers != 1 || got.IncorrectAnswers != 2 {
		t.Fatalf("unexpected merged counts %+v", got)
	}
}

func TestAggregateDefaultsMissingLabels(t *testing.T) {
	results := []domain.TestResult{
		{UserID: "u1", QuestionDetails: json.RawMessage(`[{"isCorrect": false}]`)},
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 1 {
		t.Fatalf("expected 1 group, got %d", len(weaknesses))
	}
	if weaknesses[0].Subtopic != "Unknown" || weaknesses[0].Section != "Unknown" {
		t.Fatalf("expected Unknown/Unknown bucket, got %+v", weaknesses[0])
	}
	if weaknesses[0].IncorrectAnswers != 1 {
		t.Fatalf("expected missing isCorrect to count as incorrect, got %+v", weaknesses[0])
	}
}

func TestAggregateDecodesStringEncodedDetails(t *testing.T) {
	inner, err := json.Marshal([]domain.QuestionAttempt{
		{Subtopic: "Reading", Section: "Verbal", IsCorrect: true},
	})
	if err != nil {
		t.Fatalf("marshal attempts: %v", err)
	}
	outer, err := json.Marshal(string(inner))
	if err != nil {
		t.Fatalf("marshal string payload: %v", err)
	}

	weaknesses := app.Aggregate([]domain.TestResult{
		{UserID: "u1", QuestionDetails: outer},
	})
	if len(weaknesses) != 1 || weaknesses[0].Subtopic != "Reading" {
		t.Fatalf("expected decoded string payload, got %+v", weaknesses)
	}
}

func TestAggregateSortsByErrorRateDescending(t *testing.T) {
	results := []domain.TestResult{
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
			{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
			{Subtopic: "Geometry", Section: "Math", IsCorrect: false},
			{Subtopic: "Reading", Section: "Verbal", IsCorrect: true},
			{Subtopic: "Reading", Section: "Verbal", IsCorrect: false},
		}),
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(weaknesses))
	}
	for i := 1; i < len(weaknesses); i++ {
		if weaknesses[i-1].ErrorRate < weaknesses[i].ErrorRate {
			t.Fatalf("output not sorted descending: %+v", weaknesses)
		}
	}
	if weaknesses[0].Subtopic != "Geometry" {
		t.Fatalf("expected Geometry (100%%) first, got %+v", weaknesses[0])
	}
}

func TestAggregateTiesKeepEncounterOrder(t *testing.T) {
	results := []domain.TestResult{
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Geometry", Section: "Math", IsCorrect: false},
			{Subtopic: "Reading", Section: "Verbal", IsCorrect: false},
		}),
	}

	weaknesses := app.Aggregate(results)
	if len(weaknesses) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(weaknesses))
	}
	if weaknesses[0].Subtopic != "Geometry" || weaknesses[1].Subtopic != "Reading" {
		t.Fatalf("expected tie broken by first encounter, got %+v", weaknesses)
	}
}

func TestAggregateConservesCountsAndIsIdempotent(t *testing.T) {
	results := []domain.TestResult{
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
			{Subtopic: "Algebra", Section: "Math", IsCorrect: false},
			{Subtopic: "Reading", Section: "Verbal", IsCorrect: false},
		}),
		resultWithAttempts(t, "u1", []domain.QuestionAttempt{
			{Subtopic: "Geometry", Section: "Math", IsCorrect: true},
		}),
	}

	first := app.Aggregate(results)

	totalAttempts := 0
	for _, w := range first {
		totalAttempts += w.CorrectAnswers + w.IncorrectAnswers
		if w.TotalQuestions != w.CorrectAnswers+w.IncorrectAnswers {
			t.Fatalf("total mismatch in %+v", w)
		}
		if w.ErrorRate < 0 || w.ErrorRate > 100 {
			t.Fatalf("error rate out of range in %+v", w)
		}
	}
	if totalAttempts != 4 {
		t.Fatalf("expected 4 attempts accounted for, got %d", totalAttempts)
	}

	second := app.Aggregate(results)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeUserReturnsRankedReport(t *testing.T) {
	loader := memory.NewStaticResultLoader(map[string][]domain.TestResult{
		"u1": {
			resultWithAttempts(t, "u1", []domain.QuestionAttempt{
				{Subtopic: "Algebra", Section: "Math", IsCorrect: true},
				{Subtopic: "Algebra", Section: "Math", IsCorrect: false},
			}),
		},
	})
	service := app.NewWeaknessService(loader, []string{"GMAT Onboarding Test"})

	report, err := service.AnalyzeUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.UserID != "u1" {
		t.Fatalf("unexpected user id %q", report.UserID)
	}
	if report.TotalAreasAnalyzed != len(report.Weaknesses) || report.TotalAreasAnalyzed != 1 {
		t.Fatalf("unexpected report shape %+v", report)
	}
}

func TestAnalyzeUserNoResults(t *testing.T) {
	loader := memory.NewStaticResultLoader(map[string][]domain.TestResult{})
	service := app.NewWeaknessService(loader, []string{"GMAT Onboarding Test"})

	_, err := service.AnalyzeUser(context.Background(), "missing")
	if err != domain.ErrNoTestResults {
		t.Fatalf("expected ErrNoTestResults, got %v", err)
	}
}

func TestAnalyzeUserAllRecordsMalformed(t *testing.T) {
	loader := memory.NewStaticResultLoader(map[string][]domain.TestResult{
		"u1": {
			{UserID: "u1", QuestionDetails: json.RawMessage(`"{{{not json"`)},
		},
	})
	service := app.NewWeaknessService(loader, []string{"GMAT Onboarding Test"})

	_, err := service.AnalyzeUser(context.Background(), "u1")
	if err != domain.ErrNoTestResults {
		t.Fatalf("expected ErrNoTestResults when nothing decodes, got %v", err)
	}
}

func resultWithAttempts(t *testing.T, userID string, attempts []domain.QuestionAttempt) domain.TestResult {
	t.Helper()
	data, err := json.Marshal(attempts)
	if err != nil {
		t.Fatalf("marshal attempts: %v", err)
	}
	return domain.TestResult{
		UserID:          userID,
		TestType:        "GMAT Onboarding Test",
		QuestionDetails: data,
	}
}
