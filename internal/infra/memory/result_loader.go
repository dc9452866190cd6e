package memory

import (
	"context"

	"weakness-analysis-service/internal/domain"
)

// StaticResultLoader serves test results from an in-memory map (useful for
// tests and for running the service without a database).
type StaticResultLoader struct {
	results map[string][]domain.TestResult
}

func NewStaticResultLoader(results map[string][]domain.TestResult) *StaticResultLoader {
	return &StaticResultLoader{results: results}
}

func (l *StaticResultLoader) ListResults(_ context.Context, userID string, testTypes []string) ([]domain.TestResult, error) {
	allowed := make(map[string]struct{}, len(testTypes))
	for _, tt := range testTypes {
		allowed[tt] = struct{}{}
	}

	var filtered []domain.TestResult
	for _, result := range l.results[userID] {
		if _, ok := allowed[result.TestType]; ok {
			filtered = append(filtered, result)
		}
	}
	return filtered, nil
}
