package app

import (
	"context"
	"log"
	"sort"

	"weakness-analysis-service/internal/domain"
)

// ResultRepository abstracts how onboarding test results are fetched
// (Postgres, in-memory, etc).
type ResultRepository interface {
	ListResults(ctx context.Context, userID string, testTypes []string) ([]domain.TestResult, error)
}

// WeaknessService contains the weakness analysis use case.
type WeaknessService struct {
	results   ResultRepository
	testTypes []string
}

func NewWeaknessService(results ResultRepository, testTypes []string) *WeaknessService {
	return &WeaknessService{results: results, testTypes: testTypes}
}

// AnalyzeUser fetches a user's onboarding test history and returns their weak
// areas ranked by error rate. It returns domain.ErrNoTestResults when the user
// has no matching rows, or when every row was malformed and contributed
// nothing to the analysis.
func (s *WeaknessService) AnalyzeUser(ctx context.Context, userID string) (domain.WeaknessReport, error) {
	results, err := s.results.ListResults(ctx, userID, s.testTypes)
	if err != nil {
		return domain.WeaknessReport{}, err
	}
	if len(results) == 0 {
		return domain.WeaknessReport{}, domain.ErrNoTestResults
	}

	weaknesses := Aggregate(results)
	if len(weaknesses) == 0 {
		return domain.WeaknessReport{}, domain.ErrNoTestResults
	}

	return domain.WeaknessReport{
		UserID:             userID,
		Weaknesses:         weaknesses,
		TotalAreasAnalyzed: len(weaknesses),
	}, nil
}

// accumulator collects per-group counts while results are consumed.
type accumulator struct {
	correct   int
	incorrect int
	total     int
}

// Aggregate groups question attempts by (subtopic, section), counts outcomes,
// and returns the groups ranked by error rate descending. Ties keep the order
// in which the groups were first encountered. Malformed records are skipped
// with a log line; the rest of the input still contributes.
func Aggregate(results []domain.TestResult) []domain.WeaknessStat {
	stats := make(map[domain.GroupKey]*accumulator)
	order := make([]domain.GroupKey, 0)

	for _, result := range results {
		attempts, err := result.Attempts()
		if err != nil {
			log.Printf("skipping malformed test record for user %s: %v", result.UserID, err)
			continue
		}
		for _, attempt := range attempts {
			attempt = attempt.Normalize()
			key := domain.GroupKey{Subtopic: attempt.Subtopic, Section: attempt.Section}
			acc, ok := stats[key]
			if !ok {
				acc = &accumulator{}
				stats[key] = acc
				order = append(order, key)
			}
			if attempt.IsCorrect {
				acc.correct++
			} else {
				acc.incorrect++
			}
			acc.total++
		}
	}

	// Accumulators only exist once an attempt has been counted, so total is
	// always >= 1 here and the error rate is well defined.
	weaknesses := make([]domain.WeaknessStat, 0, len(order))
	for _, key := range order {
		acc := stats[key]
		weaknesses = append(weaknesses, domain.WeaknessStat{
			Subtopic:         key.Subtopic,
			Section:          key.Section,
			ErrorRate:        float64(acc.incorrect) / float64(acc.total) * 100,
			TotalQuestions:   acc.total,
			CorrectAnswers:   acc.correct,
			IncorrectAnswers: acc.incorrect,
		})
	}

	sort.SliceStable(weaknesses, func(i, j int) bool {
		return weaknesses[i].ErrorRate > weaknesses[j].ErrorRate
	})
	return weaknesses
}
