package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"weakness-analysis-service/internal/domain"
)

// ResultLoader fetches onboarding test results from Postgres.
type ResultLoader struct {
	pool *pgxpool.Pool
}

func NewResultLoader(pool *pgxpool.Pool) *ResultLoader {
	return &ResultLoader{pool: pool}
}

func (l *ResultLoader) ListResults(ctx context.Context, userID string, testTypes []string) ([]domain.TestResult, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT user_id, test_type, question_details FROM test_results WHERE user_id=$1 AND test_type=ANY($2)`,
		userID, testTypes)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	defer rows.Close()

	var results []domain.TestResult
	for rows.Next() {
		var result domain.TestResult
		var details []byte
		if err := rows.Scan(&result.UserID, &result.TestType, &details); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		result.QuestionDetails = json.RawMessage(details)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test results: %w", err)
	}
	return results, nil
}
