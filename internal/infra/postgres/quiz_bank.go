// Package postgres persists generated quizzes as JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edututor-service/internal/domain"
)

// QuizBank stores and loads quiz JSONB from Postgres.
type QuizBank struct {
	pool *pgxpool.Pool
}

func NewQuizBank(pool *pgxpool.Pool) *QuizBank {
	return &QuizBank{pool: pool}
}

func (b *QuizBank) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = b.pool.Exec(ctx,
		`INSERT INTO quizzes (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		quiz.ID, data)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (b *QuizBank) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
