// Package memory holds the local fallback implementations used when the
// remote collaborators (vector index, redis, postgres) are not configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"edututor-service/internal/domain"
)

// Store is an in-memory AttemptStore and ProfileStore. It is the startup
// fallback when no vector index is configured.
type Store struct {
	mu       sync.RWMutex
	attempts map[string][]domain.ScoredAttempt
	profiles map[string]domain.StudentProfile
}

func NewStore() *Store {
	return &Store{
		attempts: make(map[string][]domain.ScoredAttempt),
		profiles: make(map[string]domain.StudentProfile),
	}
}

func (s *Store) SaveAttempt(_ context.Context, attempt domain.ScoredAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)
	return nil
}

// ListAttempts returns a user's attempts oldest-first.
func (s *Store) ListAttempts(_ context.Context, userID string) ([]domain.ScoredAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByTime(s.attempts[userID]), nil
}

// ListClassAttempts returns every stored attempt oldest-first.
func (s *Store) ListClassAttempts(_ context.Context) ([]domain.ScoredAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.ScoredAttempt
	for _, attempts := range s.attempts {
		all = append(all, attempts...)
	}
	return sortedByTime(all), nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (domain.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.StudentProfile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Store) SaveProfile(_ context.Context, profile domain.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *Store) ListStudents(_ context.Context) ([]domain.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var students []domain.StudentProfile
	for _, profile := range s.profiles {
		if profile.Role == "student" {
			students = append(students, profile)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].UserID < students[j].UserID
	})
	return students, nil
}

func sortedByTime(attempts []domain.ScoredAttempt) []domain.ScoredAttempt {
	ordered := make([]domain.ScoredAttempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.Before(ordered[j].CompletedAt)
	})
	return ordered
}
