package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"edututor-service/internal/domain"
)

func TestStoreAttemptsOrderedByTime(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	// Saved out of order; listing must come back oldest-first.
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		err := store.SaveAttempt(ctx, domain.ScoredAttempt{
			ID:          "a" + offset.String(),
			UserID:      "u1",
			CompletedAt: base.Add(offset),
			Correct:     1,
			Total:       2,
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	attempts, err := store.ListAttempts(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	for i := 1; i < len(attempts); i++ {
		if attempts[i].CompletedAt.Before(attempts[i-1].CompletedAt) {
			t.Fatalf("attempts out of order: %+v", attempts)
		}
	}
}

func TestStoreClassAttempts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	_ = store.SaveAttempt(ctx, domain.ScoredAttempt{ID: "a1", UserID: "u1", CompletedAt: base})
	_ = store.SaveAttempt(ctx, domain.ScoredAttempt{ID: "a2", UserID: "u2", CompletedAt: base.Add(time.Minute)})

	attempts, err := store.ListClassAttempts(ctx)
	if err != nil {
		t.Fatalf("list class: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts across users, got %d", len(attempts))
	}
}

func TestStoreProfiles(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.GetProfile(ctx, "missing"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	_ = store.SaveProfile(ctx, domain.StudentProfile{UserID: "u1", Role: "student"})
	_ = store.SaveProfile(ctx, domain.StudentProfile{UserID: "t1", Role: "educator"})

	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.UserID != "u1" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	students, err := store.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 1 || students[0].UserID != "u1" {
		t.Fatalf("expected only the student profile, got %+v", students)
	}
}
