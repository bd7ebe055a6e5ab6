package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"edututor-service/internal/domain"
	"edututor-service/internal/generator"
	"edututor-service/internal/infra/memory"
)

func newFixtureService(t *testing.T) (*StudyService, *memory.QuizBank, *memory.Store) {
	t.Helper()
	bank := memory.NewQuizBank()
	cache := memory.NewQuizCache(bank, time.Minute)
	store := memory.NewStore()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	now := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	service := NewStudyServiceWithClock(cache, bank, generator.Template{}, store, store, nil, now, newID)
	return service, bank, store
}

func TestCreateQuizDefaultsAndPersists(t *testing.T) {
	service, bank, _ := newFixtureService(t)
	ctx := context.Background()

	quiz, err := service.CreateQuiz(ctx, "algebra", "", 0)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if len(quiz.Questions) != 5 {
		t.Fatalf("expected 5 default questions, got %d", len(quiz.Questions))
	}
	if quiz.Difficulty != domain.DifficultyMedium {
		t.Fatalf("expected medium default, got %s", quiz.Difficulty)
	}
	for i, q := range quiz.Questions {
		if q.ID == "" || q.Topic != "algebra" || q.Difficulty != domain.DifficultyMedium {
			t.Fatalf("question %d not stamped: %+v", i, q)
		}
	}

	stored, err := bank.LoadQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if len(stored.Questions) != 5 {
		t.Fatalf("stored quiz has %d questions", len(stored.Questions))
	}
}

func TestSubmitAttemptScoresAndRollsUp(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()

	quiz, err := service.CreateQuiz(ctx, "algebra", domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	activities, cancel := service.Subscribe(ctx)
	defer cancel()

	// Template answer keys for the first two questions are A and D.
	answers := []domain.SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, Choice: "a ", TimeTaken: 3 * time.Second},
		{QuestionID: quiz.Questions[1].ID, Choice: "B", TimeTaken: 5 * time.Second},
	}
	attempt, err := service.SubmitAttempt(ctx, "u1", quiz.ID, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Correct != 1 || attempt.Total != 2 {
		t.Fatalf("expected 1/2, got %d/%d", attempt.Correct, attempt.Total)
	}
	if attempt.QuizID != quiz.ID || attempt.UserID != "u1" || attempt.Topic != "algebra" {
		t.Fatalf("attempt not stamped: %+v", attempt)
	}
	if attempt.TimeTaken != 8*time.Second {
		t.Fatalf("expected 8s total time, got %v", attempt.TimeTaken)
	}

	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.QuizCount != 1 || profile.TotalCorrect != 1 || profile.TotalQuestions != 2 {
		t.Fatalf("unexpected rollup %+v", profile)
	}
	if profile.AverageScore != 50 {
		t.Fatalf("expected average 50, got %v", profile.AverageScore)
	}
	if len(profile.PreferredTopics) != 1 || profile.PreferredTopics[0] != "algebra" {
		t.Fatalf("unexpected topics %v", profile.PreferredTopics)
	}

	select {
	case activity := <-activities:
		if activity.UserID != "u1" || activity.Percent != 50 {
			t.Fatalf("unexpected activity %+v", activity)
		}
	case <-time.After(time.Second):
		t.Fatal("no activity published")
	}
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	service, _, _ := newFixtureService(t)

	_, err := service.SubmitAttempt(context.Background(), "u1", "nope", nil)
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitAttemptMisalignedNotPersisted(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()

	quiz, err := service.CreateQuiz(ctx, "algebra", domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	_, err = service.SubmitAttempt(ctx, "u1", quiz.ID, []domain.SubmittedAnswer{
		{QuestionID: quiz.Questions[0].ID, Choice: "A"},
	})
	var alignErr *domain.AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected AlignmentError, got %v", err)
	}

	attempts, err := store.ListAttempts(ctx, "u1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("rejected submission must not persist, got %d attempts", len(attempts))
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		attempt := domain.ScoredAttempt{
			ID:          fmt.Sprintf("a%d", i),
			UserID:      "u1",
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveAttempt(ctx, attempt); err != nil {
			t.Fatalf("save attempt: %v", err)
		}
	}

	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(history))
	}
	if history[0].ID != "a2" || history[2].ID != "a0" {
		t.Fatalf("expected newest-first order, got %+v", history)
	}
}

func TestStudentAnalyticsAggregates(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()

	store.SaveAttempt(ctx, domain.ScoredAttempt{ID: "a1", UserID: "u1", Correct: 7, Total: 10})
	store.SaveAttempt(ctx, domain.ScoredAttempt{ID: "a2", UserID: "u1", Correct: 4, Total: 5})

	snapshot, err := service.StudentAnalytics(ctx, "u1")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if snapshot.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", snapshot.Attempts)
	}
	if snapshot.Overall == nil || snapshot.Overall.Correct != 11 || snapshot.Overall.Total != 15 {
		t.Fatalf("unexpected overall %+v", snapshot.Overall)
	}
}

func TestStudentsSortedByAverage(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()

	store.SaveProfile(ctx, domain.StudentProfile{UserID: "u1", Role: "student", AverageScore: 60})
	store.SaveProfile(ctx, domain.StudentProfile{UserID: "u2", Role: "student", AverageScore: 90})
	store.SaveProfile(ctx, domain.StudentProfile{UserID: "t1", Role: "educator"})

	students, err := service.Students(ctx)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	if students[0].UserID != "u2" || students[1].UserID != "u1" {
		t.Fatalf("expected best average first, got %+v", students)
	}
}

type staticCourses struct {
	courses []domain.Course
}

func (s staticCourses) Courses(context.Context, string) ([]domain.Course, error) {
	return s.courses, nil
}

func TestSyncCourses(t *testing.T) {
	service, _, store := newFixtureService(t)
	ctx := context.Background()

	if _, err := service.SyncCourses(ctx, "u1", "tok"); !errors.Is(err, ErrSyncNotConfigured) {
		t.Fatalf("expected ErrSyncNotConfigured, got %v", err)
	}

	service.SetCourseProvider(staticCourses{courses: []domain.Course{{ID: "c1", Name: "Algebra I"}}})
	courses, err := service.SyncCourses(ctx, "u1", "tok")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}

	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(profile.SyncedCourses) != 1 || profile.SyncedCourses[0].Name != "Algebra I" {
		t.Fatalf("courses not stored on profile: %+v", profile.SyncedCourses)
	}
}
