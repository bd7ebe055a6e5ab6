package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edututor-service/internal/domain"
	"edututor-service/internal/scoring"
)

// ErrSyncNotConfigured is returned when classroom sync is requested but no
// course provider was wired at startup.
var ErrSyncNotConfigured = errors.New("classroom sync not configured")

// QuizSource loads quiz content (from cache/backing store).
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizBank persists generated quizzes so attempts can be scored later.
type QuizBank interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// Generator produces quiz questions for a topic and difficulty.
type Generator interface {
	Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.QuizQuestion, error)
}

// AttemptStore abstracts where scored attempts live (vector index, memory).
// ListAttempts and ListClassAttempts return attempts oldest-first.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.ScoredAttempt) error
	ListAttempts(ctx context.Context, userID string) ([]domain.ScoredAttempt, error)
	ListClassAttempts(ctx context.Context) ([]domain.ScoredAttempt, error)
}

// ProfileStore abstracts student profile storage.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.StudentProfile, error)
	SaveProfile(ctx context.Context, profile domain.StudentProfile) error
	ListStudents(ctx context.Context) ([]domain.StudentProfile, error)
}

// CourseProvider lists the external classroom courses for a user token.
type CourseProvider interface {
	Courses(ctx context.Context, token string) ([]domain.Course, error)
}

// StudyService contains the platform use cases: generating quizzes, scoring
// submissions, serving history and analytics, and syncing courses.
type StudyService struct {
	quizzes   QuizSource
	bank      QuizBank
	generator Generator
	attempts  AttemptStore
	profiles  ProfileStore
	courses   CourseProvider
	feed      *Feed
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewStudyService(quizzes QuizSource, bank QuizBank, generator Generator, attempts AttemptStore, profiles ProfileStore, log *zap.Logger) *StudyService {
	return NewStudyServiceWithClock(quizzes, bank, generator, attempts, profiles, log, time.Now, uuid.NewString)
}

// NewStudyServiceWithClock is test-only for deterministic timestamps and IDs.
func NewStudyServiceWithClock(quizzes QuizSource, bank QuizBank, generator Generator, attempts AttemptStore, profiles ProfileStore, log *zap.Logger, now func() time.Time, newID func() string) *StudyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudyService{
		quizzes:   quizzes,
		bank:      bank,
		generator: generator,
		attempts:  attempts,
		profiles:  profiles,
		feed:      NewFeed(),
		log:       log,
		now:       now,
		newID:     newID,
	}
}

// SetCourseProvider wires the optional classroom integration.
func (s *StudyService) SetCourseProvider(provider CourseProvider) {
	s.courses = provider
}

const defaultQuestionCount = 5

// CreateQuiz generates a quiz, stamps identifiers, and persists it to the
// quiz bank so submissions can be scored against it later.
func (s *StudyService) CreateQuiz(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (domain.Quiz, error) {
	if count <= 0 {
		count = defaultQuestionCount
	}
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	questions, err := s.generator.Generate(ctx, topic, difficulty, count)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}

	quiz := domain.Quiz{
		ID:         s.newID(),
		Topic:      topic,
		Difficulty: difficulty,
		Questions:  questions,
		CreatedAt:  s.now(),
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = s.newID()
		}
		quiz.Questions[i].Topic = topic
		quiz.Questions[i].Difficulty = difficulty
	}

	if err := s.bank.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	s.log.Info("quiz created",
		zap.String("quizId", quiz.ID),
		zap.String("topic", topic),
		zap.String("difficulty", string(difficulty)),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// SubmitAttempt scores a submission against the quiz's answer key, persists
// the immutable result, rolls it into the student's profile, and publishes a
// class feed event. Alignment and empty-quiz failures propagate to the caller
// and nothing is persisted.
func (s *StudyService) SubmitAttempt(ctx context.Context, userID, quizID string, answers []domain.SubmittedAnswer) (domain.ScoredAttempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ScoredAttempt{}, err
	}

	attempt, err := scoring.Score(quiz.Questions, answers)
	if err != nil {
		return domain.ScoredAttempt{}, err
	}
	attempt.ID = s.newID()
	attempt.UserID = userID
	attempt.QuizID = quiz.ID
	attempt.Topic = quiz.Topic
	attempt.Difficulty = quiz.Difficulty
	attempt.CompletedAt = s.now()

	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		return domain.ScoredAttempt{}, fmt.Errorf("save attempt: %w", err)
	}
	if err := s.rollIntoProfile(ctx, attempt); err != nil {
		// The attempt itself is stored; a stale rollup is recomputed on the
		// next submission.
		s.log.Warn("profile rollup failed", zap.String("userId", userID), zap.Error(err))
	}

	s.feed.Publish(domain.ClassActivity{
		UserID:      userID,
		Topic:       attempt.Topic,
		Difficulty:  attempt.Difficulty,
		Percent:     attempt.Percent(),
		CompletedAt: attempt.CompletedAt,
	})
	s.log.Info("attempt scored",
		zap.String("userId", userID),
		zap.String("quizId", quiz.ID),
		zap.Int("correct", attempt.Correct),
		zap.Int("total", attempt.Total))
	return attempt, nil
}

func (s *StudyService) rollIntoProfile(ctx context.Context, attempt domain.ScoredAttempt) error {
	profile, err := s.profiles.GetProfile(ctx, attempt.UserID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile = domain.StudentProfile{
			UserID:    attempt.UserID,
			Name:      attempt.UserID,
			Role:      "student",
			CreatedAt: s.now(),
		}
	case err != nil:
		return err
	}

	profile.QuizCount++
	profile.TotalCorrect += attempt.Correct
	profile.TotalQuestions += attempt.Total
	if profile.TotalQuestions > 0 {
		profile.AverageScore = 100 * float64(profile.TotalCorrect) / float64(profile.TotalQuestions)
	}
	if !slices.Contains(profile.PreferredTopics, attempt.Topic) {
		profile.PreferredTopics = append(profile.PreferredTopics, attempt.Topic)
	}
	profile.UpdatedAt = s.now()
	return s.profiles.SaveProfile(ctx, profile)
}

// History returns a user's attempts newest-first for the history page.
func (s *StudyService) History(ctx context.Context, userID string) ([]domain.ScoredAttempt, error) {
	attempts, err := s.attempts.ListAttempts(ctx, userID)
	if err != nil {
		return nil, err
	}
	ordered := make([]domain.ScoredAttempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.After(ordered[j].CompletedAt)
	})
	return ordered, nil
}

// StudentAnalytics recomputes a user's snapshot from their stored attempts.
func (s *StudyService) StudentAnalytics(ctx context.Context, userID string) (domain.AnalyticsSnapshot, error) {
	attempts, err := s.attempts.ListAttempts(ctx, userID)
	if err != nil {
		return domain.AnalyticsSnapshot{}, err
	}
	return scoring.Aggregate(attempts), nil
}

// ClassAnalytics recomputes the class-wide snapshot for the educator view.
func (s *StudyService) ClassAnalytics(ctx context.Context) (domain.AnalyticsSnapshot, error) {
	attempts, err := s.attempts.ListClassAttempts(ctx)
	if err != nil {
		return domain.AnalyticsSnapshot{}, err
	}
	return scoring.Aggregate(attempts), nil
}

// Students lists profiles for the educator dashboard, best average first.
func (s *StudyService) Students(ctx context.Context) ([]domain.StudentProfile, error) {
	profiles, err := s.profiles.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].AverageScore != profiles[j].AverageScore {
			return profiles[i].AverageScore > profiles[j].AverageScore
		}
		return profiles[i].UserID < profiles[j].UserID
	})
	return profiles, nil
}

// Profile returns a single student profile.
func (s *StudyService) Profile(ctx context.Context, userID string) (domain.StudentProfile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

// SyncCourses pulls the user's classroom courses and stores them on the
// profile. The token belongs to the user; this service never manages it.
func (s *StudyService) SyncCourses(ctx context.Context, userID, token string) ([]domain.Course, error) {
	if s.courses == nil {
		return nil, ErrSyncNotConfigured
	}
	courses, err := s.courses.Courses(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile = domain.StudentProfile{
			UserID:    userID,
			Name:      userID,
			Role:      "student",
			CreatedAt: s.now(),
		}
	case err != nil:
		return nil, err
	}
	profile.SyncedCourses = courses
	profile.UpdatedAt = s.now()
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.log.Info("courses synced", zap.String("userId", userID), zap.Int("courses", len(courses)))
	return courses, nil
}

// Subscribe returns a channel that receives class activity as attempts
// complete. The caller must invoke the returned cancel function.
func (s *StudyService) Subscribe(_ context.Context) (<-chan domain.ClassActivity, func()) {
	return s.feed.Subscribe()
}
