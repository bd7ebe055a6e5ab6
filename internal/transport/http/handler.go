// Package http exposes the platform over a JSON REST API plus a websocket
// class activity feed.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"edututor-service/internal/app"
	"edututor-service/internal/domain"
)

type Handler struct {
	service *app.StudyService
	log     *zap.Logger
}

func NewHandler(service *app.StudyService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/attempts", h.submitAttempt)
	mux.HandleFunc("GET /api/students/{id}/history", h.history)
	mux.HandleFunc("GET /api/students/{id}/analytics", h.studentAnalytics)
	mux.HandleFunc("GET /api/students/{id}/profile", h.profile)
	mux.HandleFunc("POST /api/students/{id}/courses/sync", h.syncCourses)
	mux.HandleFunc("GET /api/class/analytics", h.classAnalytics)
	mux.HandleFunc("GET /api/class/students", h.students)
	mux.HandleFunc("GET /ws/class", h.serveClassFeed)
}

type createQuizRequest struct {
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Questions  int               `json:"questions"`
}

// quizView is the quiz as shown to a student: answer keys and explanations
// stay server-side until the attempt is scored.
type quizView struct {
	ID         string             `json:"id"`
	Topic      string             `json:"topic"`
	Difficulty domain.Difficulty  `json:"difficulty"`
	CreatedAt  time.Time          `json:"createdAt"`
	Questions  []quizQuestionView `json:"questions"`
}

type quizQuestionView struct {
	ID      string          `json:"id"`
	Prompt  string          `json:"prompt"`
	Choices []domain.Choice `json:"choices"`
}

func newQuizView(quiz domain.Quiz) quizView {
	view := quizView{
		ID:         quiz.ID,
		Topic:      quiz.Topic,
		Difficulty: quiz.Difficulty,
		CreatedAt:  quiz.CreatedAt,
		Questions:  make([]quizQuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, quizQuestionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Choices: q.Choices,
		})
	}
	return view
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		h.writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), req.Topic, req.Difficulty, req.Questions)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newQuizView(quiz))
}

type submitRequest struct {
	UserID  string          `json:"userId"`
	Answers []answerPayload `json:"answers"`
}

type answerPayload struct {
	QuestionID  string `json:"questionId"`
	Choice      string `json:"choice"`
	TimeTakenMs int64  `json:"timeTakenMs"`
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	answers := make([]domain.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.SubmittedAnswer{
			QuestionID: a.QuestionID,
			Choice:     a.Choice,
			TimeTaken:  time.Duration(a.TimeTakenMs) * time.Millisecond,
		})
	}

	attempt, err := h.service.SubmitAttempt(r.Context(), req.UserID, quizID, answers)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.History(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) studentAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.StudentAnalytics(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

type syncRequest struct {
	Token string `json:"token"`
}

func (h *Handler) syncCourses(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		h.writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	courses, err := h.service.SyncCourses(r.Context(), r.PathValue("id"), req.Token)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, courses)
}

func (h *Handler) classAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.ClassAnalytics(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) students(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.Students(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profiles)
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var alignErr *domain.AlignmentError
	switch {
	case errors.As(err, &alignErr), errors.Is(err, domain.ErrEmptyQuiz):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrProfileNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrSyncNotConfigured):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorPayload{Message: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}
