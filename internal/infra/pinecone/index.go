// Package pinecone talks to a Pinecone-style vector index over its REST API.
// Attempts and profiles are stored as vectors whose metadata carries the
// record; reads are metadata-filtered queries. When the index is not
// configured the service falls back to the in-memory store instead.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"edututor-service/internal/domain"
)

const (
	defaultDimension = 384
	requestTimeout   = 15 * time.Second

	recordTypeAttempt = "attempt"
	recordTypeProfile = "profile"
)

// Index is a REST client for one Pinecone index host.
type Index struct {
	host       string
	apiKey     string
	namespace  string
	dimension  int
	httpClient *http.Client
}

func NewIndex(host, apiKey, namespace string, dimension int) *Index {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Index{
		host:       host,
		apiKey:     apiKey,
		namespace:  namespace,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type vector struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float64      `json:"vector"`
	TopK            int            `json:"topK"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
	Namespace       string         `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

type fetchResponse struct {
	Vectors map[string]vector `json:"vectors"`
}

// SaveAttempt upserts the attempt as a vector; the full record travels in
// metadata, the embedding only serves similarity lookups.
func (x *Index) SaveAttempt(ctx context.Context, attempt domain.ScoredAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	req := upsertRequest{
		Namespace: x.namespace,
		Vectors: []vector{{
			ID:     "attempt_" + attempt.UserID + "_" + attempt.ID,
			Values: x.attemptEmbedding(attempt),
			Metadata: map[string]string{
				"recordType":  recordTypeAttempt,
				"userId":      attempt.UserID,
				"completedAt": attempt.CompletedAt.UTC().Format(time.RFC3339Nano),
				"data":        string(data),
			},
		}},
	}
	return x.post(ctx, "/vectors/upsert", req, nil)
}

// ListAttempts returns a user's attempts oldest-first.
func (x *Index) ListAttempts(ctx context.Context, userID string) ([]domain.ScoredAttempt, error) {
	return x.queryAttempts(ctx, map[string]any{
		"recordType": map[string]any{"$eq": recordTypeAttempt},
		"userId":     map[string]any{"$eq": userID},
	})
}

// ListClassAttempts returns every stored attempt oldest-first.
func (x *Index) ListClassAttempts(ctx context.Context) ([]domain.ScoredAttempt, error) {
	return x.queryAttempts(ctx, map[string]any{
		"recordType": map[string]any{"$eq": recordTypeAttempt},
	})
}

func (x *Index) queryAttempts(ctx context.Context, filter map[string]any) ([]domain.ScoredAttempt, error) {
	var resp queryResponse
	err := x.post(ctx, "/query", queryRequest{
		Vector:          make([]float64, x.dimension), // metadata-only query
		TopK:            1000,
		IncludeMetadata: true,
		Filter:          filter,
		Namespace:       x.namespace,
	}, &resp)
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.ScoredAttempt, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		raw, ok := match.Metadata["data"]
		if !ok {
			continue
		}
		var attempt domain.ScoredAttempt
		if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt %s: %w", match.ID, err)
		}
		attempts = append(attempts, attempt)
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CompletedAt.Before(attempts[j].CompletedAt)
	})
	return attempts, nil
}

func (x *Index) GetProfile(ctx context.Context, userID string) (domain.StudentProfile, error) {
	id := profileVectorID(userID)
	endpoint := "/vectors/fetch?ids=" + url.QueryEscape(id)
	if x.namespace != "" {
		endpoint += "&namespace=" + url.QueryEscape(x.namespace)
	}

	var resp fetchResponse
	if err := x.get(ctx, endpoint, &resp); err != nil {
		return domain.StudentProfile{}, err
	}
	vec, ok := resp.Vectors[id]
	if !ok {
		return domain.StudentProfile{}, domain.ErrProfileNotFound
	}
	var profile domain.StudentProfile
	if err := json.Unmarshal([]byte(vec.Metadata["data"]), &profile); err != nil {
		return domain.StudentProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}

func (x *Index) SaveProfile(ctx context.Context, profile domain.StudentProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	req := upsertRequest{
		Namespace: x.namespace,
		Vectors: []vector{{
			ID:     profileVectorID(profile.UserID),
			Values: x.profileEmbedding(profile),
			Metadata: map[string]string{
				"recordType": recordTypeProfile,
				"userId":     profile.UserID,
				"role":       profile.Role,
				"data":       string(data),
			},
		}},
	}
	return x.post(ctx, "/vectors/upsert", req, nil)
}

func (x *Index) ListStudents(ctx context.Context) ([]domain.StudentProfile, error) {
	var resp queryResponse
	err := x.post(ctx, "/query", queryRequest{
		Vector:          make([]float64, x.dimension),
		TopK:            1000,
		IncludeMetadata: true,
		Filter: map[string]any{
			"recordType": map[string]any{"$eq": recordTypeProfile},
			"role":       map[string]any{"$eq": "student"},
		},
		Namespace: x.namespace,
	}, &resp)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.StudentProfile, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		var profile domain.StudentProfile
		if err := json.Unmarshal([]byte(match.Metadata["data"]), &profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile %s: %w", match.ID, err)
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].UserID < profiles[j].UserID
	})
	return profiles, nil
}

func profileVectorID(userID string) string {
	return "user_" + userID
}

// attemptEmbedding packs a few coarse performance features and pads to the
// index dimension. A real embedding model can replace this without touching
// the storage schema.
func (x *Index) attemptEmbedding(attempt domain.ScoredAttempt) []float64 {
	values := make([]float64, x.dimension)
	values[0] = attempt.Ratio()
	values[1] = difficultyFeature(attempt.Difficulty)
	values[2] = topicFeature(attempt.Topic)
	return values
}

func (x *Index) profileEmbedding(profile domain.StudentProfile) []float64 {
	values := make([]float64, x.dimension)
	if profile.Role == "educator" {
		values[0] = 0.9
	} else {
		values[0] = 0.1
	}
	score := profile.AverageScore / 100
	if score > 1 {
		score = 1
	}
	values[1] = score
	return values
}

func difficultyFeature(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyEasy:
		return 0.2
	case domain.DifficultyHard:
		return 0.8
	}
	return 0.5
}

func topicFeature(topic string) float64 {
	var sum float64
	for _, r := range topic {
		sum += float64(r)
	}
	sum /= 1000
	if sum > 1 {
		return 1
	}
	return sum
}

func (x *Index) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.host+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return x.do(req, out)
}

func (x *Index) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.host+endpoint, nil)
	if err != nil {
		return err
	}
	return x.do(req, out)
}

func (x *Index) do(req *http.Request, out any) error {
	if x.apiKey != "" {
		req.Header.Set("Api-Key", x.apiKey)
	}
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector index request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vector index status %d for %s", resp.StatusCode, req.URL.Path)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode vector index response: %w", err)
	}
	return nil
}
