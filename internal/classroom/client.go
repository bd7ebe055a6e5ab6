// Package classroom lists a user's courses from the Google Classroom REST
// API. Token acquisition is the caller's concern; this client only spends
// the token it is handed.
package classroom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"edututor-service/internal/domain"
)

const (
	defaultBaseURL = "https://classroom.googleapis.com"
	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type coursesResponse struct {
	Courses []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Section string `json:"section"`
	} `json:"courses"`
}

// Courses returns the active courses visible to the token's owner.
func (c *Client) Courses(ctx context.Context, token string) ([]domain.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/courses?courseStates=ACTIVE", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classroom request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classroom api status %d", resp.StatusCode)
	}

	var payload coursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode classroom response: %w", err)
	}

	courses := make([]domain.Course, 0, len(payload.Courses))
	for _, course := range payload.Courses {
		courses = append(courses, domain.Course{
			ID:      course.ID,
			Name:    course.Name,
			Section: course.Section,
		})
	}
	return courses, nil
}
