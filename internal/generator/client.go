// Package generator produces quiz questions, either through a hosted
// text-generation model or from deterministic templates when the model is
// unavailable.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"edututor-service/internal/domain"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co"
	requestTimeout = 30 * time.Second
)

// Client calls a HuggingFace-style inference endpoint and parses the
// completion into quiz questions. Generation degrades to template questions
// on any transport, API, or parse failure; a student always gets a quiz.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiKey, model string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

func (c *Client) Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.QuizQuestion, error) {
	text, err := c.complete(ctx, buildPrompt(topic, difficulty, count))
	if err != nil {
		c.log.Warn("model unavailable, using template quiz", zap.String("topic", topic), zap.Error(err))
		return TemplateQuestions(topic, difficulty, count), nil
	}
	questions := ParseQuestions(text, count)
	if len(questions) == 0 {
		c.log.Warn("model output unparseable, using template quiz", zap.String("topic", topic))
		return TemplateQuestions(topic, difficulty, count), nil
	}
	return questions, nil
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
}

type inferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxLength:   1000,
			Temperature: 0.7,
			DoSample:    true,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference api status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// The inference API returns either a list of completions or a single
	// object depending on the model.
	var list []inferenceResponse
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}
	var single inferenceResponse
	if err := json.Unmarshal(data, &single); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	return single.GeneratedText, nil
}

func buildPrompt(topic string, difficulty domain.Difficulty, count int) string {
	return fmt.Sprintf(`Generate %d multiple choice questions about %s at %s difficulty level.

Format each question exactly as follows:
Question: [Question text]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
Correct Answer: [A, B, C, or D]
Explanation: [Brief explanation of the correct answer]

Topic: %s
Difficulty: %s
Number of questions: %d

Questions:
`, count, topic, difficulty, topic, difficulty, count)
}
