package generator

import (
	"strings"

	"edututor-service/internal/domain"
)

// ParseQuestions reads the line-oriented completion format back into
// structured questions, capped at limit. Questions missing a prompt, an
// answer key, or at least two choices are dropped; the model does not always
// follow instructions.
func ParseQuestions(text string, limit int) []domain.QuizQuestion {
	var questions []domain.QuizQuestion
	var current *domain.QuizQuestion

	flush := func() {
		if current == nil {
			return
		}
		if current.Prompt != "" && current.AnswerKey != "" && len(current.Choices) >= 2 {
			questions = append(questions, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Question:"):
			flush()
			current = &domain.QuizQuestion{
				Prompt: strings.TrimSpace(strings.TrimPrefix(line, "Question:")),
			}
		case current != nil && isChoiceLine(line):
			current.Choices = append(current.Choices, domain.Choice{
				Key:  line[:1],
				Text: strings.TrimSpace(line[2:]),
			})
		case current != nil && strings.HasPrefix(line, "Correct Answer:"):
			current.AnswerKey = strings.TrimSpace(strings.TrimPrefix(line, "Correct Answer:"))
		case current != nil && strings.HasPrefix(line, "Explanation:"):
			current.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "Explanation:"))
		}
	}
	flush()

	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return questions
}

func isChoiceLine(line string) bool {
	if len(line) < 2 {
		return false
	}
	switch line[0] {
	case 'A', 'B', 'C', 'D':
		return line[1] == ')'
	}
	return false
}
