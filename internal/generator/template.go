package generator

import (
	"context"
	"fmt"

	"edututor-service/internal/domain"
)

// Template is a Generator that always serves template questions. It is the
// startup default when no inference API key is configured.
type Template struct{}

func (Template) Generate(_ context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.QuizQuestion, error) {
	return TemplateQuestions(topic, difficulty, count), nil
}

type templateSpec struct {
	prompt      string
	choices     [4]string
	answerKey   string
	explanation string
}

// TemplateQuestions builds a deterministic quiz about a topic, used whenever
// the generation model fails or is not configured. Templates repeat when
// count exceeds the template pool.
func TemplateQuestions(topic string, difficulty domain.Difficulty, count int) []domain.QuizQuestion {
	specs := []templateSpec{
		{
			prompt: fmt.Sprintf("What is an important concept in %s?", topic),
			choices: [4]string{
				fmt.Sprintf("Basic principle of %s", topic),
				fmt.Sprintf("Advanced theory in %s", topic),
				fmt.Sprintf("Common misconception about %s", topic),
				"Unrelated concept",
			},
			answerKey:   "A",
			explanation: fmt.Sprintf("The basic principles form the foundation of understanding %s.", topic),
		},
		{
			prompt: fmt.Sprintf("Which of the following best describes %s?", topic),
			choices: [4]string{
				"A complex field of study",
				"An area requiring practical application",
				"A theoretical framework",
				"All of the above",
			},
			answerKey:   "D",
			explanation: fmt.Sprintf("%s encompasses theoretical knowledge and practical applications.", topic),
		},
		{
			prompt: fmt.Sprintf("What is the primary goal when studying %s?", topic),
			choices: [4]string{
				fmt.Sprintf("To memorize facts about %s", topic),
				"To understand core concepts and applications",
				"To pass examinations only",
				"To impress others with knowledge",
			},
			answerKey:   "B",
			explanation: fmt.Sprintf("Understanding core concepts and their applications is key to mastering %s.", topic),
		},
		{
			prompt: fmt.Sprintf("How can knowledge of %s be applied in real-world scenarios?", topic),
			choices: [4]string{
				"Through theoretical analysis only",
				"By solving practical problems",
				"In academic discussions exclusively",
				"It has no practical applications",
			},
			answerKey:   "B",
			explanation: fmt.Sprintf("Knowledge of %s is most valuable when applied to solve real-world problems.", topic),
		},
		{
			prompt: fmt.Sprintf("What approach is most effective for learning %s?", topic),
			choices: [4]string{
				"Cramming before deadlines",
				"Avoiding difficult material",
				"Regular practice with varied problems",
				"Reading summaries only",
			},
			answerKey:   "C",
			explanation: fmt.Sprintf("Consistent, varied practice builds durable understanding of %s.", topic),
		},
	}

	keys := [4]string{"A", "B", "C", "D"}
	questions := make([]domain.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		spec := specs[i%len(specs)]
		q := domain.QuizQuestion{
			Topic:       topic,
			Difficulty:  difficulty,
			Prompt:      spec.prompt,
			AnswerKey:   spec.answerKey,
			Explanation: spec.explanation,
		}
		for j, text := range spec.choices {
			q.Choices = append(q.Choices, domain.Choice{Key: keys[j], Text: text})
		}
		questions = append(questions, q)
	}
	return questions
}
