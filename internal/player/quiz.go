package player

import (
	"errors"
	"fmt"
	"math"

	"github.com/agentiqhub/backend/internal/models"
)

// PassThreshold is the minimum quiz score that completes a module.
const PassThreshold = 70

var (
	ErrNoQuestions    = errors.New("quiz has no questions")
	ErrNotAllAnswered = errors.New("all questions must be answered before submitting")
	ErrQuestionIndex  = errors.New("question index out of range")
	ErrOptionIndex    = errors.New("option index out of range")
)

// QuizResult is the frozen outcome of a submitted attempt.
type QuizResult struct {
	Score    int              `json:"score"`
	Correct  int              `json:"correct"`
	Total    int              `json:"total"`
	Passed   bool             `json:"passed"`
	Review   []QuestionReview `json:"review"`
}

// QuestionReview pairs one question with the learner's choice for the
// post-submission review list. Option texts ride along so the review renders
// without the original question set at hand.
type QuestionReview struct {
	Question      string `json:"question"`
	Chosen        int    `json:"chosen"`
	ChosenOption  string `json:"chosenOption"`
	CorrectChoice int    `json:"correctChoice"`
	CorrectOption string `json:"correctOption"`
	IsCorrect     bool   `json:"isCorrect"`
}

// QuizAttempt tracks a single in-flight run through a module's quiz.
// Answers may be changed freely until Submit; after that the attempt is
// immutable and the cached result is returned for repeat submissions.
type QuizAttempt struct {
	questions []models.QuizQuestion
	answers   []*int
	submitted bool
	result    *QuizResult
}

// NewQuizAttempt validates the question set and starts an attempt with all
// answers unset. "questions" must be non-empty and every Correct index must
// point at an existing option.
func NewQuizAttempt(questions []models.QuizQuestion) (*QuizAttempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i, q := range questions {
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range for %d options", i, q.Correct, len(q.Options))
		}
	}
	qs := make([]models.QuizQuestion, len(questions))
	copy(qs, questions)
	return &QuizAttempt{
		questions: qs,
		answers:   make([]*int, len(qs)),
	}, nil
}

// SelectAnswer records (or overwrites) the answer for one question.
// Calls after submission are silent no-ops so a stale client cannot mutate a
// graded attempt.
func (a *QuizAttempt) SelectAnswer(questionIndex, optionIndex int) error {
	if a.submitted {
		return nil
	}
	if questionIndex < 0 || questionIndex >= len(a.questions) {
		return ErrQuestionIndex
	}
	if optionIndex < 0 || optionIndex >= len(a.questions[questionIndex].Options) {
		return ErrOptionIndex
	}
	v := optionIndex
	a.answers[questionIndex] = &v
	return nil
}

// AnsweredCount returns how many questions currently have an answer.
func (a *QuizAttempt) AnsweredCount() int {
	n := 0
	for _, ans := range a.answers {
		if ans != nil {
			n++
		}
	}
	return n
}

// AllAnswered reports whether every question has an answer.
func (a *QuizAttempt) AllAnswered() bool {
	return a.AnsweredCount() == len(a.questions)
}

// Submitted reports whether the attempt has been graded.
func (a *QuizAttempt) Submitted() bool {
	return a.submitted
}

// QuestionCount returns the number of questions in the attempt.
func (a *QuizAttempt) QuestionCount() int {
	return len(a.questions)
}

// Questions returns the attempt's question set.
func (a *QuizAttempt) Questions() []models.QuizQuestion {
	return a.questions
}

// Answers returns a copy of the current answer slots; unanswered questions
// are nil.
func (a *QuizAttempt) Answers() []*int {
	out := make([]*int, len(a.answers))
	copy(out, a.answers)
	return out
}

// Submit grades the attempt. It fails with ErrNotAllAnswered while any
// question is unanswered. The score is the percentage of correct answers,
// rounded half away from zero; an attempt passes at PassThreshold or above.
// Submitting an already-graded attempt returns the cached result.
func (a *QuizAttempt) Submit() (*QuizResult, error) {
	if a.submitted {
		return a.result, nil
	}
	if !a.AllAnswered() {
		return nil, ErrNotAllAnswered
	}

	correct := 0
	review := make([]QuestionReview, len(a.questions))
	for i, q := range a.questions {
		chosen := *a.answers[i]
		ok := chosen == q.Correct
		if ok {
			correct++
		}
		review[i] = QuestionReview{
			Question:      q.Question,
			Chosen:        chosen,
			ChosenOption:  q.Options[chosen],
			CorrectChoice: q.Correct,
			CorrectOption: q.Options[q.Correct],
			IsCorrect:     ok,
		}
	}

	score := int(math.Round(float64(correct) / float64(len(a.questions)) * 100))
	a.result = &QuizResult{
		Score:   score,
		Correct: correct,
		Total:   len(a.questions),
		Passed:  score >= PassThreshold,
		Review:  review,
	}
	a.submitted = true
	return a.result, nil
}

// Retry resets the attempt to a fresh, unanswered state over the same
// questions.
func (a *QuizAttempt) Retry() {
	a.answers = make([]*int, len(a.questions))
	a.submitted = false
	a.result = nil
}
