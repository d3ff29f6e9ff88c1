package player

import "github.com/agentiqhub/backend/internal/models"

// SessionView is the wire representation of a session's current state.
type SessionView struct {
	CourseID         int            `json:"courseId"`
	Screen           Screen         `json:"screen"`
	Progress         int            `json:"progress"`
	CourseComplete   bool           `json:"courseComplete"`
	CompletedLessons []string       `json:"completedLessons"`
	CompletedModules []int          `json:"completedModules"`
	Module           *ModuleView    `json:"module,omitempty"`
	Lesson           *models.Lesson `json:"lesson,omitempty"`
	LessonIndex      int            `json:"lessonIndex"`
	Quiz             *QuizView      `json:"quiz,omitempty"`
}

// ModuleView is the open module without answer keys or lesson bodies.
type ModuleView struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Section     string `json:"section"`
	Tier        string `json:"tier"`
	LessonCount int    `json:"lessonCount"`
	HasQuiz     bool   `json:"hasQuiz"`
}

// QuizView is the open attempt as shown to the learner. Correct answers are
// withheld until submission; Answered flags which questions have a choice.
type QuizView struct {
	Questions []QuizQuestionView `json:"questions"`
	Answers   []*int             `json:"answers"`
	Answered  int                `json:"answered"`
	Total     int                `json:"total"`
	Submitted bool               `json:"submitted"`
}

// QuizQuestionView is one question stripped of its correct index.
type QuizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// View snapshots the session for transport.
func (s *Session) View() SessionView {
	v := SessionView{
		CourseID:         s.courseID,
		Screen:           s.screen,
		Progress:         s.Progress(),
		CourseComplete:   s.CourseComplete(),
		CompletedLessons: s.CompletedLessons(),
		CompletedModules: s.CompletedModules(),
		LessonIndex:      -1,
	}
	if mod := s.CurrentModule(); mod != nil {
		v.Module = &ModuleView{
			ID:          mod.ID,
			Title:       mod.Title,
			Section:     mod.Section,
			Tier:        string(mod.Tier),
			LessonCount: len(mod.Lessons),
			HasQuiz:     len(mod.Quiz) > 0,
		}
	}
	if lesson := s.CurrentLesson(); lesson != nil {
		v.Lesson = lesson
		v.LessonIndex = s.lessonIdx
	}
	if s.screen == ScreenQuiz && s.attempt != nil {
		qs := make([]QuizQuestionView, len(s.attempt.questions))
		for i, q := range s.attempt.questions {
			qs[i] = QuizQuestionView{Question: q.Question, Options: q.Options}
		}
		v.Quiz = &QuizView{
			Questions: qs,
			Answers:   s.attempt.Answers(),
			Answered:  s.attempt.AnsweredCount(),
			Total:     s.attempt.QuestionCount(),
			Submitted: s.attempt.Submitted(),
		}
	}
	return v
}
