package player

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/agentiqhub/backend/internal/models"
)

// Screen identifies where the learner currently is inside a course session.
type Screen string

const (
	ScreenDashboard Screen = "dashboard"
	ScreenLesson    Screen = "lesson"
	ScreenQuiz      Screen = "quiz"
)

// CompletionKind tags what a recorded completion refers to.
type CompletionKind string

const (
	CompletionLesson CompletionKind = "lesson"
	CompletionModule CompletionKind = "module"
)

// CompletionRecorder persists completion events. Implementations are expected
// to be best-effort and non-blocking: the session never waits on a recorder
// and never surfaces its failures to the learner.
type CompletionRecorder interface {
	// "kind" is what completed, "id" the lesson ID or module ID as a string,
	// "quizScore" the passing score for module completions (0 for lessons).
	RecordCompletion(kind CompletionKind, id string, quizScore int)
}

var (
	ErrModuleNotFound = errors.New("module not found in course")
	ErrModuleLocked   = errors.New("module is locked")
	ErrModuleEmpty    = errors.New("module has no lessons")
	ErrNotOnLesson    = errors.New("no lesson is currently open")
	ErrNotOnQuiz      = errors.New("no quiz is currently open")
	ErrLessonIndex    = errors.New("lesson index out of range")
	ErrLessonNotHere  = errors.New("lesson does not belong to the current module")
)

// Session is one learner's live run through one course. It owns the screen
// state machine, the completion sets, and the current quiz attempt.
//
// A Session is not safe for concurrent use; callers serialize access
// (the player service keeps a per-session mutex).
type Session struct {
	userID        string
	courseID      int
	modules       []models.CourseModule
	premiumAccess bool

	completedLessons map[string]struct{}
	completedModules map[int]struct{}

	screen    Screen
	moduleIdx int
	lessonIdx int
	attempt   *QuizAttempt

	recorder CompletionRecorder
}

// NewSession builds a session on the dashboard screen. Modules are ordered by
// SortOrder and each module's lessons and quiz questions likewise.
// "completedLessons" and "completedModules" seed the session from previously
// persisted progress.
func NewSession(userID string, courseID int, modules []models.CourseModule, premiumAccess bool,
	completedLessons []string, completedModules []int, recorder CompletionRecorder) *Session {

	ms := make([]models.CourseModule, len(modules))
	copy(ms, modules)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].SortOrder < ms[j].SortOrder })
	for i := range ms {
		sort.SliceStable(ms[i].Lessons, func(a, b int) bool { return ms[i].Lessons[a].SortOrder < ms[i].Lessons[b].SortOrder })
		sort.SliceStable(ms[i].Quiz, func(a, b int) bool { return ms[i].Quiz[a].SortOrder < ms[i].Quiz[b].SortOrder })
	}

	cl := make(map[string]struct{}, len(completedLessons))
	for _, id := range completedLessons {
		cl[id] = struct{}{}
	}
	cm := make(map[int]struct{}, len(completedModules))
	for _, id := range completedModules {
		cm[id] = struct{}{}
	}

	return &Session{
		userID:           userID,
		courseID:         courseID,
		modules:          ms,
		premiumAccess:    premiumAccess,
		completedLessons: cl,
		completedModules: cm,
		screen:           ScreenDashboard,
		moduleIdx:        -1,
		recorder:         recorder,
	}
}

// UserID returns the owning user's ID.
func (s *Session) UserID() string { return s.userID }

// CourseID returns the course this session runs through.
func (s *Session) CourseID() int { return s.courseID }

// Screen returns the current screen.
func (s *Session) Screen() Screen { return s.screen }

// PremiumAccess reports whether the session was opened with premium modules
// unlocked.
func (s *Session) PremiumAccess() bool { return s.premiumAccess }

// CurrentModule returns the open module, or nil on the dashboard.
func (s *Session) CurrentModule() *models.CourseModule {
	if s.moduleIdx < 0 {
		return nil
	}
	return &s.modules[s.moduleIdx]
}

// CurrentLesson returns the open lesson, or nil outside the lesson screen.
func (s *Session) CurrentLesson() *models.Lesson {
	if s.screen != ScreenLesson {
		return nil
	}
	return &s.modules[s.moduleIdx].Lessons[s.lessonIdx]
}

// CurrentLessonIndex returns the open lesson's index within its module, or -1.
func (s *Session) CurrentLessonIndex() int {
	if s.screen != ScreenLesson {
		return -1
	}
	return s.lessonIdx
}

// Attempt returns the in-flight quiz attempt, or nil outside the quiz screen.
func (s *Session) Attempt() *QuizAttempt { return s.attempt }

// EnterModule opens a module on its first lesson. Locked modules are refused
// with ErrModuleLocked and the session state is left unchanged.
func (s *Session) EnterModule(moduleID int) error {
	idx := -1
	for i := range s.modules {
		if s.modules[i].ID == moduleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrModuleNotFound
	}
	mod := &s.modules[idx]
	if ModuleLocked(mod, s.premiumAccess) {
		return fmt.Errorf("%w: %q", ErrModuleLocked, mod.Title)
	}
	if len(mod.Lessons) == 0 {
		return ErrModuleEmpty
	}
	s.moduleIdx = idx
	s.lessonIdx = 0
	s.screen = ScreenLesson
	s.attempt = nil
	return nil
}

// SelectLesson jumps to any lesson of the open module by index. Navigation is
// free in both directions and does not touch completion state.
func (s *Session) SelectLesson(index int) error {
	if s.screen != ScreenLesson {
		return ErrNotOnLesson
	}
	if index < 0 || index >= len(s.modules[s.moduleIdx].Lessons) {
		return ErrLessonIndex
	}
	s.lessonIdx = index
	return nil
}

// CompleteLesson marks a lesson of the open module complete and advances.
// Completion is idempotent: repeat calls neither duplicate state nor re-fire
// the recorder. After the module's last lesson the session moves to the quiz
// screen with a fresh attempt; a module without quiz questions returns to the
// dashboard instead, since only a passed quiz completes a module.
func (s *Session) CompleteLesson(lessonID string) error {
	if s.screen != ScreenLesson {
		return ErrNotOnLesson
	}
	mod := &s.modules[s.moduleIdx]
	idx := -1
	for i := range mod.Lessons {
		if mod.Lessons[i].ID == lessonID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrLessonNotHere
	}

	if _, done := s.completedLessons[lessonID]; !done {
		s.completedLessons[lessonID] = struct{}{}
		s.record(CompletionLesson, lessonID, 0)
	}

	if idx+1 < len(mod.Lessons) {
		s.lessonIdx = idx + 1
		return nil
	}

	if len(mod.Quiz) == 0 {
		s.toDashboard()
		return nil
	}
	attempt, err := NewQuizAttempt(mod.Quiz)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}
	s.attempt = attempt
	s.screen = ScreenQuiz
	return nil
}

// SelectQuizAnswer records an answer on the open attempt.
func (s *Session) SelectQuizAnswer(questionIndex, optionIndex int) error {
	if s.screen != ScreenQuiz || s.attempt == nil {
		return ErrNotOnQuiz
	}
	return s.attempt.SelectAnswer(questionIndex, optionIndex)
}

// SubmitQuiz grades the open attempt and returns to the dashboard. A passing
// score completes the module exactly once; a module already completed in an
// earlier run is not re-recorded. A failing score changes no completion state.
func (s *Session) SubmitQuiz() (*QuizResult, error) {
	if s.screen != ScreenQuiz || s.attempt == nil {
		return nil, ErrNotOnQuiz
	}
	res, err := s.attempt.Submit()
	if err != nil {
		return nil, err
	}

	mod := &s.modules[s.moduleIdx]
	if res.Passed {
		if _, done := s.completedModules[mod.ID]; !done {
			s.completedModules[mod.ID] = struct{}{}
			s.record(CompletionModule, fmt.Sprintf("%d", mod.ID), res.Score)
		}
	}
	s.toDashboard()
	return res, nil
}

// RetryQuiz resets the open attempt to unanswered.
func (s *Session) RetryQuiz() error {
	if s.screen != ScreenQuiz || s.attempt == nil {
		return ErrNotOnQuiz
	}
	s.attempt.Retry()
	return nil
}

// ExitToDashboard abandons the open module or quiz. Any in-flight attempt is
// discarded along with its answers.
func (s *Session) ExitToDashboard() {
	s.toDashboard()
}

// IsLessonComplete reports whether a lesson is in the completed set.
func (s *Session) IsLessonComplete(lessonID string) bool {
	_, ok := s.completedLessons[lessonID]
	return ok
}

// IsModuleComplete reports whether a module is in the completed set.
func (s *Session) IsModuleComplete(moduleID int) bool {
	_, ok := s.completedModules[moduleID]
	return ok
}

// CompletedLessons returns the completed lesson IDs in no particular order.
func (s *Session) CompletedLessons() []string {
	out := make([]string, 0, len(s.completedLessons))
	for id := range s.completedLessons {
		out = append(out, id)
	}
	return out
}

// CompletedModules returns the completed module IDs in no particular order.
func (s *Session) CompletedModules() []int {
	out := make([]int, 0, len(s.completedModules))
	for id := range s.completedModules {
		out = append(out, id)
	}
	return out
}

// Progress returns the whole-course completion percentage, counting completed
// modules over the modules accessible at the current access level. A course
// with no accessible modules reports 0.
func (s *Session) Progress() int {
	accessible := 0
	completed := 0
	for i := range s.modules {
		if ModuleLocked(&s.modules[i], s.premiumAccess) {
			continue
		}
		accessible++
		if _, ok := s.completedModules[s.modules[i].ID]; ok {
			completed++
		}
	}
	if accessible == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(accessible) * 100))
}

// CourseComplete reports whether every accessible module is completed.
// An empty course is never complete.
func (s *Session) CourseComplete() bool {
	accessible := 0
	for i := range s.modules {
		if ModuleLocked(&s.modules[i], s.premiumAccess) {
			continue
		}
		accessible++
		if _, ok := s.completedModules[s.modules[i].ID]; !ok {
			return false
		}
	}
	return accessible > 0
}

// Modules returns the session's modules in sort order.
func (s *Session) Modules() []models.CourseModule { return s.modules }

func (s *Session) toDashboard() {
	s.screen = ScreenDashboard
	s.moduleIdx = -1
	s.lessonIdx = 0
	s.attempt = nil
}

func (s *Session) record(kind CompletionKind, id string, score int) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordCompletion(kind, id, score)
}
