package player

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentiqhub/backend/internal/models"
)

type recordedEvent struct {
	kind  CompletionKind
	id    string
	score int
}

type stubRecorder struct {
	events []recordedEvent
}

func (r *stubRecorder) RecordCompletion(kind CompletionKind, id string, quizScore int) {
	r.events = append(r.events, recordedEvent{kind: kind, id: id, score: quizScore})
}

func testModules() []models.CourseModule {
	lessons := func(moduleID, n int) []models.Lesson {
		out := make([]models.Lesson, n)
		for i := range out {
			out[i] = models.Lesson{
				ID:        fmt.Sprintf("m%d-l%d", moduleID, i+1),
				ModuleID:  moduleID,
				Title:     fmt.Sprintf("Lesson %d", i+1),
				SortOrder: i,
			}
		}
		return out
	}
	quiz := func(moduleID, n int) []models.QuizQuestion {
		out := make([]models.QuizQuestion, n)
		for i := range out {
			out[i] = models.QuizQuestion{
				ID:        moduleID*100 + i,
				ModuleID:  moduleID,
				Question:  fmt.Sprintf("Question %d", i+1),
				Options:   []string{"a", "b", "c", "d"},
				Correct:   0,
				SortOrder: i,
			}
		}
		return out
	}

	return []models.CourseModule{
		{ID: 1, CourseID: 7, Title: "Foundations", Section: "Basics", Tier: models.TierFree, SortOrder: 0, Lessons: lessons(1, 3), Quiz: quiz(1, 5)},
		{ID: 2, CourseID: 7, Title: "Deep Dive", Section: "Basics", Tier: models.TierPremium, SortOrder: 1, Lessons: lessons(2, 2), Quiz: quiz(2, 4)},
		{ID: 3, CourseID: 7, Title: "Capstone", Section: "Advanced", Tier: models.TierPremium, SortOrder: 2, Lessons: lessons(3, 1), Quiz: quiz(3, 3)},
	}
}

func TestSession_StartsOnDashboard(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})

	assert.Equal(t, ScreenDashboard, s.Screen())
	assert.Nil(t, s.CurrentModule())
	assert.Nil(t, s.CurrentLesson())
	assert.Equal(t, 0, s.Progress())
}

func TestSession_EnterModule(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})

	require.NoError(t, s.EnterModule(1))
	assert.Equal(t, ScreenLesson, s.Screen())
	require.NotNil(t, s.CurrentLesson())
	assert.Equal(t, "m1-l1", s.CurrentLesson().ID)

	err := s.EnterModule(42)
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestSession_LockedModuleRefusedWithoutStateChange(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), false, nil, nil, &stubRecorder{})

	require.NoError(t, s.EnterModule(1))
	require.NoError(t, s.SelectLesson(1))

	err := s.EnterModule(2)
	assert.ErrorIs(t, err, ErrModuleLocked)

	// the refusal leaves the learner exactly where they were
	assert.Equal(t, ScreenLesson, s.Screen())
	assert.Equal(t, 1, s.CurrentModule().ID)
	assert.Equal(t, "m1-l2", s.CurrentLesson().ID)
}

func TestSession_SelectLessonNavigatesFreely(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(1))

	require.NoError(t, s.SelectLesson(2))
	assert.Equal(t, "m1-l3", s.CurrentLesson().ID)

	// jumping backwards is allowed and completes nothing
	require.NoError(t, s.SelectLesson(0))
	assert.Equal(t, "m1-l1", s.CurrentLesson().ID)
	assert.Empty(t, s.CompletedLessons())

	assert.ErrorIs(t, s.SelectLesson(3), ErrLessonIndex)
	assert.ErrorIs(t, s.SelectLesson(-1), ErrLessonIndex)
}

func TestSession_CompleteLessonAdvancesAndRecordsOnce(t *testing.T) {
	rec := &stubRecorder{}
	s := NewSession("user-1", 7, testModules(), true, nil, nil, rec)
	require.NoError(t, s.EnterModule(1))

	require.NoError(t, s.CompleteLesson("m1-l1"))
	assert.Equal(t, "m1-l2", s.CurrentLesson().ID)
	assert.True(t, s.IsLessonComplete("m1-l1"))
	require.Len(t, rec.events, 1)
	assert.Equal(t, recordedEvent{kind: CompletionLesson, id: "m1-l1"}, rec.events[0])

	// completing the same lesson again neither duplicates nor re-records
	require.NoError(t, s.SelectLesson(0))
	require.NoError(t, s.CompleteLesson("m1-l1"))
	assert.Len(t, rec.events, 1)
	assert.Len(t, s.CompletedLessons(), 1)
	assert.Equal(t, "m1-l2", s.CurrentLesson().ID)
}

func TestSession_CompleteLessonRejectsForeignLesson(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(1))

	assert.ErrorIs(t, s.CompleteLesson("m2-l1"), ErrLessonNotHere)
}

func TestSession_LastLessonLeadsToQuiz(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(1))

	require.NoError(t, s.CompleteLesson("m1-l1"))
	require.NoError(t, s.CompleteLesson("m1-l2"))
	require.NoError(t, s.CompleteLesson("m1-l3"))

	assert.Equal(t, ScreenQuiz, s.Screen())
	require.NotNil(t, s.Attempt())
	assert.Equal(t, 5, s.Attempt().QuestionCount())
	assert.Equal(t, 0, s.Attempt().AnsweredCount())
}

func TestSession_FullRunThroughModule(t *testing.T) {
	rec := &stubRecorder{}
	s := NewSession("user-1", 7, testModules(), true, nil, nil, rec)

	require.NoError(t, s.EnterModule(1))
	for _, id := range []string{"m1-l1", "m1-l2", "m1-l3"} {
		require.NoError(t, s.CompleteLesson(id))
	}
	require.Equal(t, ScreenQuiz, s.Screen())

	// four of five correct: 80, passes
	for i := 0; i < 5; i++ {
		choice := 0
		if i == 4 {
			choice = 1
		}
		require.NoError(t, s.SelectQuizAnswer(i, choice))
	}

	res, err := s.SubmitQuiz()
	require.NoError(t, err)
	assert.Equal(t, 80, res.Score)
	assert.True(t, res.Passed)

	assert.Equal(t, ScreenDashboard, s.Screen())
	assert.True(t, s.IsModuleComplete(1))
	assert.Equal(t, 33, s.Progress())

	require.Len(t, rec.events, 4)
	assert.Equal(t, recordedEvent{kind: CompletionModule, id: "1", score: 80}, rec.events[3])
}

func TestSession_FailingQuizChangesNoCompletionState(t *testing.T) {
	rec := &stubRecorder{}
	s := NewSession("user-1", 7, testModules(), true, []string{"m1-l1", "m1-l2", "m1-l3"}, nil, rec)

	require.NoError(t, s.EnterModule(1))
	require.NoError(t, s.SelectLesson(2))
	require.NoError(t, s.CompleteLesson("m1-l3"))
	require.Equal(t, ScreenQuiz, s.Screen())

	// three of five correct: 60, fails
	for i := 0; i < 5; i++ {
		choice := 0
		if i >= 3 {
			choice = 1
		}
		require.NoError(t, s.SelectQuizAnswer(i, choice))
	}

	res, err := s.SubmitQuiz()
	require.NoError(t, err)
	assert.Equal(t, 60, res.Score)
	assert.False(t, res.Passed)

	assert.Equal(t, ScreenDashboard, s.Screen())
	assert.False(t, s.IsModuleComplete(1))
	assert.Equal(t, 0, s.Progress())
	assert.Empty(t, rec.events)
}

func TestSession_SubmitRequiresAllAnswers(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, []string{"m3-l1"}, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(3))
	require.NoError(t, s.CompleteLesson("m3-l1"))
	require.Equal(t, ScreenQuiz, s.Screen())

	require.NoError(t, s.SelectQuizAnswer(0, 0))
	_, err := s.SubmitQuiz()
	assert.ErrorIs(t, err, ErrNotAllAnswered)
	assert.Equal(t, ScreenQuiz, s.Screen())
}

func TestSession_RetryQuizResetsAnswers(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, []string{"m3-l1"}, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(3))
	require.NoError(t, s.CompleteLesson("m3-l1"))

	require.NoError(t, s.SelectQuizAnswer(0, 1))
	require.NoError(t, s.SelectQuizAnswer(1, 1))
	require.NoError(t, s.RetryQuiz())
	assert.Equal(t, 0, s.Attempt().AnsweredCount())
	assert.Equal(t, ScreenQuiz, s.Screen())
}

func TestSession_PassingTwiceRecordsModuleOnce(t *testing.T) {
	rec := &stubRecorder{}
	s := NewSession("user-1", 7, testModules(), true, []string{"m3-l1"}, []int{3}, rec)

	require.NoError(t, s.EnterModule(3))
	require.NoError(t, s.CompleteLesson("m3-l1"))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SelectQuizAnswer(i, 0))
	}

	res, err := s.SubmitQuiz()
	require.NoError(t, err)
	assert.True(t, res.Passed)

	// the module was already complete, so nothing new is persisted
	assert.Empty(t, rec.events)
	assert.Len(t, s.CompletedModules(), 1)
}

func TestSession_ExitToDashboardDiscardsAttempt(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, []string{"m3-l1"}, nil, &stubRecorder{})
	require.NoError(t, s.EnterModule(3))
	require.NoError(t, s.CompleteLesson("m3-l1"))
	require.NoError(t, s.SelectQuizAnswer(0, 0))

	s.ExitToDashboard()
	assert.Equal(t, ScreenDashboard, s.Screen())
	assert.Nil(t, s.Attempt())

	// re-entering starts a fresh attempt with no carried-over answers
	require.NoError(t, s.EnterModule(3))
	require.NoError(t, s.CompleteLesson("m3-l1"))
	assert.Equal(t, 0, s.Attempt().AnsweredCount())
}

func TestSession_Progress(t *testing.T) {
	tests := []struct {
		name             string
		premiumAccess    bool
		completedModules []int
		want             int
	}{
		{"nothing complete", true, nil, 0},
		{"one of three", true, []int{1}, 33},
		{"two of three", true, []int{1, 2}, 67},
		{"all complete", true, []int{1, 2, 3}, 100},
		{"free tier counts only the free module", false, []int{1}, 100},
		{"free tier ignores premium completions", false, []int{2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("user-1", 7, testModules(), tt.premiumAccess, nil, tt.completedModules, &stubRecorder{})
			assert.Equal(t, tt.want, s.Progress())
		})
	}
}

func TestSession_ProgressWithNoAccessibleModules(t *testing.T) {
	premiumOnly := []models.CourseModule{
		{ID: 1, Tier: models.TierPremium, Lessons: []models.Lesson{{ID: "l1"}}},
	}
	s := NewSession("user-1", 7, premiumOnly, false, nil, nil, &stubRecorder{})
	assert.Equal(t, 0, s.Progress())
	assert.False(t, s.CourseComplete())

	empty := NewSession("user-1", 7, nil, true, nil, nil, &stubRecorder{})
	assert.Equal(t, 0, empty.Progress())
	assert.False(t, empty.CourseComplete())
}

func TestSession_CourseComplete(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, []int{1, 2, 3}, &stubRecorder{})
	assert.True(t, s.CourseComplete())
	assert.Equal(t, 100, s.Progress())

	partial := NewSession("user-1", 7, testModules(), true, nil, []int{1, 2}, &stubRecorder{})
	assert.False(t, partial.CourseComplete())
}

func TestSession_ModulesSortedByOrder(t *testing.T) {
	shuffled := testModules()
	shuffled[0], shuffled[2] = shuffled[2], shuffled[0]

	s := NewSession("user-1", 7, shuffled, true, nil, nil, &stubRecorder{})
	mods := s.Modules()
	require.Len(t, mods, 3)
	assert.Equal(t, 1, mods[0].ID)
	assert.Equal(t, 2, mods[1].ID)
	assert.Equal(t, 3, mods[2].ID)
}

func TestSession_View(t *testing.T) {
	s := NewSession("user-1", 7, testModules(), true, nil, nil, &stubRecorder{})

	v := s.View()
	assert.Equal(t, ScreenDashboard, v.Screen)
	assert.Nil(t, v.Module)
	assert.Nil(t, v.Quiz)

	require.NoError(t, s.EnterModule(1))
	v = s.View()
	require.NotNil(t, v.Module)
	assert.Equal(t, "Foundations", v.Module.Title)
	require.NotNil(t, v.Lesson)
	assert.Equal(t, 0, v.LessonIndex)

	require.NoError(t, s.CompleteLesson("m1-l1"))
	require.NoError(t, s.CompleteLesson("m1-l2"))
	require.NoError(t, s.CompleteLesson("m1-l3"))
	v = s.View()
	require.NotNil(t, v.Quiz)
	assert.Equal(t, 5, v.Quiz.Total)
	// the view never leaks the answer key
	for _, q := range v.Quiz.Questions {
		assert.NotEmpty(t, q.Options)
	}
}
