package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/internal/player"
)

const testSlug = "agent-foundations"

func playerTestModules() []models.CourseModule {
	return []models.CourseModule{
		{
			ID: 1, CourseID: 7, Title: "Foundations", Section: "Basics", Tier: models.TierFree, SortOrder: 0,
			Lessons: []models.Lesson{
				{ID: "l1", ModuleID: 1, SortOrder: 0},
				{ID: "l2", ModuleID: 1, SortOrder: 1},
			},
			Quiz: []models.QuizQuestion{
				{ID: 1, ModuleID: 1, Question: "q1", Options: []string{"a", "b"}, Correct: 0},
				{ID: 2, ModuleID: 1, Question: "q2", Options: []string{"a", "b"}, Correct: 1},
			},
		},
		{
			ID: 2, CourseID: 7, Title: "Workflows", Section: "Advanced", Tier: models.TierPremium, SortOrder: 1,
			Lessons: []models.Lesson{{ID: "l3", ModuleID: 2, SortOrder: 0}},
			Quiz: []models.QuizQuestion{
				{ID: 3, ModuleID: 2, Question: "q3", Options: []string{"a", "b"}, Correct: 0},
			},
		},
	}
}

func newTestPlayerService(course *models.Course, access *models.UserCourseAccess,
	progress *mockProgressStore, certs *mockCertificateRepository) *playerService {
	return newTierPlayerService(course, access, models.TierFree, progress, certs)
}

func newTierPlayerService(course *models.Course, access *models.UserCourseAccess, tier models.Tier,
	progress *mockProgressStore, certs *mockCertificateRepository) *playerService {

	return NewPlayerService(
		&mockCourseRepository{course: course},
		&mockModuleRepository{modules: playerTestModules()},
		&mockAccessRepository{access: access},
		&mockProfileStore{profile: &models.Profile{ID: "user-1", Tier: tier}},
		progress,
		certs,
		&mockAssembler{modules: playerTestModules()},
		zap.NewNop(),
	)
}

func TestPlayerService_StartSession(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Visibility: models.CourseVisibilityPublic, Price: 0}
	svc := newTestPlayerService(course, nil, &mockProgressStore{}, &mockCertificateRepository{})

	view, err := svc.StartSession(context.Background(), "user-1", testSlug, false)

	require.NoError(t, err)
	assert.Equal(t, player.ScreenDashboard, view.Screen)
	assert.Equal(t, 7, view.CourseID)
	assert.Equal(t, 0, view.Progress)
}

func TestPlayerService_StartSessionHidesInternalCourses(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Visibility: models.CourseVisibilityInternal, Price: 0}
	svc := newTestPlayerService(course, nil, &mockProgressStore{}, &mockCertificateRepository{})

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = svc.StartSession(context.Background(), "staff-1", testSlug, true)
	assert.NoError(t, err)
}

func TestPlayerService_OpsRequireASession(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	svc := newTestPlayerService(course, nil, &mockProgressStore{}, &mockCertificateRepository{})

	_, err := svc.EnterModule("user-1", testSlug, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no active session")
}

func TestPlayerService_SessionSeedsFromPersistedProgress(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	progress := &mockProgressStore{
		completedLessons: []string{"l1", "l2"},
		completedModules: []int{1},
		moduleScores:     map[int]int{1: 100},
	}
	svc := newTestPlayerService(course, nil, progress, &mockCertificateRepository{})

	view, err := svc.StartSession(context.Background(), "user-1", testSlug, false)

	require.NoError(t, err)
	assert.Contains(t, view.CompletedModules, 1)
	// free user: only the free module counts, and it is done
	assert.Equal(t, 100, view.Progress)
}

// A free course can still carry premium modules; who sees them follows the
// profile tier and grant state, not the course price.
func TestPlayerService_FreeCoursePremiumModulesFollowTier(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	progress := func() *mockProgressStore {
		return &mockProgressStore{
			completedLessons: []string{"l1", "l2"},
			completedModules: []int{1},
			moduleScores:     map[int]int{1: 100},
		}
	}

	t.Run("free profile", func(t *testing.T) {
		svc := newTierPlayerService(course, nil, models.TierFree, progress(), &mockCertificateRepository{})

		view, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
		require.NoError(t, err)
		assert.Equal(t, 100, view.Progress, "only the free module is in scope")

		_, err = svc.EnterModule("user-1", testSlug, 2)
		assert.ErrorIs(t, err, player.ErrModuleLocked)
	})

	t.Run("premium profile", func(t *testing.T) {
		svc := newTierPlayerService(course, nil, models.TierPremium, progress(), &mockCertificateRepository{})

		view, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
		require.NoError(t, err)
		assert.Equal(t, 50, view.Progress, "both modules are in scope, one is done")

		_, err = svc.EnterModule("user-1", testSlug, 2)
		assert.NoError(t, err)
	})

	t.Run("granted access on a free profile", func(t *testing.T) {
		granted := &models.UserCourseAccess{AccessType: models.AccessTypeGranted}
		svc := newTierPlayerService(course, granted, models.TierFree, progress(), &mockCertificateRepository{})

		view, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
		require.NoError(t, err)
		assert.Equal(t, 50, view.Progress)

		_, err = svc.EnterModule("user-1", testSlug, 2)
		assert.NoError(t, err)
	})
}

func TestPlayerService_LessonCompletionPersistsAsync(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	progress := &mockProgressStore{}
	svc := newTestPlayerService(course, nil, progress, &mockCertificateRepository{})

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	require.NoError(t, err)
	_, err = svc.EnterModule("user-1", testSlug, 1)
	require.NoError(t, err)

	view, err := svc.CompleteLesson("user-1", testSlug, "l1")
	require.NoError(t, err)
	assert.Equal(t, player.ScreenLesson, view.Screen)
	assert.Equal(t, 1, view.LessonIndex)

	assert.Eventually(t, func() bool {
		return progress.lessonCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPlayerService_FullRunIssuesCertificate(t *testing.T) {
	// paid course, purchased: both modules accessible
	course := &models.Course{ID: 7, Slug: testSlug, Price: 4900}
	access := &models.UserCourseAccess{AccessType: models.AccessTypePurchased}
	progress := &mockProgressStore{
		completedLessons: []string{"l1", "l2"},
		completedModules: []int{1},
		moduleScores:     map[int]int{1: 100},
	}
	certs := &mockCertificateRepository{}
	svc := newTestPlayerService(course, access, progress, certs)

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	require.NoError(t, err)

	// run the remaining premium module
	_, err = svc.EnterModule("user-1", testSlug, 2)
	require.NoError(t, err)
	_, err = svc.CompleteLesson("user-1", testSlug, "l3")
	require.NoError(t, err)
	_, err = svc.SelectQuizAnswer("user-1", testSlug, 0, 0)
	require.NoError(t, err)

	result, view, err := svc.SubmitQuiz("user-1", testSlug)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, player.ScreenDashboard, view.Screen)
	assert.Equal(t, 100, view.Progress)
	assert.True(t, view.CourseComplete)

	require.Eventually(t, func() bool {
		return certs.lastIssued() != nil
	}, time.Second, 10*time.Millisecond)
	cert := certs.lastIssued()
	assert.Equal(t, "user-1", cert.UserID)
	assert.Equal(t, 7, cert.CourseID)
	assert.Equal(t, 100, cert.Score)
}

func TestPlayerService_FailedQuizIssuesNothing(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	progress := &mockProgressStore{completedLessons: []string{"l1", "l2"}}
	certs := &mockCertificateRepository{}
	svc := newTestPlayerService(course, nil, progress, certs)

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	require.NoError(t, err)
	_, err = svc.EnterModule("user-1", testSlug, 1)
	require.NoError(t, err)
	_, err = svc.CompleteLesson("user-1", testSlug, "l2")
	require.NoError(t, err)

	// both answers wrong: 0, fails
	_, err = svc.SelectQuizAnswer("user-1", testSlug, 0, 1)
	require.NoError(t, err)
	_, err = svc.SelectQuizAnswer("user-1", testSlug, 1, 0)
	require.NoError(t, err)

	result, view, err := svc.SubmitQuiz("user-1", testSlug)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, player.ScreenDashboard, view.Screen)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, progress.moduleCount())
	assert.Nil(t, certs.lastIssued())
}

func TestPlayerService_LockedModuleRefused(t *testing.T) {
	// paid course, no access record: premium module is locked
	course := &models.Course{ID: 7, Slug: testSlug, Price: 4900}
	svc := newTestPlayerService(course, nil, &mockProgressStore{}, &mockCertificateRepository{})

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	require.NoError(t, err)

	_, err = svc.EnterModule("user-1", testSlug, 2)
	assert.ErrorIs(t, err, player.ErrModuleLocked)

	_, err = svc.EnterModule("user-1", testSlug, 1)
	assert.NoError(t, err)
}

func TestPlayerService_EndSession(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}
	svc := newTestPlayerService(course, nil, &mockProgressStore{}, &mockCertificateRepository{})

	_, err := svc.StartSession(context.Background(), "user-1", testSlug, false)
	require.NoError(t, err)

	svc.EndSession("user-1", testSlug)

	_, err = svc.GetView("user-1", testSlug)
	assert.Error(t, err)
}

func TestPlayerService_IssueCertificate(t *testing.T) {
	course := &models.Course{ID: 7, Slug: testSlug, Price: 0}

	t.Run("incomplete course refused", func(t *testing.T) {
		progress := &mockProgressStore{completedModules: []int{}}
		svc := newTestPlayerService(course, nil, progress, &mockCertificateRepository{})

		_, err := svc.IssueCertificate(context.Background(), "user-1", testSlug, false)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not complete")
	})

	t.Run("complete course issues", func(t *testing.T) {
		// free user: only the free module is accessible, and it is done
		progress := &mockProgressStore{
			completedModules: []int{1},
			moduleScores:     map[int]int{1: 80},
		}
		certs := &mockCertificateRepository{}
		svc := newTestPlayerService(course, nil, progress, certs)

		cert, err := svc.IssueCertificate(context.Background(), "user-1", testSlug, false)

		require.NoError(t, err)
		assert.Equal(t, 80, cert.Score)
		assert.Equal(t, 7, cert.CourseID)
		require.NotNil(t, certs.lastIssued())
	})

	t.Run("premium profile needs the premium module too", func(t *testing.T) {
		progress := &mockProgressStore{
			completedModules: []int{1},
			moduleScores:     map[int]int{1: 80},
		}
		svc := newTierPlayerService(course, nil, models.TierPremium, progress, &mockCertificateRepository{})

		_, err := svc.IssueCertificate(context.Background(), "user-1", testSlug, false)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not complete")
	})

	t.Run("reissue returns the stored certificate", func(t *testing.T) {
		existing := &models.Certificate{ID: 3, UserID: "user-1", CourseID: 7, Score: 95}
		certs := &mockCertificateRepository{cert: existing}
		svc := newTestPlayerService(course, nil, &mockProgressStore{}, certs)

		cert, err := svc.IssueCertificate(context.Background(), "user-1", testSlug, false)

		require.NoError(t, err)
		assert.Equal(t, existing, cert)
		assert.Nil(t, certs.lastIssued(), "no new issue on reissue")
	})
}
