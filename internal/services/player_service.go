package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/internal/player"
)

// ProgressStore combines the read and write sides of completion data
type ProgressStore interface {
	ProgressReader
	ProgressWriter
	// AverageQuizScore returns the mean passing score across a user's completed
	// modules of one course, or false when the user has completed none
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the average, whether any completions exist, and an error if any.
	AverageQuizScore(ctx context.Context, userID string, courseID int) (int, bool, error)
}

// CertificateWriter defines the write side of certificate data access
type CertificateWriter interface {
	// Create issues a certificate, absorbing reissue attempts
	//
	// "ctx" is the context for the request.
	// "cert" is the certificate to issue.
	//
	// Returns an error if any.
	Create(ctx context.Context, cert *models.Certificate) error
}

// CertificateStore combines certificate reads and writes
type CertificateStore interface {
	CertificateRepository
	CertificateWriter
}

type sessionKey struct {
	userID string
	slug   string
}

// sessionEntry serializes all access to one session; handlers hit the same
// session from concurrent requests
type sessionEntry struct {
	mu      sync.Mutex
	session *player.Session
}

type playerService struct {
	courseRepo  CourseRepository
	moduleRepo  ModuleRepository
	accessRepo  AccessRepository
	profileRepo ProfileRepository
	progress    ProgressStore
	certRepo    CertificateStore
	assembler   CourseAssembler
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry
}

// NewPlayerService creates the course player service. It keeps one live
// session per (user, course) pair; starting a session again replaces the old
// one, rebuilt from persisted progress.
func NewPlayerService(
	courseRepo CourseRepository,
	moduleRepo ModuleRepository,
	accessRepo AccessRepository,
	profileRepo ProfileRepository,
	progress ProgressStore,
	certRepo CertificateStore,
	assembler CourseAssembler,
	logger *zap.Logger,
) *playerService {
	return &playerService{
		courseRepo:  courseRepo,
		moduleRepo:  moduleRepo,
		accessRepo:  accessRepo,
		profileRepo: profileRepo,
		progress:    progress,
		certRepo:    certRepo,
		assembler:   assembler,
		logger:      logger,
		sessions:    make(map[sessionKey]*sessionEntry),
	}
}

// StartSession opens (or reopens) a learner's session for one course, seeded
// from persisted progress. Access is evaluated fresh here, never carried over
// from a previous session.
func (s *playerService) StartSession(ctx context.Context, userID, slug string, isInternal bool) (player.SessionView, error) {
	course, err := s.loadCourse(ctx, slug, isInternal)
	if err != nil {
		return player.SessionView{}, err
	}

	premiumAccess, err := s.premiumAccess(ctx, userID, course.ID)
	if err != nil {
		return player.SessionView{}, err
	}

	modules, err := s.assembler.AssembleCourse(ctx, course.ID)
	if err != nil {
		return player.SessionView{}, fmt.Errorf("failed to assemble course: %w", err)
	}

	completedLessons, err := s.progress.CompletedLessonIDs(ctx, userID, course.ID)
	if err != nil {
		return player.SessionView{}, fmt.Errorf("failed to get completed lessons: %w", err)
	}
	completedModules, err := s.progress.CompletedModuleIDs(ctx, userID, course.ID)
	if err != nil {
		return player.SessionView{}, fmt.Errorf("failed to get completed modules: %w", err)
	}

	courseID := course.ID
	recorder := newAsyncRecorder(userID, s.progress, func(ctx context.Context) {
		s.maybeIssueCertificate(ctx, userID, courseID, premiumAccess)
	}, s.logger)

	session := player.NewSession(userID, courseID, modules, premiumAccess, completedLessons, completedModules, recorder)

	key := sessionKey{userID: userID, slug: slug}
	s.mu.Lock()
	s.sessions[key] = &sessionEntry{session: session}
	s.mu.Unlock()

	return session.View(), nil
}

// EndSession drops a learner's live session, if any
func (s *playerService) EndSession(userID, slug string) {
	s.mu.Lock()
	delete(s.sessions, sessionKey{userID: userID, slug: slug})
	s.mu.Unlock()
}

// GetView returns a snapshot of the learner's session
func (s *playerService) GetView(userID, slug string) (player.SessionView, error) {
	return s.withSession(userID, slug, func(*player.Session) error {
		return nil
	})
}

// EnterModule opens a module at its first lesson
func (s *playerService) EnterModule(userID, slug string, moduleID int) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		return session.EnterModule(moduleID)
	})
}

// SelectLesson jumps to a lesson inside the current module
func (s *playerService) SelectLesson(userID, slug string, lessonIndex int) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		return session.SelectLesson(lessonIndex)
	})
}

// CompleteLesson marks a lesson done and advances
func (s *playerService) CompleteLesson(userID, slug, lessonID string) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		return session.CompleteLesson(lessonID)
	})
}

// SelectQuizAnswer records an answer on the open quiz attempt
func (s *playerService) SelectQuizAnswer(userID, slug string, questionIndex, optionIndex int) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		return session.SelectQuizAnswer(questionIndex, optionIndex)
	})
}

// SubmitQuiz grades the open attempt and returns the result with the
// post-submission view
func (s *playerService) SubmitQuiz(userID, slug string) (*player.QuizResult, player.SessionView, error) {
	var result *player.QuizResult
	view, err := s.withSession(userID, slug, func(session *player.Session) error {
		r, err := session.SubmitQuiz()
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, player.SessionView{}, err
	}
	return result, view, nil
}

// RetryQuiz resets the open attempt
func (s *playerService) RetryQuiz(userID, slug string) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		return session.RetryQuiz()
	})
}

// ExitToDashboard leaves the current lesson or quiz
func (s *playerService) ExitToDashboard(userID, slug string) (player.SessionView, error) {
	return s.withSession(userID, slug, func(session *player.Session) error {
		session.ExitToDashboard()
		return nil
	})
}

// IssueCertificate hands back the learner's certificate for a completed
// course, issuing it if the background path has not yet. An incomplete course
// is refused.
func (s *playerService) IssueCertificate(ctx context.Context, userID, slug string, isInternal bool) (*models.Certificate, error) {
	course, err := s.loadCourse(ctx, slug, isInternal)
	if err != nil {
		return nil, err
	}

	existing, err := s.certRepo.GetByUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	premiumAccess, err := s.premiumAccess(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}

	complete, err := s.courseComplete(ctx, userID, course.ID, premiumAccess)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, fmt.Errorf("course is not complete yet")
	}

	score, ok, err := s.progress.AverageQuizScore(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute quiz score: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("course is not complete yet")
	}

	cert := &models.Certificate{UserID: userID, CourseID: course.ID, Score: score}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}

	// re-read so a concurrent issue converges on the stored row
	stored, err := s.certRepo.GetByUserAndCourse(ctx, userID, course.ID)
	if err != nil || stored == nil {
		return cert, nil
	}
	return stored, nil
}

// premiumAccess decides whether premium-tier modules are unlocked for this
// user on this course: a premium profile, or a purchased/granted access
// record. Evaluated fresh on every session start, never cached across an
// access mutation (e.g. right after a purchase webhook grant).
func (s *playerService) premiumAccess(ctx context.Context, userID string, courseID int) (bool, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get profile: %w", err)
	}
	access, err := s.accessRepo.Get(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to get course access: %w", err)
	}
	return player.HasPremiumAccess(profile.Tier, access), nil
}

func (s *playerService) loadCourse(ctx context.Context, slug string, isInternal bool) (*models.Course, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Visibility == models.CourseVisibilityInternal && !isInternal {
		return nil, fmt.Errorf("course not found")
	}
	return course, nil
}

func (s *playerService) entry(userID, slug string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionKey{userID: userID, slug: slug}]
	if !ok {
		return nil, fmt.Errorf("no active session for this course")
	}
	return entry, nil
}

func (s *playerService) withSession(userID, slug string, fn func(*player.Session) error) (player.SessionView, error) {
	entry, err := s.entry(userID, slug)
	if err != nil {
		return player.SessionView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry.session); err != nil {
		return player.SessionView{}, err
	}
	return entry.session.View(), nil
}

// courseComplete reports whether every module the user can access is completed
func (s *playerService) courseComplete(ctx context.Context, userID string, courseID int, premiumAccess bool) (bool, error) {
	modules, err := s.moduleRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to get modules: %w", err)
	}

	completedIDs, err := s.progress.CompletedModuleIDs(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to get completed modules: %w", err)
	}
	completed := make(map[int]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	accessible := 0
	for i := range modules {
		if player.ModuleLocked(&modules[i], premiumAccess) {
			continue
		}
		accessible++
		if !completed[modules[i].ID] {
			return false, nil
		}
	}
	return accessible > 0, nil
}

// maybeIssueCertificate issues a certificate in the background once the last
// accessible module lands. It runs in the recorder goroutine right after a
// module completion row is written, so the persisted state it reads includes
// the module that triggered it.
func (s *playerService) maybeIssueCertificate(ctx context.Context, userID string, courseID int, premiumAccess bool) {
	complete, err := s.courseComplete(ctx, userID, courseID, premiumAccess)
	if err != nil {
		s.logger.Warn("certificate check failed",
			zap.Int("course_id", courseID), zap.Error(err))
		return
	}
	if !complete {
		return
	}

	score, ok, err := s.progress.AverageQuizScore(ctx, userID, courseID)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("certificate check failed to compute score",
				zap.Int("course_id", courseID), zap.Error(err))
		}
		return
	}

	cert := &models.Certificate{UserID: userID, CourseID: courseID, Score: score}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		s.logger.Warn("failed to issue certificate",
			zap.String("user_id", userID),
			zap.Int("course_id", courseID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("certificate issued",
		zap.String("user_id", userID),
		zap.Int("course_id", courseID),
		zap.Int("score", score),
	)
}
