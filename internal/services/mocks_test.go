package services

import (
	"context"
	"sync"

	"github.com/agentiqhub/backend/internal/clients/anthropic"
	"github.com/agentiqhub/backend/internal/models"
)

// hand-written mocks shared by the service tests in this package

type mockCourseRepository struct {
	courses      []models.CourseListItem
	course       *models.Course
	err          error
	createErr    error
	updateErr    error
	deleteErr    error
	slugExists   bool
	createCalled bool
	deleteCalled bool
}

func (m *mockCourseRepository) GetAll(ctx context.Context, includeInternal, includeInactive bool) ([]models.CourseListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

func (m *mockCourseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	m.createCalled = true
	if m.createErr != nil {
		return m.createErr
	}
	course.ID = 1
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	return m.updateErr
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	m.deleteCalled = true
	return m.deleteErr
}

func (m *mockCourseRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return m.slugExists, nil
}

type mockModuleRepository struct {
	modules       []models.CourseModule
	module        *models.CourseModule
	err           error
	getByIDErr    error
	sortOrders    map[int]int
	sortOrderErrs error
}

func (m *mockModuleRepository) GetByCourse(ctx context.Context, courseID int) ([]models.CourseModule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modules, nil
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id int) (*models.CourseModule, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.module, nil
}

func (m *mockModuleRepository) Create(ctx context.Context, module *models.CourseModule) error {
	if m.err != nil {
		return m.err
	}
	module.ID = 1
	return nil
}

func (m *mockModuleRepository) Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error {
	return m.err
}

func (m *mockModuleRepository) UpdateSortOrders(ctx context.Context, courseID int, orders map[int]int) error {
	m.sortOrders = orders
	return m.sortOrderErrs
}

func (m *mockModuleRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

type mockLessonRepository struct {
	lessons []models.Lesson
	lesson  *models.Lesson
	err     error
}

func (m *mockLessonRepository) GetByCourse(ctx context.Context, courseID int) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

func (m *mockLessonRepository) GetByModule(ctx context.Context, moduleID int) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lesson, nil
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return m.err
}

func (m *mockLessonRepository) Update(ctx context.Context, id string, req *models.UpdateLessonRequest) error {
	return m.err
}

func (m *mockLessonRepository) Delete(ctx context.Context, id string) error {
	return m.err
}

type mockQuizRepository struct {
	questions []models.QuizQuestion
	question  *models.QuizQuestion
	err       error
}

func (m *mockQuizRepository) GetByCourse(ctx context.Context, courseID int) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

func (m *mockQuizRepository) GetByModule(ctx context.Context, moduleID int) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.question, nil
}

func (m *mockQuizRepository) Create(ctx context.Context, question *models.QuizQuestion) error {
	return m.err
}

func (m *mockQuizRepository) Update(ctx context.Context, id int, req *models.UpdateQuizQuestionRequest) error {
	return m.err
}

func (m *mockQuizRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

type mockAccessRepository struct {
	mu       sync.Mutex
	access   *models.UserCourseAccess
	accesses []models.UserCourseAccess
	err      error
	upserted *models.UserCourseAccess
	deleted  bool
}

func (m *mockAccessRepository) Get(ctx context.Context, userID string, courseID int) (*models.UserCourseAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.access, nil
}

func (m *mockAccessRepository) ListByUser(ctx context.Context, userID string) ([]models.UserCourseAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.accesses, nil
}

func (m *mockAccessRepository) Upsert(ctx context.Context, access *models.UserCourseAccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserted = access
	return nil
}

func (m *mockAccessRepository) Delete(ctx context.Context, userID string, courseID int) error {
	m.deleted = true
	return m.err
}

func (m *mockAccessRepository) lastUpserted() *models.UserCourseAccess {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserted
}

// mockProgressStore guards its state with a mutex because the async recorder
// writes from a background goroutine
type mockProgressStore struct {
	mu               sync.Mutex
	completedLessons []string
	completedModules []int
	moduleScores     map[int]int
	avgScore         int
	hasAvg           bool
	err              error
	writeErr         error
}

func (m *mockProgressStore) CompletedLessonIDs(ctx context.Context, userID string, courseID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, len(m.completedLessons))
	copy(out, m.completedLessons)
	return out, nil
}

func (m *mockProgressStore) CompletedModuleIDs(ctx context.Context, userID string, courseID int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]int, len(m.completedModules))
	copy(out, m.completedModules)
	return out, nil
}

func (m *mockProgressStore) MarkLessonComplete(ctx context.Context, userID, lessonID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, id := range m.completedLessons {
		if id == lessonID {
			return nil
		}
	}
	m.completedLessons = append(m.completedLessons, lessonID)
	return nil
}

func (m *mockProgressStore) MarkModuleComplete(ctx context.Context, userID string, moduleID, quizScore int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, id := range m.completedModules {
		if id == moduleID {
			return nil
		}
	}
	m.completedModules = append(m.completedModules, moduleID)
	if m.moduleScores == nil {
		m.moduleScores = make(map[int]int)
	}
	m.moduleScores[moduleID] = quizScore
	return nil
}

func (m *mockProgressStore) AverageQuizScore(ctx context.Context, userID string, courseID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasAvg {
		return m.avgScore, true, nil
	}
	if len(m.moduleScores) == 0 {
		return 0, false, nil
	}
	sum := 0
	for _, score := range m.moduleScores {
		sum += score
	}
	return sum / len(m.moduleScores), true, nil
}

func (m *mockProgressStore) lessonCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completedLessons)
}

func (m *mockProgressStore) moduleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completedModules)
}

type mockCertificateRepository struct {
	mu     sync.Mutex
	cert   *models.Certificate
	certs  []models.Certificate
	err    error
	issued *models.Certificate
}

func (m *mockCertificateRepository) GetByUserAndCourse(ctx context.Context, userID string, courseID int) (*models.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cert, nil
}

func (m *mockCertificateRepository) ListByUser(ctx context.Context, userID string) ([]models.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.certs, nil
}

func (m *mockCertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.issued = cert
	return nil
}

func (m *mockCertificateRepository) lastIssued() *models.Certificate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}

type mockProfileStore struct {
	profile     *models.Profile
	profiles    []models.ProfileListItem
	err         error
	getErr      error
	emailExists bool
	created     *models.Profile
	updatedTier models.Tier
	customerID  string
}

func (m *mockProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileStore) GetAll(ctx context.Context) ([]models.ProfileListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profiles, nil
}

func (m *mockProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	if m.err != nil {
		return m.err
	}
	m.created = profile
	return nil
}

func (m *mockProfileStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailExists, nil
}

func (m *mockProfileStore) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	if m.err != nil {
		return m.err
	}
	m.updatedTier = tier
	return nil
}

func (m *mockProfileStore) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	m.customerID = customerID
	return m.err
}

// freeProfileStore returns a store holding one free-tier profile, the common
// case for access tests
func freeProfileStore() *mockProfileStore {
	return &mockProfileStore{profile: &models.Profile{ID: "user-1", Tier: models.TierFree}}
}

type mockAssembler struct {
	modules []models.CourseModule
	err     error
}

func (m *mockAssembler) AssembleCourse(ctx context.Context, courseID int) ([]models.CourseModule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modules, nil
}

type mockCompleter struct {
	reply       string
	err         error
	gotSystem   string
	gotMessages []anthropic.Message
}

func (m *mockCompleter) Complete(ctx context.Context, system string, messages []anthropic.Message) (string, error) {
	m.gotSystem = system
	m.gotMessages = messages
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}
