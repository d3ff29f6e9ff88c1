package services

import (
	"context"
	"fmt"

	"github.com/agentiqhub/backend/internal/models"
	"github.com/agentiqhub/backend/internal/player"
)

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// GetAll retrieves catalog courses with module and lesson counts
	//
	// "ctx" is the context for the request.
	// "includeInternal" controls whether internal-visibility courses are listed.
	// "includeInactive" controls whether unpublished courses are listed.
	//
	// Returns a list of courses and an error if any.
	GetAll(ctx context.Context, includeInternal, includeInactive bool) ([]models.CourseListItem, error)
	// GetByID retrieves a course by its ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// GetBySlug retrieves a course by its slug
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	//
	// Returns the course and an error if any.
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)
}

// AccessRepository defines methods for course access data access
type AccessRepository interface {
	// Get retrieves a user's access record for one course, (nil, nil) when absent
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the access record and an error if any.
	Get(ctx context.Context, userID string, courseID int) (*models.UserCourseAccess, error)
	// ListByUser retrieves all of a user's access records
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a list of access records and an error if any.
	ListByUser(ctx context.Context, userID string) ([]models.UserCourseAccess, error)
}

// ProgressReader defines read methods for completion data
type ProgressReader interface {
	// CompletedLessonIDs retrieves the lesson IDs a user finished within one course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lesson IDs and an error if any.
	CompletedLessonIDs(ctx context.Context, userID string, courseID int) ([]string, error)
	// CompletedModuleIDs retrieves the module IDs a user completed within one course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a list of module IDs and an error if any.
	CompletedModuleIDs(ctx context.Context, userID string, courseID int) ([]int, error)
}

// CertificateRepository defines methods for certificate data access
type CertificateRepository interface {
	// GetByUserAndCourse retrieves a user's certificate for one course, (nil, nil) when absent
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the certificate and an error if any.
	GetByUserAndCourse(ctx context.Context, userID string, courseID int) (*models.Certificate, error)
	// ListByUser retrieves a user's certificates, newest first
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a list of certificates and an error if any.
	ListByUser(ctx context.Context, userID string) ([]models.Certificate, error)
}

// CourseAssembler builds fully populated module trees
type CourseAssembler interface {
	// AssembleCourse loads a course's modules with lessons and quiz questions attached
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the populated modules and an error if any.
	AssembleCourse(ctx context.Context, courseID int) ([]models.CourseModule, error)
}

type catalogService struct {
	courseRepo  CourseRepository
	accessRepo  AccessStore
	profileRepo ProfileRepository
	progress    ProgressReader
	certRepo    CertificateRepository
	assembler   CourseAssembler
}

// NewCatalogService creates the learner-facing catalog service
func NewCatalogService(
	courseRepo CourseRepository,
	accessRepo AccessStore,
	profileRepo ProfileRepository,
	progress ProgressReader,
	certRepo CertificateRepository,
	assembler CourseAssembler,
) *catalogService {
	return &catalogService{
		courseRepo:  courseRepo,
		accessRepo:  accessRepo,
		profileRepo: profileRepo,
		progress:    progress,
		certRepo:    certRepo,
		assembler:   assembler,
	}
}

// ListCourses retrieves the catalog visible to one user, flagging courses the
// user holds an access record for
func (s *catalogService) ListCourses(ctx context.Context, userID string, isInternal bool) ([]models.CourseListItem, error) {
	courses, err := s.courseRepo.GetAll(ctx, isInternal, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	accesses, err := s.accessRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course access: %w", err)
	}
	enrolled := make(map[int]bool, len(accesses))
	for _, access := range accesses {
		enrolled[access.CourseID] = true
	}

	for i := range courses {
		courses[i].Enrolled = enrolled[courses[i].ID] || courses[i].Price == 0
	}

	return courses, nil
}

// GetCourseDetail retrieves a course with its section layout and per-module
// lock and completion state for one user. Locked modules keep their title,
// section, and description visible but count their content only.
func (s *catalogService) GetCourseDetail(ctx context.Context, slug, userID string, isInternal bool) (*models.CourseDetailResponse, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Visibility == models.CourseVisibilityInternal && !isInternal {
		return nil, fmt.Errorf("course not found")
	}

	access, err := s.accessRepo.Get(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course access: %w", err)
	}
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	fullAccess := player.HasFullAccess(course, access, isInternal)
	premiumAccess := player.HasPremiumAccess(profile.Tier, access)

	modules, err := s.assembler.AssembleCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble course: %w", err)
	}

	completedModules, err := s.progress.CompletedModuleIDs(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed modules: %w", err)
	}
	completed := make(map[int]bool, len(completedModules))
	for _, id := range completedModules {
		completed[id] = true
	}

	summaries := make([]models.ModuleSummary, len(modules))
	for i := range modules {
		summaries[i] = models.ModuleSummary{
			ID:            modules[i].ID,
			Title:         modules[i].Title,
			Section:       modules[i].Section,
			Description:   modules[i].Description,
			Tier:          modules[i].Tier,
			LessonCount:   len(modules[i].Lessons),
			QuestionCount: len(modules[i].Quiz),
			Locked:        player.ModuleLocked(&modules[i], premiumAccess),
			Completed:     completed[modules[i].ID],
		}
	}

	return &models.CourseDetailResponse{
		Course:     *course,
		Sections:   BuildSections(modules),
		Modules:    summaries,
		FullAccess: fullAccess,
	}, nil
}

// EnrollFree records a free-course enrollment so it shows up in the user's
// course list. Paid courses go through checkout instead. Internal courses are
// hidden from external users, same as the detail path.
func (s *catalogService) EnrollFree(ctx context.Context, userID, slug string, isInternal bool) error {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if course.Visibility == models.CourseVisibilityInternal && !isInternal {
		return fmt.Errorf("course not found")
	}
	if course.Price != 0 {
		return fmt.Errorf("this course requires purchase")
	}

	access := &models.UserCourseAccess{
		UserID:     userID,
		CourseID:   course.ID,
		AccessType: models.AccessTypeFree,
	}
	if err := s.accessRepo.Upsert(ctx, access); err != nil {
		return fmt.Errorf("failed to enroll: %w", err)
	}

	return nil
}

// ListCertificates retrieves a user's certificates
func (s *catalogService) ListCertificates(ctx context.Context, userID string) ([]models.Certificate, error) {
	certs, err := s.certRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// GetCertificate retrieves a user's certificate for one course
func (s *catalogService) GetCertificate(ctx context.Context, userID string, courseID int) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	if cert == nil {
		return nil, fmt.Errorf("certificate not found")
	}
	return cert, nil
}
