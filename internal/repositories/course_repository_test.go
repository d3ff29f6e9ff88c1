package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentiqhub/backend/internal/models"
)

// setupCourseTestRepository creates a course repository with a mock database
func setupCourseTestRepository(t *testing.T) (*courseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCourseRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewCourseRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewCourseRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func courseColumns() []string {
	return []string{"id", "slug", "title", "description", "short_description", "image_url",
		"visibility", "price", "stripe_price_id", "is_active", "sort_order", "created_at", "updated_at"}
}

func TestCourseRepository_GetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		id            int
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name: "success",
			id:   1,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(courseColumns()).
					AddRow(1, "agent-foundations", "Agent Foundations", "Full description", "Short", "",
						"public", 4900, "price_123", true, 0, now, now)
				mock.ExpectQuery(`SELECT.*FROM courses.*WHERE id = \?`).
					WithArgs(1).
					WillReturnRows(rows)
			},
			expectedError: false,
		},
		{
			name: "course not found",
			id:   42,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT.*FROM courses.*WHERE id = \?`).
					WithArgs(42).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "course not found",
		},
		{
			name: "database error",
			id:   1,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT.*FROM courses.*WHERE id = \?`).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to get course by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetByID(context.Background(), tt.id)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, 1, result.ID)
				assert.Equal(t, "agent-foundations", result.Slug)
				assert.Equal(t, 4900, result.Price)
				assert.Equal(t, models.CourseVisibilityPublic, result.Visibility)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_GetAll(t *testing.T) {
	listColumns := []string{"id", "slug", "title", "short_description", "image_url",
		"visibility", "price", "module_count", "lesson_count"}

	tests := []struct {
		name            string
		includeInternal bool
		includeInactive bool
		setupMock       func(sqlmock.Sqlmock)
		expectedCount   int
		expectedError   bool
	}{
		{
			name: "public catalog filters internal and inactive",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(listColumns).
					AddRow(1, "agent-foundations", "Agent Foundations", "Short", "", "public", 4900, 5, 20)
				mock.ExpectQuery(`SELECT.*FROM courses c.*WHERE c\.visibility = 'public' AND c\.is_active = TRUE`).
					WillReturnRows(rows)
			},
			expectedCount: 1,
		},
		{
			name:            "internal users see internal courses",
			includeInternal: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(listColumns).
					AddRow(1, "agent-foundations", "Agent Foundations", "Short", "", "public", 4900, 5, 20).
					AddRow(2, "internal-onboarding", "Internal Onboarding", "", "", "internal", 0, 3, 9)
				mock.ExpectQuery(`SELECT.*FROM courses c.*WHERE c\.is_active = TRUE`).
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "empty catalog",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT.*FROM courses c`).
					WillReturnRows(sqlmock.NewRows(listColumns))
			},
			expectedCount: 0,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT.*FROM courses c`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetAll(context.Background(), tt.includeInternal, tt.includeInactive)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Len(t, result, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	course := &models.Course{
		Slug:        "agent-foundations",
		Title:       "Agent Foundations",
		Description: "Full description",
		Visibility:  models.CourseVisibilityPublic,
		Price:       4900,
		IsActive:    true,
	}

	mock.ExpectExec(`INSERT INTO courses`).
		WithArgs(course.Slug, course.Title, course.Description, course.ShortDescription, course.ImageURL,
			course.Visibility, course.Price, course.StripePriceID, course.IsActive, course.SortOrder).
		WillReturnResult(sqlmock.NewResult(7, 1))

	err := repo.Create(context.Background(), course)

	assert.NoError(t, err)
	assert.Equal(t, 7, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Update(t *testing.T) {
	t.Run("partial update touches only provided fields", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		price := 9900
		req := &models.UpdateCourseRequest{Title: "New Title", Price: &price}

		mock.ExpectExec(`UPDATE courses.*SET title = \?, price = \?.*WHERE id = \?`).
			WithArgs("New Title", 9900, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 1, req)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields to update", func(t *testing.T) {
		repo, _, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		err := repo.Update(context.Background(), 1, &models.UpdateCourseRequest{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no fields to update")
	})

	t.Run("course not found", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE courses`).
			WithArgs("New Title", 42).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), 42, &models.UpdateCourseRequest{Title: "New Title"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "course not found")
	})
}

func TestCourseRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM courses WHERE id = \?`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("course not found", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM courses WHERE id = \?`).
			WithArgs(42).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 42)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "course not found")
	})
}

func TestCourseRepository_ExistsBySlug(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("agent-foundations").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsBySlug(context.Background(), "agent-foundations")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
