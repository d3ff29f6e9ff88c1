package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/agentiqhub/backend/internal/player"
)

// ProgressWriter defines write methods for completion data
type ProgressWriter interface {
	// MarkLessonComplete records a finished lesson, idempotently
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns an error if any.
	MarkLessonComplete(ctx context.Context, userID, lessonID string) error
	// MarkModuleComplete records a passed module quiz, keeping the first score on replay
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "moduleID" is the ID of the module.
	// "quizScore" is the score of the passing attempt.
	//
	// Returns an error if any.
	MarkModuleComplete(ctx context.Context, userID string, moduleID, quizScore int) error
}

// asyncRecorder persists completion events off the request path. Failures are
// logged and swallowed: the learner's in-memory session is the source of truth
// for the rest of the run, and the idempotent writes make the next session
// converge.
type asyncRecorder struct {
	userID      string
	progress    ProgressWriter
	afterModule func(ctx context.Context)
	logger      *zap.Logger
	timeout     time.Duration
}

func newAsyncRecorder(userID string, progress ProgressWriter, afterModule func(ctx context.Context), logger *zap.Logger) *asyncRecorder {
	return &asyncRecorder{
		userID:      userID,
		progress:    progress,
		afterModule: afterModule,
		logger:      logger,
		timeout:     10 * time.Second,
	}
}

// RecordCompletion persists one completion event in the background
func (r *asyncRecorder) RecordCompletion(kind player.CompletionKind, id string, quizScore int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		switch kind {
		case player.CompletionLesson:
			if err := r.progress.MarkLessonComplete(ctx, r.userID, id); err != nil {
				r.logger.Warn("failed to persist lesson completion",
					zap.String("user_id", r.userID),
					zap.String("lesson_id", id),
					zap.Error(err),
				)
			}
		case player.CompletionModule:
			moduleID, err := strconv.Atoi(id)
			if err != nil {
				r.logger.Error("module completion with non-numeric id",
					zap.String("user_id", r.userID),
					zap.String("module_id", id),
				)
				return
			}
			if err := r.progress.MarkModuleComplete(ctx, r.userID, moduleID, quizScore); err != nil {
				r.logger.Warn("failed to persist module completion",
					zap.String("user_id", r.userID),
					zap.Int("module_id", moduleID),
					zap.Error(err),
				)
				return
			}
			// runs after the completion row is in place, so a course
			// completion check sees the module it was triggered by
			if r.afterModule != nil {
				r.afterModule(ctx)
			}
		}
	}()
}
