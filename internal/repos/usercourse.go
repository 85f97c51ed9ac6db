package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type UserCourseRepo interface {
	ListCourseIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	// Follow inserts join rows, silently skipping courses the user already
	// follows.
	Follow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, courseIDs []uuid.UUID) error
}

type userCourseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCourseRepo(db *gorm.DB, baseLog *logger.Logger) UserCourseRepo {
	return &userCourseRepo{db: db, log: baseLog.With("repo", "UserCourseRepo")}
}

func (r *userCourseRepo) ListCourseIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if userID == uuid.Nil {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.UserCourse{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userCourseRepo) Follow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, courseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || len(courseIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*types.UserCourse, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		rows = append(rows, &types.UserCourse{
			ID:        uuid.New(),
			UserID:    userID,
			CourseID:  courseID,
			CreatedAt: now,
		})
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}
