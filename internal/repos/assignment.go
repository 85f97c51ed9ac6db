package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type AssignmentRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error)
	ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if assignmentID == uuid.Nil {
		return nil, nil
	}
	var row types.Assignment
	err := transaction.WithContext(ctx).
		Where("id = ?", assignmentID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *assignmentRepo) ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assignment
	if len(courseIDs) == 0 {
		return results, nil
	}
	for _, chunk := range chunkUUIDs(courseIDs, batchSize) {
		var batch []*types.Assignment
		if err := transaction.WithContext(ctx).
			Where("course_id IN ?", chunk).
			Find(&batch).Error; err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}
