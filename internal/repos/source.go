package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type SourceRepo interface {
	ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Source, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Source
	if len(courseIDs) == 0 {
		return results, nil
	}
	for _, chunk := range chunkUUIDs(courseIDs, batchSize) {
		var batch []*types.Source
		if err := transaction.WithContext(ctx).
			Where("course_id IN ?", chunk).
			Order("created_at ASC").
			Find(&batch).Error; err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}
