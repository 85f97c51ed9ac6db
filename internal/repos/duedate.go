package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type DueDateRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, dueDateID uuid.UUID) (*types.DueDate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, dueDateIDs []uuid.UUID) ([]*types.DueDate, error)
	// ListByAssignmentID returns the assignment's candidates ordered date
	// ascending with unknown dates last, ties broken by creation order then id
	// so paging is deterministic.
	ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.DueDate, error)
	CountByAssignmentIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type dueDateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDueDateRepo(db *gorm.DB, baseLog *logger.Logger) DueDateRepo {
	return &dueDateRepo{db: db, log: baseLog.With("repo", "DueDateRepo")}
}

func (r *dueDateRepo) GetByID(ctx context.Context, tx *gorm.DB, dueDateID uuid.UUID) (*types.DueDate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if dueDateID == uuid.Nil {
		return nil, nil
	}
	var row types.DueDate
	err := transaction.WithContext(ctx).
		Where("id = ?", dueDateID).
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

func (r *dueDateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, dueDateIDs []uuid.UUID) ([]*types.DueDate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DueDate
	if len(dueDateIDs) == 0 {
		return results, nil
	}
	for _, chunk := range chunkUUIDs(dueDateIDs, batchSize) {
		var batch []*types.DueDate
		if err := transaction.WithContext(ctx).
			Where("id IN ?", chunk).
			Find(&batch).Error; err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (r *dueDateRepo) ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.DueDate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DueDate
	if assignmentID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("date ASC NULLS LAST").
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dueDateRepo) CountByAssignmentIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	counts := make(map[uuid.UUID]int64, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return counts, nil
	}
	type countRow struct {
		AssignmentID uuid.UUID `gorm:"column:assignment_id"`
		Count        int64     `gorm:"column:count"`
	}
	for _, chunk := range chunkUUIDs(assignmentIDs, batchSize) {
		var rows []countRow
		if err := transaction.WithContext(ctx).
			Model(&types.DueDate{}).
			Select("assignment_id, COUNT(*) AS count").
			Where("assignment_id IN ?", chunk).
			Group("assignment_id").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			counts[row.AssignmentID] = row.Count
		}
	}
	return counts, nil
}
