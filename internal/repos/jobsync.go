package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type JobSyncRepo interface {
	CreateGroup(ctx context.Context, tx *gorm.DB, group *types.JobSyncGroup) (*types.JobSyncGroup, error)
	LatestGroupByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.JobSyncGroup, error)
	ListSyncsByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.JobSync, error)
}

type jobSyncRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobSyncRepo(db *gorm.DB, baseLog *logger.Logger) JobSyncRepo {
	return &jobSyncRepo{db: db, log: baseLog.With("repo", "JobSyncRepo")}
}

func (r *jobSyncRepo) CreateGroup(ctx context.Context, tx *gorm.DB, group *types.JobSyncGroup) (*types.JobSyncGroup, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if group == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (r *jobSyncRepo) LatestGroupByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.JobSyncGroup, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.JobSyncGroup
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
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

func (r *jobSyncRepo) ListSyncsByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.JobSync, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.JobSync
	if groupID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("job_sync_group_id = ?", groupID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
