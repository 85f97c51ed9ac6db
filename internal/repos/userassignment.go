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

type UserAssignmentRepo interface {
	GetByUserAndAssignment(ctx context.Context, tx *gorm.DB, userID, assignmentID uuid.UUID) (*types.UserAssignment, error)
	ListByUserAndAssignmentIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, assignmentIDs []uuid.UUID) ([]*types.UserAssignment, error)
	// UpsertChosenDueDate is a single conditional insert-or-update against the
	// (user_id, assignment_id) unique index. Concurrent callers race to one
	// row, last writer wins; duplicate override rows cannot occur.
	UpsertChosenDueDate(ctx context.Context, tx *gorm.DB, userID, assignmentID, dueDateID uuid.UUID) error
	UpsertCompleted(ctx context.Context, tx *gorm.DB, userID, assignmentID uuid.UUID, completedAt time.Time) error
}

type userAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) UserAssignmentRepo {
	return &userAssignmentRepo{db: db, log: baseLog.With("repo", "UserAssignmentRepo")}
}

func (r *userAssignmentRepo) GetByUserAndAssignment(ctx context.Context, tx *gorm.DB, userID, assignmentID uuid.UUID) (*types.UserAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || assignmentID == uuid.Nil {
		return nil, nil
	}
	var row types.UserAssignment
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
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

func (r *userAssignmentRepo) ListByUserAndAssignmentIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, assignmentIDs []uuid.UUID) ([]*types.UserAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserAssignment
	if userID == uuid.Nil || len(assignmentIDs) == 0 {
		return results, nil
	}
	for _, chunk := range chunkUUIDs(assignmentIDs, batchSize) {
		var batch []*types.UserAssignment
		if err := transaction.WithContext(ctx).
			Where("user_id = ? AND assignment_id IN ?", userID, chunk).
			Find(&batch).Error; err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (r *userAssignmentRepo) UpsertChosenDueDate(ctx context.Context, tx *gorm.DB, userID, assignmentID, dueDateID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.UserAssignment{
		ID:              uuid.New(),
		UserID:          userID,
		AssignmentID:    assignmentID,
		ChosenDueDateID: &dueDateID,
		CreatedAt:       time.Now().UTC(),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "assignment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chosen_due_date_id"}),
		}).
		Create(row).Error
}

func (r *userAssignmentRepo) UpsertCompleted(ctx context.Context, tx *gorm.DB, userID, assignmentID uuid.UUID, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.UserAssignment{
		ID:           uuid.New(),
		UserID:       userID,
		AssignmentID: assignmentID,
		CompletedAt:  &completedAt,
		CreatedAt:    time.Now().UTC(),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "assignment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_at"}),
		}).
		Create(row).Error
}
