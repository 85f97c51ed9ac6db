package repos

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Course{}, &types.Assignment{}, &types.DueDate{}, &types.UserAssignment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestUpsertChosenDueDate_SingleRowAcrossRepeats(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserAssignmentRepo(db, newTestLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	assignmentID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	if err := repo.UpsertChosenDueDate(ctx, nil, userID, assignmentID, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.UpsertChosenDueDate(ctx, nil, userID, assignmentID, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []types.UserAssignment
	if err := db.Where("user_id = ? AND assignment_id = ?", userID, assignmentID).Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ChosenDueDateID == nil || *rows[0].ChosenDueDateID != second {
		t.Fatalf("chosen = %v, want latest %v", rows[0].ChosenDueDateID, second)
	}
}

func TestUpsertCompleted_PreservesChosenDueDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserAssignmentRepo(db, newTestLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	assignmentID := uuid.New()
	dueDateID := uuid.New()

	if err := repo.UpsertChosenDueDate(ctx, nil, userID, assignmentID, dueDateID); err != nil {
		t.Fatalf("choose: %v", err)
	}
	completedAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	if err := repo.UpsertCompleted(ctx, nil, userID, assignmentID, completedAt); err != nil {
		t.Fatalf("complete: %v", err)
	}

	row, err := repo.GetByUserAndAssignment(ctx, nil, userID, assignmentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if row == nil {
		t.Fatalf("row missing after upserts")
	}
	if row.CompletedAt == nil || !row.CompletedAt.Equal(completedAt) {
		t.Fatalf("completed_at = %v, want %v", row.CompletedAt, completedAt)
	}
	if row.ChosenDueDateID == nil || *row.ChosenDueDateID != dueDateID {
		t.Fatalf("chosen = %v, want %v preserved", row.ChosenDueDateID, dueDateID)
	}
}

func TestGetByUserAndAssignment_MissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserAssignmentRepo(db, newTestLogger(t))

	row, err := repo.GetByUserAndAssignment(context.Background(), nil, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row != nil {
		t.Fatalf("got %+v, want nil", row)
	}
}
