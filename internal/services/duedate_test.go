package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
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
	err = db.AutoMigrate(
		&types.User{},
		&types.Course{},
		&types.Source{},
		&types.Assignment{},
		&types.DueDate{},
		&types.UserAssignment{},
		&types.UserCourse{},
		&types.JobSyncGroup{},
		&types.JobSync{},
	)
	if err != nil {
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

type resolverFixture struct {
	db      *gorm.DB
	svc     DueDateService
	userID  uuid.UUID
	courseID uuid.UUID
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	svc := NewDueDateService(
		db, log,
		repos.NewAssignmentRepo(db, log),
		repos.NewDueDateRepo(db, log),
		repos.NewSourceRepo(db, log),
		repos.NewUserAssignmentRepo(db, log),
		nil,
	)

	userID := uuid.New()
	if err := db.Create(&types.User{ID: userID, CreatedAt: time.Now()}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	courseID := uuid.New()
	title := "Algorithms"
	if err := db.Create(&types.Course{ID: courseID, Title: &title, CreatedAt: time.Now()}).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return &resolverFixture{db: db, svc: svc, userID: userID, courseID: courseID}
}

func (f *resolverFixture) ctx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: f.userID})
}

func (f *resolverFixture) seedAssignment(t *testing.T, chosen *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	title := "Problem Set"
	row := &types.Assignment{ID: id, CourseID: f.courseID, Title: &title, ChosenDueDateID: chosen, CreatedAt: time.Now()}
	if err := f.db.Create(row).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return id
}

func (f *resolverFixture) seedDueDate(t *testing.T, assignmentID uuid.UUID, date time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	row := &types.DueDate{ID: id, AssignmentID: assignmentID, Date: &date, CreatedAt: time.Now()}
	if err := f.db.Create(row).Error; err != nil {
		t.Fatalf("seed due date: %v", err)
	}
	return id
}

func (f *resolverFixture) setDefault(t *testing.T, assignmentID, dueDateID uuid.UUID) {
	t.Helper()
	if err := f.db.Model(&types.Assignment{}).Where("id = ?", assignmentID).Update("chosen_due_date_id", dueDateID).Error; err != nil {
		t.Fatalf("set assignment default: %v", err)
	}
}

func selectedIDs(res *Resolution) []uuid.UUID {
	var out []uuid.UUID
	for _, dd := range res.DueDates {
		if dd.Selected {
			out = append(out, dd.ID)
		}
	}
	return out
}

func TestResolve_DefaultThenOverridePrecedence(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	first := f.seedDueDate(t, assignmentID, day)
	second := f.seedDueDate(t, assignmentID, day.AddDate(0, 0, 7))
	f.setDefault(t, assignmentID, first)

	res, err := f.svc.Resolve(f.ctx(), nil, assignmentID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.EffectiveID == nil || *res.EffectiveID != first {
		t.Fatalf("effective = %v, want assignment default %v", res.EffectiveID, first)
	}
	if sel := selectedIDs(res); len(sel) != 1 || sel[0] != first {
		t.Fatalf("selected = %v, want exactly [%v]", sel, first)
	}

	if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentID, second); err != nil {
		t.Fatalf("choose: %v", err)
	}
	res, err = f.svc.Resolve(f.ctx(), nil, assignmentID)
	if err != nil {
		t.Fatalf("resolve after choose: %v", err)
	}
	if res.EffectiveID == nil || *res.EffectiveID != second {
		t.Fatalf("effective = %v, want override %v", res.EffectiveID, second)
	}
	if sel := selectedIDs(res); len(sel) != 1 || sel[0] != second {
		t.Fatalf("selected = %v, want exactly [%v]", sel, second)
	}
}

func TestResolve_NoEffectiveMeansZeroSelected(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	f.seedDueDate(t, assignmentID, day)
	f.seedDueDate(t, assignmentID, day.AddDate(0, 0, 1))

	res, err := f.svc.Resolve(f.ctx(), nil, assignmentID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.EffectiveID != nil {
		t.Fatalf("effective = %v, want nil", res.EffectiveID)
	}
	if sel := selectedIDs(res); len(sel) != 0 {
		t.Fatalf("selected = %v, want none", sel)
	}
	if len(res.DueDates) != 2 {
		t.Fatalf("got %d due dates, want 2", len(res.DueDates))
	}
}

func TestResolve_OrderedAscendingWithUndatedLast(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	late := f.seedDueDate(t, assignmentID, day.AddDate(0, 0, 10))
	early := f.seedDueDate(t, assignmentID, day)

	undated := uuid.New()
	if err := f.db.Create(&types.DueDate{ID: undated, AssignmentID: assignmentID, CreatedAt: time.Now()}).Error; err != nil {
		t.Fatalf("seed undated due date: %v", err)
	}

	res, err := f.svc.Resolve(f.ctx(), nil, assignmentID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []uuid.UUID{early, late, undated}
	if len(res.DueDates) != len(want) {
		t.Fatalf("got %d due dates, want %d", len(res.DueDates), len(want))
	}
	for i, id := range want {
		if res.DueDates[i].ID != id {
			t.Fatalf("position %d: got %v, want %v", i, res.DueDates[i].ID, id)
		}
	}
}

func TestChooseDueDate_Idempotent(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	dueDateID := f.seedDueDate(t, assignmentID, day)

	for i := 0; i < 3; i++ {
		if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentID, dueDateID); err != nil {
			t.Fatalf("choose attempt %d: %v", i+1, err)
		}
	}

	var count int64
	if err := f.db.Model(&types.UserAssignment{}).Where("user_id = ? AND assignment_id = ?", f.userID, assignmentID).Count(&count).Error; err != nil {
		t.Fatalf("count overrides: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d override rows, want 1", count)
	}

	res, err := f.svc.Resolve(f.ctx(), nil, assignmentID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.EffectiveID == nil || *res.EffectiveID != dueDateID {
		t.Fatalf("effective = %v, want %v", res.EffectiveID, dueDateID)
	}
}

func TestChooseDueDate_CrossAssignmentConflictLeavesOverrideIntact(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentA := f.seedAssignment(t, nil)
	assignmentB := f.seedAssignment(t, nil)
	dateA := f.seedDueDate(t, assignmentA, day)
	dateB := f.seedDueDate(t, assignmentB, day)

	if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentA, dateA); err != nil {
		t.Fatalf("initial choose: %v", err)
	}

	err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentA, dateB)
	if !errors.Is(err, ErrDueDateConflict) {
		t.Fatalf("got %v, want ErrDueDateConflict", err)
	}

	res, err := f.svc.Resolve(f.ctx(), nil, assignmentA)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.EffectiveID == nil || *res.EffectiveID != dateA {
		t.Fatalf("effective = %v, want prior override %v", res.EffectiveID, dateA)
	}
}

func TestChooseDueDate_MissingTargets(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assignmentID := f.seedAssignment(t, nil)
	dueDateID := f.seedDueDate(t, assignmentID, day)

	if err := f.svc.ChooseDueDate(f.ctx(), nil, uuid.New(), dueDateID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("got %v, want ErrAssignmentNotFound", err)
	}
	if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentID, uuid.New()); !errors.Is(err, ErrDueDateNotFound) {
		t.Fatalf("got %v, want ErrDueDateNotFound", err)
	}
	if err := f.svc.ChooseDueDate(context.Background(), nil, assignmentID, dueDateID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestResolvePage_Pagination(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	for i := 0; i < 3; i++ {
		f.seedDueDate(t, assignmentID, day.AddDate(0, 0, i))
	}

	page1, err := f.svc.ResolvePage(f.ctx(), nil, assignmentID, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Data) != 2 || !page1.HasMore || page1.Total != 3 {
		t.Fatalf("page 1 = %d items hasMore=%v total=%d, want 2/true/3", len(page1.Data), page1.HasMore, page1.Total)
	}

	page2, err := f.svc.ResolvePage(f.ctx(), nil, assignmentID, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Data) != 1 || page2.HasMore {
		t.Fatalf("page 2 = %d items hasMore=%v, want 1/false", len(page2.Data), page2.HasMore)
	}
	if page1.Data[0].ID == page2.Data[0].ID {
		t.Fatalf("pages overlap")
	}
}

func TestMarkCompleted_SetsCompletionWithoutTouchingChoice(t *testing.T) {
	f := newResolverFixture(t)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	dueDateID := f.seedDueDate(t, assignmentID, day)

	if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentID, dueDateID); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if err := f.svc.MarkCompleted(f.ctx(), nil, assignmentID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var row types.UserAssignment
	if err := f.db.Where("user_id = ? AND assignment_id = ?", f.userID, assignmentID).First(&row).Error; err != nil {
		t.Fatalf("load override: %v", err)
	}
	if row.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
	if row.ChosenDueDateID == nil || *row.ChosenDueDateID != dueDateID {
		t.Fatalf("chosen_due_date_id = %v, want %v preserved", row.ChosenDueDateID, dueDateID)
	}
}
