package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/types"
)

type timelineFixture struct {
	*resolverFixture
	timeline TimelineService
}

func newTimelineFixture(t *testing.T) *timelineFixture {
	t.Helper()
	f := newResolverFixture(t)
	log := newTestLogger(t)

	svc := NewTimelineService(
		f.db, log,
		repos.NewCourseRepo(f.db, log),
		repos.NewAssignmentRepo(f.db, log),
		repos.NewDueDateRepo(f.db, log),
		repos.NewUserAssignmentRepo(f.db, log),
		repos.NewUserCourseRepo(f.db, log),
		nil,
	)

	if err := f.db.Create(&types.UserCourse{
		ID:        uuid.New(),
		UserID:    f.userID,
		CourseID:  f.courseID,
		CreatedAt: time.Now(),
	}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}
	return &timelineFixture{resolverFixture: f, timeline: svc}
}

func TestPartition_BucketsAndOrdering(t *testing.T) {
	f := newTimelineFixture(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	pastA := f.seedAssignment(t, nil)
	f.setDefault(t, pastA, f.seedDueDate(t, pastA, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
	pastB := f.seedAssignment(t, nil)
	f.setDefault(t, pastB, f.seedDueDate(t, pastB, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))

	today := f.seedAssignment(t, nil)
	f.setDefault(t, today, f.seedDueDate(t, today, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	future := f.seedAssignment(t, nil)
	f.setDefault(t, future, f.seedDueDate(t, future, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)))
	undated := f.seedAssignment(t, nil)

	tl, err := f.timeline.Partition(f.ctx(), nil, now)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}

	wantCurrent := []uuid.UUID{today, future, undated}
	if len(tl.Current) != len(wantCurrent) {
		t.Fatalf("got %d current items, want %d", len(tl.Current), len(wantCurrent))
	}
	for i, id := range wantCurrent {
		if tl.Current[i].AssignmentID != id {
			t.Fatalf("current[%d] = %v, want %v", i, tl.Current[i].AssignmentID, id)
		}
	}

	wantPast := []uuid.UUID{pastB, pastA}
	if len(tl.Past) != len(wantPast) {
		t.Fatalf("got %d past items, want %d", len(tl.Past), len(wantPast))
	}
	for i, id := range wantPast {
		if tl.Past[i].AssignmentID != id {
			t.Fatalf("past[%d] = %v, want %v", i, tl.Past[i].AssignmentID, id)
		}
	}

	for _, item := range append(tl.Current, tl.Past...) {
		if item.Course.ID != f.courseID {
			t.Fatalf("item %v missing course info", item.AssignmentID)
		}
		if item.Course.Color == "" {
			t.Fatalf("item %v missing course color", item.AssignmentID)
		}
	}
}

func TestPartition_OverrideMovesItemBetweenBuckets(t *testing.T) {
	f := newTimelineFixture(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	pastDate := f.seedDueDate(t, assignmentID, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	futureDate := f.seedDueDate(t, assignmentID, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	f.setDefault(t, assignmentID, pastDate)

	tl, err := f.timeline.Partition(f.ctx(), nil, now)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(tl.Past) != 1 || tl.Past[0].AssignmentID != assignmentID {
		t.Fatalf("expected assignment in past bucket, got past=%d current=%d", len(tl.Past), len(tl.Current))
	}
	// Two candidate dates, one effective.
	if got := tl.Past[0].ConflictingDueDateCount; got != 1 {
		t.Fatalf("conflicting count = %d, want 1", got)
	}

	if err := f.svc.ChooseDueDate(f.ctx(), nil, assignmentID, futureDate); err != nil {
		t.Fatalf("choose: %v", err)
	}
	tl, err = f.timeline.Partition(f.ctx(), nil, now)
	if err != nil {
		t.Fatalf("partition after choose: %v", err)
	}
	if len(tl.Current) != 1 || tl.Current[0].AssignmentID != assignmentID {
		t.Fatalf("expected assignment in current bucket after override")
	}
	if tl.Current[0].DueDate == nil || !tl.Current[0].DueDate.Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("due date = %v, want overridden future date", tl.Current[0].DueDate)
	}
}

func TestPartition_CompletionDoesNotMoveItems(t *testing.T) {
	f := newTimelineFixture(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	assignmentID := f.seedAssignment(t, nil)
	f.setDefault(t, assignmentID, f.seedDueDate(t, assignmentID, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)))

	if err := f.svc.MarkCompleted(f.ctx(), nil, assignmentID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tl, err := f.timeline.Partition(f.ctx(), nil, now)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(tl.Current) != 1 {
		t.Fatalf("completed item dropped from timeline")
	}
	if tl.Current[0].CompletedAt == nil {
		t.Fatalf("completed_at not surfaced")
	}
	if got := tl.DropCompleted(); len(got.Current) != 0 {
		t.Fatalf("DropCompleted left %d items", len(got.Current))
	}
}

func TestPartition_EmptyWhenFollowingNothing(t *testing.T) {
	f := newResolverFixture(t)
	log := newTestLogger(t)
	svc := NewTimelineService(
		f.db, log,
		repos.NewCourseRepo(f.db, log),
		repos.NewAssignmentRepo(f.db, log),
		repos.NewDueDateRepo(f.db, log),
		repos.NewUserAssignmentRepo(f.db, log),
		repos.NewUserCourseRepo(f.db, log),
		nil,
	)

	tl, err := svc.Partition(f.ctx(), nil, time.Now())
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(tl.Current) != 0 || len(tl.Past) != 0 {
		t.Fatalf("expected empty timeline, got %d current / %d past", len(tl.Current), len(tl.Past))
	}

	if _, err := svc.Partition(context.Background(), nil, time.Now()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous partition: got %v, want ErrUnauthenticated", err)
	}
}
