package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/types"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestIsPastDue_BoundaryAroundToday(t *testing.T) {
	loc := time.UTC
	today := dateOnly(time.Date(2024, 6, 15, 10, 30, 0, 0, loc))

	cases := []struct {
		name    string
		dueDate *time.Time
		want    bool
	}{
		{"day before is past", datePtr(time.Date(2024, 6, 14, 0, 0, 0, 0, loc)), true},
		{"late on day before is still past", datePtr(time.Date(2024, 6, 14, 23, 59, 0, 0, loc)), true},
		{"same day is current", datePtr(time.Date(2024, 6, 15, 0, 0, 0, 0, loc)), false},
		{"later that day is current", datePtr(time.Date(2024, 6, 15, 8, 0, 0, 0, loc)), false},
		{"future is current", datePtr(time.Date(2024, 6, 16, 0, 0, 0, 0, loc)), false},
		{"undated is current", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isPastDue(tc.dueDate, today); got != tc.want {
				t.Fatalf("isPastDue(%v) = %v, want %v", tc.dueDate, got, tc.want)
			}
		})
	}
}

func TestSortCurrent_AscendingWithUndatedLast(t *testing.T) {
	loc := time.UTC
	items := []TimelineItem{
		{AssignmentID: uuid.New(), DueDate: nil},
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 20, 0, 0, 0, 0, loc))},
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 15, 0, 0, 0, 0, loc))},
		{AssignmentID: uuid.New(), DueDate: nil},
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 17, 0, 0, 0, 0, loc))},
	}

	sortCurrent(items)

	var lastDated int
	for i, item := range items {
		if item.DueDate != nil {
			lastDated = i
		}
	}
	if lastDated != 2 {
		t.Fatalf("expected the 3 dated items first, dated items end at index %d", lastDated)
	}
	for i := 1; i <= lastDated; i++ {
		if items[i].DueDate.Before(*items[i-1].DueDate) {
			t.Fatalf("dates not ascending at index %d", i)
		}
	}
	for i := lastDated + 1; i < len(items); i++ {
		if items[i].DueDate != nil {
			t.Fatalf("dated item after undated block at index %d", i)
		}
	}
}

func TestSortPast_Descending(t *testing.T) {
	loc := time.UTC
	items := []TimelineItem{
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 5, 0, 0, 0, 0, loc))},
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 12, 0, 0, 0, 0, loc))},
		{AssignmentID: uuid.New(), DueDate: datePtr(time.Date(2024, 6, 10, 0, 0, 0, 0, loc))},
	}

	sortPast(items)

	want := []int{12, 10, 5}
	for i, day := range want {
		if items[i].DueDate.Day() != day {
			t.Fatalf("position %d: got day %d, want %d", i, items[i].DueDate.Day(), day)
		}
	}
}

func TestResolveEffectiveID_Precedence(t *testing.T) {
	defaultID := uuid.New()
	overrideID := uuid.New()

	cases := []struct {
		name     string
		def      *uuid.UUID
		override *types.UserAssignment
		want     *uuid.UUID
	}{
		{"no override uses default", &defaultID, nil, &defaultID},
		{"override wins over default", &defaultID, &types.UserAssignment{ChosenDueDateID: &overrideID}, &overrideID},
		{"override row with nil choice falls back", &defaultID, &types.UserAssignment{}, &defaultID},
		{"nothing resolves to nothing", nil, nil, nil},
		{"override without default", nil, &types.UserAssignment{ChosenDueDateID: &overrideID}, &overrideID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveEffectiveID(tc.def, tc.override)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("got %v, want nil", got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConflictingCount(t *testing.T) {
	cases := []struct {
		name         string
		total        int64
		hasEffective bool
		want         int
	}{
		{"effective excludes itself", 3, true, 2},
		{"no effective counts all", 3, false, 3},
		{"single effective date has no conflicts", 1, true, 0},
		{"zero stays zero", 0, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := conflictingCount(tc.total, tc.hasEffective); got != tc.want {
				t.Fatalf("conflictingCount(%d, %v) = %d, want %d", tc.total, tc.hasEffective, got, tc.want)
			}
		})
	}
}

func TestDropCompleted_FiltersBothBuckets(t *testing.T) {
	now := time.Now()
	tl := &Timeline{
		Current: []TimelineItem{
			{AssignmentID: uuid.New()},
			{AssignmentID: uuid.New(), CompletedAt: &now},
		},
		Past: []TimelineItem{
			{AssignmentID: uuid.New(), CompletedAt: &now},
		},
	}

	got := tl.DropCompleted()

	if len(got.Current) != 1 || len(got.Past) != 0 {
		t.Fatalf("got %d current / %d past, want 1 / 0", len(got.Current), len(got.Past))
	}
	if len(tl.Current) != 2 || len(tl.Past) != 1 {
		t.Fatalf("original timeline mutated")
	}
}
