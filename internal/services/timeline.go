package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
	"github.com/classtrack/classtrack-backend/internal/types"
)

// CourseInfo is the course summary embedded in each timeline item.
type CourseInfo struct {
	ID    uuid.UUID `json:"id"`
	Title *string   `json:"title"`
	Color string    `json:"color"`
}

// TimelineItem is one assignment on a user's timeline, carrying the due date
// that actually governs it after override resolution.
type TimelineItem struct {
	AssignmentID            uuid.UUID  `json:"assignment_id"`
	Title                   *string    `json:"title"`
	DueDate                 *time.Time `json:"due_date"`
	ConflictingDueDateCount int        `json:"conflicting_due_date_count"`
	CompletedAt             *time.Time `json:"completed_at"`
	Course                  CourseInfo `json:"course"`
}

// Timeline is the partitioned view: Current holds everything due today or
// later plus everything undated; Past holds strictly-earlier items.
type Timeline struct {
	Current []TimelineItem `json:"current"`
	Past    []TimelineItem `json:"past"`
}

// DropCompleted returns a copy with completed items removed from both
// buckets. Kept separate from Partition so the cache always holds the full
// timeline.
func (t *Timeline) DropCompleted() *Timeline {
	out := &Timeline{
		Current: make([]TimelineItem, 0, len(t.Current)),
		Past:    make([]TimelineItem, 0, len(t.Past)),
	}
	for _, item := range t.Current {
		if item.CompletedAt == nil {
			out.Current = append(out.Current, item)
		}
	}
	for _, item := range t.Past {
		if item.CompletedAt == nil {
			out.Past = append(out.Past, item)
		}
	}
	return out
}

// TimelineService builds the partitioned assignment timeline for the
// authenticated user. Classification is recomputed on every call and never
// persisted; the only state it touches is the short-lived cache.
type TimelineService interface {
	Partition(ctx context.Context, tx *gorm.DB, now time.Time) (*Timeline, error)
}

type timelineService struct {
	db                 *gorm.DB
	log                *logger.Logger
	courseRepo         repos.CourseRepo
	assignmentRepo     repos.AssignmentRepo
	dueDateRepo        repos.DueDateRepo
	userAssignmentRepo repos.UserAssignmentRepo
	userCourseRepo     repos.UserCourseRepo
	cache              TimelineCache
}

func NewTimelineService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	assignmentRepo repos.AssignmentRepo,
	dueDateRepo repos.DueDateRepo,
	userAssignmentRepo repos.UserAssignmentRepo,
	userCourseRepo repos.UserCourseRepo,
	cache TimelineCache,
) TimelineService {
	return &timelineService{
		db:                 db,
		log:                baseLog.With("service", "TimelineService"),
		courseRepo:         courseRepo,
		assignmentRepo:     assignmentRepo,
		dueDateRepo:        dueDateRepo,
		userAssignmentRepo: userAssignmentRepo,
		userCourseRepo:     userCourseRepo,
		cache:              cache,
	}
}

func (ts *timelineService) Partition(ctx context.Context, tx *gorm.DB, now time.Time) (*Timeline, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	today := dateOnly(now)
	day := today.Format("2006-01-02")
	if ts.cache != nil {
		if cached, ok := ts.cache.Get(ctx, userID, day); ok {
			return cached, nil
		}
	}

	timeline, err := ts.build(ctx, tx, userID, today)
	if err != nil {
		return nil, err
	}
	if ts.cache != nil {
		ts.cache.Set(ctx, userID, day, timeline)
	}
	return timeline, nil
}

func (ts *timelineService) build(ctx context.Context, tx *gorm.DB, userID uuid.UUID, today time.Time) (*Timeline, error) {
	courseIDs, err := ts.userCourseRepo.ListCourseIDsByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followed course ids: %w", err)
	}
	empty := &Timeline{Current: []TimelineItem{}, Past: []TimelineItem{}}
	if len(courseIDs) == 0 {
		return empty, nil
	}

	courses, err := ts.courseRepo.GetByIDs(ctx, tx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	courseByID := make(map[uuid.UUID]CourseInfo, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = CourseInfo{
			ID:    course.ID,
			Title: course.Title,
			Color: CourseColor(course.ID),
		}
	}

	assignments, err := ts.assignmentRepo.ListByCourseIDs(ctx, tx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return empty, nil
	}
	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	defaultDueDateIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
		if a.ChosenDueDateID != nil {
			defaultDueDateIDs = append(defaultDueDateIDs, *a.ChosenDueDateID)
		}
	}

	// The three reads below only depend on the assignment set, so they run
	// concurrently. Any failure aborts the whole call: a timeline missing
	// overrides would silently misplace items.
	var (
		overrides    []*types.UserAssignment
		counts       map[uuid.UUID]int64
		defaultDates []*types.DueDate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := ts.userAssignmentRepo.ListByUserAndAssignmentIDs(gctx, tx, userID, assignmentIDs)
		if err != nil {
			return fmt.Errorf("list user overrides: %w", err)
		}
		overrides = rows
		return nil
	})
	g.Go(func() error {
		m, err := ts.dueDateRepo.CountByAssignmentIDs(gctx, tx, assignmentIDs)
		if err != nil {
			return fmt.Errorf("count due dates: %w", err)
		}
		counts = m
		return nil
	})
	g.Go(func() error {
		rows, err := ts.dueDateRepo.GetByIDs(gctx, tx, defaultDueDateIDs)
		if err != nil {
			return fmt.Errorf("load default due dates: %w", err)
		}
		defaultDates = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overrideByAssignment := make(map[uuid.UUID]*types.UserAssignment, len(overrides))
	for _, ua := range overrides {
		overrideByAssignment[ua.AssignmentID] = ua
	}
	dateByID := make(map[uuid.UUID]*types.DueDate, len(defaultDates))
	for _, dd := range defaultDates {
		dateByID[dd.ID] = dd
	}

	// Overridden ids that are not any assignment's default still need their
	// date rows.
	var missingIDs []uuid.UUID
	for _, ua := range overrides {
		if ua.ChosenDueDateID != nil {
			if _, ok := dateByID[*ua.ChosenDueDateID]; !ok {
				missingIDs = append(missingIDs, *ua.ChosenDueDateID)
			}
		}
	}
	if len(missingIDs) > 0 {
		rows, err := ts.dueDateRepo.GetByIDs(ctx, tx, missingIDs)
		if err != nil {
			return nil, fmt.Errorf("load overridden due dates: %w", err)
		}
		for _, dd := range rows {
			dateByID[dd.ID] = dd
		}
	}

	timeline := &Timeline{Current: []TimelineItem{}, Past: []TimelineItem{}}
	for _, a := range assignments {
		override := overrideByAssignment[a.ID]
		effectiveID := ResolveEffectiveID(a.ChosenDueDateID, override)

		var dueDate *time.Time
		if effectiveID != nil {
			if dd, ok := dateByID[*effectiveID]; ok {
				dueDate = dd.Date
			}
		}

		item := TimelineItem{
			AssignmentID:            a.ID,
			Title:                   a.Title,
			DueDate:                 dueDate,
			ConflictingDueDateCount: conflictingCount(counts[a.ID], effectiveID != nil),
			Course:                  courseByID[a.CourseID],
		}
		if override != nil {
			item.CompletedAt = override.CompletedAt
		}

		if isPastDue(dueDate, today) {
			timeline.Past = append(timeline.Past, item)
		} else {
			timeline.Current = append(timeline.Current, item)
		}
	}

	sortCurrent(timeline.Current)
	sortPast(timeline.Past)
	return timeline, nil
}

// conflictingCount is the number of candidate dates competing with the
// effective one: the effective date itself does not conflict with anything.
func conflictingCount(total int64, hasEffective bool) int {
	if hasEffective && total > 0 {
		return int(total) - 1
	}
	return int(total)
}

// dateOnly truncates to midnight in t's location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isPastDue compares date-only in today's location: strictly before today is
// past; today, later, and unknown are not.
func isPastDue(dueDate *time.Time, today time.Time) bool {
	if dueDate == nil {
		return false
	}
	return dateOnly(dueDate.In(today.Location())).Before(today)
}

// sortCurrent orders soonest first with undated items last; ties break by
// assignment id so the order is stable across calls.
func sortCurrent(items []TimelineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DueDate, items[j].DueDate
		switch {
		case a == nil && b == nil:
			return items[i].AssignmentID.String() < items[j].AssignmentID.String()
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return items[i].AssignmentID.String() < items[j].AssignmentID.String()
		default:
			return a.Before(*b)
		}
	})
}

// sortPast orders most recent first. Every past item has a date.
func sortPast(items []TimelineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DueDate, items[j].DueDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if a.Equal(*b) {
			return items[i].AssignmentID.String() < items[j].AssignmentID.String()
		}
		return a.After(*b)
	})
}
