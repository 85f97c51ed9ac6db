package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
	"github.com/classtrack/classtrack-backend/internal/types"
)

// SourceInfo is the client-facing projection of a course source.
type SourceInfo struct {
	URL    *string `json:"url"`
	Synced bool    `json:"synced"`
}

// CourseWithColor is a course as the timeline clients consume it: raw row
// fields plus the derived display color and source sync state.
type CourseWithColor struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Title     *string      `json:"title"`
	Source    []SourceInfo `json:"source"`
	Color     string       `json:"color"`
}

type CourseService interface {
	ListUserCourses(ctx context.Context, tx *gorm.DB) ([]CourseWithColor, error)
	CreateCourse(ctx context.Context, tx *gorm.DB, title string) (*CourseWithColor, error)
	FollowCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	sourceRepo     repos.SourceRepo
	userCourseRepo repos.UserCourseRepo
	cache          TimelineCache
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	sourceRepo repos.SourceRepo,
	userCourseRepo repos.UserCourseRepo,
	cache TimelineCache,
) CourseService {
	return &courseService{
		db:             db,
		log:            baseLog.With("service", "CourseService"),
		courseRepo:     courseRepo,
		sourceRepo:     sourceRepo,
		userCourseRepo: userCourseRepo,
		cache:          cache,
	}
}

func (cs *courseService) ListUserCourses(ctx context.Context, tx *gorm.DB) ([]CourseWithColor, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	courseIDs, err := cs.userCourseRepo.ListCourseIDsByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followed course ids: %w", err)
	}
	if len(courseIDs) == 0 {
		return []CourseWithColor{}, nil
	}

	courses, err := cs.courseRepo.GetByIDsWithSources(ctx, tx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	out := make([]CourseWithColor, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseWithColor(course))
	}
	return out, nil
}

func (cs *courseService) CreateCourse(ctx context.Context, tx *gorm.DB, title string) (*CourseWithColor, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	course := &types.Course{
		ID:        uuid.New(),
		Title:     &title,
		CreatedAt: time.Now().UTC(),
	}

	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if _, err := cs.courseRepo.Create(ctx, inner, []*types.Course{course}); err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		// The creator always follows their own course.
		if err := cs.userCourseRepo.Follow(ctx, inner, userID, []uuid.UUID{course.ID}); err != nil {
			return fmt.Errorf("follow created course: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cs.cache != nil {
		cs.cache.Invalidate(ctx, userID)
	}
	cs.log.Info("Created course", "course_id", course.ID, "user_id", userID)
	view := toCourseWithColor(course)
	return &view, nil
}

func (cs *courseService) FollowCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if len(courseIDs) == 0 {
		return nil
	}

	courses, err := cs.courseRepo.GetByIDs(ctx, tx, courseIDs)
	if err != nil {
		return fmt.Errorf("load courses: %w", err)
	}
	if len(courses) != len(dedupeUUIDs(courseIDs)) {
		return ErrCourseNotFound
	}

	if err := cs.userCourseRepo.Follow(ctx, tx, userID, courseIDs); err != nil {
		return fmt.Errorf("follow courses: %w", err)
	}
	if cs.cache != nil {
		cs.cache.Invalidate(ctx, userID)
	}
	return nil
}

func toCourseWithColor(course *types.Course) CourseWithColor {
	sources := make([]SourceInfo, 0, len(course.Sources))
	for _, src := range course.Sources {
		sources = append(sources, SourceInfo{URL: src.URL, Synced: src.InSync})
	}
	return CourseWithColor{
		ID:        course.ID,
		CreatedAt: course.CreatedAt,
		Title:     course.Title,
		Source:    sources,
		Color:     CourseColor(course.ID),
	}
}

func dedupeUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
