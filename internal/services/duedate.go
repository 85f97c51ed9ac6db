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

// DueDateView is a single candidate date for an assignment as the client
// renders it in the date picker.
type DueDateView struct {
	ID        uuid.UUID  `json:"id"`
	SourceURL *string    `json:"source_url"`
	Title     *string    `json:"title"`
	Date      *time.Time `json:"date"`
	Selected  bool       `json:"selected"`
}

// Resolution is the full resolved picture for one assignment: every candidate
// date in display order plus the id the user is actually being held to.
type Resolution struct {
	AssignmentID uuid.UUID     `json:"assignment_id"`
	DueDates     []DueDateView `json:"due_dates"`
	EffectiveID  *uuid.UUID    `json:"effective_id"`
}

// DueDatePage is one page of a Resolution's candidate dates.
type DueDatePage struct {
	AssignmentID uuid.UUID     `json:"assignment_id"`
	Data         []DueDateView `json:"data"`
	HasMore      bool          `json:"hasMore"`
	Total        int           `json:"total"`
}

// DueDateService resolves which due date governs an assignment for a user and
// records per-user overrides and completions.
type DueDateService interface {
	Resolve(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*Resolution, error)
	ResolvePage(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, page, limit int) (*DueDatePage, error)
	ChooseDueDate(ctx context.Context, tx *gorm.DB, assignmentID, dueDateID uuid.UUID) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
}

type dueDateService struct {
	db                 *gorm.DB
	log                *logger.Logger
	assignmentRepo     repos.AssignmentRepo
	dueDateRepo        repos.DueDateRepo
	sourceRepo         repos.SourceRepo
	userAssignmentRepo repos.UserAssignmentRepo
	cache              TimelineCache
}

func NewDueDateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assignmentRepo repos.AssignmentRepo,
	dueDateRepo repos.DueDateRepo,
	sourceRepo repos.SourceRepo,
	userAssignmentRepo repos.UserAssignmentRepo,
	cache TimelineCache,
) DueDateService {
	return &dueDateService{
		db:                 db,
		log:                baseLog.With("service", "DueDateService"),
		assignmentRepo:     assignmentRepo,
		dueDateRepo:        dueDateRepo,
		sourceRepo:         sourceRepo,
		userAssignmentRepo: userAssignmentRepo,
		cache:              cache,
	}
}

// ResolveEffectiveID applies the precedence rule: a non-null per-user choice
// beats the assignment default; a null choice on an existing override row
// falls through to the default.
func ResolveEffectiveID(assignmentDefault *uuid.UUID, override *types.UserAssignment) *uuid.UUID {
	if override != nil && override.ChosenDueDateID != nil {
		return override.ChosenDueDateID
	}
	return assignmentDefault
}

func (ds *dueDateService) Resolve(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*Resolution, error) {
	assignment, err := ds.assignmentRepo.GetByID(ctx, tx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}

	var override *types.UserAssignment
	if userID := requestdata.UserID(ctx); userID != uuid.Nil {
		override, err = ds.userAssignmentRepo.GetByUserAndAssignment(ctx, tx, userID, assignmentID)
		if err != nil {
			return nil, fmt.Errorf("load user override: %w", err)
		}
	}
	effectiveID := ResolveEffectiveID(assignment.ChosenDueDateID, override)

	dueDates, err := ds.dueDateRepo.ListByAssignmentID(ctx, tx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list due dates: %w", err)
	}

	sourceURL, err := ds.courseSourceURL(ctx, tx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	views := make([]DueDateView, 0, len(dueDates))
	for _, dd := range dueDates {
		views = append(views, DueDateView{
			ID:        dd.ID,
			SourceURL: sourceURL,
			Title:     dd.Title,
			Date:      dd.Date,
			Selected:  effectiveID != nil && dd.ID == *effectiveID,
		})
	}
	return &Resolution{
		AssignmentID: assignmentID,
		DueDates:     views,
		EffectiveID:  effectiveID,
	}, nil
}

func (ds *dueDateService) ResolvePage(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, page, limit int) (*DueDatePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	resolution, err := ds.Resolve(ctx, tx, assignmentID)
	if err != nil {
		return nil, err
	}

	total := len(resolution.DueDates)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &DueDatePage{
		AssignmentID: assignmentID,
		Data:         resolution.DueDates[start:end],
		HasMore:      end < total,
		Total:        total,
	}, nil
}

func (ds *dueDateService) ChooseDueDate(ctx context.Context, tx *gorm.DB, assignmentID, dueDateID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}

	assignment, err := ds.assignmentRepo.GetByID(ctx, tx, assignmentID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	dueDate, err := ds.dueDateRepo.GetByID(ctx, tx, dueDateID)
	if err != nil {
		return fmt.Errorf("load due date: %w", err)
	}
	if dueDate == nil {
		return ErrDueDateNotFound
	}
	if dueDate.AssignmentID != assignmentID {
		return ErrDueDateConflict
	}

	if err := ds.userAssignmentRepo.UpsertChosenDueDate(ctx, tx, userID, assignmentID, dueDateID); err != nil {
		return fmt.Errorf("upsert chosen due date: %w", err)
	}
	if ds.cache != nil {
		ds.cache.Invalidate(ctx, userID)
	}
	ds.log.Info("Chose due date", "assignment_id", assignmentID, "due_date_id", dueDateID, "user_id", userID)
	return nil
}

func (ds *dueDateService) MarkCompleted(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}

	assignment, err := ds.assignmentRepo.GetByID(ctx, tx, assignmentID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	if err := ds.userAssignmentRepo.UpsertCompleted(ctx, tx, userID, assignmentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	if ds.cache != nil {
		ds.cache.Invalidate(ctx, userID)
	}
	ds.log.Info("Marked assignment completed", "assignment_id", assignmentID, "user_id", userID)
	return nil
}

func (ds *dueDateService) courseSourceURL(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*string, error) {
	sources, err := ds.sourceRepo.ListByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("list course sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return sources[0].URL, nil
}
