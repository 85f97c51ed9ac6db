package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
	"github.com/classtrack/classtrack-backend/internal/types"
)

// CourseSyncWorkflowName is the workflow type registered by the external
// sync worker; the API only starts executions and reads back status.
const CourseSyncWorkflowName = "CourseSyncWorkflow"

// CourseSyncInput is the workflow argument payload.
type CourseSyncInput struct {
	JobSyncGroupID uuid.UUID   `json:"job_sync_group_id"`
	UserID         uuid.UUID   `json:"user_id"`
	CourseIDs      []uuid.UUID `json:"course_ids"`
	ForceRefresh   bool        `json:"force_refresh"`
}

// SyncStart is what a successful kickoff returns to the client.
type SyncStart struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// SyncStatus is the latest sync run for a user.
type SyncStatus struct {
	JobSyncGroupID uuid.UUID  `json:"job_sync_group_id"`
	Status         string     `json:"status"`
	WorkflowID     *string    `json:"workflow_id"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// SyncService starts course-sync workflow runs and reports on them. The
// worker that scrapes and ingests lives outside this service; all we own is
// the kickoff record and the status read.
type SyncService interface {
	StartCourseSync(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, forceRefresh bool) (*SyncStart, error)
	LatestStatus(ctx context.Context, tx *gorm.DB) (*SyncStatus, error)
}

type syncService struct {
	db             *gorm.DB
	log            *logger.Logger
	temporalClient temporalsdkclient.Client
	taskQueue      string
	jobSyncRepo    repos.JobSyncRepo
	userCourseRepo repos.UserCourseRepo
	courseRepo     repos.CourseRepo
}

func NewSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	temporalClient temporalsdkclient.Client,
	taskQueue string,
	jobSyncRepo repos.JobSyncRepo,
	userCourseRepo repos.UserCourseRepo,
	courseRepo repos.CourseRepo,
) SyncService {
	return &syncService{
		db:             db,
		log:            baseLog.With("service", "SyncService"),
		temporalClient: temporalClient,
		taskQueue:      taskQueue,
		jobSyncRepo:    jobSyncRepo,
		userCourseRepo: userCourseRepo,
		courseRepo:     courseRepo,
	}
}

func (ss *syncService) StartCourseSync(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, forceRefresh bool) (*SyncStart, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if ss.temporalClient == nil {
		return nil, ErrSyncUnavailable
	}

	// No explicit course list means "everything the user follows".
	if len(courseIDs) == 0 {
		followed, err := ss.userCourseRepo.ListCourseIDsByUser(ctx, tx, userID)
		if err != nil {
			return nil, fmt.Errorf("list followed course ids: %w", err)
		}
		courseIDs = followed
	} else {
		courses, err := ss.courseRepo.GetByIDs(ctx, tx, courseIDs)
		if err != nil {
			return nil, fmt.Errorf("load courses: %w", err)
		}
		if len(courses) != len(dedupeUUIDs(courseIDs)) {
			return nil, ErrCourseNotFound
		}
	}
	if len(courseIDs) == 0 {
		return nil, ErrCourseNotFound
	}

	group := &types.JobSyncGroup{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    types.JobSyncGroupStatusStarted,
		CreatedAt: time.Now().UTC(),
	}
	workflowID := "course-sync-" + group.ID.String()
	group.WorkflowID = &workflowID

	if _, err := ss.jobSyncRepo.CreateGroup(ctx, tx, group); err != nil {
		return nil, fmt.Errorf("create sync group: %w", err)
	}

	_, err := ss.temporalClient.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: ss.taskQueue,
	}, CourseSyncWorkflowName, CourseSyncInput{
		JobSyncGroupID: group.ID,
		UserID:         userID,
		CourseIDs:      courseIDs,
		ForceRefresh:   forceRefresh,
	})
	if err != nil {
		ss.log.Error("Failed to start course sync workflow", "workflow_id", workflowID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSyncUnavailable, err)
	}

	ss.log.Info("Started course sync", "workflow_id", workflowID, "course_count", len(courseIDs), "force_refresh", forceRefresh, "user_id", userID)
	return &SyncStart{
		WorkflowID: workflowID,
		Status:     group.Status,
		Message:    fmt.Sprintf("sync started for %d course(s)", len(courseIDs)),
	}, nil
}

func (ss *syncService) LatestStatus(ctx context.Context, tx *gorm.DB) (*SyncStatus, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	group, err := ss.jobSyncRepo.LatestGroupByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest sync group: %w", err)
	}
	if group == nil {
		return nil, ErrSyncNotFound
	}
	return &SyncStatus{
		JobSyncGroupID: group.ID,
		Status:         group.Status,
		WorkflowID:     group.WorkflowID,
		CreatedAt:      group.CreatedAt,
		CompletedAt:    group.CompletedAt,
	}, nil
}
