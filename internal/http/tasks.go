package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/tasks"
)

// TasksController handles background work: audio downloads, content syncs
// and task status.
type TasksController struct {
	queue      TaskQueue
	syncStatus SyncStatusReader
	schedule   SyncSchedule
}

// NewTasksController creates a new TasksController. syncStatus and schedule
// may be nil.
func NewTasksController(queue TaskQueue, syncStatus SyncStatusReader, schedule SyncSchedule) *TasksController {
	return &TasksController{queue: queue, syncStatus: syncStatus, schedule: schedule}
}

// TaskResponse is returned for every enqueued task.
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Type   string `json:"type"`
}

// SyncRequest selects what POST /api/sync refreshes.
type SyncRequest struct {
	Family string `form:"family"`
	Force  *bool  `form:"force"`
}

// DownloadLullaby handles POST /api/lullabies/:documentId/download
func (tc *TasksController) DownloadLullaby(c *gin.Context) {
	id, ok := parseDocumentIDParam(c, "documentId")
	if !ok {
		return
	}

	task := tasks.DownloadLullabyTask{DocumentID: id}
	taskID, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue download")
		return
	}

	respondAccepted(c, "download enqueued", TaskResponse{TaskID: taskID, Type: task.Config().Name})
}

// Sync handles POST /api/sync?family=lullabies&force=true
// Without family every content family is refreshed. Force defaults to true:
// a manual sync ignores the staleness policy unless asked otherwise.
func (tc *TasksController) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "invalid sync parameters")
		return
	}

	family := entities.SyncType(req.Family)
	switch family {
	case "", entities.SyncTypeLullabies, entities.SyncTypeStories:
	default:
		respondBadRequest(c, "unknown content family: "+req.Family)
		return
	}

	force := true
	if req.Force != nil {
		force = *req.Force
	}

	task := tasks.SyncContentTask{Family: family, Force: force}
	taskID, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue sync")
		return
	}

	respondAccepted(c, "sync enqueued", TaskResponse{TaskID: taskID, Type: task.Config().Name})
}

// SyncStatus handles GET /api/sync/status
// Families that never synced are omitted. next_run is set while the
// periodic sync is scheduled.
func (tc *TasksController) SyncStatus(c *gin.Context) {
	if tc.syncStatus == nil {
		respondError(c, http.StatusServiceUnavailable, "sync status not available")
		return
	}

	status := make(map[entities.SyncType]*entities.SyncProgress)
	for _, family := range []entities.SyncType{entities.SyncTypeLullabies, entities.SyncTypeStories} {
		progress, err := tc.syncStatus.GetSyncProgress(c.Request.Context(), family)
		if err != nil {
			respondInternalError(c, err, "get sync status")
			return
		}
		if progress != nil {
			status[family] = progress
		}
	}

	response := gin.H{"families": status}
	if tc.schedule != nil {
		if next := tc.schedule.GetNextRunTime(); next != nil {
			response["next_run"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "get task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
