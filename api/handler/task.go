package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	"github.com/fastygo/droptracker/repository"
	taskUC "github.com/fastygo/droptracker/usecase/task"
)

const streamKeepAlive = 25 * time.Second

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks with their timer state
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		UserID: actor.UserID,
		Limit:  repository.PageLimit(parseInt(string(ctx.QueryArgs().Peek("limit")), repository.MaxPageSize)),
		Offset: repository.PageOffset(parseInt(string(ctx.QueryArgs().Peek("offset")), 0)),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, transport.NewList(tasks, filter.Limit, filter.Offset))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.GetTask(stdCtx, actor.UserID, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	task, ok := h.parseTask(ctx, actor.UserID)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	task, ok := h.parseTask(ctx, actor.UserID)
	if !ok {
		return
	}
	task.ID = pathID(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, actor.UserID, pathID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Complete a due task or undo an active completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.ToggleCompletion(stdCtx, actor.UserID, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Stream full task-list snapshots as server-sent events
// @Tags tasks
// @Produce text/event-stream
// @Router /api/v1/tasks/stream [get]
func (h *TaskHandler) StreamTasks(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	streamCtx, cancel := h.adapter.Stream(ctx)
	snapshots, err := h.uc.Subscribe(streamCtx, actor.UserID)
	if err != nil {
		cancel()
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")
	ctx.SetStatusCode(http.StatusOK)

	logger := h.logger.With(zap.String("user_id", actor.UserID))
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case snapshot, ok := <-snapshots:
				if !ok {
					return
				}
				if err := writeSnapshot(w, snapshot); err != nil {
					logger.Debug("task stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("task stream closed", zap.Error(err))
					return
				}
			}
		}
	})
}

func writeSnapshot(w *bufio.Writer, snapshot domain.TaskSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx, userID string) (*domain.Task, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return nil, false
	}
	return &domain.Task{
		UserID:      userID,
		Title:       req.Title,
		URL:         req.URL,
		Intensity:   domain.Intensity(req.Intensity),
		TimerType:   domain.TimerType(req.TimerType),
		CustomHours: req.CustomHours,
	}, true
}
