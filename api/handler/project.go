package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	"github.com/fastygo/droptracker/repository"
	projectUC "github.com/fastygo/droptracker/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List Explorer projects
// @Tags explorer
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.ProjectFilter{
		Category: string(args.Peek("category")),
		Status:   string(args.Peek("status")),
		Featured: args.GetBool("featured"),
		Limit:    repository.PageLimit(parseInt(string(args.Peek("limit")), 50)),
		Offset:   repository.PageOffset(parseInt(string(args.Peek("offset")), 0)),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, transport.NewList(projects, filter.Limit, filter.Offset))
}

// @Summary Get an Explorer project
// @Tags explorer
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Create a listing and notify all users
// @Tags admin
// @Router /api/v1/admin/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	project, ok := h.parseProject(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateProject(stdCtx, actor, project)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a listing
// @Tags admin
// @Router /api/v1/admin/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	project, ok := h.parseProject(ctx)
	if !ok {
		return
	}
	project.ID = pathID(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProject(stdCtx, actor, project)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a listing
// @Tags admin
// @Router /api/v1/admin/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, actor, pathID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

func (h *ProjectHandler) parseProject(ctx *fasthttp.RequestCtx) (*domain.Project, bool) {
	var req transport.ProjectRequest
	if !h.decode(ctx, &req) {
		return nil, false
	}
	return &domain.Project{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Category:    req.Category,
		Status:      domain.ProjectStatus(req.Status),
		Featured:    req.Featured,
	}, true
}
