package entry

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"pixelvault/internal/app/server/api/http/middleware/auth"
	"pixelvault/internal/app/server/api/http/problem"
	"pixelvault/internal/domain/entry"
)

type Handler struct {
	service    entry.Servicer
	errs       *problem.Mapper
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service entry.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		errs:       problem.New(log),
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.summaryOp(), h.summary)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.deleteAllOp(), h.deleteAll)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	records, err := h.service.List(ctx, accountID)
	if err != nil {
		return nil, h.errs.From("list entries", err)
	}
	return &listOutput{Body: ListResponse{Entries: records}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*recordOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	rec, err := h.service.Create(ctx, accountID, input.Body.Kind, input.Body.Ciphertext)
	if err != nil {
		return nil, h.errs.From("create entry", err)
	}
	return &recordOutput{Body: rec}, nil
}

func (h *Handler) summary(ctx context.Context, _ *struct{}) (*summaryOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	s, err := h.service.Summarize(ctx, accountID)
	if err != nil {
		return nil, h.errs.From("summarize entries", err)
	}
	return &summaryOutput{Body: s}, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*recordOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	rec, err := h.service.Get(ctx, accountID, input.ID)
	if err != nil {
		return nil, h.errs.From("get entry", err)
	}
	return &recordOutput{Body: rec}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*recordOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	rec, err := h.service.Update(ctx, accountID, input.ID, input.Body.Ciphertext)
	if err != nil {
		return nil, h.errs.From("update entry", err)
	}
	return &recordOutput{Body: rec}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*statusOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, accountID, input.ID); err != nil {
		return nil, h.errs.From("delete entry", err)
	}
	return &statusOutput{Body: StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) deleteAll(ctx context.Context, _ *struct{}) (*deleteAllOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.DeleteAll(ctx, accountID)
	if err != nil {
		return nil, h.errs.From("delete all entries", err)
	}
	return &deleteAllOutput{Body: DeleteAllResponse{Deleted: n}}, nil
}
