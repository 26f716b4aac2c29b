package account

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"pixelvault/internal/app/server/api/http/middleware/auth"
	"pixelvault/internal/app/server/api/http/problem"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/rotation"
)

type Handler struct {
	accounts   account.Servicer
	rotation   rotation.Servicer
	errs       *problem.Mapper
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(accounts account.Servicer, rotation rotation.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		accounts:   accounts,
		rotation:   rotation,
		errs:       problem.New(log),
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.profileOp(), h.profile)
	huma.Register(api, h.updateProfileOp(), h.updateProfile)
	huma.Register(api, h.changePasswordOp(), h.changePassword)
	huma.Register(api, h.changeMasterOp(), h.changeMaster)
	huma.Register(api, h.beginRotationOp(), h.beginRotation)
	huma.Register(api, h.stageRotationOp(), h.stageRotation)
	huma.Register(api, h.commitRotationOp(), h.commitRotation)
	huma.Register(api, h.abortRotationOp(), h.abortRotation)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) profile(ctx context.Context, _ *struct{}) (*profileOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	a, err := h.accounts.Profile(ctx, accountID)
	if err != nil {
		return nil, h.errs.From("profile", err)
	}
	return &profileOutput{Body: a.Profile()}, nil
}

func (h *Handler) updateProfile(ctx context.Context, input *updateProfileInput) (*profileOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	a, err := h.accounts.UpdateProfile(ctx, accountID, input.Body)
	if err != nil {
		return nil, h.errs.From("update profile", err)
	}
	return &profileOutput{Body: a.Profile()}, nil
}

func (h *Handler) changePassword(ctx context.Context, input *changePasswordInput) (*statusOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.accounts.ChangeSecret(ctx, accountID, input.Body.Current, input.Body.Next); err != nil {
		return nil, h.errs.From("change password", err)
	}
	return &statusOutput{Body: StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) changeMaster(ctx context.Context, input *changeMasterInput) (*changeMasterOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	body := input.Body
	if err := h.rotation.Rotate(ctx, accountID, body.Current, body.Next, body.Rewrites); err != nil {
		return nil, h.errs.From("change master", err)
	}

	return &changeMasterOutput{
		Body: ChangeMasterResponse{VaultAccessRevoked: true, Rewritten: len(body.Rewrites)},
	}, nil
}

func (h *Handler) beginRotation(ctx context.Context, input *beginRotationInput) (*beginRotationOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	st, err := h.rotation.Begin(ctx, accountID, input.Body.Current, input.Body.Next)
	if err != nil {
		return nil, h.errs.From("begin rotation", err)
	}
	return &beginRotationOutput{
		Body: RotationResponse{RotationID: st.ID, ExpiresAt: st.ExpiresAt},
	}, nil
}

func (h *Handler) stageRotation(ctx context.Context, input *stageRotationInput) (*stageRotationOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.rotation.Stage(ctx, accountID, input.ID, input.Body.Rewrites); err != nil {
		return nil, h.errs.From("stage rotation", err)
	}
	return &stageRotationOutput{Body: StageResponse{Staged: len(input.Body.Rewrites)}}, nil
}

func (h *Handler) commitRotation(ctx context.Context, input *rotationIDInput) (*changeMasterOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.rotation.Commit(ctx, accountID, input.ID)
	if err != nil {
		return nil, h.errs.From("commit rotation", err)
	}
	return &changeMasterOutput{
		Body: ChangeMasterResponse{VaultAccessRevoked: true, Rewritten: n},
	}, nil
}

func (h *Handler) abortRotation(ctx context.Context, input *rotationIDInput) (*statusOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.rotation.Abort(ctx, accountID, input.ID); err != nil {
		return nil, h.errs.From("abort rotation", err)
	}
	return &statusOutput{Body: StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*statusOutput, error) {
	accountID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.accounts.Delete(ctx, accountID, input.Body.Secret); err != nil {
		return nil, h.errs.From("delete account", err)
	}
	return &statusOutput{Body: StatusResponse{Status: "Ok"}}, nil
}
