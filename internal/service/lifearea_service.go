package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/lifeareas/internal/middleware"
	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/ordering"
	"github.com/mmynk/lifeareas/internal/storage"
	"github.com/mmynk/lifeareas/pkg/api"
	"github.com/mmynk/lifeareas/pkg/api/apiconnect"
)

var _ apiconnect.LifeAreaServiceHandler = (*LifeAreaService)(nil)

// LifeAreaService implements the Connect LifeAreaService.
type LifeAreaService struct {
	store        storage.Store
	engine       *ordering.Engine
	validate     *validator.Validate
	exposeDetail bool
}

// NewLifeAreaService creates a LifeAreaService. When exposeDetail is set,
// internal error messages are returned to clients.
func NewLifeAreaService(store storage.Store, exposeDetail bool) *LifeAreaService {
	return &LifeAreaService{
		store:        store,
		engine:       ordering.NewEngine(store),
		validate:     newValidator(),
		exposeDetail: exposeDetail,
	}
}

// resolveUserID picks the user a request acts for. An authenticated caller
// always acts as itself; an anonymous caller must name a user_id.
func resolveUserID(ctx context.Context, requested string) (string, error) {
	if authID := middleware.GetUserID(ctx); authID != "" {
		if requested != "" && requested != authID {
			return "", connect.NewError(connect.CodePermissionDenied, errUserMismatch)
		}
		return authID, nil
	}
	if requested != "" {
		return requested, nil
	}
	return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
}

// ListLifeAreas returns the caller's life areas in their custom order.
func (s *LifeAreaService) ListLifeAreas(ctx context.Context, req *connect.Request[api.ListLifeAreasRequest]) (*connect.Response[api.ListLifeAreasResponse], error) {
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	ordered, err := s.engine.List(ctx, userID)
	if err != nil {
		return nil, s.fail(req, err)
	}

	slog.Info("ListLifeAreas successful", "user_id", userID, "count", len(ordered))
	return connect.NewResponse(&api.ListLifeAreasResponse{LifeAreas: toAPIList(ordered)}), nil
}

// GetLifeArea returns one visible life area with the caller's position.
func (s *LifeAreaService) GetLifeArea(ctx context.Context, req *connect.Request[api.GetLifeAreaRequest]) (*connect.Response[api.GetLifeAreaResponse], error) {
	if err := validateRequest(s.validate, req.Msg); err != nil {
		return nil, err
	}
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	area, err := s.positioned(ctx, userID, req.Msg.Id)
	if err != nil {
		return nil, s.fail(req, err)
	}
	return connect.NewResponse(&api.GetLifeAreaResponse{LifeArea: area}), nil
}

// SaveLifeArea creates a private life area, or updates the caller's own area
// when an ID is given.
func (s *LifeAreaService) SaveLifeArea(ctx context.Context, req *connect.Request[api.SaveLifeAreaRequest]) (*connect.Response[api.SaveLifeAreaResponse], error) {
	if err := validateRequest(s.validate, req.Msg); err != nil {
		return nil, err
	}
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	slog.Info("SaveLifeArea request received",
		"user_id", userID,
		"life_area_id", req.Msg.Id,
		"designation", req.Msg.Designation,
	)

	var areaID int64
	if req.Msg.Id != 0 {
		if err := s.updateOwned(ctx, userID, req.Msg.Id, req.Msg.Designation, req.Msg.IconPath); err != nil {
			return nil, s.fail(req, err)
		}
		areaID = req.Msg.Id
	} else {
		area := &models.LifeArea{
			OwnerID:     userID,
			Designation: req.Msg.Designation,
			IconPath:    req.Msg.IconPath,
		}
		if err := s.store.CreateLifeArea(ctx, area); err != nil {
			return nil, s.fail(req, err)
		}
		areaID = area.ID
	}

	saved, err := s.positioned(ctx, userID, areaID)
	if err != nil {
		return nil, s.fail(req, err)
	}

	slog.Info("Life area saved", "user_id", userID, "life_area_id", saved.Id, "position", saved.Position)
	return connect.NewResponse(&api.SaveLifeAreaResponse{LifeArea: saved}), nil
}

// UpdateLifeArea changes the designation and icon of the caller's own area.
func (s *LifeAreaService) UpdateLifeArea(ctx context.Context, req *connect.Request[api.UpdateLifeAreaRequest]) (*connect.Response[api.UpdateLifeAreaResponse], error) {
	if err := validateRequest(s.validate, req.Msg); err != nil {
		return nil, err
	}
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	if err := s.updateOwned(ctx, userID, req.Msg.Id, req.Msg.Designation, req.Msg.IconPath); err != nil {
		return nil, s.fail(req, err)
	}

	updated, err := s.positioned(ctx, userID, req.Msg.Id)
	if err != nil {
		return nil, s.fail(req, err)
	}

	slog.Info("Life area updated", "user_id", userID, "life_area_id", req.Msg.Id)
	return connect.NewResponse(&api.UpdateLifeAreaResponse{LifeArea: updated}), nil
}

// DeleteLifeArea deletes the caller's own area and closes the gap it leaves.
func (s *LifeAreaService) DeleteLifeArea(ctx context.Context, req *connect.Request[api.DeleteLifeAreaRequest]) (*connect.Response[api.DeleteLifeAreaResponse], error) {
	if err := validateRequest(s.validate, req.Msg); err != nil {
		return nil, err
	}
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Remove(ctx, userID, req.Msg.Id); err != nil {
		return nil, s.fail(req, err)
	}

	slog.Info("Life area deleted", "user_id", userID, "life_area_id", req.Msg.Id)
	return connect.NewResponse(&api.DeleteLifeAreaResponse{}), nil
}

// ReorderLifeArea moves a life area to a new index in the caller's order.
func (s *LifeAreaService) ReorderLifeArea(ctx context.Context, req *connect.Request[api.ReorderLifeAreaRequest]) (*connect.Response[api.ReorderLifeAreaResponse], error) {
	if err := validateRequest(s.validate, req.Msg); err != nil {
		return nil, err
	}
	userID, err := resolveUserID(ctx, req.Msg.UserId)
	if err != nil {
		return nil, err
	}

	slog.Info("ReorderLifeArea request received",
		"user_id", userID,
		"life_area_id", req.Msg.Id,
		"to_index", *req.Msg.ToIndex,
	)

	result, err := s.engine.Reorder(ctx, userID, req.Msg.Id, *req.Msg.ToIndex)
	if err != nil {
		return nil, s.fail(req, err)
	}

	return connect.NewResponse(&api.ReorderLifeAreaResponse{
		Changed:   result.Changed,
		Position:  result.Position,
		LifeAreas: toAPIList(result.Ordered),
	}), nil
}

// updateOwned applies new values to an area only its owner may change.
// Invisible areas report not found; visible ones the caller does not own
// (defaults included) report forbidden.
func (s *LifeAreaService) updateOwned(ctx context.Context, userID string, id int64, designation, iconPath string) error {
	area, err := s.store.GetLifeArea(ctx, id)
	if err != nil {
		return err
	}
	if !area.VisibleTo(userID) {
		return ordering.ErrNotFound
	}
	if !area.OwnedBy(userID) {
		return ordering.ErrForbidden
	}

	area.Designation = designation
	area.IconPath = iconPath
	return s.store.UpdateLifeArea(ctx, area)
}

// positioned returns the area with the caller's position, seeding the order if needed.
func (s *LifeAreaService) positioned(ctx context.Context, userID string, id int64) (*api.LifeArea, error) {
	ordered, err := s.engine.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range ordered {
		if ordered[i].ID == id {
			return toAPI(&ordered[i]), nil
		}
	}
	return nil, ordering.ErrNotFound
}

func (s *LifeAreaService) fail(req connect.AnyRequest, err error) error {
	return toConnectError(err, s.exposeDetail, req.Spec().Procedure)
}

func toAPI(oa *models.OrderedLifeArea) *api.LifeArea {
	return &api.LifeArea{
		Id:          oa.ID,
		Designation: oa.Designation,
		IconPath:    oa.IconPath,
		IsDefault:   oa.IsDefault,
		OwnerId:     oa.OwnerID,
		Position:    oa.Position,
		CreatedAt:   oa.CreatedAt,
		UpdatedAt:   oa.UpdatedAt,
	}
}

func toAPIList(ordered []models.OrderedLifeArea) []*api.LifeArea {
	out := make([]*api.LifeArea, len(ordered))
	for i := range ordered {
		out[i] = toAPI(&ordered[i])
	}
	return out
}
