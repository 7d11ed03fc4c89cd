// Package apiconnect wires the lifeareas.v1 services to Connect handlers and
// clients. It follows the layout of protoc-gen-connect-go output, but the
// messages are the plain structs in package api, carried by api.JSONCodec.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/lifeareas/pkg/api"
)

const (
	// LifeAreaServiceName is the fully-qualified name of the LifeAreaService service.
	LifeAreaServiceName = "lifeareas.v1.LifeAreaService"
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "lifeareas.v1.AuthService"
)

// Procedure names, in the form "/service/method".
const (
	LifeAreaServiceListLifeAreasProcedure   = "/lifeareas.v1.LifeAreaService/ListLifeAreas"
	LifeAreaServiceGetLifeAreaProcedure     = "/lifeareas.v1.LifeAreaService/GetLifeArea"
	LifeAreaServiceSaveLifeAreaProcedure    = "/lifeareas.v1.LifeAreaService/SaveLifeArea"
	LifeAreaServiceUpdateLifeAreaProcedure  = "/lifeareas.v1.LifeAreaService/UpdateLifeArea"
	LifeAreaServiceDeleteLifeAreaProcedure  = "/lifeareas.v1.LifeAreaService/DeleteLifeArea"
	LifeAreaServiceReorderLifeAreaProcedure = "/lifeareas.v1.LifeAreaService/ReorderLifeArea"

	AuthServiceRegisterProcedure       = "/lifeareas.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/lifeareas.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/lifeareas.v1.AuthService/GetCurrentUser"
)

// LifeAreaServiceHandler is implemented by the life area service.
type LifeAreaServiceHandler interface {
	ListLifeAreas(context.Context, *connect.Request[api.ListLifeAreasRequest]) (*connect.Response[api.ListLifeAreasResponse], error)
	GetLifeArea(context.Context, *connect.Request[api.GetLifeAreaRequest]) (*connect.Response[api.GetLifeAreaResponse], error)
	SaveLifeArea(context.Context, *connect.Request[api.SaveLifeAreaRequest]) (*connect.Response[api.SaveLifeAreaResponse], error)
	UpdateLifeArea(context.Context, *connect.Request[api.UpdateLifeAreaRequest]) (*connect.Response[api.UpdateLifeAreaResponse], error)
	DeleteLifeArea(context.Context, *connect.Request[api.DeleteLifeAreaRequest]) (*connect.Response[api.DeleteLifeAreaResponse], error)
	ReorderLifeArea(context.Context, *connect.Request[api.ReorderLifeAreaRequest]) (*connect.Response[api.ReorderLifeAreaResponse], error)
}

// NewLifeAreaServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLifeAreaServiceHandler(svc LifeAreaServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSONCodec(opts)
	routes := map[string]http.Handler{
		LifeAreaServiceListLifeAreasProcedure:   connect.NewUnaryHandler(LifeAreaServiceListLifeAreasProcedure, svc.ListLifeAreas, opts...),
		LifeAreaServiceGetLifeAreaProcedure:     connect.NewUnaryHandler(LifeAreaServiceGetLifeAreaProcedure, svc.GetLifeArea, opts...),
		LifeAreaServiceSaveLifeAreaProcedure:    connect.NewUnaryHandler(LifeAreaServiceSaveLifeAreaProcedure, svc.SaveLifeArea, opts...),
		LifeAreaServiceUpdateLifeAreaProcedure:  connect.NewUnaryHandler(LifeAreaServiceUpdateLifeAreaProcedure, svc.UpdateLifeArea, opts...),
		LifeAreaServiceDeleteLifeAreaProcedure:  connect.NewUnaryHandler(LifeAreaServiceDeleteLifeAreaProcedure, svc.DeleteLifeArea, opts...),
		LifeAreaServiceReorderLifeAreaProcedure: connect.NewUnaryHandler(LifeAreaServiceReorderLifeAreaProcedure, svc.ReorderLifeArea, opts...),
	}
	return "/" + LifeAreaServiceName + "/", routeHandler(routes)
}

// LifeAreaServiceClient is a client for the lifeareas.v1.LifeAreaService service.
type LifeAreaServiceClient interface {
	ListLifeAreas(context.Context, *connect.Request[api.ListLifeAreasRequest]) (*connect.Response[api.ListLifeAreasResponse], error)
	GetLifeArea(context.Context, *connect.Request[api.GetLifeAreaRequest]) (*connect.Response[api.GetLifeAreaResponse], error)
	SaveLifeArea(context.Context, *connect.Request[api.SaveLifeAreaRequest]) (*connect.Response[api.SaveLifeAreaResponse], error)
	UpdateLifeArea(context.Context, *connect.Request[api.UpdateLifeAreaRequest]) (*connect.Response[api.UpdateLifeAreaResponse], error)
	DeleteLifeArea(context.Context, *connect.Request[api.DeleteLifeAreaRequest]) (*connect.Response[api.DeleteLifeAreaResponse], error)
	ReorderLifeArea(context.Context, *connect.Request[api.ReorderLifeAreaRequest]) (*connect.Response[api.ReorderLifeAreaResponse], error)
}

// NewLifeAreaServiceClient constructs a client for the lifeareas.v1.LifeAreaService service.
func NewLifeAreaServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LifeAreaServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &lifeAreaServiceClient{
		listLifeAreas:   connect.NewClient[api.ListLifeAreasRequest, api.ListLifeAreasResponse](httpClient, baseURL+LifeAreaServiceListLifeAreasProcedure, opts...),
		getLifeArea:     connect.NewClient[api.GetLifeAreaRequest, api.GetLifeAreaResponse](httpClient, baseURL+LifeAreaServiceGetLifeAreaProcedure, opts...),
		saveLifeArea:    connect.NewClient[api.SaveLifeAreaRequest, api.SaveLifeAreaResponse](httpClient, baseURL+LifeAreaServiceSaveLifeAreaProcedure, opts...),
		updateLifeArea:  connect.NewClient[api.UpdateLifeAreaRequest, api.UpdateLifeAreaResponse](httpClient, baseURL+LifeAreaServiceUpdateLifeAreaProcedure, opts...),
		deleteLifeArea:  connect.NewClient[api.DeleteLifeAreaRequest, api.DeleteLifeAreaResponse](httpClient, baseURL+LifeAreaServiceDeleteLifeAreaProcedure, opts...),
		reorderLifeArea: connect.NewClient[api.ReorderLifeAreaRequest, api.ReorderLifeAreaResponse](httpClient, baseURL+LifeAreaServiceReorderLifeAreaProcedure, opts...),
	}
}

type lifeAreaServiceClient struct {
	listLifeAreas   *connect.Client[api.ListLifeAreasRequest, api.ListLifeAreasResponse]
	getLifeArea     *connect.Client[api.GetLifeAreaRequest, api.GetLifeAreaResponse]
	saveLifeArea    *connect.Client[api.SaveLifeAreaRequest, api.SaveLifeAreaResponse]
	updateLifeArea  *connect.Client[api.UpdateLifeAreaRequest, api.UpdateLifeAreaResponse]
	deleteLifeArea  *connect.Client[api.DeleteLifeAreaRequest, api.DeleteLifeAreaResponse]
	reorderLifeArea *connect.Client[api.ReorderLifeAreaRequest, api.ReorderLifeAreaResponse]
}

func (c *lifeAreaServiceClient) ListLifeAreas(ctx context.Context, req *connect.Request[api.ListLifeAreasRequest]) (*connect.Response[api.ListLifeAreasResponse], error) {
	return c.listLifeAreas.CallUnary(ctx, req)
}

func (c *lifeAreaServiceClient) GetLifeArea(ctx context.Context, req *connect.Request[api.GetLifeAreaRequest]) (*connect.Response[api.GetLifeAreaResponse], error) {
	return c.getLifeArea.CallUnary(ctx, req)
}

func (c *lifeAreaServiceClient) SaveLifeArea(ctx context.Context, req *connect.Request[api.SaveLifeAreaRequest]) (*connect.Response[api.SaveLifeAreaResponse], error) {
	return c.saveLifeArea.CallUnary(ctx, req)
}

func (c *lifeAreaServiceClient) UpdateLifeArea(ctx context.Context, req *connect.Request[api.UpdateLifeAreaRequest]) (*connect.Response[api.UpdateLifeAreaResponse], error) {
	return c.updateLifeArea.CallUnary(ctx, req)
}

func (c *lifeAreaServiceClient) DeleteLifeArea(ctx context.Context, req *connect.Request[api.DeleteLifeAreaRequest]) (*connect.Response[api.DeleteLifeAreaResponse], error) {
	return c.deleteLifeArea.CallUnary(ctx, req)
}

func (c *lifeAreaServiceClient) ReorderLifeArea(ctx context.Context, req *connect.Request[api.ReorderLifeAreaRequest]) (*connect.Response[api.ReorderLifeAreaResponse], error) {
	return c.reorderLifeArea.CallUnary(ctx, req)
}

func withJSONCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func routeHandler(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
