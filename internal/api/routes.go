// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-oq/internal/catalog"
	"github.com/joeblew999/plat-oq/internal/db"
	"github.com/joeblew999/plat-oq/internal/hazard"
	"github.com/joeblew999/plat-oq/internal/viewer"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Catalog *catalog.Catalog
	Store   *viewer.Store
	Hazard  hazard.MapConfig
	DB      *sql.DB      // nil when the click log is disabled
	Clicks  *db.ClickLog // nil when the click log is disabled
	DataDir string
}

// RegisterRoutes registers every REST route of svc on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc).RegisterRoutes(api)
	NewDBHandler(svc.DB, svc.Clicks).RegisterRoutes(api)
}

// Types

type CategoryInput struct {
	Category string `path:"category" doc:"Layer category" example:"Economy"`
}

type NameInput struct {
	Name string `path:"name" doc:"Layer display name" example:"Population density"`
}

type CategoriesBody struct {
	Loaded     bool     `json:"loaded" doc:"Whether the layer catalog has been fetched"`
	Categories []string `json:"categories" doc:"Categories in first-seen order"`
}

type NamesBody struct {
	Category string   `json:"category" doc:"Layer category"`
	Names    []string `json:"names" doc:"Display names in first-seen order"`
}

type IDsBody struct {
	Name string   `json:"name" doc:"Layer display name"`
	IDs  []string `json:"ids" doc:"Layer ids in first-seen order"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterCatalog registers the category index lookups.
func (h *APIHandler) RegisterCatalog(api huma.API) {
	huma.Get(api, "/api/v1/categories", h.GetCategories, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/categories/{category}", h.GetCategory, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/names/{name}", h.GetName, huma.OperationTags("catalog"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) index() *catalog.Index {
	if h.svc == nil || h.svc.Catalog == nil {
		return catalog.Empty()
	}
	return h.svc.Catalog.Index()
}

func (h *APIHandler) GetCategories(ctx context.Context, input *struct{}) (*struct{ Body CategoriesBody }, error) {
	cats := h.index().Categories()
	if cats == nil {
		cats = []string{}
	}
	loaded := h.svc != nil && h.svc.Catalog != nil && h.svc.Catalog.Loaded()
	return &struct{ Body CategoriesBody }{Body: CategoriesBody{Loaded: loaded, Categories: cats}}, nil
}

func (h *APIHandler) GetCategory(ctx context.Context, input *CategoryInput) (*struct{ Body NamesBody }, error) {
	names, ok := h.index().Names(input.Category)
	if !ok {
		return nil, huma.Error404NotFound("unknown category " + input.Category)
	}
	return &struct{ Body NamesBody }{Body: NamesBody{Category: input.Category, Names: names}}, nil
}

func (h *APIHandler) GetName(ctx context.Context, input *NameInput) (*struct{ Body IDsBody }, error) {
	ids, ok := h.index().IDs(input.Name)
	if !ok {
		return nil, huma.Error404NotFound("unknown layer name " + input.Name)
	}
	return &struct{ Body IDsBody }{Body: IDsBody{Name: input.Name, IDs: ids}}, nil
}
