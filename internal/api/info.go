package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	svc *Services
}

func NewInfoHandler(svc *Services) *InfoHandler {
	return &InfoHandler{svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name          string   `json:"name" doc:"Service name"`
	Version       string   `json:"version" doc:"Service version"`
	DataDir       string   `json:"data_dir" doc:"Data directory path"`
	DB            bool     `json:"db" doc:"Whether the click log database is available"`
	CatalogLoaded bool     `json:"catalog_loaded" doc:"Whether the layer catalog has been fetched"`
	Categories    int      `json:"categories" doc:"Number of layer categories"`
	Sessions      int      `json:"sessions" doc:"Open viewer sessions"`
	Features      []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-oq",
		Version:  Version,
		Features: []string{"svir-viewer", "hazard-map", "faulted-earth"},
	}
	if h.svc != nil {
		body.DataDir = h.svc.DataDir
		body.DB = h.svc.DB != nil
		if h.svc.Catalog != nil {
			body.CatalogLoaded = h.svc.Catalog.Loaded()
			body.Categories = h.svc.Catalog.Index().Len()
		}
		if h.svc.Store != nil {
			body.Sessions = h.svc.Store.Len()
		}
		if body.DB {
			body.Features = append(body.Features, "duckdb")
		}
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
