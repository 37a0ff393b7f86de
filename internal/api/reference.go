package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-oq/internal/faulted"
	"github.com/joeblew999/plat-oq/internal/hazard"
)

type PrefixInput struct {
	Prefix string `path:"prefix" doc:"Model prefix" example:"trace"`
}

type FieldInput struct {
	Field string `path:"field" doc:"Attribute name" example:"scale"`
}

type ModelsBody struct {
	Models []faulted.View `json:"models" doc:"Models in menu order"`
}

type FieldBody struct {
	Field      string `json:"field" doc:"Attribute name"`
	Known      bool   `json:"known" doc:"Whether the field belongs to the trace property set"`
	Compulsory bool   `json:"compulsory" doc:"Must be filled in"`
	Calculated bool   `json:"calculated" doc:"Computed, not entered"`
}

// RegisterHazard registers the hazard map configuration route.
func (h *APIHandler) RegisterHazard(api huma.API) {
	huma.Get(api, "/api/v1/hazard/map", h.GetHazardMap, huma.OperationTags("hazard"))
}

// RegisterFaulted registers the faulted_earth model registry routes.
func (h *APIHandler) RegisterFaulted(api huma.API) {
	huma.Get(api, "/api/v1/faulted/models", h.GetModels, huma.OperationTags("faulted"))
	huma.Get(api, "/api/v1/faulted/models/{prefix}", h.GetModel, huma.OperationTags("faulted"))
	huma.Get(api, "/api/v1/faulted/fields/{field}", h.GetField, huma.OperationTags("faulted"))
}

func (h *APIHandler) GetHazardMap(ctx context.Context, input *struct{}) (*struct{ Body hazard.MapConfig }, error) {
	if h.svc == nil || h.svc.Hazard.BaseLayer.URL == "" {
		return nil, huma.Error503ServiceUnavailable("hazard catalogue not loaded")
	}
	return &struct{ Body hazard.MapConfig }{Body: h.svc.Hazard}, nil
}

func (h *APIHandler) GetModels(ctx context.Context, input *struct{}) (*struct{ Body ModelsBody }, error) {
	models := faulted.Models()
	views := make([]faulted.View, len(models))
	for i, m := range models {
		views[i] = m.View()
	}
	return &struct{ Body ModelsBody }{Body: ModelsBody{Models: views}}, nil
}

func (h *APIHandler) GetModel(ctx context.Context, input *PrefixInput) (*struct{ Body faulted.View }, error) {
	m, ok := faulted.Lookup(input.Prefix)
	if !ok {
		return nil, huma.Error404NotFound("unknown model " + input.Prefix)
	}
	return &struct{ Body faulted.View }{Body: m.View()}, nil
}

func (h *APIHandler) GetField(ctx context.Context, input *FieldInput) (*struct{ Body FieldBody }, error) {
	known := false
	for _, p := range faulted.Properties() {
		if p.ID == input.Field {
			known = true
			break
		}
	}
	return &struct{ Body FieldBody }{Body: FieldBody{
		Field:      input.Field,
		Known:      known,
		Compulsory: faulted.IsCompulsory(input.Field),
		Calculated: faulted.IsCalculated(input.Field),
	}}, nil
}
