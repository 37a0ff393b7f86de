// Package viewer contains Datastar SSE handlers for the indicator viewer page.
//
// The page holds one session id in the `session` signal. Every handler
// reads its inputs from signals and answers with element patches and
// signals; the map widget reacts to the `overlay`, `removed` and `chart`
// signals.
package viewer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-oq/internal/catalog"
	"github.com/joeblew999/plat-oq/internal/humastar"
	"github.com/joeblew999/plat-oq/internal/templates"
	"github.com/joeblew999/plat-oq/internal/viewer"
)

// Element ids and dialogs the handlers patch.
const (
	CategorySelector = "#layer-category"
	LayerSelector    = "#layer-list"
	OverlayList      = "#overlay-list"
	FeatureTableBody = "#svir-table-body"
	AttributePicker  = "#spiderChart-selection"

	DuplicateDialog = "warning-duplicate"
	NoLayerDialog   = "warning-no-layer"
)

// Handler serves the viewer's SSE endpoints.
type Handler struct {
	humastar.Handler
	// GridLayer is the UTFGrid tileset the page queries on click.
	GridLayer string

	catalog *catalog.Catalog
	store   *viewer.Store
	logger  *slog.Logger
}

// NewHandler creates the viewer handlers.
func NewHandler(cat *catalog.Catalog, store *viewer.Store, renderer *templates.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Handler:   humastar.Handler{Renderer: renderer},
		GridLayer: catalog.DefaultGridLayer,
		catalog:   cat,
		store:     store,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/session", h.OpenSession, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/categories", h.Categories, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/layers", h.Layers, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/overlays/add", h.AddOverlay, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/overlays/remove", h.RemoveOverlay, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/clicks", h.Click, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/events", h.Events, huma.OperationTags("viewer"))
}

// OpenSession starts a session for a freshly loaded page.
func (h *Handler) OpenSession(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		s := h.store.Create()
		sse.Signals(map[string]any{
			"session": s.ID,
			"grid":    h.store.Tiles().GridTemplate(h.GridLayer),
		})
		sse.Patch(h.renderOverlays(s), OverlayList)
	}), nil
}

// Categories fills the category selector. It holds the stream open until
// the catalog fetch has finished, so a page opened during startup still
// gets its options.
func (h *Handler) Categories(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			select {
			case <-h.catalog.Ready():
			case <-humaCtx.Context().Done():
				return
			}
			sse := humastar.NewSSE(humaCtx)
			if !h.catalog.Loaded() {
				sse.Error("Layer catalog unavailable")
			}
			cats := h.catalog.Index().Categories()
			sse.Patch(h.RenderSelect("Select a category", selectOptions(cats)), CategorySelector)
		},
	}, nil
}

// Layers fills the layer selector for the `category` signal.
func (h *Handler) Layers(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	category := signals.String("category")

	return h.Stream(func(sse humastar.SSE) {
		names, _ := h.catalog.Index().Names(category)
		sse.Patch(h.RenderSelect("Select a layer", selectOptions(names)), LayerSelector)
	}), nil
}

// AddOverlay activates the layer named by the `layer` signal.
func (h *Handler) AddOverlay(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	s, err := h.session(signals)
	if err != nil {
		return nil, err
	}
	layer := signals.String("layer")
	if layer == "" {
		return nil, huma.Error400BadRequest("Layer is required")
	}

	return h.Stream(func(sse humastar.SSE) {
		ov, err := s.AddLayerByName(h.catalog.Index(), layer)
		switch {
		case errors.Is(err, viewer.ErrDuplicateLayer):
			sse.Warning(DuplicateDialog, "This layer is already on the map")
			return
		case err != nil:
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"overlay": ov})
		sse.Patch(h.renderOverlays(s), OverlayList)
		sse.Success("Added " + layer)
	}), nil
}

// RemoveOverlay deactivates the `layer` signal, given as id or display name.
func (h *Handler) RemoveOverlay(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	s, err := h.session(signals)
	if err != nil {
		return nil, err
	}
	layer := signals.String("layer")

	return h.Stream(func(sse humastar.SSE) {
		var (
			ov  viewer.Overlay
			err error
		)
		if s.HasLayer(layer) {
			ov, err = s.RemoveLayer(layer)
		} else {
			ov, err = s.RemoveLayerByName(h.catalog.Index(), layer)
		}
		if errors.Is(err, viewer.ErrNoSuchLayer) || errors.Is(err, viewer.ErrUnknownLayerName) {
			sse.Warning(NoLayerDialog, "This layer is not on the map")
			return
		}
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"removed": ov.ID})
		sse.Patch(h.renderOverlays(s), OverlayList)
		sse.Success("Removed " + layer)
	}), nil
}

// Click handles a UTFGrid feature click: the `feature` signal holds the
// feature properties and `attributes` the chosen keys.
func (h *Handler) Click(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	s, err := h.session(signals)
	if err != nil {
		return nil, err
	}
	feature := viewer.FeatureProperties(signals.Object("feature"))
	attributes := signals.Strings("attributes")

	return h.Stream(func(sse humastar.SSE) {
		if len(feature) == 0 {
			// Clicked between features.
			return
		}
		sse.Patch(h.renderTable(feature), FeatureTableBody)
		sse.Patch(h.renderAttributes(feature, attributes), AttributePicker)

		res, err := s.RecordClick(detached(ctx), feature, attributes)
		if errors.Is(err, viewer.ErrTooFewAttributes) {
			sse.Error("Select at least two attributes to draw the chart")
			return
		}
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"chart": res.Chart, "location": res.Location})
	}), nil
}

type EventsInput struct {
	Session string `query:"session" required:"true" doc:"Session to follow"`
}

// Events streams a session's overlay and history changes, for pages that
// share one session across tabs.
func (h *Handler) Events(ctx context.Context, input *EventsInput) (*huma.StreamResponse, error) {
	s, ok := h.store.Get(input.Session)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			bus := h.store.Bus()
			ch := bus.Subscribe(s.ID)
			defer bus.Unsubscribe(ch)

			done := humaCtx.Context().Done()
			for {
				select {
				case <-done:
					return
				case ev := <-ch:
					switch ev.Resource {
					case "overlays":
						sse.Patch(h.renderOverlays(s), OverlayList)
					case "history":
						if chart, err := s.Chart(); err == nil {
							sse.Signals(map[string]any{"chart": chart, "location": ev.ID})
						}
					}
					sse.DispatchCustomEvent("session-changed", map[string]any{
						"resource": ev.Resource,
						"action":   ev.Action,
						"id":       ev.ID,
					})
				}
			}
		},
	}, nil
}

func (h *Handler) session(signals humastar.Signals) (*viewer.Session, error) {
	id := signals.String("session")
	if id == "" {
		return nil, huma.Error400BadRequest("Session is required")
	}
	s, ok := h.store.Get(id)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return s, nil
}

// detached keeps the click log insert alive when the page navigates away.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func selectOptions(values []string) []humastar.SelectOptionData {
	opts := make([]humastar.SelectOptionData, len(values))
	for i, v := range values {
		opts[i] = humastar.SelectOptionData{Value: v, Label: v}
	}
	return opts
}
