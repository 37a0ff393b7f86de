package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-oq/internal/humastar"
	"github.com/joeblew999/plat-oq/internal/viewer"
)

var overlayActions = []humastar.ActionDef{
	{Rel: "delete", Pattern: "/api/v1/sessions/%s/overlays/%s", Method: http.MethodDelete, Title: "Remove overlay"},
}

var sessionActions = []humastar.ActionDef{
	{Rel: "overlays", Pattern: "/api/v1/sessions/%s/overlays", Method: http.MethodPost, Title: "Add overlay"},
	{Rel: "clicks", Pattern: "/api/v1/sessions/%s/clicks", Method: http.MethodPost, Title: "Record feature click"},
	{Rel: "delete", Pattern: "/api/v1/sessions/%s", Method: http.MethodDelete, Title: "Close session"},
}

type SessionInput struct {
	Session string `path:"session" doc:"Session ID"`
}

type SessionBody struct {
	ID      string    `json:"id" doc:"Session ID"`
	Created time.Time `json:"created" doc:"When the session was opened"`
}

func (b SessionBody) Actions() []humastar.Action {
	return humastar.ActionsFor(sessionActions, b.ID)
}

// OverlayBody is an active overlay of one session.
type OverlayBody struct {
	viewer.Overlay
	Session string `json:"session" doc:"Owning session ID"`
}

func (b OverlayBody) Actions() []humastar.Action {
	return humastar.ActionsFor(overlayActions, b.Session, url.PathEscape(b.ID))
}

type OverlaysBody struct {
	Overlays []viewer.Overlay `json:"overlays" doc:"Active overlays in activation order"`
}

type AddOverlayInput struct {
	SessionInput
	Body struct {
		ID   string `json:"id,omitempty" doc:"Layer id to activate"`
		Name string `json:"name,omitempty" doc:"Display name to activate (resolved through the catalog)"`
	}
}

type OverlayInput struct {
	SessionInput
	Layer string `path:"layer" doc:"Layer id"`
}

type ClickInput struct {
	SessionInput
	Body struct {
		Feature    map[string]any `json:"feature" doc:"Properties of the clicked feature"`
		Attributes []string       `json:"attributes" doc:"Chosen attribute keys, at most four are used"`
	}
}

// RegisterSessions registers the per-page viewer state routes.
func (h *APIHandler) RegisterSessions(api huma.API) {
	huma.Post(api, "/api/v1/sessions", h.CreateSession, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{session}", h.DeleteSession, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{session}/overlays", h.GetOverlays, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{session}/overlays", h.AddOverlay, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{session}/overlays/{layer}", h.RemoveOverlay, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{session}/clicks", h.RecordClick, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{session}/chart", h.GetChart, huma.OperationTags("sessions"))
}

func (h *APIHandler) session(id string) (*viewer.Session, error) {
	if h.svc == nil || h.svc.Store == nil {
		return nil, huma.Error503ServiceUnavailable("sessions not available")
	}
	s, ok := h.svc.Store.Get(id)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return s, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct{}) (*struct{ Body SessionBody }, error) {
	if h.svc == nil || h.svc.Store == nil {
		return nil, huma.Error503ServiceUnavailable("sessions not available")
	}
	s := h.svc.Store.Create()
	return &struct{ Body SessionBody }{Body: SessionBody{ID: s.ID, Created: s.Created}}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	if _, err := h.session(input.Session); err != nil {
		return nil, err
	}
	h.svc.Store.Delete(input.Session)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Session closed"}}, nil
}

func (h *APIHandler) GetOverlays(ctx context.Context, input *SessionInput) (*struct{ Body OverlaysBody }, error) {
	s, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return &struct{ Body OverlaysBody }{Body: OverlaysBody{Overlays: s.Overlays()}}, nil
}

func (h *APIHandler) AddOverlay(ctx context.Context, input *AddOverlayInput) (*struct{ Body OverlayBody }, error) {
	s, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}

	var ov viewer.Overlay
	switch {
	case input.Body.ID != "":
		ov, err = s.AddLayer(input.Body.ID)
	case input.Body.Name != "":
		ov, err = s.AddLayerByName(h.index(), input.Body.Name)
	default:
		return nil, huma.Error422UnprocessableEntity("either id or name is required")
	}
	if err != nil {
		return nil, overlayError(err)
	}
	return &struct{ Body OverlayBody }{Body: OverlayBody{Overlay: ov, Session: s.ID}}, nil
}

func (h *APIHandler) RemoveOverlay(ctx context.Context, input *OverlayInput) (*struct{ Body OverlayBody }, error) {
	s, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	ov, err := s.RemoveLayer(input.Layer)
	if err != nil {
		return nil, overlayError(err)
	}
	return &struct{ Body OverlayBody }{Body: OverlayBody{Overlay: ov, Session: s.ID}}, nil
}

func (h *APIHandler) RecordClick(ctx context.Context, input *ClickInput) (*struct{ Body viewer.ClickResult }, error) {
	s, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	res, err := s.RecordClick(ctx, input.Body.Feature, input.Body.Attributes)
	if err != nil {
		if errors.Is(err, viewer.ErrTooFewAttributes) || errors.Is(err, viewer.ErrNoFeature) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("click failed", err)
	}
	return &struct{ Body viewer.ClickResult }{Body: res}, nil
}

func (h *APIHandler) GetChart(ctx context.Context, input *SessionInput) (*struct{ Body viewer.TrendChart }, error) {
	s, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	chart, err := s.Chart()
	if errors.Is(err, viewer.ErrTooFewAttributes) {
		// Nothing clicked yet.
		chart = viewer.TrendChart{Categories: []string{}, Series: []viewer.Series{}}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("chart failed", err)
	}
	return &struct{ Body viewer.TrendChart }{Body: chart}, nil
}

func overlayError(err error) error {
	switch {
	case errors.Is(err, viewer.ErrDuplicateLayer):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, viewer.ErrNoSuchLayer), errors.Is(err, viewer.ErrUnknownLayerName):
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError("overlay update failed", err)
	}
}
