package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-oq/internal/api"
	viewerapi "github.com/joeblew999/plat-oq/internal/api/viewer"
	"github.com/joeblew999/plat-oq/internal/catalog"
	"github.com/joeblew999/plat-oq/internal/db"
	"github.com/joeblew999/plat-oq/internal/hazard"
	"github.com/joeblew999/plat-oq/internal/humastar"
	"github.com/joeblew999/plat-oq/internal/templates"
	"github.com/joeblew999/plat-oq/internal/viewer"
)

// Config holds the server configuration.
type Config struct {
	Host          string
	Port          string
	DataDir       string
	WebDir        string // Path to web/ directory for static files and pages
	CatalogURL    string // Tileset listing; empty means catalog.DefaultDescriptorURL
	TileBase      string // Tile service root; empty means catalog.DefaultTileBase
	GridLayer     string // UTFGrid layer answering feature clicks
	LocationField string // Feature attribute naming the clicked location
	NoDB          bool   // Skip the DuckDB click log
	Debug         bool   // Re-read web/ fragments on every viewer request
	Logger        *slog.Logger

	// Source overrides the remote tileset listing (tests, offline use).
	Source catalog.Source
}

// Server is the viewer HTTP server.
type Server struct {
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	links    *humastar.LinkSet
	db       *sql.DB
	services *api.Services
	renderer *templates.Renderer
	// fragments is the on-disk template dir reloaded in debug mode.
	fragments string
}

// New creates a new server. Nothing is fetched until Start.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	links := humastar.NewLinkSet("viewer")

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-oq API", api.Version)
	humaConfig.Info.Description = "Indicator and hazard map viewer API: layer catalog, per-page overlay and selection state, and reference registries."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	tiles := catalog.NewTiles(cfg.TileBase)
	source := cfg.Source
	if source == nil {
		source = catalog.NewFetcher(cfg.CatalogURL, logger)
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		mux:     mux,
		humaAPI: humaAPI,
		links:   links,
	}

	storeCfg := viewer.StoreConfig{
		Tiles:         tiles,
		LocationField: cfg.LocationField,
		Logger:        logger,
	}
	var clicks *db.ClickLog
	if !cfg.NoDB {
		clicks = s.openClickLog()
		if clicks != nil {
			storeCfg.Recorder = clicks
		}
	}

	mapCfg, err := hazard.Load(tiles)
	if err != nil {
		logger.Error("hazard catalogue invalid", "error", err)
	}

	s.services = &api.Services{
		Catalog: catalog.NewCatalog(source, logger),
		Store:   viewer.NewStore(storeCfg),
		Hazard:  mapCfg,
		DB:      s.db,
		Clicks:  clicks,
		DataDir: cfg.DataDir,
	}
	s.renderer = s.loadTemplates()

	s.routes()
	return s
}

func (s *Server) openClickLog() *db.ClickLog {
	conn, err := db.Open(db.Config{DataDir: s.config.DataDir, DBName: "oq"})
	if err != nil {
		s.logger.Warn("click log disabled", "error", err)
		return nil
	}
	clicks, err := db.NewClickLog(context.Background(), conn, s.logger)
	if err != nil {
		conn.Close()
		s.logger.Warn("click log disabled", "error", err)
		return nil
	}
	s.db = conn
	return clicks
}

// loadTemplates prefers fragments from a web/ checkout so they can be
// edited without a rebuild.
func (s *Server) loadTemplates() *templates.Renderer {
	if s.config.WebDir != "" {
		dir := filepath.Join(s.config.WebDir, "templates", "fragments")
		if _, err := os.Stat(dir); err == nil {
			r, err := templates.NewFromDir(dir)
			if err == nil {
				s.logger.Info("loaded fragment templates", "dir", dir, "reload", s.config.Debug)
				if s.config.Debug {
					s.fragments = dir
				}
				return r
			}
			s.logger.Warn("fragment templates unusable, using built-in", "dir", dir, "error", err)
		}
	}
	return templates.Must()
}

// Start begins the one-shot layer catalog fetch and returns immediately.
func (s *Server) Start(ctx context.Context) {
	s.services.Catalog.Start(ctx)
}

// Catalog returns the layer catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.services.Catalog
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.fragments != "" && strings.HasPrefix(r.URL.Path, "/api/v1/viewer/") {
		if err := s.renderer.Reload(s.fragments); err != nil {
			s.logger.Warn("fragment reload failed, keeping previous templates", "dir", s.fragments, "error", err)
		}
	}
	s.mux.ServeHTTP(w, r)
}

// Close closes the click log database, if one was opened.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Server) routes() {
	// REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)

	// Viewer SSE routes using Huma + Datastar SDK
	vh := viewerapi.NewHandler(s.services.Catalog, s.services.Store, s.renderer, s.logger)
	if s.config.GridLayer != "" {
		vh.GridLayer = s.config.GridLayer
	}
	vh.RegisterRoutes(s.humaAPI)

	s.links.AutoLinks(s.humaAPI)

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	s.mux.HandleFunc("/viewer", s.handlePage("viewer.html"))
	s.mux.HandleFunc("/hazard", s.handlePage("hazard.html"))
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.Links(humastar.EntryPoint) {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": "plat-oq",
		"status":  "running",
		"catalog": s.services.Catalog.Loaded(),
	})
}

func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.WebDir == "" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(s.config.WebDir, "templates", name))
	}
}
