package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-oq/internal/catalog"
	"github.com/joeblew999/plat-oq/internal/server"
)

// Options defines all CLI flags and env vars for the viewer server.
// Flags: --host, --port, --data-dir, --web-dir, --catalog-url, --tile-base,
// --grid-layer, --location-field, --no-db, --debug
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host          string `doc:"Host to bind to" default:"0.0.0.0"`
	Port          int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir       string `doc:"Directory for the click log database" default:".data"`
	WebDir        string `doc:"Path to web/ directory" default:"web"`
	CatalogURL    string `doc:"Tileset listing to build the layer catalog from" default:"http://tilestream.openquake.org/api/v1/Tileset"`
	TileBase      string `doc:"Root URL of the tile service" default:"http://tilestream.openquake.org/v2"`
	GridLayer     string `doc:"UTFGrid layer queried on feature clicks" default:"svir-econ-all"`
	LocationField string `doc:"Feature attribute naming the clicked location" default:"country_na"`
	NoDB          bool   `doc:"Do not record clicks in DuckDB"`
	Debug         bool   `doc:"Log at debug level and reload web/ fragments per request"`
}

func newLogger(opts *Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newServer(opts *Options, logger *slog.Logger) *server.Server {
	return server.New(server.Config{
		Host:          opts.Host,
		Port:          fmt.Sprintf("%d", opts.Port),
		DataDir:       opts.DataDir,
		WebDir:        opts.WebDir,
		CatalogURL:    opts.CatalogURL,
		TileBase:      opts.TileBase,
		GridLayer:     opts.GridLayer,
		LocationField: opts.LocationField,
		NoDB:          opts.NoDB,
		Debug:         opts.Debug,
		Logger:        logger,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logger := newLogger(opts)
		slog.SetDefault(logger)
		srv := newServer(opts, logger)
		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		hooks.OnStart(func() {
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-oq viewer server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Tiles:   %s\n", opts.TileBase)
			fmt.Println()
			fmt.Printf("  Pages:   %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			// The catalog loads in the background; selectors fill in once it lands.
			srv.Start(context.Background())

			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(ctx)
			srv.Close()
		})
	})

	cli.Root().Use = "oq"
	cli.Root().Short = "Indicator and hazard map viewer"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.NoDB = true
			srv := newServer(opts, newLogger(opts))
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// catalog subcommand: fetch the tileset listing once and print the index
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch the layer catalog and print its category index as YAML",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logger := newLogger(opts)
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cat := catalog.NewCatalog(catalog.NewFetcher(opts.CatalogURL, logger), logger)
			if err := cat.Load(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error fetching catalog: %v\n", err)
				os.Exit(1)
			}
			if err := printIndex(os.Stdout, cat.Index()); err != nil {
				fmt.Fprintf(os.Stderr, "Error printing catalog: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	catalogCmd.Flags().Duration("timeout", 30*time.Second, "Give up on the fetch after this long")
	cli.Root().AddCommand(catalogCmd)

	cli.Run()
}
