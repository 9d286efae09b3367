package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"jukebox/config"
	"jukebox/handlers"
	"jukebox/metrics"
	"jukebox/middleware"
	"jukebox/services"
	"jukebox/types"
	"jukebox/websocket"
)

const (
	snapshotPollInterval = 500 * time.Millisecond
	shutdownTimeout      = 5 * time.Second
)

// Dependencies are the services the routes call into
type Dependencies struct {
	Catalog   *services.Catalog
	Sequencer services.Sequencer
	Volume    services.VolumeController
	Hub       websocket.Hub
}

// StartWebServer starts the web server and blocks until ctx is cancelled
func StartWebServer(ctx context.Context, cfg *config.Config, catalog *services.Catalog) error {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	launcher := services.NewCommandLauncher(cfg.PlayerCommand, cfg.PlayerArgs...)
	sequencer := services.NewSequencer(catalog, launcher, cfg.Extensions)
	defer sequencer.Close()

	volume := services.NewVolumeController(cfg.MixerCommand, cfg.MixerControl, services.RunCommand)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	go hub.Watch(ctx, snapshotPollInterval, func() types.Snapshot {
		return services.TakeSnapshot(sequencer, volume, catalog)
	})

	metrics.CatalogTracks.Set(float64(catalog.Len()))

	router := NewRouter(cfg, Dependencies{
		Catalog:   catalog,
		Sequencer: sequencer,
		Volume:    volume,
		Hub:       hub,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("App listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Logging())

	r.SetHTMLTemplate(handlers.PageTemplate())

	playerHandler := handlers.NewPlayerHandler(deps.Sequencer, deps.Volume, deps.Catalog)
	setupRoutes(r, cfg,
		playerHandler,
		handlers.NewTrackHandler(deps.Catalog),
		handlers.NewHealthHandler(deps.Catalog),
		handlers.NewPageHandler(deps.Catalog),
		handlers.NewStateHandler(deps.Hub, playerHandler.Snapshot),
	)
	return r
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, cfg *config.Config, playerHandler *handlers.PlayerHandler, trackHandler *handlers.TrackHandler, healthHandler *handlers.HealthHandler, pageHandler *handlers.PageHandler, stateHandler *handlers.StateHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	protected := r.Group("/", middleware.Password(cfg.Password))
	{
		protected.GET("/", pageHandler.Index)
		protected.GET("/metrics", gin.WrapH(promhttp.Handler()))

		// API routes group
		apiGroup := protected.Group("/api")
		{
			apiGroup.GET("/status", healthHandler.APIStatus)

			// Catalog endpoints
			apiGroup.GET("/tracks", trackHandler.ListTracks)
			apiGroup.GET("/search", trackHandler.Search)

			// Playback control endpoints
			apiGroup.GET("/play", playerHandler.PlayCurrent)
			apiGroup.GET("/play/:index", playerHandler.PlayIndex)
			apiGroup.GET("/path/:encoded", playerHandler.PlayPath)
			apiGroup.GET("/stop", playerHandler.Stop)
			apiGroup.GET("/next", playerHandler.Next)
			apiGroup.GET("/previous", playerHandler.Previous)
			apiGroup.GET("/random", playerHandler.Random)
			apiGroup.GET("/info", playerHandler.Info)
			apiGroup.GET("/volume/:volume", playerHandler.SetVolume)

			// WebSocket endpoint for snapshot updates
			apiGroup.GET("/ws/state", stateHandler.HandleWebSocketConnection)
		}
	}
}
