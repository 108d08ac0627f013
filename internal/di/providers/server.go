package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/api"
	"github.com/shelfwatch/shelfwatch-server/internal/config"
	"github.com/shelfwatch/shelfwatch-server/internal/logger"
	"github.com/shelfwatch/shelfwatch-server/internal/service"
	"github.com/shelfwatch/shelfwatch-server/internal/sse"
	"github.com/shelfwatch/shelfwatch-server/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ingestService := do.MustInvoke[*service.IngestService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	validator := do.MustInvoke[*validation.Validator](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	handler := api.NewServer(ingestService, bookService, sseHandler, validator, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
