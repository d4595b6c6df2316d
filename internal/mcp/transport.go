package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// StartMCPServer serves s over the configured transport until ctx is done
// or the transport fails.
func StartMCPServer(ctx context.Context, cfg *contract.Config, s *server.MCPServer, store Pinger, log *zap.SugaredLogger) error {
	log.Infow("starting MCP server", "transport", cfg.Transport, "tools", toolNames())
	switch cfg.Transport {
	case schema.HTTPTransport:
		gin.SetMode(gin.ReleaseMode)
		return serveHTTP(ctx, cfg.Listen, NewRouter(s, store, log), log)
	default:
		return serveStdio(s, cfg.AgentID)
	}
}

// serveStdio binds agentID to every request, since stdio carries no headers.
func serveStdio(s *server.MCPServer, agentID string) error {
	return server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		if agentID == "" {
			return ctx
		}
		return acl.WithAgentID(ctx, agentID)
	}))
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, log *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", addr, "endpoint", endpointPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Infow("shutting down", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}
