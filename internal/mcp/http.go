package mcp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/metrics"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// AgentIDHeader carries the calling agent's ID on HTTP requests.
const AgentIDHeader = "x-agent-id"

const (
	endpointPath     = "/mcp"
	livenessPath     = "/health/liveness"
	readinessPath    = "/health/readiness"
	metricsPath      = "/metrics"
	readinessTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthResponse is the body of both health probes.
type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewRouter mounts the streamable MCP endpoint, the health probes and the
// Prometheus endpoint on a gin engine.
func NewRouter(s *server.MCPServer, store Pinger, log *zap.SugaredLogger) *gin.Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	streamable := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(endpointPath),
		server.WithHTTPContextFunc(agentFromHeader),
		server.WithStateLess(true),
	)

	router := gin.New()
	router.Use(gin.Recovery(), observeRequests(log.Named("http")))

	router.Any(endpointPath, gin.WrapH(streamable))
	router.GET(livenessPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	})
	router.GET(readinessPath, func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	})
	router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	return router
}

// agentFromHeader binds the x-agent-id header to the request context.
func agentFromHeader(ctx context.Context, r *http.Request) context.Context {
	if id := r.Header.Get(AgentIDHeader); id != "" {
		return acl.WithAgentID(ctx, id)
	}
	return ctx
}

func observeRequests(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(route, strconv.Itoa(status))
		log.Debugw("http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"elapsed", time.Since(start))
	}
}
