// Package acl maps calling agents to the hierarchy scope they may query.
package acl

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"go.uber.org/zap"
)

// Sentinel errors returned by providers.
var (
	ErrAgentIDNotFound = errors.New("agent id not found in request context")
	ErrAgentNotAllowed = errors.New("agent is not allowed to query statistics")
)

type agentIDKey struct{}

// WithAgentID binds the agent ID to ctx.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey{}, agentID)
}

// AgentIDFrom returns the agent ID bound to ctx.
func AgentIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(agentIDKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// StaticProvider returns the same scope for every caller.
type StaticProvider struct {
	Scope schema.AccessScope
}

var _ contract.ScopeProvider = StaticProvider{} // Compile-time check

// GetUserScope implements contract.ScopeProvider.
func (p StaticProvider) GetUserScope(context.Context) (schema.AccessScope, error) {
	return p.Scope, nil
}

// New returns a FileProvider when path is set, otherwise an unrestricted StaticProvider.
// The returned stop function releases the file watcher and is never nil.
func New(path string, log *zap.SugaredLogger) (contract.ScopeProvider, func() error, error) {
	if path == "" {
		return StaticProvider{}, func() error { return nil }, nil
	}
	fp, err := NewFileProvider(path, log)
	if err != nil {
		return nil, nil, err
	}
	if err := fp.Watch(); err != nil {
		return nil, nil, err
	}
	return fp, fp.Close, nil
}
