// Package service implements the sitesctl workflows: resolve user-supplied
// names against the server, validate, compute the mutation, apply it, and
// report the outcome.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"sitesctl/internal/domain"
	"sitesctl/internal/typestore"
)

// Config is the per-invocation configuration of an AssetService.
type Config struct {
	// ServerURL is the base URL printed in asset URLs.
	ServerURL string
	// SourceDir is the local source tree holding types and components.
	SourceDir string
	// ProjectDir is the project root holding the source tree.
	ProjectDir string
	// Concurrency bounds concurrent lookups. Zero means the default.
	Concurrency int
}

// AssetService runs the resource workflows against a server.
type AssetService struct {
	server     domain.Server
	components domain.ComponentTransfer
	types      *typestore.Store
	report     *Reporter
	logger     *slog.Logger
	cfg        Config

	repositories lister[domain.Repository]
	channels     lister[domain.Channel]
	taxonomies   lister[domain.Taxonomy]
	policies     lister[domain.LocalizationPolicy]
}

// NewAssetService wires a service. A nil logger discards log output.
func NewAssetService(server domain.Server, components domain.ComponentTransfer, types *typestore.Store, report *Reporter, logger *slog.Logger, cfg Config) *AssetService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	s := &AssetService{
		server:     server,
		components: components,
		types:      types,
		report:     report,
		logger:     logger,
		cfg:        cfg,
	}
	s.repositories.fetch = server.ListRepositories
	s.channels.fetch = server.ListChannels
	s.taxonomies.fetch = server.ListTaxonomies
	s.policies.fetch = server.ListLocalizationPolicies
	return s
}

// Reporter returns the reporter the workflows write to.
func (s *AssetService) Reporter() *Reporter {
	return s.report
}

// connect establishes the session every workflow starts with.
func (s *AssetService) connect(ctx context.Context) (*domain.SessionInfo, error) {
	info, err := s.server.Login(ctx)
	if err != nil {
		s.report.Progress("failed to connect to the server")
		return nil, err
	}
	s.logger.Debug("connected", "server", info.ServerURL, "user", info.User, "auth", info.AuthMode)
	return info, nil
}

// Login authenticates and returns the session.
func (s *AssetService) Login(ctx context.Context) (*domain.SessionInfo, error) {
	return s.connect(ctx)
}

// lister fetches a full resource list at most once per invocation.
type lister[T any] struct {
	mu    sync.Mutex
	fetch func(context.Context) ([]T, error)
	load  func() ([]T, error)
}

func (l *lister[T]) list(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	if l.load == nil {
		l.load = sync.OnceValues(func() ([]T, error) { return l.fetch(ctx) })
	}
	load := l.load
	l.mu.Unlock()
	return load()
}

func failedTargets(n int, kind string) error {
	return fmt.Errorf("%d %s failed: %w", n, kind, domain.ErrOperationFailed)
}
