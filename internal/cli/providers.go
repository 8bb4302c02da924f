package cli

import (
	"fmt"
	"log/slog"

	"github.com/eshaffer321/homebudget-guard/internal/application/reconcile"
	"github.com/eshaffer321/homebudget-guard/internal/application/records"
	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/config"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Services bundles the application services built from one repository.
type Services struct {
	Repo      storage.Repository
	Records   *records.Service
	Reconcile *reconcile.Service
}

// Close releases the underlying repository.
func (s *Services) Close() error {
	return s.Repo.Close()
}

// NewRepository opens the storage backend selected in cfg.
func NewRepository(cfg *config.Config, logger *slog.Logger) (storage.Repository, error) {
	repo, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DatabasePath, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	logger.Debug("Storage opened", "driver", cfg.Storage.Driver)
	return repo, nil
}

// NewServices validates cfg, opens storage and wires the services over it.
func NewServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	repo, err := NewRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewServicesFor(repo, cfg.MatcherConfig(), logger), nil
}

// NewServicesFor wires the services over an existing repository.
func NewServicesFor(repo storage.Repository, matcherCfg matcher.Config, logger *slog.Logger) *Services {
	return &Services{
		Repo:      repo,
		Records:   records.NewService(repo, logger.With("system", "records")),
		Reconcile: reconcile.NewService(repo, matcher.NewMatcher(matcherCfg), logger.With("system", "reconcile")),
	}
}
