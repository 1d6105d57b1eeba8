package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core"
	"github.com/agenthands/concord/internal/driver"
	"github.com/agenthands/concord/internal/metrics"
	"github.com/agenthands/concord/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Build wires a Server from configuration. The returned cleanup closes the
// connections Build opened; on error nothing is left open.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	comparator, err := core.NewFromConfig(ctx, cfg, logger, m)
	if err != nil {
		return nil, nil, err
	}

	var backend store.Store
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "memory":
		backend = store.NewMemory()
	case "redis":
		rdb, err := store.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		backend = store.NewRedis(rdb, cfg.Redis.Prefix, cfg.Store.ResultTTL.Duration)
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}

	var archives []store.ResultStore
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = d.Close(context.Background()) })
		if err := d.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build archive indices", zap.Error(err))
		}
		archives = append(archives, driver.NewArchive(d))
	}

	results := store.NewTee(backend, logger, archives...)
	return NewServer(comparator, backend, results, logger, reg, cfg.Server.CORSOrigins), cleanup, nil
}
