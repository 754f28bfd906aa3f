// Package server
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/cache"
	"github.com/daoforge/governor-backend/cfg"
	"github.com/daoforge/governor-backend/chain"
	"github.com/daoforge/governor-backend/db"
	"github.com/daoforge/governor-backend/eligibility"
	"github.com/daoforge/governor-backend/indexer"
	"github.com/daoforge/governor-backend/retry"
	"github.com/daoforge/governor-backend/syncer"
	"github.com/daoforge/governor-backend/types"
)

type Config struct {
	Cfg    cfg.Config
	Logger *zap.Logger
}

// Server wires the chain reader, event indexer, synchronizer, retry
// scheduler, cache and annotation store together, and owns the published
// snapshot lifecycle.
type Server struct {
	reader      *chain.Reader
	indexer     *indexer.Indexer
	syncer      *syncer.Synchronizer
	eligibility *eligibility.Checker
	scheduler   *retry.Scheduler
	cache       cache.Client
	db          db.Client

	generation uint64

	mu      sync.Mutex
	handles []*retry.Handle
	closed  bool

	apiTimeout time.Duration
	logger     *zap.Logger
}

func New(srvCfg Config) (*Server, error) {
	logger := srvCfg.Logger

	wrapper, err := chain.NewWrapper(chain.WrapperConfig{
		URLs:   srvCfg.Cfg.ChainURLs,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	reader, err := chain.NewReader(chain.ReaderConfig{
		Node:            wrapper.Node(),
		GovernorAddress: srvCfg.Cfg.GovernorAddress,
		TokenAddress:    srvCfg.Cfg.TokenAddress,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	ix := indexer.New(indexer.Config{
		Node:            wrapper.Node(),
		GovernorAddress: reader.GovernorAddress(),
		Logger:          logger,
	})
	checker := eligibility.New(reader, logger)

	cacheClient, err := cache.New(cache.Config{
		Adapter:            cache.RedisAdapter,
		URL:                srvCfg.Cfg.CacheURL,
		DB:                 srvCfg.Cfg.CacheDB,
		IsFlush:            srvCfg.Cfg.CacheIsFlush,
		DefaultExpiredTime: srvCfg.Cfg.CacheExpiredTime,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}
	dbClient, err := db.NewClient(db.Config{
		DbAdapter: db.MGO,
		DbName:    srvCfg.Cfg.StorageDB,
		URL:       srvCfg.Cfg.StorageURI,
		MinConn:   srvCfg.Cfg.StorageMinConn,
		MaxConn:   srvCfg.Cfg.StorageMaxConn,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		reader:      reader,
		indexer:     ix,
		eligibility: checker,
		cache:       cacheClient,
		db:          dbClient,
		apiTimeout:  srvCfg.Cfg.DefaultAPITimeout,
		logger:      logger.With(zap.String("component", "server")),
	}
	s.syncer = syncer.New(syncer.Config{
		Reader:       reader,
		Events:       ix,
		Eligibility:  checker,
		Workers:      srvCfg.Cfg.SyncWorkers,
		AvgBlockTime: srvCfg.Cfg.AvgBlockTime,
		Logger:       logger,
	})
	s.scheduler = retry.New(retry.Config{
		Attempts:     srvCfg.Cfg.RetryAttempts,
		InitialDelay: srvCfg.Cfg.RetryInitialDelay,
		MaxDelay:     srvCfg.Cfg.RetryMaxDelay,
		Logger:       logger,
	})
	return s, nil
}

// Sync runs one synchronization pass and publishes it as the next
// generation. Re-running with no chain change republishes identical data,
// so concurrent or early invocations are harmless.
func (s *Server) Sync(ctx context.Context) error {
	lgr := s.logger.With(zap.String("method", "Sync"))

	proposals, err := s.syncer.ListProposals(ctx, nil)
	if err != nil {
		return err
	}
	gen := atomic.AddUint64(&s.generation, 1)
	status := &types.SyncStatus{
		Generation: gen,
		SyncedAt:   time.Now().Unix(),
		Proposals:  len(proposals),
	}
	if err := s.cache.UpdateProposals(ctx, proposals, status); err != nil {
		lgr.Warn("cannot publish snapshot to cache", zap.Error(err))
		return err
	}

	if cost, err := s.reader.VoteCost(ctx); err == nil {
		if err := s.cache.UpdateVoteCost(ctx, cost.String()); err != nil {
			lgr.Warn("cannot cache vote cost", zap.Error(err))
		}
	}
	lgr.Info("published snapshot", zap.Uint64("generation", gen), zap.Int("proposals", len(proposals)))
	return nil
}

// NotifyAction reacts to an externally submitted state-changing transaction
// (vote, proposal, delegation). A single immediate re-read is usually stale,
// so a bounded retry sequence converges the published view instead.
func (s *Server) NotifyAction(action, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrUnavailable
	}
	s.logger.Info("action notified, scheduling re-sync",
		zap.String("action", action), zap.String("txHash", txHash))
	h := s.scheduler.Schedule(context.Background(), s.Sync)
	s.handles = append(s.handles, h)

	// Drop completed handles so the slice does not grow unbounded.
	remaining := s.handles[:0]
	for _, old := range s.handles {
		select {
		case <-old.Done():
		default:
			remaining = append(remaining, old)
		}
	}
	s.handles = remaining
	return nil
}

// Close cancels every pending retry attempt before the server goes away;
// no timer may fire into a torn-down context.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, h := range s.handles {
		h.Cancel()
	}
	s.handles = nil
}
