package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/internal/adapters/dataset"
	"github.com/aretw0/gleaner/internal/adapters/file"
	"github.com/aretw0/gleaner/internal/adapters/mangle"
	"github.com/aretw0/gleaner/internal/adapters/sqlite"
	"github.com/aretw0/gleaner/internal/config"
	"github.com/aretw0/gleaner/pkg/adapters/memory"
	"github.com/aretw0/gleaner/pkg/adapters/process"
	redisAdapter "github.com/aretw0/gleaner/pkg/adapters/redis"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/observability"
	"github.com/aretw0/gleaner/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// LoadProblem builds the state space and reads the transition model and the
// expert demonstrations named by cfg.
func LoadProblem(cfg *config.Config) (gleaner.Problem, error) {
	space, err := domain.NewSpace(cfg.Pegs, cfg.Disks)
	if err != nil {
		return gleaner.Problem{}, err
	}
	model, space, err := dataset.LoadModel(cfg.Model, space)
	if err != nil {
		return gleaner.Problem{}, err
	}
	trajectories, err := dataset.LoadTrajectories(cfg.Trajectories)
	if err != nil {
		return gleaner.Problem{}, err
	}
	return gleaner.Problem{Space: space, Model: model, Trajectories: trajectories}, nil
}

// wiring is a solver together with the resources it borrows.
type wiring struct {
	solver   *gleaner.Solver
	registry *prometheus.Registry
	closers  []func() error
}

// Close releases the journal and store connections.
func (w *wiring) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	return errors.Join(errs...)
}

// createSolver wires the configured adapters into a Solver.
func createSolver(cfg *config.Config, problem gleaner.Problem, logger *slog.Logger) (*wiring, error) {
	w := &wiring{registry: prometheus.NewRegistry()}

	metrics, err := observability.NewMetrics(w.registry)
	if err != nil {
		return nil, err
	}

	background, err := process.LoadBackground(cfg.Oracle.Background)
	if err != nil {
		return nil, err
	}

	opts := []gleaner.Option{
		gleaner.WithLogger(logger),
		gleaner.WithLifecycleHooks(metrics.Hooks().Merge(observability.LogHooks(logger))),
		gleaner.WithHorizon(cfg.Horizon),
		gleaner.WithMaxIterations(cfg.MaxIterations),
		gleaner.WithBackground(background),
	}
	if cfg.Verify {
		opts = append(opts, gleaner.WithVerifier(mangle.NewVerifier(problem.Space.Disks)))
	}

	storeOpts, err := w.createStore(cfg.Checkpoint)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	opts = append(opts, storeOpts...)

	if cfg.Journal != "" {
		journal, err := sqlite.Open(cfg.Journal)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		w.closers = append(w.closers, journal.Close)
		opts = append(opts, gleaner.WithJournal(journal))
	}

	oracle := process.NewRunner(process.WithConfig(cfg.Oracle))
	w.solver, err = gleaner.New(problem, oracle, opts...)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *wiring) createStore(cfg config.CheckpointConfig) ([]gleaner.Option, error) {
	h, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	w.closers = append(w.closers, h.close)

	opts := []gleaner.Option{gleaner.WithStore(h.store)}
	if h.locker != nil {
		opts = append(opts, gleaner.WithLocker(h.locker, cfg.LockTTL))
	}
	return opts, nil
}

// OpenStore opens the configured checkpoint backend. The returned function
// releases its connections.
func OpenStore(cfg *config.Config) (ports.CheckpointStore, func() error, error) {
	h, err := openStore(cfg.Checkpoint)
	if err != nil {
		return nil, nil, err
	}
	return h.store, h.close, nil
}

type storeHandle struct {
	store  ports.CheckpointStore
	locker ports.DistributedLocker
	close  func() error
}

func openStore(cfg config.CheckpointConfig) (*storeHandle, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendNone, config.BackendMemory, "":
		return &storeHandle{store: memory.NewStore(), close: noop}, nil
	case config.BackendFile:
		return &storeHandle{store: file.New(cfg.Dir), close: noop}, nil
	case config.BackendRedis:
		rs, err := redisAdapter.New(cfg.RedisURL, redisAdapter.WithTTL(cfg.TTL))
		if err != nil {
			return nil, err
		}
		return &storeHandle{
			store:  rs,
			locker: redisAdapter.NewLocker(rs.Client(), rs.Prefix()),
			close:  rs.Close,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown checkpoint backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
