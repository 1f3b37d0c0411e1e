package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"pilltrack/internal/jobs"
	"pilltrack/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

var (
	ErrBusy         = errors.New("sweep already running")
	ErrUnknownSweep = errors.New("unknown sweep")
)

// entry agrupa un sweep con su guard: cron y disparos manuales comparten el mismo lock,
// así un mismo sweep nunca corre dos veces en paralelo.
type entry struct {
	sweep jobs.Sweep
	spec  string
	mu    sync.Mutex
}

type Options struct {
	Location *time.Location
	// Timeout por ejecución; 0 = sin límite.
	Timeout time.Duration
}

type Scheduler struct {
	cron    *cron.Cron
	log     logger.Logger
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

func New(log logger.Logger, opts Options) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	log = log.With(map[string]any{"component": "scheduler"})

	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		log:     log,
		timeout: opts.Timeout,
		entries: make(map[string]*entry),
	}
}

// Register agrega un sweep. Con spec vacío solo queda disponible para Trigger.
func (s *Scheduler) Register(sweep jobs.Sweep, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sweep.Name()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("sweep %q already registered", name)
	}

	e := &entry{sweep: sweep, spec: spec}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.tick(e) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	s.entries[name] = e
	return nil
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler started", map[string]any{"sweeps": s.Names()})
	s.cron.Start()
}

// Stop deja de disparar y espera a que terminen los sweeps en curso (o a ctx).
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger corre un sweep ahora, respetando el guard. ErrBusy si ya está corriendo.
func (s *Scheduler) Trigger(ctx context.Context, name string) (jobs.Summary, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return jobs.Summary{}, fmt.Errorf("%w: %s", ErrUnknownSweep, name)
	}
	return s.run(ctx, e)
}

func (s *Scheduler) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scheduler) tick(e *entry) {
	_, err := s.run(context.Background(), e)
	switch {
	case errors.Is(err, ErrBusy):
		s.log.Info("sweep still running, tick skipped", map[string]any{"sweep": e.sweep.Name()})
	case err != nil:
		// el próximo tick reintenta
		s.log.Error("sweep failed", map[string]any{"sweep": e.sweep.Name(), "err": err})
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) (jobs.Summary, error) {
	if !e.mu.TryLock() {
		return jobs.Summary{}, ErrBusy
	}
	defer e.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return e.sweep.Run(ctx)
}

// cronLogger adapta logger.Logger a cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, kv(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kv(keysAndValues)
	fields["err"] = err
	c.log.Error("cron: "+msg, fields)
}

func kv(pairs []interface{}) map[string]any {
	out := make(map[string]any, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			k = fmt.Sprint(pairs[i])
		}
		out[k] = pairs[i+1]
	}
	return out
}
