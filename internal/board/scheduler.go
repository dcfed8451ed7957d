package board

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRefreshSpec re-evaluates the future filter once a minute.
const DefaultRefreshSpec = "@every 1m"

// Ticker is anything that refreshes on a schedule.
type Ticker interface {
	Tick()
}

// Scheduler drives the periodic refresh of the board.
type Scheduler struct {
	cron   *cron.Cron
	target Ticker
	spec   string
	logger *zap.Logger

	mu    sync.Mutex
	entry cron.EntryID
}

// NewScheduler creates a scheduler that calls target.Tick on spec. An empty
// spec falls back to DefaultRefreshSpec.
func NewScheduler(target Ticker, spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		target: target,
		spec:   spec,
		logger: logger.Named("scheduler"),
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(s.spec, s.target.Tick)
	if err != nil {
		return err
	}
	s.entry = id
	s.cron.Start()
	s.logger.Info("Board refresh scheduled", zap.String("spec", s.spec))
	return nil
}

// Stop waits for a running job to finish and stops the loop.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Board refresh stopped")
}

// NextRun returns the next scheduled refresh, or nil before Start.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == 0 {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}
