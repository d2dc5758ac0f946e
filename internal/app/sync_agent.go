package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/metrics"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// RemoteCategory is the category assigned to every quote built from the remote snapshot.
const RemoteCategory = "server"

// ConflictMessage is shown to the user when the remote snapshot differs from local data.
const ConflictMessage = "Server data is different from local data. Choose which to keep."

// Sync defaults.
const (
	DefaultSyncInterval     = 15 * time.Second
	DefaultSyncFetchTimeout = 10 * time.Second
	DefaultSnapshotSize     = 5
)

// SyncState is the state of the sync agent.
type SyncState string

const (
	// SyncIdle means no conflict is outstanding; ticks fetch and compare.
	SyncIdle SyncState = "idle"

	// SyncConflictPending means a remote snapshot awaits the user's decision.
	SyncConflictPending SyncState = "conflict_pending"
)

// Conflict describes an outstanding difference between local and remote data.
type Conflict struct {
	Message    string            `json:"message"`
	Remote     domain.Collection `json:"remote"`
	Local      domain.Collection `json:"local"`
	Diff       string            `json:"diff"`
	Summary    string            `json:"summary"`
	DetectedAt time.Time         `json:"detectedAt"`
}

// SyncStatus is a point-in-time view of the agent.
type SyncStatus struct {
	State      SyncState `json:"state"`
	Running    bool      `json:"running"`
	LastRun    time.Time `json:"lastRun,omitzero"`
	LastResult string    `json:"lastResult,omitempty"`
	LastError  string    `json:"lastError,omitempty"`
	Conflict   *Conflict `json:"conflict,omitempty"`
}

// SyncAgentConfig contains the dependencies and tuning of a SyncAgent.
type SyncAgentConfig struct {
	Store     *QuoteStore
	Source    ports.RemoteQuoteSource
	Presenter ports.Presenter
	Metrics   *metrics.Sync
	Logger    *slog.Logger

	// Interval between automatic cycles. Defaults to 15s.
	Interval time.Duration

	// FetchTimeout bounds a single remote fetch. Defaults to 10s.
	FetchTimeout time.Duration

	// SnapshotSize is how many remote records make up the snapshot. Defaults to 5.
	SnapshotSize int

	// SuppressRejected stops re-prompting for a snapshot identical to one the
	// user already rejected with KeepLocal.
	SuppressRejected bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// SyncAgent periodically compares the remote snapshot with the local
// collection and asks the user to resolve differences.
//
// States: Idle and ConflictPending. A differing snapshot moves the agent to
// ConflictPending, where it stays until AcceptRemote or KeepLocal. Ticks while
// ConflictPending are skipped, so at most one conflict is outstanding.
type SyncAgent struct {
	store     *QuoteStore
	source    ports.RemoteQuoteSource
	presenter ports.Presenter
	metrics   *metrics.Sync
	logger    *slog.Logger
	now       func() time.Time

	interval         time.Duration
	fetchTimeout     time.Duration
	snapshotSize     int
	suppressRejected bool

	// cycleMu serializes fetch-and-compare cycles.
	cycleMu sync.Mutex

	// mu guards the fields below.
	mu           sync.Mutex
	state        SyncState
	conflict     *Conflict
	lastRejected domain.Collection
	lastRun      time.Time
	lastResult   string
	lastErr      error

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncAgent creates an idle, stopped agent.
func NewSyncAgent(cfg SyncAgentConfig) *SyncAgent {
	if cfg.Store == nil || cfg.Source == nil || cfg.Presenter == nil {
		panic("SyncAgent: Store, Source and Presenter are required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultSyncFetchTimeout
	}

	if cfg.SnapshotSize <= 0 {
		cfg.SnapshotSize = DefaultSnapshotSize
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &SyncAgent{
		store:            cfg.Store,
		source:           cfg.Source,
		presenter:        cfg.Presenter,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger.With(slog.String("component", "sync")),
		now:              cfg.Now,
		interval:         cfg.Interval,
		fetchTimeout:     cfg.FetchTimeout,
		snapshotSize:     cfg.SnapshotSize,
		suppressRejected: cfg.SuppressRejected,
		state:            SyncIdle,
	}
}

// Start launches the ticker goroutine. Calling Start on a running agent is a no-op.
// The goroutine exits when ctx is cancelled or Stop is called.
func (a *SyncAgent) Start(ctx context.Context) {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	a.cancel = cancel
	a.done = done

	go a.loop(ctx, done)

	a.logger.InfoContext(ctx, "sync agent started", slog.Duration("interval", a.interval))
}

// Stop cancels the ticker goroutine and waits for it to exit. Stop is idempotent.
func (a *SyncAgent) Stop() {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	if a.cancel == nil {
		return
	}

	a.cancel()
	<-a.done

	a.cancel = nil
	a.done = nil

	a.logger.Info("sync agent stopped")
}

// Run starts the agent and blocks until ctx is cancelled, then stops it.
// It fits errgroup-style supervision.
func (a *SyncAgent) Run(ctx context.Context) error {
	a.Start(ctx)
	<-ctx.Done()
	a.Stop()

	return nil
}

func (a *SyncAgent) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Failures are logged and counted inside the cycle.
			_, _ = a.runCycle(ctx)
		}
	}
}

// SyncNow runs one cycle immediately and returns its result.
// A fetch failure is returned as well as logged; the agent stays Idle.
func (a *SyncAgent) SyncNow(ctx context.Context) (string, error) {
	return a.runCycle(ctx)
}

func (a *SyncAgent) runCycle(ctx context.Context) (string, error) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	if a.State() == SyncConflictPending {
		a.logger.DebugContext(ctx, "conflict pending, skipping sync")
		a.record(metrics.ResultSkipped, nil)

		return metrics.ResultSkipped, nil
	}

	remote, err := a.fetchSnapshot(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "sync fetch failed", slog.Any("error", err))
		a.record(metrics.ResultError, err)

		return metrics.ResultError, err
	}

	local := a.store.Snapshot()
	if remote.Equal(local) {
		a.logger.DebugContext(ctx, "remote matches local")
		a.record(metrics.ResultEqual, nil)

		return metrics.ResultEqual, nil
	}

	if a.isRejected(remote) {
		a.logger.DebugContext(ctx, "remote snapshot was already rejected")
		a.record(metrics.ResultSkipped, nil)

		return metrics.ResultSkipped, nil
	}

	conflict := a.newConflict(local, remote)

	a.logger.InfoContext(ctx, "sync conflict detected",
		slog.Int("local_count", len(local)),
		slog.Int("remote_count", len(remote)),
		slog.String("diff", conflict.Summary),
	)

	// The prompt is shown under mu so a resolution cannot hide it first.
	a.mu.Lock()
	a.state = SyncConflictPending
	a.conflict = conflict
	a.metrics.SetConflictPending(true)
	a.presenter.ShowConflictPrompt(ctx, conflict.Message)
	a.mu.Unlock()

	a.record(metrics.ResultConflict, nil)

	return metrics.ResultConflict, nil
}

// fetchSnapshot fetches the remote records under the fetch timeout and maps
// them to quotes. Records whose title is blank are dropped.
func (a *SyncAgent) fetchSnapshot(ctx context.Context) (domain.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	records, err := a.source.FetchSnapshot(ctx, a.snapshotSize)
	if err != nil {
		return nil, fmt.Errorf("fetching remote snapshot: %w", err)
	}

	if len(records) > a.snapshotSize {
		records = records[:a.snapshotSize]
	}

	snapshot := make(domain.Collection, 0, len(records))

	for _, r := range records {
		q, err := domain.NewQuote(r.Title, RemoteCategory)
		if err != nil {
			a.logger.DebugContext(ctx, "dropping remote record", slog.Int("id", r.ID), slog.Any("error", err))

			continue
		}

		snapshot = append(snapshot, q)
	}

	return snapshot, nil
}

// AcceptRemote replaces the local collection with the pending remote snapshot.
// Returns a StateError, changing nothing, when no conflict is pending.
func (a *SyncAgent) AcceptRemote(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != SyncConflictPending {
		return domain.NewStateError("acceptRemote", string(a.state))
	}

	a.store.ReplaceAll(ctx, a.conflict.Remote)
	a.resolveLocked(ctx)

	a.logger.InfoContext(ctx, "remote snapshot accepted", slog.Int("count", a.store.Len()))

	return nil
}

// KeepLocal keeps the local collection and discards the pending snapshot.
// Returns a StateError, changing nothing, when no conflict is pending.
func (a *SyncAgent) KeepLocal(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != SyncConflictPending {
		return domain.NewStateError("keepLocal", string(a.state))
	}

	a.store.Save(ctx)
	a.lastRejected = a.conflict.Remote
	a.resolveLocked(ctx)

	a.logger.InfoContext(ctx, "local data kept")

	return nil
}

// resolveLocked returns the agent to Idle. Callers must hold a.mu.
func (a *SyncAgent) resolveLocked(ctx context.Context) {
	a.state = SyncIdle
	a.conflict = nil

	a.metrics.SetConflictPending(false)
	a.presenter.HideConflictPrompt(ctx)
}

// State returns the current state.
func (a *SyncAgent) State() SyncState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Status reports the state, the last cycle and any pending conflict.
func (a *SyncAgent) Status() SyncStatus {
	a.lifeMu.Lock()
	running := a.cancel != nil
	a.lifeMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	status := SyncStatus{
		State:      a.state,
		Running:    running,
		LastRun:    a.lastRun,
		LastResult: a.lastResult,
	}

	if a.lastErr != nil {
		status.LastError = a.lastErr.Error()
	}

	if a.conflict != nil {
		c := *a.conflict
		c.Remote = c.Remote.Clone()
		c.Local = c.Local.Clone()
		status.Conflict = &c
	}

	return status
}

func (a *SyncAgent) isRejected(remote domain.Collection) bool {
	if !a.suppressRejected {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastRejected != nil && remote.Equal(a.lastRejected)
}

func (a *SyncAgent) record(result string, err error) {
	a.mu.Lock()
	a.lastRun = a.now()
	a.lastResult = result
	a.lastErr = err
	a.mu.Unlock()

	a.metrics.ObserveRun(result)
}

func (a *SyncAgent) newConflict(local, remote domain.Collection) *Conflict {
	diff, added, removed := diffCollections(local, remote)

	return &Conflict{
		Message:    ConflictMessage,
		Remote:     remote,
		Local:      local,
		Diff:       diff,
		Summary:    fmt.Sprintf("+%d -%d lines", added, removed),
		DetectedAt: a.now(),
	}
}

// diffCollections renders a line diff from local to remote over the exported
// JSON form and counts added and removed lines.
func diffCollections(local, remote domain.Collection) (string, int, int) {
	localJSON, _ := domain.MarshalCollection(local)
	remoteJSON, _ := domain.MarshalCollection(remote)

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(localJSON)+"\n", string(remoteJSON)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		sb             strings.Builder
		added, removed int
	)

	for _, d := range diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.Lines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)

			switch d.Type {
			case diffmatchpatch.DiffInsert:
				added++
			case diffmatchpatch.DiffDelete:
				removed++
			case diffmatchpatch.DiffEqual:
			}
		}
	}

	return sb.String(), added, removed
}
