package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// DefaultCommitTimeout bounds a single persistence call.
const DefaultCommitTimeout = 15 * time.Second

// Outcome describes how a commit settled.
type Outcome struct {
	CommitID   string
	RecordID   int64
	From       models.ApplicationStatus
	To         models.ApplicationStatus
	Err        error
	RolledBack bool
	Duration   time.Duration
}

// Failed reports whether persistence rejected the move.
func (o Outcome) Failed() bool { return o.Err != nil }

// commit is one optimistic move awaiting persistence.
type commit struct {
	id   string
	seq  uint64
	prev models.ApplicationStatus
}

// recordCommits tracks the moves of a single record. latest is the seq of
// the commit whose value the store currently shows.
type recordCommits struct {
	nextSeq uint64
	latest  uint64
	pending []*commit
}

// Engine applies status moves to a Store immediately and persists them in
// the background. A failed move is reverted to the status the record had
// right before that move, unless a newer move of the same record has
// taken ownership of its value.
type Engine struct {
	store   *Store
	client  JobsClient
	logger  *slog.Logger
	metrics *Metrics
	notify  func(Outcome)
	timeout time.Duration

	// guarded by store.mu
	commits map[int64]*recordCommits

	wg sync.WaitGroup
}

type EngineOption func(*Engine)

// WithNotifier registers a callback run after every commit settles. It is
// called from the persistence goroutine.
func WithNotifier(fn func(Outcome)) EngineOption {
	return func(e *Engine) { e.notify = fn }
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithCommitTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

func NewEngine(store *Store, client JobsClient, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   store,
		client:  client,
		logger:  slog.New(slog.DiscardHandler),
		metrics: NewMetrics(nil),
		timeout: DefaultCommitTimeout,
		commits: make(map[int64]*recordCommits),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Commit moves record id to status. It returns false, without calling the
// backend, when the record is unknown or already has that status.
// Otherwise the store reflects the move before Commit returns and the
// persistence call runs asynchronously.
func (e *Engine) Commit(recordID int64, status models.ApplicationStatus) bool {
	if !status.Valid() {
		return false
	}

	e.store.mu.Lock()
	cur := e.store.indexOf(recordID)
	if cur < 0 || e.store.records[cur].Status == status {
		e.store.mu.Unlock()
		return false
	}
	prev := e.store.applyLocked(recordID, status)

	rc := e.commits[recordID]
	if rc == nil {
		rc = &recordCommits{}
		e.commits[recordID] = rc
	}
	rc.nextSeq++
	c := &commit{id: uuid.NewString(), seq: rc.nextSeq, prev: prev}
	rc.latest = c.seq
	rc.pending = append(rc.pending, c)
	e.store.mu.Unlock()

	e.logger.Debug("optimistic move applied",
		"commit", c.id, "job_id", recordID, "from", prev, "to", status)

	e.wg.Add(1)
	go e.persist(recordID, status, c)
	return true
}

func (e *Engine) persist(recordID int64, status models.ApplicationStatus, c *commit) {
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	start := time.Now()
	err := e.client.UpdateStatus(ctx, recordID, status)
	cancel()

	out := Outcome{
		CommitID: c.id,
		RecordID: recordID,
		From:     c.prev,
		To:       status,
		Err:      err,
		Duration: time.Since(start),
	}
	out.RolledBack = e.settle(recordID, c, err)

	e.metrics.RecordCommit(context.Background(), out)
	if err != nil {
		e.logger.Warn("status update failed",
			"commit", c.id, "job_id", recordID, "to", status,
			"rolled_back", out.RolledBack, "error", err)
	} else {
		e.logger.Debug("status update persisted", "commit", c.id, "job_id", recordID, "to", status)
	}
	if e.notify != nil {
		e.notify(out)
	}
}

// settle removes c from the pending list and reverts the store when c
// failed and still owns the record's displayed value.
func (e *Engine) settle(recordID int64, c *commit, err error) bool {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	rc := e.commits[recordID]
	if rc == nil {
		return false
	}
	rc.remove(c)

	rolledBack := false
	if err != nil && rc.latest == c.seq {
		e.store.applyLocked(recordID, c.prev)
		rolledBack = true
		// The newest older move still pending now owns the value, so its
		// own failure can revert further.
		rc.latest = 0
		if n := len(rc.pending); n > 0 {
			rc.latest = rc.pending[n-1].seq
		}
	}
	if len(rc.pending) == 0 {
		delete(e.commits, recordID)
	}
	return rolledBack
}

func (rc *recordCommits) remove(c *commit) {
	for i, p := range rc.pending {
		if p == c {
			rc.pending = append(rc.pending[:i], rc.pending[i+1:]...)
			return
		}
	}
}

// InFlight reports whether any move of record id is awaiting persistence.
func (e *Engine) InFlight(recordID int64) bool {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	rc := e.commits[recordID]
	return rc != nil && len(rc.pending) > 0
}

// Pending returns the number of moves awaiting persistence.
func (e *Engine) Pending() int {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	n := 0
	for _, rc := range e.commits {
		n += len(rc.pending)
	}
	return n
}

// Wait blocks until every started commit has settled.
func (e *Engine) Wait() {
	e.wg.Wait()
}
