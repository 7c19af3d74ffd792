package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

var errBackend = errors.New("backend unavailable")

// gatedCall is an UpdateStatus call held until the test resolves it.
type gatedCall struct {
	ID     int64
	Status models.ApplicationStatus
	result chan error
}

func (c *gatedCall) Resolve(err error) { c.result <- err }

// fakeClient serves a fixed list and either answers updates with err
// immediately or, when gated, hands each call to the test.
type fakeClient struct {
	mu      sync.Mutex
	records []RawRecord
	listErr error
	err     error
	gated   bool
	calls   chan *gatedCall
	updates []gatedCall
}

func newFakeClient(records ...RawRecord) *fakeClient {
	return &fakeClient{records: records, calls: make(chan *gatedCall, 16)}
}

func (f *fakeClient) ListJobs(ctx context.Context) ([]RawRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeClient) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	f.mu.Lock()
	f.updates = append(f.updates, gatedCall{ID: id, Status: status})
	gated, err := f.gated, f.err
	f.mu.Unlock()

	if !gated {
		return err
	}
	call := &gatedCall{ID: id, Status: status, result: make(chan error, 1)}
	f.calls <- call
	return <-call.result
}

func (f *fakeClient) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// next waits for the engine to issue its next gated call.
func (f *fakeClient) next() *gatedCall {
	select {
	case c := <-f.calls:
		return c
	case <-time.After(5 * time.Second):
		panic("no update call issued")
	}
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func raw(id int64, title, company, status string, ageHours int) RawRecord {
	return RawRecord{
		ID:            id,
		PositionTitle: title,
		Company:       company,
		Status:        status,
		CreatedAt:     baseTime.Add(-time.Duration(ageHours) * time.Hour),
	}
}

func loadedStore(records ...RawRecord) *Store {
	s := NewStore()
	s.Load(records)
	return s
}
