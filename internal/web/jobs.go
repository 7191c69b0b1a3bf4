package web

import (
	"context"
	"sync"
	"time"

	"github.com/jky-sys/Screener-3.0/internal/scanner"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// maxRecentScans bounds the in-memory scan history
const maxRecentScans = 10

// Scan states
const (
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ScanStatus is the externally visible state of a scan
type ScanStatus struct {
	ID         string          `json:"id"`
	Universe   string          `json:"universe"`
	Period     model.Period    `json:"period"`
	Status     string          `json:"status"`
	Scanned    int             `json:"scanned"`
	Total      int             `json:"total"`
	Current    string          `json:"current,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Report     *scanner.Report `json:"report,omitempty"`
}

// Finished reports whether the scan reached a terminal state
func (st ScanStatus) Finished() bool { return st.Status != StatusRunning }

// scanJob tracks one scan and fans progress out to watchers
type scanJob struct {
	mu     sync.Mutex
	status ScanStatus
	cancel context.CancelFunc
	subs   map[chan ScanStatus]struct{}
}

func newScanJob(id, universe string, period model.Period, total int, cancel context.CancelFunc) *scanJob {
	return &scanJob{
		status: ScanStatus{
			ID:        id,
			Universe:  universe,
			Period:    period,
			Status:    StatusRunning,
			Total:     total,
			StartedAt: time.Now(),
		},
		cancel: cancel,
		subs:   make(map[chan ScanStatus]struct{}),
	}
}

func (j *scanJob) snapshot() ScanStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// progress records one scanned symbol. Slow watchers miss intermediate
// updates rather than stall the scan.
func (j *scanJob) progress(scanned, total int, symbol string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if scanned > j.status.Scanned {
		j.status.Scanned = scanned
		j.status.Current = symbol
	}
	j.status.Total = total
	for ch := range j.subs {
		select {
		case ch <- j.status:
		default:
		}
	}
}

// finish moves the job to a terminal state and closes every watcher
func (j *scanJob) finish(status string, report *scanner.Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.status.Status = status
	j.status.Report = report
	j.status.Current = ""
	j.status.FinishedAt = &now
	if err != nil {
		j.status.Error = err.Error()
	}
	for ch := range j.subs {
		close(ch)
		delete(j.subs, ch)
	}
}

// subscribe returns a channel of progress updates that is closed when the
// scan finishes. The returned func unsubscribes.
func (j *scanJob) subscribe() (<-chan ScanStatus, func()) {
	ch := make(chan ScanStatus, 16)
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Finished() {
		close(ch)
		return ch, func() {}
	}
	j.subs[ch] = struct{}{}
	return ch, func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if _, ok := j.subs[ch]; ok {
			delete(j.subs, ch)
			close(ch)
		}
	}
}

// jobStore keeps the most recent scans, newest last
type jobStore struct {
	mu    sync.RWMutex
	limit int
	order []string
	byID  map[string]*scanJob
}

func newJobStore(limit int) *jobStore {
	return &jobStore{limit: limit, byID: make(map[string]*scanJob)}
}

// add stores j, evicting the oldest finished scans beyond the limit
func (s *jobStore) add(j *scanJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := j.snapshot().ID
	s.byID[id] = j
	s.order = append(s.order, id)

	for i := 0; len(s.order) > s.limit && i < len(s.order); {
		old := s.byID[s.order[i]]
		if old.snapshot().Finished() {
			delete(s.byID, s.order[i])
			s.order = append(s.order[:i], s.order[i+1:]...)
			continue
		}
		i++
	}
}

func (s *jobStore) get(id string) (*scanJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	return j, ok
}

// list returns snapshots newest first, without reports
func (s *jobStore) list() []ScanStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ScanStatus, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		st := s.byID[s.order[i]].snapshot()
		st.Report = nil
		out = append(out, st)
	}
	return out
}
