package board

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// Record is a job on the board. Status is always canonical.
type Record struct {
	ID            int64                    `json:"id"`
	PositionTitle string                   `json:"position_title"`
	Company       string                   `json:"company"`
	Location      string                   `json:"location"`
	JobPostingURL string                   `json:"job_posting_url"`
	Notes         string                   `json:"notes"`
	Status        models.ApplicationStatus `json:"application_status"`
	CreatedAt     time.Time                `json:"created_at"`
}

// SortKey selects the order of cards inside a column.
type SortKey string

const (
	SortRecent  SortKey = "recent"
	SortCompany SortKey = "company"
	SortTitle   SortKey = "title"
)

// ParseSortKey falls back to SortRecent for anything unknown.
func ParseSortKey(raw string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortCompany, SortTitle:
		return k
	}
	return SortRecent
}

// Columns maps every canonical status to its cards.
type Columns map[models.ApplicationStatus][]Record

// Store is the board's record list. It is safe for concurrent use; all
// reads and writes go through one mutex so a render never observes a
// half-applied change.
type Store struct {
	mu      sync.RWMutex
	records []Record
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces all records, normalizing each raw status.
func (s *Store) Load(raw []RawRecord) {
	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		records = append(records, Record{
			ID:            r.ID,
			PositionTitle: r.PositionTitle,
			Company:       r.Company,
			Location:      r.Location,
			JobPostingURL: r.JobPostingURL,
			Notes:         r.Notes,
			Status:        models.NormalizeStatus(r.Status),
			CreatedAt:     r.CreatedAt,
		})
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of the records in load order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Get(id int64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return Record{}, false
}

// ApplyStatusChange sets the status of record id and returns the status
// it had before. Unknown ids return the zero status; an unchanged status
// returns it as is. Neither case mutates anything.
func (s *Store) ApplyStatusChange(id int64, status models.ApplicationStatus) models.ApplicationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(id, status)
}

func (s *Store) applyLocked(id int64, status models.ApplicationStatus) models.ApplicationStatus {
	i := s.indexOf(id)
	if i < 0 {
		return ""
	}
	prev := s.records[i].Status
	if prev != status {
		s.records[i].Status = status
	}
	return prev
}

func (s *Store) indexOf(id int64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// ByStatus groups the records matching search into columns sorted by key.
// Every canonical status has an entry, possibly empty.
func (s *Store) ByStatus(search string, key SortKey) Columns {
	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, r := range s.records {
		if matches(r, needle) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sortRecords(matched, key)

	cols := make(Columns, 4)
	for _, st := range models.Statuses() {
		cols[st] = []Record{}
	}
	for _, r := range matched {
		cols[r.Status] = append(cols[r.Status], r)
	}
	return cols
}

func matches(r Record, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{r.PositionTitle, r.Company, r.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortRecords(records []Record, key SortKey) {
	switch key {
	case SortCompany:
		sort.SliceStable(records, func(i, j int) bool { return foldLess(records[i].Company, records[j].Company) })
	case SortTitle:
		sort.SliceStable(records, func(i, j int) bool { return foldLess(records[i].PositionTitle, records[j].PositionTitle) })
	default:
		sort.SliceStable(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	}
}

// foldLess orders case-insensitively, falling back to byte order so
// "acme" and "Acme" still sort deterministically.
func foldLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
