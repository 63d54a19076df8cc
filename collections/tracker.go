package collections

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/ecolink/apiclient"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCollected StatusFilter = "collected"
)

// ParseFilter defaults to pending for anything unrecognised
func ParseFilter(s string) StatusFilter {
	switch StatusFilter(s) {
	case FilterAll, FilterCollected:
		return StatusFilter(s)
	default:
		return FilterPending
	}
}

func (f StatusFilter) matches(status apiclient.ScheduleStatus) bool {
	switch f {
	case FilterAll:
		return true
	case FilterCollected:
		return status == apiclient.StatusCollected
	default:
		return status == apiclient.StatusPending
	}
}

// Schedule is a pickup created during this session
type Schedule struct {
	ID        string
	Date      string
	Time      string
	Address   string
	Materials []apiclient.Material
	Status    apiclient.ScheduleStatus
	CreatedAt time.Time
}

func newSchedule(req apiclient.ScheduleRequest, now time.Time) Schedule {
	return Schedule{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Time:      req.Time,
		Address:   req.Address,
		Materials: append([]apiclient.Material(nil), req.Materials...),
		Status:    req.Status,
		CreatedAt: now,
	}
}

// Tracker keeps the schedules created in one session. Status changes are local.
type Tracker struct {
	mu    sync.RWMutex
	items []Schedule
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

func (t *Tracker) Add(req apiclient.ScheduleRequest) Schedule {
	s := newSchedule(req, t.now())
	if s.Status == "" {
		s.Status = apiclient.StatusPending
	}
	t.mu.Lock()
	t.items = append(t.items, s)
	t.mu.Unlock()
	return s
}

// List returns matching schedules in creation order
func (t *Tracker) List(filter StatusFilter) []Schedule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Schedule, 0, len(t.items))
	for _, s := range t.items {
		if filter.matches(s.Status) {
			out = append(out, s)
		}
	}
	return out
}

// MarkCollected is idempotent for schedules already collected
func (t *Tracker) MarkCollected(id string) (Schedule, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].ID == id {
			t.items[i].Status = apiclient.StatusCollected
			return t.items[i], nil
		}
	}
	return Schedule{}, apperrors.Wrapf(apperrors.ErrNotFound, "[collections MarkCollected] schedule %s", id)
}
