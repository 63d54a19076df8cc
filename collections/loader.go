package collections

import (
	"context"
	"sync"

	"github.com/jrsteele09/ecolink/geo"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
)

// ErrStale is returned to a Load call that was overtaken by a newer one
var ErrStale = apperrors.ErrStale

// Loader serialises point fetches for one consumer. Each Load cancels the fetch
// in flight and only the newest generation may publish its result.
type Loader struct {
	service *Service

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	latest    []PointView
	latestGen uint64
}

func NewLoader(service *Service) *Loader {
	return &Loader{service: service}
}

func (l *Loader) Load(ctx context.Context, origin geo.Coordinates, haveOrigin bool) ([]PointView, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	views, err := l.service.NearbyPoints(ctx, origin, haveOrigin)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, ErrStale
	}
	l.cancel = nil
	if err != nil {
		return nil, err
	}
	l.latest = views
	l.latestGen = gen
	return views, nil
}

// Latest returns the most recent published result and its generation
func (l *Loader) Latest() ([]PointView, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.latestGen
}
