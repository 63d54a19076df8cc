// Package geo reads the user's position once and measures great-circle distances.
package geo

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/rs/zerolog/log"
)

// FailureMessage is the single message shown for any geolocation failure
const FailureMessage = "Não foi possível obter sua localização. As distâncias não estarão disponíveis."

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Locator produces the device position
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

type LocatorFunc func(ctx context.Context) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// Fixed always reports the same position
func Fixed(c Coordinates) Locator {
	return LocatorFunc(func(context.Context) (Coordinates, error) {
		return c, nil
	})
}

// Query parameters the browser reports its position through
const (
	ParamLatitude  = "lat"
	ParamLongitude = "lng"
	ParamError     = "geo_error"
)

// Browser PositionError codes
const (
	codePermissionDenied    = "1"
	codePositionUnavailable = "2"
	codeTimeout             = "3"
)

// FormLocator reads a position reported by the browser's Geolocation API through
// the lat/lng values, or its failure through geo_error.
func FormLocator(values url.Values) Locator {
	return LocatorFunc(func(context.Context) (Coordinates, error) {
		switch values.Get(ParamError) {
		case "":
		case codePermissionDenied:
			return Coordinates{}, apperrors.ErrPermissionDenied
		case codeTimeout:
			return Coordinates{}, apperrors.ErrLocateTimeout
		case codePositionUnavailable:
			return Coordinates{}, apperrors.ErrPositionUnavailable
		default:
			return Coordinates{}, apperrors.ErrPositionUnavailable
		}

		latRaw, lngRaw := values.Get(ParamLatitude), values.Get(ParamLongitude)
		if latRaw == "" || lngRaw == "" {
			return Coordinates{}, apperrors.ErrPositionUnavailable
		}
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return Coordinates{}, apperrors.Wrapf(apperrors.ErrPositionUnavailable, "latitude %q", latRaw)
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return Coordinates{}, apperrors.Wrapf(apperrors.ErrPositionUnavailable, "longitude %q", lngRaw)
		}
		c := Coordinates{Latitude: lat, Longitude: lng}
		if !c.Valid() {
			return Coordinates{}, apperrors.Wrapf(apperrors.ErrPositionUnavailable, "out of range %v", c)
		}
		return c, nil
	})
}

type State int

const (
	Pending State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Accessor performs a single position read and holds its outcome. It never
// updates after the first resolution.
type Accessor struct {
	locator Locator
	timeout time.Duration

	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	state  State
	coords Coordinates
	err    error
}

func NewAccessor(locator Locator, timeout time.Duration) *Accessor {
	return &Accessor{
		locator: locator,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Activate reads the position and blocks until it resolves. Later calls return immediately.
func (a *Accessor) Activate(ctx context.Context) {
	a.once.Do(func() {
		defer close(a.done)
		a.resolve(ctx)
	})
	<-a.done
}

// Start activates in the background so callers can carry on without the position
func (a *Accessor) Start(ctx context.Context) {
	go a.Activate(ctx)
}

// Done is closed once the position has resolved or failed
func (a *Accessor) Done() <-chan struct{} {
	return a.done
}

func (a *Accessor) resolve(ctx context.Context) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	coords, err := a.locator.Locate(ctx)
	if err == nil && !coords.Valid() {
		err = apperrors.ErrPositionUnavailable
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = apperrors.ErrLocateTimeout
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		log.Debug().Err(err).Msg("geolocation failed")
		a.state = Failed
		a.err = err
		return
	}
	a.state = Resolved
	a.coords = coords
}

func (a *Accessor) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Coordinates returns the position when resolved
func (a *Accessor) Coordinates() (Coordinates, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.coords, a.state == Resolved
}

// Err returns the underlying failure, for logging
func (a *Accessor) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Message is the advisory text shown to the user, empty unless the read failed
func (a *Accessor) Message() string {
	if a.State() != Failed {
		return ""
	}
	return FailureMessage
}
