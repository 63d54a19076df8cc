// Package collections lists collection points relative to the user's position and
// creates pickup schedules.
package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/geo"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/jrsteele09/ecolink/internal/utils"
)

const (
	DefaultPageLimit = 100
	pointKind        = "Ponto de Coleta"
	directionsURL    = "https://www.google.com/maps/dir/"
)

// API is the subset of the API client this package needs
type API interface {
	ListCollectionPoints(ctx context.Context, skip, limit int) ([]apiclient.CollectionPoint, error)
	CreateSchedule(ctx context.Context, req apiclient.ScheduleRequest) (json.RawMessage, error)
}

// PointView is a collection point prepared for display
type PointView struct {
	ID            int64
	Name          string
	Kind          string
	Address       string
	Distance      string
	DistanceKm    float64
	HasDistance   bool
	Materials     []string
	Coordinates   *geo.Coordinates
	DirectionsURL string
}

type Service struct {
	api     API
	limit   int
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(api API, opts ...Option) *Service {
	s := &Service{
		api:   api,
		limit: DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NearbyPoints fetches the first page of points and measures each against origin.
// haveOrigin=false renders every distance as unavailable.
func (s *Service) NearbyPoints(ctx context.Context, origin geo.Coordinates, haveOrigin bool) ([]PointView, error) {
	points, err := s.api.ListCollectionPoints(ctx, 0, s.limit)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[collections NearbyPoints] list points")
	}
	return BuildViews(points, origin, haveOrigin), nil
}

// BuildViews maps API points to views. A point whose latitude or longitude is
// missing or zero has no coordinates.
func BuildViews(points []apiclient.CollectionPoint, origin geo.Coordinates, haveOrigin bool) []PointView {
	views := make([]PointView, 0, len(points))
	for _, p := range points {
		v := PointView{
			ID:        p.ID,
			Name:      fmt.Sprintf("Ponto %d", p.ID),
			Kind:      pointKind,
			Address:   p.Address,
			Materials: make([]string, 0, len(p.Materials)),
		}
		for _, m := range p.Materials {
			v.Materials = append(v.Materials, fmt.Sprintf("%s (%s %s)", m.Kind, m.Amount, m.Unit))
		}
		if c, ok := pointCoordinates(p); ok {
			v.Coordinates = &c
			v.DirectionsURL = Directions(c)
			if haveOrigin {
				v.DistanceKm = geo.Distance(origin, c)
				v.HasDistance = true
			}
		}
		v.Distance = geo.FormatDistance(v.DistanceKm, v.HasDistance)
		views = append(views, v)
	}
	return views
}

// Filter keeps the views whose address or materials contain query, ignoring case
func Filter(views []PointView, query string) []PointView {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return views
	}
	out := make([]PointView, 0, len(views))
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Address), query) {
			out = append(out, v)
			continue
		}
		for _, m := range v.Materials {
			if strings.Contains(strings.ToLower(m), query) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// Directions returns a maps link routing to c
func Directions(c geo.Coordinates) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", fmt.Sprintf("%g,%g", c.Latitude, c.Longitude))
	return directionsURL + "?" + q.Encode()
}

func pointCoordinates(p apiclient.CollectionPoint) (geo.Coordinates, bool) {
	c := geo.Coordinates{Latitude: utils.Value(p.Latitude), Longitude: utils.Value(p.Longitude)}
	if c.Latitude == 0 || c.Longitude == 0 || !c.Valid() {
		return geo.Coordinates{}, false
	}
	return c, true
}
