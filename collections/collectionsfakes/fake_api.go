package collectionsfakes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/ecolink/apiclient"
)

// FakeAPI serves a fixed set of points and records created schedules
type FakeAPI struct {
	mu        sync.Mutex
	Points    []apiclient.CollectionPoint
	ListErr   error
	CreateErr error
	// ListFunc overrides the point listing when set
	ListFunc  func(ctx context.Context, skip, limit int) ([]apiclient.CollectionPoint, error)
	Schedules []apiclient.ScheduleRequest
	ListCalls []ListCall
}

type ListCall struct {
	Skip  int
	Limit int
}

func New(points ...apiclient.CollectionPoint) *FakeAPI {
	return &FakeAPI{Points: points}
}

func (f *FakeAPI) ListCollectionPoints(ctx context.Context, skip, limit int) ([]apiclient.CollectionPoint, error) {
	f.mu.Lock()
	f.ListCalls = append(f.ListCalls, ListCall{Skip: skip, Limit: limit})
	fn, points, err := f.ListFunc, f.Points, f.ListErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, skip, limit)
	}
	if err != nil {
		return nil, err
	}
	return append([]apiclient.CollectionPoint(nil), points...), nil
}

func (f *FakeAPI) CreateSchedule(ctx context.Context, req apiclient.ScheduleRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.Schedules = append(f.Schedules, req)
	return json.RawMessage(`{"id":1}`), nil
}
