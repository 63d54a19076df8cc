package registrarfakes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/ecolink/apiclient"
)

// FakeRegistrar records submitted payloads
type FakeRegistrar struct {
	mu       sync.Mutex
	requests []apiclient.RegisterRequest
	failWith error
}

func NewFakeRegistrar() *FakeRegistrar {
	return &FakeRegistrar{}
}

func (f *FakeRegistrar) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *FakeRegistrar) Requests() []apiclient.RegisterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.RegisterRequest(nil), f.requests...)
}

func (f *FakeRegistrar) Register(_ context.Context, req apiclient.RegisterRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.failWith != nil {
		return nil, f.failWith
	}
	return json.RawMessage(`{"email":"` + req.Email + `"}`), nil
}
