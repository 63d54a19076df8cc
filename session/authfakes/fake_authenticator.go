package authfakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/ecolink/apiclient"
)

var ErrRejected = errors.New("fake: credentials rejected")

// FakeAuthenticator accepts the credential pairs it has been given
type FakeAuthenticator struct {
	mu        sync.Mutex
	accounts  map[string]account
	failWith  error
	callCount int
}

type account struct {
	password string
	response apiclient.LoginResponse
}

func NewFakeAuthenticator() *FakeAuthenticator {
	return &FakeAuthenticator{
		accounts: make(map[string]account),
	}
}

// AddAccount registers a username/password pair and the response returned for it
func (f *FakeAuthenticator) AddAccount(username, password string, resp apiclient.LoginResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[username] = account{password: password, response: resp}
}

// FailWith makes every Login return err, e.g. a transport *apiclient.Error
func (f *FakeAuthenticator) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *FakeAuthenticator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

func (f *FakeAuthenticator) Login(_ context.Context, username, password string) (apiclient.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++

	if f.failWith != nil {
		return apiclient.LoginResponse{}, f.failWith
	}
	acc, ok := f.accounts[username]
	if !ok || acc.password != password {
		return apiclient.LoginResponse{}, &apiclient.Error{Kind: apiclient.KindStatus, StatusCode: 401, Err: ErrRejected}
	}
	return acc.response, nil
}
