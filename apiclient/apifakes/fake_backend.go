package apifakes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/ecolink/apiclient"
)

// BasePath is where the fake mounts the API
const BasePath = "/api/v1"

// FakeBackend is an in-process stand-in for the remote service
type FakeBackend struct {
	server *httptest.Server

	mu           sync.Mutex
	accounts     map[string]account
	issued       map[string]string // token -> username
	points       []apiclient.CollectionPoint
	registered   []apiclient.RegisterRequest
	registerAuth []string
	schedules    []apiclient.ScheduleRequest
	failRegister bool
	failSchedule bool
}

type account struct {
	password string
	response apiclient.LoginResponse
}

func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		accounts: make(map[string]account),
		issued:   make(map[string]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+BasePath+apiclient.PathLogin, f.login)
	mux.HandleFunc("POST "+BasePath+apiclient.PathUsers, f.register)
	mux.HandleFunc("GET "+BasePath+apiclient.PathCollectionsAll, f.listPoints)
	mux.HandleFunc("POST "+BasePath+apiclient.PathCollections, f.createSchedule)
	f.server = httptest.NewServer(mux)
	return f
}

// URL is the API base URL to configure clients with
func (f *FakeBackend) URL() string {
	return f.server.URL + BasePath
}

func (f *FakeBackend) Close() {
	f.server.Close()
}

func (f *FakeBackend) AddAccount(username, password, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[username] = account{
		password: password,
		response: apiclient.LoginResponse{
			TokenType: "bearer",
			Name:      name,
			Email:     username,
			Type:      apiclient.AccountResidential,
		},
	}
}

func (f *FakeBackend) SetPoints(points ...apiclient.CollectionPoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = points
}

func (f *FakeBackend) FailRegistrations(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRegister = fail
}

func (f *FakeBackend) FailSchedules(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSchedule = fail
}

func (f *FakeBackend) Registered() []apiclient.RegisterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.RegisterRequest(nil), f.registered...)
}

// RegistrationAuthorizations returns the Authorization header of each POST /users
func (f *FakeBackend) RegistrationAuthorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.registerAuth...)
}

// Issued reports whether token was handed out by login and not revoked
func (f *FakeBackend) Issued(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.issued[token]
	return ok
}

func (f *FakeBackend) Schedules() []apiclient.ScheduleRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.ScheduleRequest(nil), f.schedules...)
}

// Revoke invalidates every issued token
func (f *FakeBackend) Revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = make(map[string]string)
}

func (f *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds apiclient.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[creds.Username]
	if !ok || acc.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	token := uuid.NewString()
	f.issued[token] = creds.Username
	resp := acc.response
	resp.AccessToken = token
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req apiclient.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerAuth = append(f.registerAuth, r.Header.Get("Authorization"))
	if f.failRegister {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	f.registered = append(f.registered, req)
	writeJSON(w, http.StatusCreated, map[string]any{"id": len(f.registered), "email": req.Email})
}

func (f *FakeBackend) listPoints(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	points := f.points
	if points == nil {
		points = []apiclient.CollectionPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (f *FakeBackend) createSchedule(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authorised(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}
	var req apiclient.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	if f.failSchedule {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
		return
	}
	f.schedules = append(f.schedules, req)
	writeJSON(w, http.StatusCreated, map[string]any{"id": len(f.schedules)})
}

func (f *FakeBackend) authorised(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	_, ok = f.issued[token]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
