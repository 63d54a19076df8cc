// Package registration implements the multi-step sign-up workflow:
// AccountType → PersonalInfo → Address → Confirmation. Each step validates only
// the fields it collects; Confirmation submits a single payload to the API.
package registration

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jrsteele09/ecolink/apiclient"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/rs/zerolog/log"
)

type Step int

const (
	StepAccountType Step = iota
	StepPersonalInfo
	StepAddress
	StepConfirmation
)

// Steps in workflow order
var Steps = []Step{StepAccountType, StepPersonalInfo, StepAddress, StepConfirmation}

func (s Step) String() string {
	switch s {
	case StepAccountType:
		return "type"
	case StepPersonalInfo:
		return "info"
	case StepAddress:
		return "address"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

type PersonalInfo struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Document string
}

type Address struct {
	Street     string
	Number     string
	Complement string
	City       string
	State      string
	PostalCode string
}

// FullAddress joins street, number and the optional complement
func (a Address) FullAddress() string {
	full := a.Street + ", " + a.Number
	if strings.TrimSpace(a.Complement) != "" {
		full += ", " + a.Complement
	}
	return full
}

type Draft struct {
	AccountType apiclient.AccountType
	PersonalInfo
	Address
}

// Registrar sends the finished payload to the API
type Registrar interface {
	Register(ctx context.Context, req apiclient.RegisterRequest) (json.RawMessage, error)
}

type Workflow struct {
	mu        sync.Mutex
	step      Step
	draft     Draft
	errs      ValidationErrors
	submitted bool

	registrar Registrar
	metrics   *metrics.Metrics
}

type Option func(*Workflow)

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

func New(registrar Registrar, opts ...Option) *Workflow {
	w := &Workflow{
		step:      StepAccountType,
		registrar: registrar,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the values entered so far
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Errors returns the messages from the last failed transition, if any
func (w *Workflow) Errors() ValidationErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.errs == nil {
		return nil
	}
	out := make(ValidationErrors, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

func (w *Workflow) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// SelectAccountType records the account type and moves on to PersonalInfo
func (w *Workflow) SelectAccountType(t apiclient.AccountType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return apperrors.ErrSubmitted
	}
	if w.step != StepAccountType {
		return apperrors.ErrInvalidStep
	}
	w.draft.AccountType = t
	return w.advance()
}

func (w *Workflow) SetPersonalInfo(p PersonalInfo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return apperrors.ErrSubmitted
	}
	w.draft.PersonalInfo = p
	return nil
}

func (w *Workflow) SetAddress(a Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return apperrors.ErrSubmitted
	}
	w.draft.Address = a
	return nil
}

// Advance validates the current step's fields and moves forward. A ValidationErrors
// result leaves the step and entered values unchanged.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return apperrors.ErrSubmitted
	}
	return w.advance()
}

func (w *Workflow) advance() error {
	if w.step == StepConfirmation {
		return apperrors.ErrTerminalStep
	}
	if errs := validateStep(w.step, w.draft); errs != nil {
		w.errs = errs
		return errs
	}
	w.errs = nil
	w.step++
	return nil
}

// Retreat moves back one step without validating or clearing anything
func (w *Workflow) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return apperrors.ErrSubmitted
	}
	if w.step == StepAccountType {
		return apperrors.ErrInitialStep
	}
	w.errs = nil
	w.step--
	return nil
}

// Payload builds the request sent on submission
func (w *Workflow) Payload() apiclient.RegisterRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return payload(w.draft)
}

func payload(d Draft) apiclient.RegisterRequest {
	return apiclient.RegisterRequest{
		Email:    d.Email,
		Name:     d.Name,
		Type:     d.AccountType,
		Address:  d.Address.FullAddress(),
		Phone:    d.Phone,
		Document: d.Document,
		Password: d.Password,
	}
}

// Submit sends the payload. Only allowed from Confirmation. On failure the draft and
// step are kept so the user can correct and retry; on success the workflow is frozen.
func (w *Workflow) Submit(ctx context.Context) (apiclient.RegisterRequest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitted {
		return apiclient.RegisterRequest{}, apperrors.ErrSubmitted
	}
	if w.step != StepConfirmation {
		return apiclient.RegisterRequest{}, apperrors.ErrInvalidStep
	}
	if errs := validateAll(w.draft); errs != nil {
		w.errs = errs
		return apiclient.RegisterRequest{}, errs
	}

	req := payload(w.draft)
	_, err := w.registrar.Register(ctx, req)
	w.metrics.RegistrationResult(err)
	if err != nil {
		log.Err(err).Str("email", req.Email).Msg("registration failed")
		return apiclient.RegisterRequest{}, apperrors.Wrapf(err, "[registration Submit] register")
	}

	w.errs = nil
	w.submitted = true
	log.Info().Str("email", req.Email).Str("type", string(req.Type)).Msg("registration submitted")
	return req, nil
}
