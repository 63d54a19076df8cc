package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/ecolink/apiclient"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/registration"
	"github.com/rs/zerolog/log"
)

const (
	msgRegisterFailed  = "Erro ao cadastrar. Tente novamente."
	msgRegisterSuccess = "Cadastro realizado com sucesso! Faça login."
	msgInvalidStep     = "Etapa inválida. Continue a partir da etapa atual."
)

// RegisterPageData is the template model for the sign-up workflow
type RegisterPageData struct {
	PageData
	Step      string
	StepIndex int
	StepCount int
	Draft     registration.Draft
	Errors    registration.ValidationErrors
	Payload   apiclient.RegisterRequest
}

// RegisterGetHandler renders the current step of this browser's registration
func (s *Server) RegisterGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		wf, err := s.workflow(r)
		if err != nil {
			log.Err(err).Msg("failed to load registration workflow")
			http.Error(w, "Failed to load registration", http.StatusInternalServerError)
			return
		}

		step := wf.Step()
		data := RegisterPageData{
			PageData:  s.pageData(r),
			Step:      step.String(),
			StepIndex: int(step) + 1,
			StepCount: len(registration.Steps),
			Draft:     wf.Draft(),
			Errors:    wf.Errors(),
		}
		if step == registration.StepConfirmation {
			data.Payload = wf.Payload()
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

func (s *Server) RegisterTypeHandler() http.HandlerFunc {
	return s.registrationStep(func(wf *registration.Workflow, r *http.Request) error {
		return wf.SelectAccountType(apiclient.AccountType(r.FormValue(registration.FieldType)))
	})
}

func (s *Server) RegisterInfoHandler() http.HandlerFunc {
	return s.registrationStep(func(wf *registration.Workflow, r *http.Request) error {
		if wf.Step() != registration.StepPersonalInfo {
			return apperrors.ErrInvalidStep
		}
		if err := wf.SetPersonalInfo(personalInfoFromForm(wf, r)); err != nil {
			return err
		}
		return wf.Advance()
	})
}

func (s *Server) RegisterAddressHandler() http.HandlerFunc {
	return s.registrationStep(func(wf *registration.Workflow, r *http.Request) error {
		if wf.Step() != registration.StepAddress {
			return apperrors.ErrInvalidStep
		}
		if err := wf.SetAddress(addressFromForm(r)); err != nil {
			return err
		}
		return wf.Advance()
	})
}

// RegisterBackHandler keeps whatever the current step's form carried, unvalidated,
// and moves back one step
func (s *Server) RegisterBackHandler() http.HandlerFunc {
	return s.registrationStep(func(wf *registration.Workflow, r *http.Request) error {
		switch wf.Step() {
		case registration.StepPersonalInfo:
			if err := wf.SetPersonalInfo(personalInfoFromForm(wf, r)); err != nil {
				return err
			}
		case registration.StepAddress:
			if err := wf.SetAddress(addressFromForm(r)); err != nil {
				return err
			}
		}
		return wf.Retreat()
	})
}

func (s *Server) RegisterSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs := sessionFrom(r)
		wf, err := s.workflow(r)
		if err != nil {
			log.Err(err).Msg("failed to load registration workflow")
			http.Error(w, "Failed to load registration", http.StatusInternalServerError)
			return
		}

		_, err = wf.Submit(r.Context())
		var validationErrs registration.ValidationErrors
		switch {
		case err == nil:
			if err := s.registrations.Delete(bs.ID); err != nil {
				log.Err(err).Str("session", bs.ID).Msg("failed to clear registration draft")
			}
			redirectSuccess(w, r, withQuery(RouteLogin, "success", msgRegisterSuccess))
		case errors.As(err, &validationErrs):
			redirectSuccess(w, r, RouteRegister)
		case errors.Is(err, apperrors.ErrInvalidStep):
			redirectWithError(w, r, RouteRegister, msgInvalidStep)
		default:
			redirectWithError(w, r, RouteRegister, msgRegisterFailed)
		}
	}
}

// registrationStep runs one workflow transition and sends the browser back to the
// registration page, which shows the resulting step and any field errors
func (s *Server) registrationStep(apply func(*registration.Workflow, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		wf, err := s.workflow(r)
		if err != nil {
			log.Err(err).Msg("failed to load registration workflow")
			http.Error(w, "Failed to load registration", http.StatusInternalServerError)
			return
		}

		err = apply(wf, r)
		var validationErrs registration.ValidationErrors
		switch {
		case err == nil, errors.As(err, &validationErrs):
			redirectSuccess(w, r, RouteRegister)
		default:
			log.Debug().Err(err).Str("step", wf.Step().String()).Msg("registration transition rejected")
			redirectWithError(w, r, RouteRegister, msgInvalidStep)
		}
	}
}

// workflow returns this browser's registration, starting one when needed
func (s *Server) workflow(r *http.Request) (*registration.Workflow, error) {
	bs := sessionFrom(r)
	wf, err := s.registrations.Get(bs.ID)
	if err == nil {
		return wf, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	wf = registration.New(bs.API, registration.WithMetrics(s.metrics))
	if err := s.registrations.Upsert(bs.ID, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// personalInfoFromForm reads the info step. The password is never echoed back into
// the page, so a blank one keeps what was entered before.
func personalInfoFromForm(wf *registration.Workflow, r *http.Request) registration.PersonalInfo {
	p := registration.PersonalInfo{
		Email:    strings.TrimSpace(r.FormValue(registration.FieldEmail)),
		Password: r.FormValue(registration.FieldPassword),
		Name:     strings.TrimSpace(r.FormValue(registration.FieldName)),
		Phone:    strings.TrimSpace(r.FormValue(registration.FieldPhone)),
		Document: strings.TrimSpace(r.FormValue(registration.FieldDocument)),
	}
	if p.Password == "" {
		p.Password = wf.Draft().Password
	}
	return p
}

func addressFromForm(r *http.Request) registration.Address {
	return registration.Address{
		Street:     strings.TrimSpace(r.FormValue(registration.FieldStreet)),
		Number:     strings.TrimSpace(r.FormValue(registration.FieldNumber)),
		Complement: strings.TrimSpace(r.FormValue(registration.FieldComplement)),
		City:       strings.TrimSpace(r.FormValue(registration.FieldCity)),
		State:      strings.ToUpper(strings.TrimSpace(r.FormValue(registration.FieldState))),
		PostalCode: strings.TrimSpace(r.FormValue(registration.FieldPostalCode)),
	}
}
