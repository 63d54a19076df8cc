package registration

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Form field names, shared with the HTML forms
const (
	FieldType       = "type"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldDocument   = "document"
	FieldStreet     = "address"
	FieldNumber     = "number"
	FieldComplement = "complement"
	FieldCity       = "city"
	FieldState      = "state"
	FieldPostalCode = "zipCode"
)

// Length rules
const (
	MinPasswordLength = 6
	MinNameLength     = 3
	MinPhoneLength    = 10
	MinDocumentLength = 11
	MinStreetLength   = 10
	MinNumberLength   = 1
	MinCityLength     = 2
	StateLength       = 2
	PostalCodeLength  = 8

	maxFieldLength = "255"
)

// ValidationErrors maps a field name to its message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// validateStep checks only the fields collected by step. nil means valid.
func validateStep(step Step, d Draft) ValidationErrors {
	errs := ValidationErrors{}
	switch step {
	case StepAccountType:
		if !d.AccountType.Valid() {
			errs[FieldType] = "Selecione o tipo de conta"
		}
	case StepPersonalInfo:
		p := d.PersonalInfo
		if !validEmail(p.Email) {
			errs[FieldEmail] = "Email inválido"
		}
		minLength(errs, FieldPassword, p.Password, MinPasswordLength, "A senha deve ter no mínimo 6 caracteres")
		minLength(errs, FieldName, p.Name, MinNameLength, "Nome muito curto")
		minLength(errs, FieldPhone, p.Phone, MinPhoneLength, "Telefone inválido")
		minLength(errs, FieldDocument, p.Document, MinDocumentLength, "Documento inválido")
	case StepAddress:
		a := d.Address
		minLength(errs, FieldStreet, a.Street, MinStreetLength, "Endereço muito curto")
		minLength(errs, FieldNumber, a.Number, MinNumberLength, "Número obrigatório")
		minLength(errs, FieldCity, a.City, MinCityLength, "Cidade obrigatória")
		exactLength(errs, FieldState, a.State, StateLength, "Estado inválido")
		exactLength(errs, FieldPostalCode, a.PostalCode, PostalCodeLength, "CEP inválido")
	case StepConfirmation:
		// review only
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateAll runs every step's rules, as a final check before submission
func validateAll(d Draft) ValidationErrors {
	all := ValidationErrors{}
	for _, step := range Steps {
		for f, msg := range validateStep(step, d) {
			all[f] = msg
		}
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func minLength(errs ValidationErrors, field, value string, min int, msg string) {
	if !govalidator.StringLength(value, strconv.Itoa(min), maxFieldLength) {
		errs[field] = msg
	}
}

func exactLength(errs ValidationErrors, field, value string, n int, msg string) {
	if !govalidator.StringLength(value, strconv.Itoa(n), strconv.Itoa(n)) {
		errs[field] = msg
	}
}

// validEmail accepts a bare address (no display name) with a dotted domain
func validEmail(email string) bool {
	return govalidator.StringLength(email, "1", maxFieldLength) && govalidator.IsEmail(email)
}
