package collections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/jrsteele09/ecolink/apiclient"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
	isoLayout  = "2006-01-02T15:04:05.000Z07:00"
)

// Form field names
const (
	FieldDate      = "date"
	FieldTime      = "time"
	FieldAddress   = "address"
	FieldMaterials = "materials"
)

// MaterialKinds is the catalogue offered on the schedule form
var MaterialKinds = []string{"Papel", "Papelão", "Plástico", "Metal", "Vidro", "Eletrônicos", "Óleo"}

// Unit codes and their labels
var Units = map[string]string{
	"kg": "Quilos (kg)",
	"l":  "Litros (l)",
	"un": "Unidades",
}

type MaterialLine struct {
	Kind     string
	Quantity int
	Unit     string
}

type ScheduleForm struct {
	Date      string
	Time      string
	Address   string
	Materials []MaterialLine
}

// FieldErrors maps a form field to its message. Material lines use "materials.<index>".
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func MaterialField(i int) string {
	return fmt.Sprintf("%s.%d", FieldMaterials, i)
}

// Validate returns nil when the form can be submitted
func (f ScheduleForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if !govalidator.IsTime(strings.TrimSpace(f.Date), DateLayout) {
		errs[FieldDate] = "Data inválida"
	}
	if !govalidator.IsTime(strings.TrimSpace(f.Time), TimeLayout) {
		errs[FieldTime] = "Horário inválido"
	}
	if govalidator.IsNull(strings.TrimSpace(f.Address)) {
		errs[FieldAddress] = "Endereço obrigatório"
	}
	if len(f.Materials) == 0 {
		errs[FieldMaterials] = "Adicione pelo menos um material"
	}
	for i, m := range f.Materials {
		switch {
		case !knownKind(m.Kind):
			errs[MaterialField(i)] = "Selecione o material"
		case m.Quantity < 0:
			errs[MaterialField(i)] = "Quantidade inválida"
		case !knownUnit(m.Unit):
			errs[MaterialField(i)] = "Unidade inválida"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Request builds the API payload. The date is sent as UTC midnight of the chosen day.
func (f ScheduleForm) Request() (apiclient.ScheduleRequest, error) {
	if errs := f.Validate(); errs != nil {
		return apiclient.ScheduleRequest{}, errs
	}
	day, _ := time.Parse(DateLayout, strings.TrimSpace(f.Date))
	req := apiclient.ScheduleRequest{
		Date:      day.UTC().Format(isoLayout),
		Time:      strings.TrimSpace(f.Time),
		Address:   strings.TrimSpace(f.Address),
		Materials: make([]apiclient.Material, 0, len(f.Materials)),
		Status:    apiclient.StatusPending,
	}
	for _, m := range f.Materials {
		req.Materials = append(req.Materials, apiclient.Material{
			Kind:   m.Kind,
			Amount: apiclient.Amount(fmt.Sprintf("%d", m.Quantity)),
			Unit:   m.Unit,
		})
	}
	return req, nil
}

// Schedule validates and submits the form, recording the result in tracker when
// one is given
func (s *Service) Schedule(ctx context.Context, form ScheduleForm, tracker *Tracker) (Schedule, error) {
	req, err := form.Request()
	if err != nil {
		s.metrics.ScheduleResult(err)
		return Schedule{}, err
	}
	if _, err := s.api.CreateSchedule(ctx, req); err != nil {
		s.metrics.ScheduleResult(err)
		return Schedule{}, apperrors.Wrapf(err, "[collections Schedule] create schedule")
	}
	s.metrics.ScheduleResult(nil)
	if tracker == nil {
		return newSchedule(req, time.Now()), nil
	}
	return tracker.Add(req), nil
}

func knownKind(kind string) bool {
	return govalidator.IsIn(kind, MaterialKinds...)
}

func knownUnit(unit string) bool {
	_, ok := Units[unit]
	return ok
}
