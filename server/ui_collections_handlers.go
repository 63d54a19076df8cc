package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/ecolink/collections"
	"github.com/jrsteele09/ecolink/geo"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	msgPointsFailed     = "Não foi possível carregar os pontos de coleta."
	msgScheduleFailed   = "Erro ao agendar coleta. Tente novamente."
	msgScheduleSuccess  = "Coleta agendada com sucesso!"
	msgScheduleNotFound = "Agendamento não encontrado."

	formMaterialKind     = "material_kind"
	formMaterialQuantity = "material_quantity"
	formMaterialUnit     = "material_unit"
	formAction           = "action"
	actionAddMaterial    = "add"
	actionRemoveMaterial = "remove:"
)

// PointsPageData is the template model for the collection point list
type PointsPageData struct {
	PageData
	Points []collections.PointView
	Query  string
	// Locating is set while the browser has not reported a position yet
	Locating       bool
	LocateTimeout  int64
	LocationNotice string
	// Location echoes lat, lng and geo_error into the search form so a search does
	// not ask the browser for its position again
	Location []LocationParam
}

type LocationParam struct {
	Name  string
	Value string
}

var locationParams = []string{geo.ParamLatitude, geo.ParamLongitude, geo.ParamError}

// PointsHandler lists collection points. The browser reports its position through
// lat/lng, or geo_error when the read failed; without either the page asks for it.
func (s *Server) PointsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("points.html")

	return func(w http.ResponseWriter, r *http.Request) {
		bs := sessionFrom(r)
		query := r.URL.Query()
		data := PointsPageData{
			PageData:      s.pageData(r),
			Query:         query.Get("q"),
			Locating:      !query.Has(geo.ParamLatitude) && !query.Has(geo.ParamLongitude) && !query.Has(geo.ParamError),
			LocateTimeout: s.config.GetGeolocationTimeout().Milliseconds(),
		}

		var origin geo.Coordinates
		var haveOrigin bool
		if !data.Locating {
			accessor := geo.NewAccessor(geo.FormLocator(query), s.config.GetGeolocationTimeout())
			accessor.Activate(r.Context())
			origin, haveOrigin = accessor.Coordinates()
			data.LocationNotice = accessor.Message()
			for _, name := range locationParams {
				if query.Has(name) {
					data.Location = append(data.Location, LocationParam{Name: name, Value: query.Get(name)})
				}
			}
		}

		views, err := bs.Loader.Load(r.Context(), origin, haveOrigin)
		switch {
		case errors.Is(err, collections.ErrStale):
			views, _ = bs.Loader.Latest()
		case err != nil:
			log.Err(err).Str("session", bs.ID).Msg("failed to load collection points")
			data.Error = msgPointsFailed
		}
		data.Points = collections.Filter(views, data.Query)

		render(w, tmpl, http.StatusOK, data)
	}
}

// SchedulePageData is the template model for the schedule form
type SchedulePageData struct {
	PageData
	Form          collections.ScheduleForm
	FieldErrors   collections.FieldErrors
	MaterialKinds []string
	Units         []UnitOption
}

type UnitOption struct {
	Code  string
	Label string
}

func unitOptions() []UnitOption {
	return []UnitOption{
		{Code: "kg", Label: collections.Units["kg"]},
		{Code: "l", Label: collections.Units["l"]},
		{Code: "un", Label: collections.Units["un"]},
	}
}

func (s *Server) ScheduleGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("schedule.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := SchedulePageData{
			PageData: s.pageData(r),
			Form: collections.ScheduleForm{
				Materials: []collections.MaterialLine{{Unit: "kg"}},
			},
			MaterialKinds: collections.MaterialKinds,
			Units:         unitOptions(),
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// SchedulePostHandler submits the form, or adds/removes a material row when the
// action field asks for it
func (s *Server) SchedulePostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("schedule.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		bs := sessionFrom(r)
		form := scheduleFormFromRequest(r)
		data := SchedulePageData{
			PageData:      s.pageData(r),
			Form:          form,
			MaterialKinds: collections.MaterialKinds,
			Units:         unitOptions(),
		}

		action := r.FormValue(formAction)
		switch {
		case action == actionAddMaterial:
			data.Form.Materials = append(data.Form.Materials, collections.MaterialLine{Unit: "kg"})
			render(w, tmpl, http.StatusOK, data)
			return
		case strings.HasPrefix(action, actionRemoveMaterial):
			i, err := strconv.Atoi(strings.TrimPrefix(action, actionRemoveMaterial))
			if err == nil && i >= 0 && i < len(data.Form.Materials) {
				data.Form.Materials = append(data.Form.Materials[:i:i], data.Form.Materials[i+1:]...)
			}
			render(w, tmpl, http.StatusOK, data)
			return
		}

		_, err := bs.Points.Schedule(r.Context(), form, bs.Schedules)
		var fieldErrs collections.FieldErrors
		switch {
		case err == nil:
			redirectSuccess(w, r, withQuery(RouteSchedules, "success", msgScheduleSuccess))
		case errors.As(err, &fieldErrs):
			data.FieldErrors = fieldErrs
			render(w, tmpl, http.StatusUnprocessableEntity, data)
		default:
			log.Err(err).Str("session", bs.ID).Msg("failed to create schedule")
			data.Error = msgScheduleFailed
			render(w, tmpl, http.StatusBadGateway, data)
		}
	}
}

// SchedulesPageData is the template model for the local schedule list
type SchedulesPageData struct {
	PageData
	Filter    string
	Schedules []collections.Schedule
}

func (s *Server) SchedulesListHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("schedules.html")

	return func(w http.ResponseWriter, r *http.Request) {
		bs := sessionFrom(r)
		filter := collections.ParseFilter(r.URL.Query().Get("status"))
		data := SchedulesPageData{
			PageData:  s.pageData(r),
			Filter:    string(filter),
			Schedules: bs.Schedules.List(filter),
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

func (s *Server) ScheduleCollectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs := sessionFrom(r)
		back := RouteSchedules
		if status := r.FormValue("status"); status != "" {
			back = withQuery(back, "status", string(collections.ParseFilter(status)))
		}

		if _, err := bs.Schedules.MarkCollected(r.PathValue("id")); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				redirectWithError(w, r, back, msgScheduleNotFound)
				return
			}
			log.Err(err).Str("session", bs.ID).Msg("failed to mark schedule collected")
			redirectWithError(w, r, back, msgScheduleFailed)
			return
		}
		redirectSuccess(w, r, back)
	}
}

// collectedPath is the form action for one schedule
func collectedPath(id string) string {
	return fmt.Sprintf(routeScheduleCollectedF, id)
}

// scheduleFormFromRequest reads the parallel material_* fields row by row. An empty
// quantity counts as zero and an unparseable one is rejected by validation.
func scheduleFormFromRequest(r *http.Request) collections.ScheduleForm {
	form := collections.ScheduleForm{
		Date:    strings.TrimSpace(r.FormValue(collections.FieldDate)),
		Time:    strings.TrimSpace(r.FormValue(collections.FieldTime)),
		Address: strings.TrimSpace(r.FormValue(collections.FieldAddress)),
	}
	kinds := r.Form[formMaterialKind]
	quantities := r.Form[formMaterialQuantity]
	units := r.Form[formMaterialUnit]
	for i, kind := range kinds {
		line := collections.MaterialLine{Kind: kind}
		if i < len(quantities) {
			line.Quantity = parseQuantity(quantities[i])
		}
		if i < len(units) {
			line.Unit = units[i]
		}
		form.Materials = append(form.Materials, line)
	}
	return form
}

func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
