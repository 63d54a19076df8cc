package collections_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/collections"
	"github.com/jrsteele09/ecolink/collections/collectionsfakes"
	"github.com/stretchr/testify/require"
)

func validForm() collections.ScheduleForm {
	return collections.ScheduleForm{
		Date:    "2026-10-20",
		Time:    "09:30",
		Address: "Rua das Flores, 100",
		Materials: []collections.MaterialLine{
			{Kind: "Papelão", Quantity: 5, Unit: "kg"},
			{Kind: "Óleo", Quantity: 0, Unit: "l"},
		},
	}
}

func TestScheduleForm_Request(t *testing.T) {
	req, err := validForm().Request()
	require.NoError(t, err)
	require.Equal(t, apiclient.ScheduleRequest{
		Date:    "2026-10-20T00:00:00.000Z",
		Time:    "09:30",
		Address: "Rua das Flores, 100",
		Materials: []apiclient.Material{
			{Kind: "Papelão", Amount: "5", Unit: "kg"},
			{Kind: "Óleo", Amount: "0", Unit: "l"},
		},
		Status: apiclient.StatusPending,
	}, req)
}

func TestScheduleForm_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *collections.ScheduleForm)
		field  string
	}{
		{"bad date", func(f *collections.ScheduleForm) { f.Date = "20/10/2026" }, collections.FieldDate},
		{"missing time", func(f *collections.ScheduleForm) { f.Time = "" }, collections.FieldTime},
		{"blank address", func(f *collections.ScheduleForm) { f.Address = "  " }, collections.FieldAddress},
		{"no materials", func(f *collections.ScheduleForm) { f.Materials = nil }, collections.FieldMaterials},
		{"unknown kind", func(f *collections.ScheduleForm) { f.Materials[0].Kind = "" }, collections.MaterialField(0)},
		{"negative quantity", func(f *collections.ScheduleForm) { f.Materials[1].Quantity = -1 }, collections.MaterialField(1)},
		{"unknown unit", func(f *collections.ScheduleForm) { f.Materials[1].Unit = "ton" }, collections.MaterialField(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			errs := form.Validate()
			require.Len(t, errs, 1)
			require.Contains(t, errs, tt.field)

			_, err := form.Request()
			require.Error(t, err)
		})
	}
	require.Nil(t, validForm().Validate())
}

func TestService_Schedule(t *testing.T) {
	api := collectionsfakes.New()
	svc := collections.NewService(api)
	tracker := collections.NewTracker()

	s, err := svc.Schedule(context.Background(), validForm(), tracker)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Equal(t, apiclient.StatusPending, s.Status)
	require.Len(t, api.Schedules, 1)
	require.Equal(t, []collections.Schedule{s}, tracker.List(collections.FilterPending))
}

func TestService_ScheduleFailures(t *testing.T) {
	api := collectionsfakes.New()
	svc := collections.NewService(api)
	tracker := collections.NewTracker()

	form := validForm()
	form.Materials = nil
	_, err := svc.Schedule(context.Background(), form, tracker)
	var fieldErrs collections.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Empty(t, api.Schedules)

	api.CreateErr = &apiclient.Error{Kind: apiclient.KindStatus, StatusCode: 500}
	_, err = svc.Schedule(context.Background(), validForm(), tracker)
	require.Error(t, err)
	require.Equal(t, 500, apiclient.StatusCode(err))
	require.Empty(t, tracker.List(collections.FilterAll))
}
