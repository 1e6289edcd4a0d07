package handlers

import (
	"testing"
	"time"

	"equalpay-backend/models"
)

func strPtr(s string) *string { return &s }

func TestBuildGroupUpdates(t *testing.T) {
	tests := []struct {
		name     string
		req      models.UpdateGroupRequest
		wantErr  bool
		validate func(t *testing.T, updates map[string]interface{})
	}{
		{
			name: "omitted trip dates are left alone",
			req:  models.UpdateGroupRequest{Name: "Lisbon Trip"},
			validate: func(t *testing.T, updates map[string]interface{}) {
				if _, ok := updates["trip_start_date"]; ok {
					t.Error("trip_start_date should not be in updates")
				}
				if _, ok := updates["trip_end_date"]; ok {
					t.Error("trip_end_date should not be in updates")
				}
				if updates["name"] != "Lisbon Trip" {
					t.Errorf("name = %v, want Lisbon Trip", updates["name"])
				}
			},
		},
		{
			name: "empty string clears a stored date",
			req:  models.UpdateGroupRequest{TripEndDate: strPtr("")},
			validate: func(t *testing.T, updates map[string]interface{}) {
				v, ok := updates["trip_end_date"]
				if !ok {
					t.Fatal("trip_end_date missing from updates")
				}
				if v != nil {
					t.Errorf("trip_end_date = %v, want explicit nil", v)
				}
			},
		},
		{
			name: "valid dates are parsed",
			req: models.UpdateGroupRequest{
				TripStartDate: strPtr("2026-03-01"),
				TripEndDate:   strPtr("2026-03-10"),
			},
			validate: func(t *testing.T, updates map[string]interface{}) {
				end, ok := updates["trip_end_date"].(time.Time)
				if !ok {
					t.Fatalf("trip_end_date = %v, want time.Time", updates["trip_end_date"])
				}
				if end.Format("2006-01-02") != "2026-03-10" {
					t.Errorf("trip_end_date = %s, want 2026-03-10", end.Format("2006-01-02"))
				}
			},
		},
		{
			name:    "garbage date is rejected",
			req:     models.UpdateGroupRequest{TripStartDate: strPtr("next tuesday")},
			wantErr: true,
		},
		{
			name: "end before start is rejected",
			req: models.UpdateGroupRequest{
				TripStartDate: strPtr("2026-03-10"),
				TripEndDate:   strPtr("2026-03-01"),
			},
			wantErr: true,
		},
		{
			name: "currency is upper-cased",
			req:  models.UpdateGroupRequest{BaseCurrency: "eur"},
			validate: func(t *testing.T, updates map[string]interface{}) {
				if updates["base_currency"] != "EUR" {
					t.Errorf("base_currency = %v, want EUR", updates["base_currency"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := buildGroupUpdates(tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildGroupUpdates: %v", err)
			}
			tt.validate(t, updates)
		})
	}
}
