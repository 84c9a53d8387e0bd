// handlers_zones_test.go - Tests for zone CRUD handlers
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/testutil"
)

func triangleZone(name string) *models.Zone {
	return &models.Zone{
		Name: name,
		Mode: models.ZoneModeCounting,
		Points: geometry.Polygon{
			{X: 0.1, Y: 0.1},
			{X: 0.5, Y: 0.1},
			{X: 0.5, Y: 0.5},
		},
		Confidence: 0.5,
		AlertCount: 1,
		Enabled:    true,
	}
}

func newZoneContext(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestZoneHandler_HandleCreateZone(t *testing.T) {
	tests := []struct {
		name    string
		zone    *models.Zone
		seed    *models.Zone
		wantErr bool
		errCode string
	}{
		{
			name: "valid zone",
			zone: triangleZone("loading dock"),
		},
		{
			name: "too few points",
			zone: &models.Zone{
				Name:   "line",
				Mode:   models.ZoneModeCounting,
				Points: geometry.Polygon{{X: 0.1, Y: 0.1}, {X: 0.5, Y: 0.5}},
			},
			wantErr: true,
			errCode: "BAD_REQUEST",
		},
		{
			name: "point outside unit square",
			zone: &models.Zone{
				Name:   "offscreen",
				Mode:   models.ZoneModeCounting,
				Points: geometry.Polygon{{X: 1.5, Y: 0.1}, {X: 0.5, Y: 0.1}, {X: 0.5, Y: 0.5}},
			},
			wantErr: true,
			errCode: "BAD_REQUEST",
		},
		{
			name: "unknown mode",
			zone: func() *models.Zone {
				z := triangleZone("weird")
				z.Mode = "teleporting"
				return z
			}(),
			wantErr: true,
			errCode: "BAD_REQUEST",
		},
		{
			name:    "duplicate name",
			zone:    triangleZone("loading dock"),
			seed:    triangleZone("loading dock"),
			wantErr: true,
			errCode: "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := testutil.NewMockZoneStore()
			if tt.seed != nil {
				if err := zones.CreateZone(context.Background(), tt.seed); err != nil {
					t.Fatalf("seed zone: %v", err)
				}
			}
			handler := NewZoneHandler(zones, nil, nil)

			c, rec := newZoneContext(http.MethodPost, "/api/zones", tt.zone)
			err := handler.HandleCreateZone(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected code %s, got %s", tt.errCode, apiErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Errorf("expected 201, got %d", rec.Code)
			}

			var created models.Zone
			if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if created.ID == "" {
				t.Error("expected a generated zone ID")
			}
			if len(created.Points) != 3 {
				t.Errorf("expected 3 points, got %d", len(created.Points))
			}
		})
	}
}

func TestZoneHandler_HandleGetZone(t *testing.T) {
	zones := testutil.NewMockZoneStore()
	seed := triangleZone("entrance")
	if err := zones.CreateZone(context.Background(), seed); err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	handler := NewZoneHandler(zones, nil, nil)

	t.Run("existing zone", func(t *testing.T) {
		c, rec := newZoneContext(http.MethodGet, "/api/zones/"+seed.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(seed.ID)

		if err := handler.HandleGetZone(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got models.Zone
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.Name != "entrance" {
			t.Errorf("expected name entrance, got %s", got.Name)
		}
	})

	t.Run("missing zone", func(t *testing.T) {
		c, _ := newZoneContext(http.MethodGet, "/api/zones/nope", nil)
		c.SetParamNames("id")
		c.SetParamValues("nope")

		err := handler.HandleGetZone(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Code != "NOT_FOUND" {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestZoneHandler_HandleUpdateZone(t *testing.T) {
	zones := testutil.NewMockZoneStore()
	seed := triangleZone("dock")
	if err := zones.CreateZone(context.Background(), seed); err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	handler := NewZoneHandler(zones, nil, nil)

	update := triangleZone("dock renamed")
	c, rec := newZoneContext(http.MethodPut, "/api/zones/"+seed.ID, update)
	c.SetParamNames("id")
	c.SetParamValues(seed.ID)

	if err := handler.HandleUpdateZone(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	stored, err := zones.GetZone(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("reload zone: %v", err)
	}
	if stored.Name != "dock renamed" {
		t.Errorf("expected update to persist, got name %s", stored.Name)
	}
}

func TestZoneHandler_HandleDeleteZone(t *testing.T) {
	zones := testutil.NewMockZoneStore()
	seed := triangleZone("temp")
	if err := zones.CreateZone(context.Background(), seed); err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	handler := NewZoneHandler(zones, nil, nil)

	c, rec := newZoneContext(http.MethodDelete, "/api/zones/"+seed.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(seed.ID)
	if err := handler.HandleDeleteZone(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	// Deleting again reports not found
	c, _ = newZoneContext(http.MethodDelete, "/api/zones/"+seed.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(seed.ID)
	err := handler.HandleDeleteZone(c)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestZoneHandler_HandleSetZoneActive(t *testing.T) {
	zones := testutil.NewMockZoneStore()
	seed := triangleZone("gate")
	if err := zones.CreateZone(context.Background(), seed); err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	handler := NewZoneHandler(zones, nil, nil)

	c, rec := newZoneContext(http.MethodPost, "/api/zones/"+seed.ID+"/active", map[string]bool{"active": true})
	c.SetParamNames("id")
	c.SetParamValues(seed.ID)
	if err := handler.HandleSetZoneActive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	stored, err := zones.GetZone(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("reload zone: %v", err)
	}
	if !stored.Active {
		t.Error("expected zone to be active")
	}
}

func TestZoneHandler_HandleListZones(t *testing.T) {
	zones := testutil.NewMockZoneStore()
	for _, name := range []string{"a", "b", "c"} {
		if err := zones.CreateZone(context.Background(), triangleZone(name)); err != nil {
			t.Fatalf("seed zone %s: %v", name, err)
		}
	}
	handler := NewZoneHandler(zones, nil, nil)

	c, rec := newZoneContext(http.MethodGet, "/api/zones", nil)
	if err := handler.HandleListZones(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var list []*models.Zone
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 zones, got %d", len(list))
	}
}
