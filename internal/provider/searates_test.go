package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSeaRatesMissingConfig(t *testing.T) {
	s := NewSeaRates(SeaRatesOptions{}, noopLogger())
	if got := s.GetRates(context.Background(), testRequest()); len(got) != 0 {
		t.Fatal("missing api key should yield no rates")
	}
	if s.Name() != "searates" {
		t.Fatalf("unexpected provider name %q", s.Name())
	}
}

func TestSeaRatesSuccess(t *testing.T) {
	var received seaRatesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "sr-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"rates": [
				{"id": "a", "carrier": "Maersk", "service": "LCL Standard", "price": 450.5, "currency": "usd", "transit_days": 28},
				{"id": "b", "carrier": "MSC", "price": "390.00", "currency": "USD", "delivery_date": "2030-01-15"},
				{"id": "c", "carrier": "CMA CGM", "price": null},
				{"id": "d", "carrier": "Hapag", "price": -5},
				{"id": "e", "carrier": "ONE", "price": "120", "transit_days": "12.2"}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSeaRates(SeaRatesOptions{BaseURL: srv.URL, APIKey: "sr-key", Timeout: time.Second}, noopLogger())
	got := s.GetRates(context.Background(), testRequest())

	if received.Mode != ModeLCL {
		t.Fatalf("default mode should be lcl, got %q", received.Mode)
	}
	if !received.Cargo.WeightKg.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("weight should stay metric, got %s", received.Cargo.WeightKg)
	}
	if received.Cargo.VolumeM3.String() != "0.006" {
		t.Fatalf("volume should be sent in m3, got %s", received.Cargo.VolumeM3)
	}
	if received.Origin.Country != "GB" {
		t.Fatalf("origin country should be inferred, got %q", received.Origin.Country)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 priced rates, got %d", len(got))
	}
	if got[0].ID != "searates_a" || got[0].EstimatedDays != 28 || got[0].Currency != "USD" {
		t.Fatalf("unexpected first rate %+v", got[0])
	}
	if got[1].ServiceName != "LCL" {
		t.Fatalf("service should default to the mode, got %q", got[1].ServiceName)
	}
	if got[1].EstimatedDeliveryDate == nil || got[1].EstimatedDays != 0 {
		t.Fatalf("delivery date should be parsed and days left for derivation, got %+v", got[1])
	}
	if got[2].EstimatedDays != 13 {
		t.Fatalf("string transit days should round up, got %d", got[2].EstimatedDays)
	}
}

func TestSeaRatesWrappedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"rates": [{"id": "x", "carrier": "Evergreen", "price": "99.90"}]}}`))
	}))
	defer srv.Close()

	s := NewSeaRates(SeaRatesOptions{BaseURL: srv.URL, APIKey: "k", Mode: ModeFCL}, noopLogger())
	got := s.GetRates(context.Background(), testRequest())
	if len(got) != 1 || got[0].ServiceName != "FCL" {
		t.Fatalf("wrapped payload should be accepted, got %+v", got)
	}
}

func TestSeaRatesServerErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "quota exhausted"}`))
	}))
	defer srv.Close()

	s := NewSeaRates(SeaRatesOptions{BaseURL: srv.URL, APIKey: "k"}, noopLogger())
	if got := s.GetRates(context.Background(), testRequest()); len(got) != 0 {
		t.Fatalf("429 should yield no rates, got %d", len(got))
	}
}

func TestParseHTTPError(t *testing.T) {
	err := parseHTTPError("searates", 500, []byte(`{"message":"boom"}`))
	if err.Error() != "searates api error (500): boom" {
		t.Fatalf("unexpected error %q", err)
	}
	err = parseHTTPError("shippo", 503, []byte("  gateway  "))
	if err.Error() != "shippo api error (503): gateway" {
		t.Fatalf("unexpected error %q", err)
	}
	err = parseHTTPError("shippo", 504, nil)
	if err.Error() != "shippo api error (504)" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestSandboxRatesAreTagged(t *testing.T) {
	s := NewSandbox("US", noopLogger())
	got := s.GetRates(context.Background(), testRequest())
	if len(got) != len(sandboxServices) {
		t.Fatalf("expected %d sandbox rates, got %d", len(sandboxServices), len(got))
	}
	for _, r := range got {
		if r.Provider != "sandbox" {
			t.Fatalf("sandbox rate tagged %q", r.Provider)
		}
		if !r.Price.IsPositive() {
			t.Fatalf("sandbox rate must be priced, got %s", r.Price)
		}
	}
	// 10 kg actual vs 1.2 kg volumetric: economy = 6 + 1.20*10
	if !got[0].Price.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("unexpected economy price %s", got[0].Price)
	}
}
