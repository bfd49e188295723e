package crs

import (
	"errors"
	"testing"
)

func TestService_EmbeddedResolve(t *testing.T) {
	service, err := NewService("")
	if err != nil {
		t.Fatal(err)
	}
	c, err := service.Resolve(25832)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name == "" || c.Geographic {
		t.Errorf("unexpected CRS %+v", c)
	}
	if c.SrsName() != "EPSG:25832" {
		t.Errorf("srsName = %q", c.SrsName())
	}

	wgs, err := service.Resolve(4326)
	if err != nil {
		t.Fatal(err)
	}
	if !wgs.Geographic {
		t.Error("EPSG:4326 must be geographic")
	}
}

func TestService_UnknownCode(t *testing.T) {
	service, err := NewService("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.Resolve(999999); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("expected ErrUnknownCode, got %v", err)
	}
	if service.Known(999999) {
		t.Error("unknown code reported as known")
	}
}

func TestService_MissingDatabaseFallsBack(t *testing.T) {
	service, err := NewService("/nonexistent/proj.db")
	if err != nil {
		t.Fatal(err)
	}
	if !service.Known(4326) {
		t.Error("embedded fallback missing")
	}
}
