// Package crs resolves EPSG codes to coordinate reference system
// descriptions. The service reads a bundled registry database in the PROJ
// sqlite layout when one is present and falls back to a small embedded table
// otherwise. A Service is immutable after construction.
package crs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// ErrUnknownCode is returned for EPSG codes absent from the registry.
var ErrUnknownCode = errors.New("unknown EPSG code")

// CRS describes one coordinate reference system.
type CRS struct {
	EPSG int
	Name string
	// Geographic is true for lat/lon systems, false for projected ones.
	Geographic bool
}

// SrsName returns the srsName URI form used in GML output.
func (c CRS) SrsName() string { return fmt.Sprintf("EPSG:%d", c.EPSG) }

// Service resolves EPSG codes. Construct once at startup and share; lookups
// are read-only.
type Service struct {
	codes map[int]CRS
}

// embeddedRegistry covers the codes commonly seen in road datasets, used
// when no registry database is bundled.
var embeddedRegistry = []CRS{
	{EPSG: 4326, Name: "WGS 84", Geographic: true},
	{EPSG: 3857, Name: "WGS 84 / Pseudo-Mercator"},
	{EPSG: 4258, Name: "ETRS89", Geographic: true},
	{EPSG: 25831, Name: "ETRS89 / UTM zone 31N"},
	{EPSG: 25832, Name: "ETRS89 / UTM zone 32N"},
	{EPSG: 25833, Name: "ETRS89 / UTM zone 33N"},
	{EPSG: 32601, Name: "WGS 84 / UTM zone 1N"},
	{EPSG: 32632, Name: "WGS 84 / UTM zone 32N"},
	{EPSG: 32633, Name: "WGS 84 / UTM zone 33N"},
	{EPSG: 31467, Name: "DHDN / 3-degree Gauss-Kruger zone 3"},
	{EPSG: 5555, Name: "ETRS89 / UTM zone 31N + DHHN92 height"},
	{EPSG: 5556, Name: "ETRS89 / UTM zone 32N + DHHN92 height"},
}

// NewService builds a service from the registry database at path. An empty
// path or missing file selects the embedded fallback table.
func NewService(path string) (*Service, error) {
	s := &Service{codes: map[int]CRS{}}
	for _, c := range embeddedRegistry {
		s.codes[c.EPSG] = c
	}
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); err != nil {
		return s, nil
	}
	if err := s.loadDatabase(path); err != nil {
		return nil, fmt.Errorf("load CRS registry %s: %w", path, err)
	}
	return s, nil
}

// loadDatabase reads the crs_view table of a PROJ-style registry database
// and merges it over the embedded rows.
func (s *Service) loadDatabase(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT code, name, type FROM crs_view WHERE auth_name = 'EPSG'`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var code int
		var name, crsType string
		if err := rows.Scan(&code, &name, &crsType); err != nil {
			return err
		}
		s.codes[code] = CRS{EPSG: code, Name: name, Geographic: crsType == "geographic 2D" || crsType == "geographic 3D"}
	}
	return rows.Err()
}

// Resolve returns the CRS for an EPSG code.
func (s *Service) Resolve(epsg int) (CRS, error) {
	c, ok := s.codes[epsg]
	if !ok {
		return CRS{}, fmt.Errorf("%w: %d", ErrUnknownCode, epsg)
	}
	return c, nil
}

// Known reports whether the code is present in the registry.
func (s *Service) Known(epsg int) bool {
	_, ok := s.codes[epsg]
	return ok
}
