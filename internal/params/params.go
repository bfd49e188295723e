// Package params loads conversion parameters from a JSON file. Fields
// omitted from the file keep their defaults, so partial configs are safe;
// CLI flags override file values in the driver.
package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Parameters mirrors the CLI options as pointer-typed optional fields.
type Parameters struct {
	Tolerance                    *float64    `json:"tolerance,omitempty"`
	CrsEPSG                      *int        `json:"crs_epsg,omitempty"`
	Offset                       *[3]float64 `json:"offset,omitempty"`
	DiscretizationStepSize       *float64    `json:"discretization_step_size,omitempty"`
	SweepDiscretizationStepSize  *float64    `json:"sweep_discretization_step_size,omitempty"`
	CircleSlices                 *int        `json:"circle_slices,omitempty"`
	ConvertToCityGML2            *bool       `json:"convert_to_citygml2,omitempty"`
	TransformAdditionalRoadLines *bool       `json:"transform_additional_road_lines,omitempty"`
	ConcurrentProcessing         *bool       `json:"concurrent_processing,omitempty"`
	GenerateRandomGeometryIDs    *bool       `json:"generate_random_geometry_ids,omitempty"`
}

// maxFileSize bounds parameter files for safety.
const maxFileSize = 1 * 1024 * 1024

// Load reads a Parameters file. The path must end in .json.
func Load(path string) (*Parameters, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("parameter file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat parameter file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("parameter file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	p := &Parameters{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse parameter JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

// Validate rejects out-of-range values.
func (p *Parameters) Validate() error {
	if p.Tolerance != nil && *p.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", *p.Tolerance)
	}
	if p.DiscretizationStepSize != nil && *p.DiscretizationStepSize <= 0 {
		return fmt.Errorf("discretization step size must be positive, got %v", *p.DiscretizationStepSize)
	}
	if p.SweepDiscretizationStepSize != nil && *p.SweepDiscretizationStepSize <= 0 {
		return fmt.Errorf("sweep discretization step size must be positive, got %v", *p.SweepDiscretizationStepSize)
	}
	if p.CircleSlices != nil && *p.CircleSlices < 3 {
		return fmt.Errorf("circle slices must be at least 3, got %d", *p.CircleSlices)
	}
	if p.CrsEPSG != nil && *p.CrsEPSG < 0 {
		return fmt.Errorf("EPSG code must be non-negative, got %d", *p.CrsEPSG)
	}
	return nil
}
