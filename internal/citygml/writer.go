package citygml

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// coordinatePrecision is the number of fractional digits written for
// coordinates.
const coordinatePrecision = 8

// FormatPos renders one coordinate triple.
func FormatPos(p geomath.Vector3D) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y) + " " + formatFloat(p.Z)
}

// FormatPosList renders a whitespace-joined coordinate list.
func FormatPosList(points []geomath.Vector3D) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = FormatPos(p)
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', coordinatePrecision, 64)
}

// ComputeEnvelope derives the dataset envelope from all coordinates of the
// document members. Returns nil when no coordinates exist.
func ComputeEnvelope(points []geomath.Vector3D, epsg int) *Envelope {
	if len(points) == 0 {
		return nil
	}
	lo := geomath.Vector3D{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := geomath.Vector3D{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		lo.X, lo.Y, lo.Z = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z)
		hi.X, hi.Y, hi.Z = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z)
	}
	env := &Envelope{
		SrsDimension: "3",
		LowerCorner:  FormatPos(lo),
		UpperCorner:  FormatPos(hi),
	}
	if epsg != 0 {
		env.SrsName = fmt.Sprintf("EPSG:%d", epsg)
	}
	return env
}

// Write serializes the document to the writer.
func Write(model *CityModel, w io.Writer) error {
	if _, err := io.WriteString(w, xmlHeader); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("encode CityGML document: %w", err)
	}
	return enc.Flush()
}

// WriteFile serializes the document to a file; a .gz suffix enables gzip
// compression.
func WriteFile(model *CityModel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CityGML output: %w", err)
	}
	defer f.Close()
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	return Write(model, w)
}
