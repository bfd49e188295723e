package citygml

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/tum-gis/rtron-sub004/internal/geomath"
)

func TestFormatPosList(t *testing.T) {
	got := FormatPosList([]geomath.Vector3D{{X: 1, Y: 2, Z: 3}, {X: 4.5, Y: 0, Z: -1}})
	want := "1.00000000 2.00000000 3.00000000 4.50000000 0.00000000 -1.00000000"
	if got != want {
		t.Errorf("posList = %q, want %q", got, want)
	}
}

func TestComputeEnvelope(t *testing.T) {
	env := ComputeEnvelope([]geomath.Vector3D{{X: 1, Y: 5, Z: 0}, {X: -2, Y: 3, Z: 7}}, 25832)
	if env == nil {
		t.Fatal("nil envelope")
	}
	if env.SrsName != "EPSG:25832" {
		t.Errorf("srsName = %q", env.SrsName)
	}
	if !strings.HasPrefix(env.LowerCorner, "-2.0") {
		t.Errorf("lower corner = %q", env.LowerCorner)
	}
	if ComputeEnvelope(nil, 0) != nil {
		t.Error("empty point set must yield nil envelope")
	}
}

func TestWrite_ProducesParseableXML(t *testing.T) {
	model := NewCityModel(Version3)
	model.Envelope = ComputeEnvelope([]geomath.Vector3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}, 0)
	model.Members = append(model.Members, Member{Feature: &Feature{
		XMLName: xml.Name{Local: "trans:TrafficSpace"},
		ID:      "UUID_1",
		Name:    "Lane_1",
		Lod2MultiSurface: &MultiSurface{
			Members: []SurfaceMember{{Polygon: Polygon{
				Exterior: LinearRing{PosList: "0 0 0 1 0 0 1 1 0 0 0 0"},
			}}},
		},
	}})

	var buf bytes.Buffer
	if err := Write(model, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("missing XML declaration")
	}
	for _, fragment := range []string{
		"core:CityModel", "core:cityObjectMember", "trans:TrafficSpace",
		`gml:id="UUID_1"`, "gml:posList", "gml:boundedBy",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}

	// The document must remain well-formed XML.
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			t.Fatalf("output is not well-formed: %v", err)
		}
	}
}

func TestNewCityModel_Namespaces(t *testing.T) {
	v3 := NewCityModel(Version3)
	if !strings.Contains(v3.Core, "/3.0") {
		t.Errorf("v3 core namespace = %q", v3.Core)
	}
	v2 := NewCityModel(Version2)
	if !strings.Contains(v2.Core, "/2.0") {
		t.Errorf("v2 core namespace = %q", v2.Core)
	}
}
