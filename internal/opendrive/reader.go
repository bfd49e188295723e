package opendrive

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrUnsupportedVersion is wrapped when the dataset declares an OpenDRIVE
// version no reader exists for.
var ErrUnsupportedVersion = fmt.Errorf("unsupported OpenDRIVE version")

// Supported OpenDRIVE revisions (1.1 through 1.8).
const (
	supportedMajor     = 1
	supportedMinorLow  = 1
	supportedMinorHigh = 8
)

// xmlOpenDrive mirrors the subset of the OpenDRIVE schema the model keeps.
type xmlOpenDrive struct {
	XMLName   xml.Name      `xml:"OpenDRIVE"`
	Header    xmlHeader     `xml:"header"`
	Roads     []xmlRoad     `xml:"road"`
	Junctions []xmlJunction `xml:"junction"`
}

type xmlHeader struct {
	RevMajor     int     `xml:"revMajor,attr"`
	RevMinor     int     `xml:"revMinor,attr"`
	Name         string  `xml:"name,attr"`
	North        float64 `xml:"north,attr"`
	South        float64 `xml:"south,attr"`
	East         float64 `xml:"east,attr"`
	West         float64 `xml:"west,attr"`
	GeoReference string  `xml:"geoReference"`
}

type xmlRoad struct {
	ID       string  `xml:"id,attr"`
	Name     string  `xml:"name,attr"`
	Length   float64 `xml:"length,attr"`
	Junction string  `xml:"junction,attr"`
	Link     *struct {
		Predecessor *xmlRoadLink `xml:"predecessor"`
		Successor   *xmlRoadLink `xml:"successor"`
	} `xml:"link"`
	PlanView struct {
		Geometries []xmlGeometry `xml:"geometry"`
	} `xml:"planView"`
	ElevationProfile struct {
		Elevations []xmlPoly `xml:"elevation"`
	} `xml:"elevationProfile"`
	LateralProfile struct {
		Superelevations []xmlPoly  `xml:"superelevation"`
		Shapes          []xmlShape `xml:"shape"`
	} `xml:"lateralProfile"`
	Lanes struct {
		LaneOffsets []xmlPoly        `xml:"laneOffset"`
		Sections    []xmlLaneSection `xml:"laneSection"`
	} `xml:"lanes"`
	Objects struct {
		Objects []xmlObject `xml:"object"`
	} `xml:"objects"`
}

type xmlRoadLink struct {
	ElementType  string `xml:"elementType,attr"`
	ElementID    string `xml:"elementId,attr"`
	ContactPoint string `xml:"contactPoint,attr"`
}

type xmlGeometry struct {
	S      float64   `xml:"s,attr"`
	X      float64   `xml:"x,attr"`
	Y      float64   `xml:"y,attr"`
	Hdg    float64   `xml:"hdg,attr"`
	Length float64   `xml:"length,attr"`
	Line   *struct{} `xml:"line"`
	Spiral *struct {
		CurvStart float64 `xml:"curvStart,attr"`
		CurvEnd   float64 `xml:"curvEnd,attr"`
	} `xml:"spiral"`
	Arc *struct {
		Curvature float64 `xml:"curvature,attr"`
	} `xml:"arc"`
	Poly3 *struct {
		A float64 `xml:"a,attr"`
		B float64 `xml:"b,attr"`
		C float64 `xml:"c,attr"`
		D float64 `xml:"d,attr"`
	} `xml:"poly3"`
	ParamPoly3 *struct {
		AU     float64 `xml:"aU,attr"`
		BU     float64 `xml:"bU,attr"`
		CU     float64 `xml:"cU,attr"`
		DU     float64 `xml:"dU,attr"`
		AV     float64 `xml:"aV,attr"`
		BV     float64 `xml:"bV,attr"`
		CV     float64 `xml:"cV,attr"`
		DV     float64 `xml:"dV,attr"`
		PRange string  `xml:"pRange,attr"`
	} `xml:"paramPoly3"`
}

type xmlPoly struct {
	S float64 `xml:"s,attr"`
	A float64 `xml:"a,attr"`
	B float64 `xml:"b,attr"`
	C float64 `xml:"c,attr"`
	D float64 `xml:"d,attr"`
}

type xmlShape struct {
	S float64 `xml:"s,attr"`
	T float64 `xml:"t,attr"`
	A float64 `xml:"a,attr"`
	B float64 `xml:"b,attr"`
	C float64 `xml:"c,attr"`
	D float64 `xml:"d,attr"`
}

type xmlLaneSection struct {
	S    float64 `xml:"s,attr"`
	Left *struct {
		Lanes []xmlLane `xml:"lane"`
	} `xml:"left"`
	Center *struct {
		Lanes []xmlLane `xml:"lane"`
	} `xml:"center"`
	Right *struct {
		Lanes []xmlLane `xml:"lane"`
	} `xml:"right"`
}

type xmlLane struct {
	ID    int    `xml:"id,attr"`
	Type  string `xml:"type,attr"`
	Level string `xml:"level,attr"`
	Link  *struct {
		Predecessors []struct {
			ID int `xml:"id,attr"`
		} `xml:"predecessor"`
		Successors []struct {
			ID int `xml:"id,attr"`
		} `xml:"successor"`
	} `xml:"link"`
	Widths []struct {
		SOffset float64 `xml:"sOffset,attr"`
		A       float64 `xml:"a,attr"`
		B       float64 `xml:"b,attr"`
		C       float64 `xml:"c,attr"`
		D       float64 `xml:"d,attr"`
	} `xml:"width"`
	Heights []struct {
		SOffset float64 `xml:"sOffset,attr"`
		Inner   float64 `xml:"inner,attr"`
		Outer   float64 `xml:"outer,attr"`
	} `xml:"height"`
	RoadMarks []struct {
		SOffset float64 `xml:"sOffset,attr"`
		Type    string  `xml:"type,attr"`
		Color   string  `xml:"color,attr"`
		Width   float64 `xml:"width,attr"`
	} `xml:"roadMark"`
	Materials []struct {
		SOffset  float64 `xml:"sOffset,attr"`
		Surface  string  `xml:"surface,attr"`
		Friction float64 `xml:"friction,attr"`
	} `xml:"material"`
	Speeds []struct {
		SOffset float64 `xml:"sOffset,attr"`
		Max     float64 `xml:"max,attr"`
		Unit    string  `xml:"unit,attr"`
	} `xml:"speed"`
	Accesses []struct {
		SOffset     float64 `xml:"sOffset,attr"`
		Rule        string  `xml:"rule,attr"`
		Restriction string  `xml:"restriction,attr"`
	} `xml:"access"`
	Rules []struct {
		SOffset float64 `xml:"sOffset,attr"`
		Value   string  `xml:"value,attr"`
	} `xml:"rule"`
}

type xmlObject struct {
	ID          string  `xml:"id,attr"`
	Name        string  `xml:"name,attr"`
	Type        string  `xml:"type,attr"`
	S           float64 `xml:"s,attr"`
	T           float64 `xml:"t,attr"`
	ZOffset     float64 `xml:"zOffset,attr"`
	Hdg         float64 `xml:"hdg,attr"`
	Pitch       float64 `xml:"pitch,attr"`
	Roll        float64 `xml:"roll,attr"`
	Length      float64 `xml:"length,attr"`
	Width       float64 `xml:"width,attr"`
	Height      float64 `xml:"height,attr"`
	Radius      float64 `xml:"radius,attr"`
	Orientation string  `xml:"orientation,attr"`
	Outlines    struct {
		Outlines []xmlOutline `xml:"outline"`
	} `xml:"outlines"`
	Outline *xmlOutline `xml:"outline"`
	Repeats []struct {
		S            float64 `xml:"s,attr"`
		Length       float64 `xml:"length,attr"`
		Distance     float64 `xml:"distance,attr"`
		TStart       float64 `xml:"tStart,attr"`
		TEnd         float64 `xml:"tEnd,attr"`
		HeightStart  float64 `xml:"heightStart,attr"`
		HeightEnd    float64 `xml:"heightEnd,attr"`
		ZOffsetStart float64 `xml:"zOffsetStart,attr"`
		ZOffsetEnd   float64 `xml:"zOffsetEnd,attr"`
		WidthStart   float64 `xml:"widthStart,attr"`
		WidthEnd     float64 `xml:"widthEnd,attr"`
		RadiusStart  float64 `xml:"radiusStart,attr"`
		RadiusEnd    float64 `xml:"radiusEnd,attr"`
		LengthStart  float64 `xml:"lengthStart,attr"`
		LengthEnd    float64 `xml:"lengthEnd,attr"`
	} `xml:"repeat"`
}

type xmlOutline struct {
	ID          int `xml:"id,attr"`
	CornerRoads []struct {
		S      float64 `xml:"s,attr"`
		T      float64 `xml:"t,attr"`
		DZ     float64 `xml:"dz,attr"`
		Height float64 `xml:"height,attr"`
	} `xml:"cornerRoad"`
	CornerLocals []struct {
		U      float64 `xml:"u,attr"`
		V      float64 `xml:"v,attr"`
		Z      float64 `xml:"z,attr"`
		Height float64 `xml:"height,attr"`
	} `xml:"cornerLocal"`
}

type xmlJunction struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Connections []struct {
		ID             string `xml:"id,attr"`
		IncomingRoad   string `xml:"incomingRoad,attr"`
		ConnectingRoad string `xml:"connectingRoad,attr"`
		ContactPoint   string `xml:"contactPoint,attr"`
		LaneLinks      []struct {
			From int `xml:"from,attr"`
			To   int `xml:"to,attr"`
		} `xml:"laneLink"`
	} `xml:"connection"`
}

// ReadFile parses an OpenDRIVE dataset from the given path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OpenDRIVE dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses an OpenDRIVE dataset from the reader. The declared version
// must be a supported 1.x revision.
func Read(r io.Reader) (*Model, error) {
	var doc xmlOpenDrive
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OpenDRIVE XML: %w", err)
	}
	if doc.Header.RevMajor != supportedMajor ||
		doc.Header.RevMinor < supportedMinorLow || doc.Header.RevMinor > supportedMinorHigh {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, doc.Header.RevMajor, doc.Header.RevMinor)
	}
	return convertDocument(&doc), nil
}

func convertDocument(doc *xmlOpenDrive) *Model {
	m := &Model{
		Header: Header{
			RevMajor:     doc.Header.RevMajor,
			RevMinor:     doc.Header.RevMinor,
			Name:         doc.Header.Name,
			North:        doc.Header.North,
			South:        doc.Header.South,
			East:         doc.Header.East,
			West:         doc.Header.West,
			GeoReference: doc.Header.GeoReference,
		},
	}
	for _, xr := range doc.Roads {
		m.Roads = append(m.Roads, convertRoad(xr))
	}
	for _, xj := range doc.Junctions {
		j := Junction{ID: xj.ID, Name: xj.Name}
		for _, xc := range xj.Connections {
			c := Connection{
				ID:             xc.ID,
				IncomingRoad:   xc.IncomingRoad,
				ConnectingRoad: xc.ConnectingRoad,
				ContactPoint:   ContactPoint(xc.ContactPoint),
			}
			for _, ll := range xc.LaneLinks {
				c.LaneLinks = append(c.LaneLinks, LaneLink{From: ll.From, To: ll.To})
			}
			j.Connections = append(j.Connections, c)
		}
		m.Junctions = append(m.Junctions, j)
	}
	return m
}

func convertRoad(xr xmlRoad) Road {
	r := Road{
		ID:         xr.ID,
		Name:       xr.Name,
		Length:     xr.Length,
		JunctionID: xr.Junction,
	}
	if r.JunctionID == "" {
		r.JunctionID = "-1"
	}
	if xr.Link != nil {
		r.Link.Predecessor = convertRoadLink(xr.Link.Predecessor)
		r.Link.Successor = convertRoadLink(xr.Link.Successor)
	}
	for _, g := range xr.PlanView.Geometries {
		r.PlanView = append(r.PlanView, convertGeometry(g))
	}
	for _, e := range xr.ElevationProfile.Elevations {
		r.Elevations = append(r.Elevations, ElevationRecord{S: e.S, A: e.A, B: e.B, C: e.C, D: e.D})
	}
	for _, e := range xr.LateralProfile.Superelevations {
		r.Lateral.Superelevations = append(r.Lateral.Superelevations, ElevationRecord{S: e.S, A: e.A, B: e.B, C: e.C, D: e.D})
	}
	for _, sh := range xr.LateralProfile.Shapes {
		r.Lateral.Shapes = append(r.Lateral.Shapes, ShapeRecord{S: sh.S, T: sh.T, A: sh.A, B: sh.B, C: sh.C, D: sh.D})
	}
	for _, lo := range xr.Lanes.LaneOffsets {
		r.Lanes.LaneOffsets = append(r.Lanes.LaneOffsets, LaneOffset{S: lo.S, A: lo.A, B: lo.B, C: lo.C, D: lo.D})
	}
	for _, xs := range xr.Lanes.Sections {
		s := LaneSection{S: xs.S}
		if xs.Left != nil {
			for _, l := range xs.Left.Lanes {
				s.Left = append(s.Left, convertLane(l))
			}
		}
		if xs.Center != nil {
			for _, l := range xs.Center.Lanes {
				s.Center = append(s.Center, convertLane(l))
			}
		}
		if xs.Right != nil {
			for _, l := range xs.Right.Lanes {
				s.Right = append(s.Right, convertLane(l))
			}
		}
		r.Lanes.Sections = append(r.Lanes.Sections, s)
	}
	for _, o := range xr.Objects.Objects {
		r.Objects = append(r.Objects, convertObject(o))
	}
	return r
}

func convertRoadLink(x *xmlRoadLink) *RoadLinkTarget {
	if x == nil {
		return nil
	}
	return &RoadLinkTarget{
		ElementType:  ElementType(x.ElementType),
		ElementID:    x.ElementID,
		ContactPoint: ContactPoint(x.ContactPoint),
	}
}

func convertGeometry(g xmlGeometry) PlanViewGeometry {
	out := PlanViewGeometry{S: g.S, X: g.X, Y: g.Y, Hdg: g.Hdg, Length: g.Length, Kind: KindLine}
	switch {
	case g.Arc != nil:
		out.Kind = KindArc
		out.Curvature = g.Arc.Curvature
	case g.Spiral != nil:
		out.Kind = KindSpiral
		out.CurvStart = g.Spiral.CurvStart
		out.CurvEnd = g.Spiral.CurvEnd
	case g.Poly3 != nil:
		out.Kind = KindPoly3
		out.Poly3 = [4]float64{g.Poly3.A, g.Poly3.B, g.Poly3.C, g.Poly3.D}
	case g.ParamPoly3 != nil:
		out.Kind = KindParamPoly3
		out.ParamPolyU = [4]float64{g.ParamPoly3.AU, g.ParamPoly3.BU, g.ParamPoly3.CU, g.ParamPoly3.DU}
		out.ParamPolyV = [4]float64{g.ParamPoly3.AV, g.ParamPoly3.BV, g.ParamPoly3.CV, g.ParamPoly3.DV}
		out.ParamRange = PRange(g.ParamPoly3.PRange)
		if out.ParamRange == "" {
			out.ParamRange = PRangeNormalized
		}
	}
	return out
}

func convertLane(x xmlLane) Lane {
	l := Lane{ID: x.ID, Type: x.Type, Level: x.Level == "true"}
	if x.Link != nil {
		for _, p := range x.Link.Predecessors {
			l.Predecessors = append(l.Predecessors, p.ID)
		}
		for _, s := range x.Link.Successors {
			l.Successors = append(l.Successors, s.ID)
		}
	}
	for _, w := range x.Widths {
		l.Widths = append(l.Widths, Poly3Record{SOffset: w.SOffset, A: w.A, B: w.B, C: w.C, D: w.D})
	}
	for _, h := range x.Heights {
		l.Heights = append(l.Heights, HeightRecord{SOffset: h.SOffset, Inner: h.Inner, Outer: h.Outer})
	}
	for _, rm := range x.RoadMarks {
		l.RoadMarks = append(l.RoadMarks, RoadMark{SOffset: rm.SOffset, Type: rm.Type, Color: rm.Color, Width: rm.Width})
	}
	for _, ma := range x.Materials {
		l.Materials = append(l.Materials, Material{SOffset: ma.SOffset, Surface: ma.Surface, Friction: ma.Friction})
	}
	for _, sp := range x.Speeds {
		l.Speeds = append(l.Speeds, Speed{SOffset: sp.SOffset, Max: sp.Max, Unit: sp.Unit})
	}
	for _, ac := range x.Accesses {
		l.Accesses = append(l.Accesses, Access{SOffset: ac.SOffset, Rule: ac.Rule, Restriction: ac.Restriction})
	}
	for _, ru := range x.Rules {
		l.Rules = append(l.Rules, Rule{SOffset: ru.SOffset, Value: ru.Value})
	}
	return l
}

func convertObject(x xmlObject) Object {
	o := Object{
		ID: x.ID, Name: x.Name, Type: x.Type,
		S: x.S, T: x.T, ZOffset: x.ZOffset,
		Hdg: x.Hdg, Pitch: x.Pitch, Roll: x.Roll,
		Length: x.Length, Width: x.Width, Height: x.Height,
		Radius:      x.Radius,
		Orientation: x.Orientation,
	}
	outlines := x.Outlines.Outlines
	if x.Outline != nil {
		outlines = append(outlines, *x.Outline)
	}
	for _, xo := range outlines {
		out := Outline{ID: xo.ID}
		for _, c := range xo.CornerRoads {
			out.CornersRoad = append(out.CornersRoad, CornerRoad{S: c.S, T: c.T, DZ: c.DZ, Height: c.Height})
		}
		for _, c := range xo.CornerLocals {
			out.CornersLocal = append(out.CornersLocal, CornerLocal{U: c.U, V: c.V, Z: c.Z, Height: c.Height})
		}
		o.Outlines = append(o.Outlines, out)
	}
	for _, rp := range x.Repeats {
		o.Repeats = append(o.Repeats, Repeat{
			S: rp.S, Length: rp.Length, Distance: rp.Distance,
			TStart: rp.TStart, TEnd: rp.TEnd,
			HeightStart: rp.HeightStart, HeightEnd: rp.HeightEnd,
			ZOffsetStart: rp.ZOffsetStart, ZOffsetEnd: rp.ZOffsetEnd,
			WidthStart: rp.WidthStart, WidthEnd: rp.WidthEnd,
			RadiusStart: rp.RadiusStart, RadiusEnd: rp.RadiusEnd,
			LengthStart: rp.LengthStart, LengthEnd: rp.LengthEnd,
		})
	}
	return o
}

// versionProbe reads only the revision attributes of the header element.
type versionProbe struct {
	XMLName xml.Name `xml:"OpenDRIVE"`
	Header  struct {
		RevMajor string `xml:"revMajor,attr"`
		RevMinor string `xml:"revMinor,attr"`
	} `xml:"header"`
}

// SniffVersion reports the declared OpenDRIVE revision of a file without
// building the model.
func SniffVersion(path string) (major, minor int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	var probe versionProbe
	if err := xml.Unmarshal(data, &probe); err != nil {
		return 0, 0, fmt.Errorf("malformed OpenDRIVE header: %w", err)
	}
	major, err = strconv.Atoi(probe.Header.RevMajor)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed revMajor %q", probe.Header.RevMajor)
	}
	minor, err = strconv.Atoi(probe.Header.RevMinor)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed revMinor %q", probe.Header.RevMinor)
	}
	return major, minor, nil
}
