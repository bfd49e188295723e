// Package citygml holds a pragmatic CityGML document model and its XML
// writer, covering the feature classes and geometry properties the
// conversion emits for CityGML 2.0 and 3.0.
package citygml

import "encoding/xml"

// Version selects the target CityGML release.
type Version int

const (
	// Version3 targets CityGML 3.0.
	Version3 Version = iota
	// Version2 targets CityGML 2.0.
	Version2
)

// Namespace URIs per version.
const (
	nsGML    = "http://www.opengis.net/gml"
	nsCore3  = "http://www.opengis.net/citygml/3.0"
	nsTrans3 = "http://www.opengis.net/citygml/transportation/3.0"
	nsBldg3  = "http://www.opengis.net/citygml/building/3.0"
	nsFurn3  = "http://www.opengis.net/citygml/cityfurniture/3.0"
	nsVeg3   = "http://www.opengis.net/citygml/vegetation/3.0"
	nsGen3   = "http://www.opengis.net/citygml/generics/3.0"
	nsCore2  = "http://www.opengis.net/citygml/2.0"
	nsTrans2 = "http://www.opengis.net/citygml/transportation/2.0"
	nsBldg2  = "http://www.opengis.net/citygml/building/2.0"
	nsFurn2  = "http://www.opengis.net/citygml/cityfurniture/2.0"
	nsVeg2   = "http://www.opengis.net/citygml/vegetation/2.0"
	nsGen2   = "http://www.opengis.net/citygml/generics/2.0"
	nsXLink  = "http://www.w3.org/1999/xlink"
)

// Point is a gml:Point with a single coordinate triple.
type Point struct {
	ID  string `xml:"gml:id,attr,omitempty"`
	Pos string `xml:"gml:pos"`
}

// LinearRing is a closed gml:LinearRing position list.
type LinearRing struct {
	ID      string `xml:"gml:id,attr,omitempty"`
	PosList string `xml:"gml:posList"`
}

// Polygon is a gml:Polygon with an exterior ring.
type Polygon struct {
	ID       string     `xml:"gml:id,attr,omitempty"`
	Exterior LinearRing `xml:"gml:exterior>gml:LinearRing"`
}

// SurfaceMember wraps one polygon of a composite or multi surface.
type SurfaceMember struct {
	Polygon Polygon `xml:"gml:Polygon"`
}

// Solid is a gml:Solid bounded by an exterior composite surface.
type Solid struct {
	ID      string          `xml:"gml:id,attr,omitempty"`
	Members []SurfaceMember `xml:"gml:exterior>gml:CompositeSurface>gml:surfaceMember"`
}

// MultiSurface is a gml:MultiSurface of polygons.
type MultiSurface struct {
	ID      string          `xml:"gml:id,attr,omitempty"`
	Members []SurfaceMember `xml:"gml:surfaceMember"`
}

// LineString is a gml:LineString position list.
type LineString struct {
	ID      string `xml:"gml:id,attr,omitempty"`
	PosList string `xml:"gml:posList"`
}

// StringAttribute is a gen:stringAttribute name/value pair.
type StringAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"gen:value"`
}

// XLink is an xlink:href reference to another feature.
type XLink struct {
	Href string `xml:"xlink:href,attr"`
}

// BoundarySurface is a bounded thematic surface attached to a feature, used
// for filler surfaces and face cutouts.
type BoundarySurface struct {
	XMLName      xml.Name
	ID           string        `xml:"gml:id,attr"`
	Name         string        `xml:"gml:name,omitempty"`
	MultiSurface *MultiSurface `xml:"core:lod2MultiSurface>gml:MultiSurface,omitempty"`
}

// BoundaryProperty wraps a boundary surface member.
type BoundaryProperty struct {
	Surface BoundarySurface
}

// MarshalXML emits the wrapped surface under a core:boundary element.
func (b BoundaryProperty) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "core:boundary"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Surface); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// Feature is one emitted city object. XMLName carries the feature class
// element (for example trans:TrafficSpace); unset geometry properties are
// omitted.
type Feature struct {
	XMLName xml.Name
	ID      string `xml:"gml:id,attr"`
	Name    string `xml:"gml:name,omitempty"`

	Attributes []StringAttribute `xml:"gen:stringAttribute,omitempty"`

	Lod0Point        *Point        `xml:"core:lod0Point>gml:Point,omitempty"`
	Lod1Solid        *Solid        `xml:"core:lod1Solid>gml:Solid,omitempty"`
	Lod2Solid        *Solid        `xml:"core:lod2Solid>gml:Solid,omitempty"`
	Lod2MultiSurface *MultiSurface `xml:"core:lod2MultiSurface>gml:MultiSurface,omitempty"`
	Lod2Curve        *LineString   `xml:"core:lod2Curve>gml:LineString,omitempty"`
	Lod3Solid        *Solid        `xml:"core:lod3Solid>gml:Solid,omitempty"`
	Lod3MultiSurface *MultiSurface `xml:"core:lod3MultiSurface>gml:MultiSurface,omitempty"`
	Lod3Curve        *LineString   `xml:"core:lod3Curve>gml:LineString,omitempty"`

	Boundaries []BoundaryProperty `xml:",omitempty"`

	Predecessors []XLink `xml:"trans:predecessor,omitempty"`
	Successors   []XLink `xml:"trans:successor,omitempty"`
}

// Member wraps one feature as a cityObjectMember.
type Member struct {
	Feature *Feature
}

// MarshalXML emits the wrapped feature under a core:cityObjectMember.
func (m Member) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "core:cityObjectMember"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(m.Feature); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// Envelope is the gml:Envelope of the dataset.
type Envelope struct {
	SrsName      string `xml:"srsName,attr,omitempty"`
	SrsDimension string `xml:"srsDimension,attr,omitempty"`
	LowerCorner  string `xml:"gml:lowerCorner"`
	UpperCorner  string `xml:"gml:upperCorner"`
}

// CityModel is the document root.
type CityModel struct {
	XMLName xml.Name `xml:"core:CityModel"`

	GML   string `xml:"xmlns:gml,attr"`
	Core  string `xml:"xmlns:core,attr"`
	Trans string `xml:"xmlns:trans,attr"`
	Bldg  string `xml:"xmlns:bldg,attr"`
	Frn   string `xml:"xmlns:frn,attr"`
	Veg   string `xml:"xmlns:veg,attr"`
	Gen   string `xml:"xmlns:gen,attr"`
	XLink string `xml:"xmlns:xlink,attr"`

	Envelope *Envelope `xml:"gml:boundedBy>gml:Envelope,omitempty"`
	Members  []Member
}

// NewCityModel creates a document root with the namespaces of the version.
func NewCityModel(version Version) *CityModel {
	m := &CityModel{GML: nsGML, XLink: nsXLink}
	switch version {
	case Version2:
		m.Core, m.Trans, m.Bldg, m.Frn, m.Veg, m.Gen = nsCore2, nsTrans2, nsBldg2, nsFurn2, nsVeg2, nsGen2
	default:
		m.Core, m.Trans, m.Bldg, m.Frn, m.Veg, m.Gen = nsCore3, nsTrans3, nsBldg3, nsFurn3, nsVeg3, nsGen3
	}
	return m
}
