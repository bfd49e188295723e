package roadspace

import (
	"fmt"
	"sort"
)

// Header carries dataset-level metadata of a road-space model.
type Header struct {
	Name string
	// EPSG is the coordinate reference system code; zero if unknown.
	EPSG int
	// Offset translates all output coordinates.
	Offset [3]float64
}

// Model owns the arenas of roads and junctions. Cross-references between
// them are stored as string keys and resolved through the model, never as
// direct object links.
type Model struct {
	Name   string
	Header Header

	roads     map[string]*Roadspace
	roadOrder []string

	junctions     map[string]*Junction
	junctionOrder []string
}

// NewModel creates an empty model.
func NewModel(name string, header Header) *Model {
	return &Model{
		Name:      name,
		Header:    header,
		roads:     map[string]*Roadspace{},
		junctions: map[string]*Junction{},
	}
}

// AddRoadspace registers a road. Fails on duplicate ids.
func (m *Model) AddRoadspace(r *Roadspace) error {
	if _, exists := m.roads[r.ID.RoadID]; exists {
		return fmt.Errorf("duplicate roadspace id %s", r.ID.RoadID)
	}
	m.roads[r.ID.RoadID] = r
	m.roadOrder = append(m.roadOrder, r.ID.RoadID)
	return nil
}

// AddJunction registers a junction. Fails on duplicate ids.
func (m *Model) AddJunction(j *Junction) error {
	if _, exists := m.junctions[j.ID.JunctionID]; exists {
		return fmt.Errorf("duplicate junction id %s", j.ID.JunctionID)
	}
	m.junctions[j.ID.JunctionID] = j
	m.junctionOrder = append(m.junctionOrder, j.ID.JunctionID)
	return nil
}

// Roadspace returns the road with the given id.
func (m *Model) Roadspace(id string) (*Roadspace, bool) {
	r, ok := m.roads[id]
	return r, ok
}

// Junction returns the junction with the given id.
func (m *Model) Junction(id string) (*Junction, bool) {
	j, ok := m.junctions[id]
	return j, ok
}

// Roadspaces returns all roads in insertion order.
func (m *Model) Roadspaces() []*Roadspace {
	out := make([]*Roadspace, 0, len(m.roadOrder))
	for _, id := range m.roadOrder {
		out = append(out, m.roads[id])
	}
	return out
}

// Junctions returns all junctions in insertion order.
func (m *Model) Junctions() []*Junction {
	out := make([]*Junction, 0, len(m.junctionOrder))
	for _, id := range m.junctionOrder {
		out = append(out, m.junctions[id])
	}
	return out
}

// SortedLaneIDs returns every lane identifier of the model ordered by hash
// key; the order is stable across runs on identical input.
func (m *Model) SortedLaneIDs() []LaneID {
	var ids []LaneID
	for _, r := range m.Roadspaces() {
		for _, s := range r.Sections {
			for _, l := range s.Lanes() {
				ids = append(ids, l.ID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].HashKey() < ids[j].HashKey() })
	return ids
}
