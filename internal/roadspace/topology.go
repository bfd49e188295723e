package roadspace

import "fmt"

// LaneRef points at one lane of the model.
type LaneRef struct {
	RoadID       string
	SectionIndex int
	LaneID       int
}

// Successors resolves the lanes a lane flows into. For non-terminal sections
// the successors live in the next section of the same road; for the last
// section they are resolved through the road's successor link, possibly
// through a junction's connection tables. Connection-derived successors keep
// the junction's connection order.
func (m *Model) Successors(ref LaneRef) ([]LaneRef, error) {
	road, ok := m.roads[ref.RoadID]
	if !ok {
		return nil, fmt.Errorf("lane topology: unknown road %s", ref.RoadID)
	}
	if ref.SectionIndex < 0 || ref.SectionIndex >= len(road.Sections) {
		return nil, fmt.Errorf("lane topology: road %s has no section %d", ref.RoadID, ref.SectionIndex)
	}
	section := road.Sections[ref.SectionIndex]
	lane, ok := section.Lane(ref.LaneID)
	if !ok {
		return nil, fmt.Errorf("lane topology: road %s section %d has no lane %d", ref.RoadID, ref.SectionIndex, ref.LaneID)
	}

	// Within the road: linked ids point into the next section.
	if ref.SectionIndex+1 < len(road.Sections) {
		return refsInSection(ref.RoadID, ref.SectionIndex+1, lane.SuccessorIDs), nil
	}

	if road.Successor == nil {
		return nil, nil
	}
	switch road.Successor.Kind {
	case LinkToRoad:
		next, ok := m.roads[road.Successor.ElementID]
		if !ok {
			return nil, fmt.Errorf("lane topology: road %s links to missing road %s", ref.RoadID, road.Successor.ElementID)
		}
		sectionIndex := len(next.Sections) - 1
		if road.Successor.ContactPoint == ContactStart {
			sectionIndex = 0
		}
		return refsInSection(next.ID.RoadID, sectionIndex, lane.SuccessorIDs), nil
	case LinkToJunction:
		junction, ok := m.junctions[road.Successor.ElementID]
		if !ok {
			return nil, fmt.Errorf("lane topology: road %s links to missing junction %s", ref.RoadID, road.Successor.ElementID)
		}
		return m.junctionSuccessors(junction, ref), nil
	default:
		return nil, fmt.Errorf("lane topology: road %s has unknown successor kind", ref.RoadID)
	}
}

// junctionSuccessors walks the junction's connections with the given road as
// the incoming road and maps the lane through each link table.
func (m *Model) junctionSuccessors(junction *Junction, ref LaneRef) []LaneRef {
	var out []LaneRef
	for _, c := range junction.ConnectionsFrom(ref.RoadID) {
		to, ok := c.SuccessorLane(ref.LaneID)
		if !ok {
			continue
		}
		connecting, ok := m.roads[c.ConnectingRoad]
		if !ok {
			continue
		}
		sectionIndex := 0
		if c.ContactPoint == ContactEnd {
			sectionIndex = len(connecting.Sections) - 1
		}
		out = append(out, LaneRef{RoadID: c.ConnectingRoad, SectionIndex: sectionIndex, LaneID: to})
	}
	return out
}

// Predecessors resolves the lanes flowing into a lane, symmetrically to
// Successors.
func (m *Model) Predecessors(ref LaneRef) ([]LaneRef, error) {
	road, ok := m.roads[ref.RoadID]
	if !ok {
		return nil, fmt.Errorf("lane topology: unknown road %s", ref.RoadID)
	}
	if ref.SectionIndex < 0 || ref.SectionIndex >= len(road.Sections) {
		return nil, fmt.Errorf("lane topology: road %s has no section %d", ref.RoadID, ref.SectionIndex)
	}
	section := road.Sections[ref.SectionIndex]
	lane, ok := section.Lane(ref.LaneID)
	if !ok {
		return nil, fmt.Errorf("lane topology: road %s section %d has no lane %d", ref.RoadID, ref.SectionIndex, ref.LaneID)
	}

	if ref.SectionIndex > 0 {
		return refsInSection(ref.RoadID, ref.SectionIndex-1, lane.PredecessorIDs), nil
	}

	if road.Predecessor == nil {
		return nil, nil
	}
	switch road.Predecessor.Kind {
	case LinkToRoad:
		prev, ok := m.roads[road.Predecessor.ElementID]
		if !ok {
			return nil, fmt.Errorf("lane topology: road %s links to missing road %s", ref.RoadID, road.Predecessor.ElementID)
		}
		sectionIndex := len(prev.Sections) - 1
		if road.Predecessor.ContactPoint == ContactStart {
			sectionIndex = 0
		}
		return refsInSection(prev.ID.RoadID, sectionIndex, lane.PredecessorIDs), nil
	case LinkToJunction:
		junction, ok := m.junctions[road.Predecessor.ElementID]
		if !ok {
			return nil, fmt.Errorf("lane topology: road %s links to missing junction %s", ref.RoadID, road.Predecessor.ElementID)
		}
		return m.junctionSuccessors(junction, ref), nil
	default:
		return nil, fmt.Errorf("lane topology: road %s has unknown predecessor kind", ref.RoadID)
	}
}

func refsInSection(roadID string, sectionIndex int, laneIDs []int) []LaneRef {
	out := make([]LaneRef, 0, len(laneIDs))
	for _, id := range laneIDs {
		out = append(out, LaneRef{RoadID: roadID, SectionIndex: sectionIndex, LaneID: id})
	}
	return out
}
