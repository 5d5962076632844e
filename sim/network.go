// Package sim is a small discrete-event mobility simulation used to run the
// passenger engine end to end: passengers depart, taxis drive over a
// weighted network and the engine reconciles them at the pickup links.
package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kilianp07/drt/core/model"
)

// LinkDef is a directed link between two nodes.
type LinkDef struct {
	ID         string  `yaml:"id" json:"id"`
	From       string  `yaml:"from" json:"from"`
	To         string  `yaml:"to" json:"to"`
	TravelTime float64 `yaml:"travel_time" json:"travel_time"`
}

// NodeDef places a node for locating facilities by coordinates.
type NodeDef struct {
	ID string  `yaml:"id" json:"id"`
	X  float64 `yaml:"x" json:"x"`
	Y  float64 `yaml:"y" json:"y"`
}

// Network answers travel time queries between links. Moving from link a to
// link b means leaving a at its end node, driving to the start node of b and
// traversing b.
type Network struct {
	links      map[model.LinkID]LinkDef
	nodes      map[string]int64
	facilities map[string]model.Facility
	coords     map[string]NodeDef
	g          *simple.WeightedDirectedGraph
	trees      map[int64]path.Shortest
}

// NewNetwork builds the graph of links. Parallel links keep the fastest
// travel time between their nodes.
func NewNetwork(links []LinkDef, nodes []NodeDef, facilities []model.Facility) (*Network, error) {
	n := &Network{
		links:      make(map[model.LinkID]LinkDef, len(links)),
		coords:     make(map[string]NodeDef, len(nodes)),
		nodes:      make(map[string]int64),
		facilities: make(map[string]model.Facility, len(facilities)),
		g:          simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		trees:      make(map[int64]path.Shortest),
	}
	for _, l := range links {
		if l.ID == "" || l.From == "" || l.To == "" {
			return nil, fmt.Errorf("link %q: id, from and to are required", l.ID)
		}
		if l.TravelTime < 0 {
			return nil, fmt.Errorf("link %s: negative travel time", l.ID)
		}
		if _, dup := n.links[model.LinkID(l.ID)]; dup {
			return nil, fmt.Errorf("duplicate link %s", l.ID)
		}
		n.links[model.LinkID(l.ID)] = l
		u, v := n.node(l.From), n.node(l.To)
		if u == v {
			continue
		}
		if e := n.g.WeightedEdge(u, v); e != nil && e.Weight() <= l.TravelTime {
			continue
		}
		n.g.SetWeightedEdge(n.g.NewWeightedEdge(simple.Node(u), simple.Node(v), l.TravelTime))
	}
	for _, nd := range nodes {
		n.coords[nd.ID] = nd
	}
	for _, f := range facilities {
		if f.LinkID != "" && !n.HasLink(f.LinkID) {
			return nil, fmt.Errorf("facility %s: unknown link %s", f.ID, f.LinkID)
		}
		n.facilities[f.ID] = f
	}
	return n, nil
}

func (n *Network) node(name string) int64 {
	id, ok := n.nodes[name]
	if !ok {
		id = int64(len(n.nodes))
		n.nodes[name] = id
		n.g.AddNode(simple.Node(id))
	}
	return id
}

// HasLink reports whether id is a link of the network.
func (n *Network) HasLink(id model.LinkID) bool {
	_, ok := n.links[id]
	return ok
}

// TravelTime returns the fastest time from the end of link from to the end
// of link to. It is false when to cannot be reached.
func (n *Network) TravelTime(from, to model.LinkID) (float64, bool) {
	if from == to {
		return 0, n.HasLink(from)
	}
	a, okA := n.links[from]
	b, okB := n.links[to]
	if !okA || !okB {
		return 0, false
	}
	src, dst := n.nodes[a.To], n.nodes[b.From]
	if src == dst {
		return b.TravelTime, true
	}
	tree, ok := n.trees[src]
	if !ok {
		tree = path.DijkstraFrom(simple.Node(src), n.g)
		n.trees[src] = tree
	}
	w := tree.WeightTo(dst)
	if math.IsInf(w, 1) {
		return 0, false
	}
	return w + b.TravelTime, true
}

// DecideOnLink returns the link a facility is accessed from: its own link,
// the link of the declared facility with the same id, or the link whose end
// node is nearest to the facility coordinates.
func (n *Network) DecideOnLink(f model.Facility) (model.LinkID, bool) {
	if f.LinkID != "" {
		return f.LinkID, n.HasLink(f.LinkID)
	}
	if known, ok := n.facilities[f.ID]; ok {
		if known.LinkID != "" {
			return known.LinkID, true
		}
		f = known
	}
	if len(n.coords) == 0 || (f.X == 0 && f.Y == 0) {
		return "", false
	}
	var (
		best     model.LinkID
		bestDist = math.Inf(1)
	)
	for id, l := range n.links {
		nd, ok := n.coords[l.To]
		if !ok {
			continue
		}
		d := math.Hypot(nd.X-f.X, nd.Y-f.Y)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

// Facility returns a facility declared in the scenario.
func (n *Network) Facility(id string) (model.Facility, bool) {
	f, ok := n.facilities[id]
	return f, ok
}
