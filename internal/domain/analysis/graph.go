package analysis

import "strings"

// ProfileOwnerID is the reserved node id for the investigated profile.
// Exactly one node with this id exists in every graph.
const ProfileOwnerID = "profile_owner"

type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type Edge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Label   string `json:"label"`
	Context string `json:"context,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// OwnerNode builds the canonical profile-owner node.
func OwnerNode(label string) Node {
	if label == "" {
		label = "Profile Owner"
	}
	return Node{ID: ProfileOwnerID, Label: label, Type: "ProfileOwner"}
}

// NodeID derives a stable node id from a username and platform. Repeated runs
// against the same input always produce the same identity.
func NodeID(username, platform string) string {
	u := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		return u
	}
	return u + "_" + p
}

// EnsureOwner inserts the profile-owner node at the head if absent and
// collapses duplicates down to one.
func (g *Graph) EnsureOwner(label string) {
	var kept []Node
	found := false
	for _, n := range g.Nodes {
		if n.ID == ProfileOwnerID {
			if found {
				continue
			}
			found = true
		}
		kept = append(kept, n)
	}
	if !found {
		kept = append([]Node{OwnerNode(label)}, kept...)
	}
	g.Nodes = kept
}

// PruneEdges drops every edge whose endpoints are not current node ids and
// returns how many were dropped.
func (g *Graph) PruneEdges() int {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	kept := g.Edges[:0]
	dropped := 0
	for _, e := range g.Edges {
		if _, ok := ids[e.From]; !ok {
			dropped++
			continue
		}
		if _, ok := ids[e.To]; !ok {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	if kept == nil {
		kept = []Edge{}
	}
	g.Edges = kept
	return dropped
}

// GraphBuilder accumulates nodes and edges keyed by stable ids and reports
// how many edges were rejected for dangling endpoints.
type GraphBuilder struct {
	target  string
	order   []string
	nodes   map[string]Node
	edges   []Edge
	dropped int
}

// NewGraphBuilder starts a graph rooted at the target's profile-owner node.
func NewGraphBuilder(target string) *GraphBuilder {
	b := &GraphBuilder{
		target: target,
		nodes:  make(map[string]Node),
	}
	owner := OwnerNode(target)
	b.nodes[owner.ID] = owner
	b.order = append(b.order, owner.ID)
	return b
}

// AddUser registers a (username, platform) node and returns its id.
// Duplicate registrations are collapsed.
func (b *GraphBuilder) AddUser(username, platform string) string {
	id := NodeID(username, platform)
	if _, ok := b.nodes[id]; !ok {
		b.nodes[id] = Node{ID: id, Label: username, Type: "Person"}
		b.order = append(b.order, id)
	}
	return id
}

// AddNode registers an arbitrary typed node.
func (b *GraphBuilder) AddNode(id, label, typ string) string {
	if _, ok := b.nodes[id]; !ok {
		b.nodes[id] = Node{ID: id, Label: label, Type: typ}
		b.order = append(b.order, id)
	}
	return id
}

// Connect adds an edge between two registered nodes. Edges referencing
// unknown ids are dropped and counted, never silently kept.
func (b *GraphBuilder) Connect(from, to, label string) {
	if _, ok := b.nodes[from]; !ok {
		b.dropped++
		return
	}
	if _, ok := b.nodes[to]; !ok {
		b.dropped++
		return
	}
	b.edges = append(b.edges, Edge{From: from, To: to, Label: label})
}

// Dropped reports how many edges were rejected so far.
func (b *GraphBuilder) Dropped() int { return b.dropped }

// Build assembles the graph in insertion order.
func (b *GraphBuilder) Build() Graph {
	nodes := make([]Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id])
	}
	edges := b.edges
	if edges == nil {
		edges = []Edge{}
	}
	return Graph{Nodes: nodes, Edges: edges}
}
