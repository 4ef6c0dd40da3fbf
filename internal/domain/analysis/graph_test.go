package analysis

import "testing"

func TestNodeID(t *testing.T) {
	cases := []struct {
		username, platform, want string
	}{
		{"Alice", "Instagram", "alice_instagram"},
		{"@Bob", "X", "bob_x"},
		{"carol", "", "carol"},
	}
	for _, tc := range cases {
		if got := NodeID(tc.username, tc.platform); got != tc.want {
			t.Errorf("NodeID(%q, %q) = %q, want %q", tc.username, tc.platform, got, tc.want)
		}
	}
}

func TestEnsureOwnerInsertsAtHead(t *testing.T) {
	g := Graph{Nodes: []Node{{ID: "bob_x", Label: "Bob", Type: "Person"}}}
	g.EnsureOwner("alice")
	if len(g.Nodes) != 2 || g.Nodes[0].ID != ProfileOwnerID {
		t.Fatalf("owner not inserted at head: %+v", g.Nodes)
	}
}

func TestEnsureOwnerCollapsesDuplicates(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: ProfileOwnerID, Label: "first", Type: "Person"},
			{ID: "bob_x", Label: "Bob", Type: "Person"},
			{ID: ProfileOwnerID, Label: "dup", Type: "Person"},
		},
	}
	g.EnsureOwner("alice")
	owners := 0
	for _, n := range g.Nodes {
		if n.ID == ProfileOwnerID {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("owner count = %d, want 1", owners)
	}
	if len(g.Nodes) != 2 {
		t.Errorf("nodes = %+v", g.Nodes)
	}
}

func TestPruneEdges(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{
			{From: "a", To: "b"},
			{From: "a", To: "missing"},
			{From: "missing", To: "b"},
		},
	}
	dropped := g.PruneEdges()
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(g.Edges) != 1 || g.Edges[0].To != "b" {
		t.Errorf("edges = %+v", g.Edges)
	}
}

func TestGraphBuilder(t *testing.T) {
	b := NewGraphBuilder("alice")
	id := b.AddUser("Bob", "x")
	b.AddUser("Bob", "x") // duplicate collapses
	b.Connect(ProfileOwnerID, id, "mentions")
	b.Connect(ProfileOwnerID, "nope", "dangling")

	g := b.Build()
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	if g.Nodes[0].ID != ProfileOwnerID {
		t.Errorf("owner not first: %+v", g.Nodes[0])
	}
	if len(g.Edges) != 1 {
		t.Errorf("edges = %+v", g.Edges)
	}
	if b.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", b.Dropped())
	}
}
