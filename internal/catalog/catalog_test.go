package catalog

import "testing"

func TestListStableAndDuplicateFree(t *testing.T) {
	c := New()

	first := c.List()
	if len(first) == 0 {
		t.Fatal("catalog is empty")
	}

	seen := make(map[string]bool, len(first))
	for _, a := range first {
		if seen[a.ID] {
			t.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
		if a.Model == "" || a.SystemPrompt == "" {
			t.Errorf("agent %q missing model or system prompt", a.ID)
		}
	}

	second := c.List()
	if len(second) != len(first) {
		t.Fatalf("List length changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("List order changed at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestListReturnsCopy(t *testing.T) {
	c := New()
	got := c.List()
	got[0].Name = "mutated"

	if c.List()[0].Name == "mutated" {
		t.Error("mutating List result changed catalog state")
	}
}

func TestFind(t *testing.T) {
	c := New()

	agent, ok := c.Find("agent_001")
	if !ok {
		t.Fatal("agent_001 not found")
	}
	if agent.Name != "General Assistant" {
		t.Errorf("Name = %q, want %q", agent.Name, "General Assistant")
	}

	if _, ok := c.Find("agent_999"); ok {
		t.Error("Find returned ok for unknown id")
	}
}
