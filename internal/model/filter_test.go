package model

import "testing"

func sampleTree() []Element {
	return []Element{
		{
			ID: 1, Role: "group", Bounds: [4]int{0, 0, 1080, 2400},
			Children: []Element{
				{ID: 2, Role: "txt", Text: "Chats", Bounds: [4]int{40, 120, 360, 60}},
				{
					ID: 3, Role: "list", Bounds: [4]int{0, 200, 1080, 2000}, Actions: []string{"scroll_forward"},
					Children: []Element{
						{
							ID: 4, Role: "view", Clickable: true, Bounds: [4]int{0, 260, 1080, 140},
							Children: []Element{
								{ID: 5, Role: "txt", Text: "Recipe Ideas", Bounds: [4]int{40, 300, 760, 60}},
							},
						},
						{
							ID: 6, Role: "group", Bounds: [4]int{0, 1800, 1080, 140},
							Children: []Element{
								{ID: 7, Role: "txt", Text: "Trip to Lisbon", Bounds: [4]int{40, 1840, 760, 60}},
							},
						},
					},
				},
			},
		},
	}
}

func collectIDs(elements []Element) []int {
	var ids []int
	var walk func([]Element)
	walk = func(els []Element) {
		for _, el := range els {
			ids = append(ids, el.ID)
			walk(el.Children)
		}
	}
	walk(elements)
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterElements_NoFilters(t *testing.T) {
	tree := sampleTree()
	if got := FilterElements(tree, nil, nil); len(got) != 1 || len(collectIDs(got)) != 7 {
		t.Errorf("no filters should return the input unchanged")
	}
}

func TestFilterElements_RoleFilter(t *testing.T) {
	got := FilterElements(sampleTree(), []string{"txt"}, nil)
	if ids := collectIDs(got); !equalInts(ids, []int{2, 5, 7}) {
		t.Errorf("ids = %v, want [2 5 7]", ids)
	}
}

func TestFilterElements_BBoxFilter(t *testing.T) {
	bbox := [4]int{0, 1700, 1080, 400}
	got := FilterElements(sampleTree(), []string{"txt"}, &bbox)
	if ids := collectIDs(got); !equalInts(ids, []int{7}) {
		t.Errorf("ids = %v, want [7]", ids)
	}
}

func TestFilterByText(t *testing.T) {
	got := FilterByText(sampleTree(), "lisbon")
	if ids := collectIDs(got); !equalInts(ids, []int{1, 3, 6, 7}) {
		t.Errorf("ids = %v, want ancestors plus match [1 3 6 7]", ids)
	}
	if got := FilterByText(sampleTree(), "nothing here"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", collectIDs(got))
	}
}

func TestPruneEmptyGroups(t *testing.T) {
	got := PruneEmptyGroups(sampleTree())
	// 1 and 6 are anonymous groups; 3 scrolls and 4 is clickable.
	if ids := collectIDs(got); !equalInts(ids, []int{2, 3, 4, 5, 7}) {
		t.Errorf("ids = %v, want [2 3 4 5 7]", ids)
	}
	if len(got) != 2 || got[1].ID != 3 || len(got[1].Children) != 2 || got[1].Children[1].ID != 7 {
		t.Errorf("children of pruned groups should be promoted: %+v", got)
	}
}

func TestPruneEmptyGroupsFlat(t *testing.T) {
	flat := FlattenElements(sampleTree())
	got := PruneEmptyGroupsFlat(flat)
	if len(got) != 5 {
		t.Fatalf("got %d, want 5", len(got))
	}
	if got[len(got)-1].Path != "group > list > group > txt" {
		t.Errorf("path should keep pruned ancestry, got %q", got[len(got)-1].Path)
	}
}

func TestBoundsIntersect(t *testing.T) {
	tests := []struct {
		a, b [4]int
		want bool
	}{
		{[4]int{0, 0, 10, 10}, [4]int{5, 5, 10, 10}, true},
		{[4]int{0, 0, 10, 10}, [4]int{10, 0, 10, 10}, false},
		{[4]int{0, 0, 10, 10}, [4]int{0, 20, 10, 10}, false},
		{[4]int{0, 0, 100, 100}, [4]int{40, 40, 10, 10}, true},
	}
	for _, tt := range tests {
		if got := boundsIntersect(tt.a, tt.b); got != tt.want {
			t.Errorf("boundsIntersect(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFilterFlat(t *testing.T) {
	flat := FlattenElements(sampleTree())
	got := FilterFlat(flat, []string{"txt"}, "", nil)
	if len(got) != 3 || got[1].Path != "group > list > view > txt" {
		t.Errorf("roles only = %+v", got)
	}
	got = FilterFlat(flat, []string{"txt"}, "TRIP", nil)
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("roles and text = %+v", got)
	}
	if got := FilterFlat(flat, nil, "", nil); len(got) != len(flat) {
		t.Error("no filters should return the input unchanged")
	}
}

func TestFilterFlat_BBox(t *testing.T) {
	flat := FlattenElements(sampleTree())
	bbox := [4]int{0, 1700, 1080, 400}
	got := FilterFlat(flat, []string{"txt"}, "", &bbox)
	if len(got) != 1 || got[0].ID != 7 || got[0].Path != "group > list > group > txt" {
		t.Errorf("roles and bbox = %+v", got)
	}
	got = FilterFlat(flat, nil, "", &bbox)
	if ids := flatIDs(got); !equalInts(ids, []int{1, 3, 6, 7}) {
		t.Errorf("bbox only ids = %v, want [1 3 6 7]", ids)
	}
}

func flatIDs(elements []FlatElement) []int {
	var ids []int
	for _, el := range elements {
		ids = append(ids, el.ID)
	}
	return ids
}

func TestParseBBox(t *testing.T) {
	got, err := ParseBBox("0, 1700,1080,400")
	if err != nil || got == nil || *got != [4]int{0, 1700, 1080, 400} {
		t.Errorf("ParseBBox = %v, %v", got, err)
	}
	if got, err := ParseBBox(""); got != nil || err != nil {
		t.Errorf("empty = %v, %v, want nil, nil", got, err)
	}
	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10", "0,0,10,-1"} {
		if _, err := ParseBBox(bad); err == nil {
			t.Errorf("ParseBBox(%q) should fail", bad)
		}
	}
}
