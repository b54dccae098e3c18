package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID        int      `yaml:"i"             json:"i"`
	Role      string   `yaml:"r"             json:"r"`
	Class     string   `yaml:"cls,omitempty" json:"cls,omitempty"`
	Text      string   `yaml:"t,omitempty"   json:"t,omitempty"`
	Package   string   `yaml:"pkg,omitempty" json:"pkg,omitempty"`
	Bounds    [4]int   `yaml:"b"             json:"b"`
	Clickable bool     `yaml:"k,omitempty"   json:"k,omitempty"`
	Actions   []string `yaml:"a,omitempty"   json:"a,omitempty"`
	Path      string   `yaml:"p,omitempty"   json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list.
// Each element gets a path string showing its location in the tree
// using abbreviated role names joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	currentPath := el.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role
	}

	*result = append(*result, FlatElement{
		ID:        el.ID,
		Role:      el.Role,
		Class:     el.Class,
		Text:      el.Text,
		Package:   el.Package,
		Bounds:    el.Bounds,
		Clickable: el.Clickable,
		Actions:   el.Actions,
		Path:      currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}

// TextOnly keeps the flat elements that carry visible text. Structural
// containers without text are dropped; their breadcrumbs survive in the
// paths of the remaining elements.
func TextOnly(elements []FlatElement) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		if el.Text == "" {
			continue
		}
		result = append(result, el)
	}
	return result
}
