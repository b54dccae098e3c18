package model

// Element is a serializable snapshot of one accessibility node.
type Element struct {
	ID        int       `yaml:"i"             json:"i"`             // Sequential BFS index
	Role      string    `yaml:"r"             json:"r"`             // Abbreviated role code
	Class     string    `yaml:"cls,omitempty" json:"cls,omitempty"` // Full class name
	Text      string    `yaml:"t,omitempty"   json:"t,omitempty"`   // Visible text
	Package   string    `yaml:"pkg,omitempty" json:"pkg,omitempty"` // Owning package
	Bounds    [4]int    `yaml:"b"             json:"b"`             // [x, y, width, height]
	Clickable bool      `yaml:"k,omitempty"   json:"k,omitempty"`   // Reports clickable
	Actions   []string  `yaml:"a,omitempty"   json:"a,omitempty"`   // Supported actions
	Children  []Element `yaml:"c,omitempty"   json:"c,omitempty"`   // Child elements
}
