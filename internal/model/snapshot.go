package model

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HashChange is a matched element whose mutable properties differ.
type HashChange struct {
	ID      int                  `yaml:"i"           json:"i"`
	Role    string               `yaml:"r,omitempty" json:"r,omitempty"`
	Text    string               `yaml:"t,omitempty" json:"t,omitempty"`
	Changes map[string][2]string `yaml:"changes"     json:"changes"`
}

// TreeDiff is the result of comparing two element snapshots by content hash.
type TreeDiff struct {
	Added          []FlatElement `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatElement `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []HashChange  `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int           `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether the diff found no changes.
func (d TreeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// ElementHash identifies an element across dumps by role, class, text and
// tree path. Sequential IDs shift whenever a list scrolls, so they are left
// out.
func ElementHash(el FlatElement) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", el.Role, el.Class, el.Text, el.Path)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffElementsByHash compares two flat element lists using content hashes.
// Elements sharing a hash are compared on bounds, clickability and actions.
// Identical siblings, such as list rows without text, share a hash and are
// paired in document order.
func DiffElementsByHash(prev, curr []FlatElement) TreeDiff {
	prevByHash := make(map[string][]int, len(prev))
	for i, el := range prev {
		h := ElementHash(el)
		prevByHash[h] = append(prevByHash[h], i)
	}
	matched := make([]bool, len(prev))

	var diff TreeDiff
	for _, el := range curr {
		h := ElementHash(el)
		queue := prevByHash[h]
		if len(queue) == 0 {
			diff.Added = append(diff.Added, el)
			continue
		}
		prevByHash[h] = queue[1:]
		matched[queue[0]] = true
		if changes := diffProperties(prev[queue[0]], el); len(changes) > 0 {
			diff.Changed = append(diff.Changed, HashChange{
				ID:      el.ID,
				Role:    el.Role,
				Text:    el.Text,
				Changes: changes,
			})
		} else {
			diff.UnchangedCount++
		}
	}
	for i, el := range prev {
		if !matched[i] {
			diff.Removed = append(diff.Removed, el)
		}
	}
	return diff
}

func diffProperties(prev, curr FlatElement) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{fmt.Sprint(prev.Bounds), fmt.Sprint(curr.Bounds)}
	}
	if prev.Clickable != curr.Clickable {
		diffs["k"] = [2]string{fmt.Sprint(prev.Clickable), fmt.Sprint(curr.Clickable)}
	}
	if a, b := strings.Join(prev.Actions, ","), strings.Join(curr.Actions, ","); a != b {
		diffs["a"] = [2]string{a, b}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

// SnapshotStore keeps the most recent flat dump per package on disk so the
// next dump can be diffed against it.
type SnapshotStore struct {
	Dir string
}

// DefaultSnapshotStore stores snapshots under the user cache directory.
func DefaultSnapshotStore() (SnapshotStore, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return SnapshotStore{}, fmt.Errorf("snapshot dir: %w", err)
	}
	return SnapshotStore{Dir: filepath.Join(base, "droid-a11y", "snapshots")}, nil
}

func (s SnapshotStore) path(pkg string) string {
	safe := strings.NewReplacer("/", "_", " ", "_", string(filepath.Separator), "_").Replace(pkg)
	if safe == "" {
		safe = "unknown"
	}
	return filepath.Join(s.Dir, safe+".json")
}

// Save replaces the stored snapshot for pkg.
func (s SnapshotStore) Save(pkg string, elements []FlatElement) error {
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	return os.WriteFile(s.path(pkg), data, 0o644)
}

// Load returns the stored snapshot for pkg. A missing snapshot yields
// (nil, false, nil).
func (s SnapshotStore) Load(pkg string) ([]FlatElement, bool, error) {
	data, err := os.ReadFile(s.path(pkg))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	var elements []FlatElement
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return elements, true, nil
}
