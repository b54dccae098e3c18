package walk

import (
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform/fixture"
)

// loop is a node whose only child is itself.
type loop struct{}

func (loop) Text() string                    { return "loop" }
func (loop) ClassName() string               { return "android.view.View" }
func (loop) PackageName() string             { return "" }
func (loop) Bounds() model.Rect              { return model.Rect{} }
func (loop) Clickable() bool                 { return false }
func (loop) Actions() []model.Action         { return nil }
func (loop) HasAction(model.Action) bool     { return false }
func (loop) Parent() model.Node              { return nil }
func (loop) ChildCount() int                 { return 1 }
func (l loop) Child(int) model.Node          { return l }
func (loop) PerformAction(model.Action) bool { return false }

type lines []string

func (l *lines) Add(msg string) { *l = append(*l, msg) }

//	a
//	├── b
//	│   └── d
//	└── c
//	    └── e
func sampleTree() *fixture.Node {
	return fixture.New("g", "a", model.Rect{}).Add(
		fixture.New("g", "b", model.Rect{}).Add(fixture.New("t", "d", model.Rect{})),
		fixture.New("g", "c", model.Rect{}).Add(fixture.New("t", "e", model.Rect{})),
	)
}

func texts(nodes []model.Node) string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Text())
	}
	return strings.Join(out, "")
}

func TestWalk_BreadthFirst(t *testing.T) {
	var seen []model.Node
	n, err := Walker{}.Walk(sampleTree(), func(n model.Node) { seen = append(seen, n) })
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || texts(seen) != "abcde" {
		t.Errorf("visited %d in order %q, want 5 in abcde", n, texts(seen))
	}
}

func TestWalk_NilRoot(t *testing.T) {
	n, err := Walker{}.Walk(nil, func(model.Node) { t.Error("visited nil root") })
	if n != 0 || err != nil {
		t.Errorf("Walk(nil) = %d, %v", n, err)
	}
}

func TestWalk_SkipsDroppedChildren(t *testing.T) {
	root := sampleTree()
	root.Drop(0)
	var seen []model.Node
	Walker{}.Walk(root, func(n model.Node) { seen = append(seen, n) })
	if texts(seen) != "ace" {
		t.Errorf("order = %q, want ace", texts(seen))
	}
}

func TestWalk_GuardOnCycle(t *testing.T) {
	var log lines
	calls := 0
	n, err := Walker{Limit: 1000, Log: &log}.Walk(loop{}, func(model.Node) { calls++ })
	if !errors.Is(err, ErrGuardExceeded) {
		t.Fatalf("err = %v, want ErrGuardExceeded", err)
	}
	if n != 1000 || calls != 1000 {
		t.Errorf("visited = %d, calls = %d, want 1000", n, calls)
	}
	if len(log) != 1 || log[0] != "Node walk guard hit (1k)." {
		t.Errorf("log = %v", log)
	}
}

func TestWalk_ExactLimitIsNotExceeded(t *testing.T) {
	n, err := Walker{Limit: 5}.Walk(sampleTree(), func(model.Node) {})
	if err != nil || n != 5 {
		t.Errorf("Walk = %d, %v, want 5, nil", n, err)
	}
	n, err = Walker{Limit: 4}.Walk(sampleTree(), func(model.Node) {})
	if !errors.Is(err, ErrGuardExceeded) || n != 4 {
		t.Errorf("Walk = %d, %v, want 4, ErrGuardExceeded", n, err)
	}
}

func TestFindLastCollect(t *testing.T) {
	isLeaf := func(n model.Node) bool { return n.ChildCount() == 0 }
	w := Walker{}
	root := sampleTree()

	if got := w.Find(root, isLeaf); got == nil || got.Text() != "d" {
		t.Errorf("Find = %v, want d", got)
	}
	if got := w.Last(root, isLeaf); got == nil || got.Text() != "e" {
		t.Errorf("Last = %v, want e", got)
	}
	if got := texts(w.Collect(root, isLeaf)); got != "de" {
		t.Errorf("Collect = %q, want de", got)
	}
	if got := w.Find(root, func(model.Node) bool { return false }); got != nil {
		t.Errorf("Find with no match = %v", got)
	}
}

func TestFormatLimit(t *testing.T) {
	tests := map[int]string{50_000: "50k", 1000: "1k", 1500: "1500", 7: "7"}
	for in, want := range tests {
		if got := formatLimit(in); got != want {
			t.Errorf("formatLimit(%d) = %q, want %q", in, got, want)
		}
	}
}
