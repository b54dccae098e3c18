package model_test

import (
	"testing"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform/fixture"
)

func captureTree() *fixture.Node {
	return fixture.New("android.widget.FrameLayout", "", fixture.R(0, 0, 1080, 2400)).
		WithPackage("com.openai.chatgpt").
		Add(
			fixture.New("android.widget.TextView", "  Chats ", fixture.R(40, 120, 400, 180)),
			fixture.New("androidx.recyclerview.widget.RecyclerView", "", fixture.R(0, 200, 1080, 2200)).
				WithActions(model.ActionScrollForward).
				Add(
					fixture.New("android.view.View", "", fixture.R(0, 260, 1080, 400)).
						WithClickable().
						Add(fixture.New("android.widget.TextView", "Recipe Ideas", fixture.R(40, 300, 800, 360))),
				),
		)
}

func TestCapture(t *testing.T) {
	els, truncated := model.Capture(captureTree(), 0)
	if truncated {
		t.Error("unexpected truncation")
	}
	if len(els) != 1 {
		t.Fatalf("roots = %d", len(els))
	}
	root := els[0]
	if root.ID != 1 || root.Role != "group" || root.Package != "com.openai.chatgpt" {
		t.Errorf("root = %+v", root)
	}
	if root.Children[0].Text != "Chats" || root.Children[0].Role != "txt" {
		t.Errorf("label = %+v", root.Children[0])
	}
	if root.Children[0].Package != "" {
		t.Error("package is only reported on the root")
	}
	list := root.Children[1]
	if list.ID != 3 || list.Role != "list" || len(list.Actions) != 1 || list.Actions[0] != "scroll_forward" {
		t.Errorf("list = %+v", list)
	}
	row := list.Children[0]
	if !row.Clickable || row.Bounds != [4]int{0, 260, 1080, 140} {
		t.Errorf("row = %+v", row)
	}
	if row.Children[0].ID != 5 {
		t.Errorf("pre-order id = %d, want 5", row.Children[0].ID)
	}
}

func TestCapture_Truncated(t *testing.T) {
	els, truncated := model.Capture(captureTree(), 3)
	if !truncated {
		t.Error("expected truncation")
	}
	flat := model.FlattenElements(els)
	if len(flat) != 3 {
		t.Errorf("captured %d nodes, want 3", len(flat))
	}
}

func TestCapture_SkipsDroppedChildren(t *testing.T) {
	root := captureTree()
	root.Drop(0)
	els, _ := model.Capture(root, 0)
	if len(els[0].Children) != 1 || els[0].Children[0].Role != "list" {
		t.Errorf("children = %+v", els[0].Children)
	}
}

func TestCapture_Nil(t *testing.T) {
	if els, truncated := model.Capture(nil, 0); els != nil || truncated {
		t.Errorf("Capture(nil) = %v, %v", els, truncated)
	}
}
