package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterElements applies filters to a slice of elements, returning only
// matching elements. It filters by roles and bounding box. Non-matching
// parents are dropped and their matching descendants promoted.
func FilterElements(elements []Element, roles []string, bbox *[4]int) []Element {
	if len(roles) == 0 && bbox == nil {
		return elements
	}

	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	var result []Element
	for _, el := range elements {
		var filteredChildren []Element
		if len(el.Children) > 0 {
			filteredChildren = FilterElements(el.Children, roles, bbox)
		}

		roleMatch := len(roleSet) == 0 || roleSet[el.Role]
		bboxMatch := bbox == nil || boundsIntersect(el.Bounds, *bbox)

		if roleMatch && bboxMatch {
			filtered := el
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			result = append(result, filteredChildren...)
		}
	}
	return result
}

// FilterByText keeps elements whose text contains text (case-insensitive)
// together with their ancestors.
func FilterByText(elements []Element, text string) []Element {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []Element
	for _, el := range elements {
		matched := strings.Contains(strings.ToLower(el.Text), textLower)
		childMatches := FilterByText(el.Children, text)

		if matched || len(childMatches) > 0 {
			filtered := el
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

// FilterFlat keeps flat elements matching every given filter: role in
// roles, text containing text (case-insensitive) and bounds intersecting
// bbox. Paths are untouched.
func FilterFlat(elements []FlatElement, roles []string, text string, bbox *[4]int) []FlatElement {
	if len(roles) == 0 && text == "" && bbox == nil {
		return elements
	}
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	textLower := strings.ToLower(text)

	var result []FlatElement
	for _, el := range elements {
		if len(roleSet) > 0 && !roleSet[el.Role] {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(el.Text), textLower) {
			continue
		}
		if bbox != nil && !boundsIntersect(el.Bounds, *bbox) {
			continue
		}
		result = append(result, el)
	}
	return result
}

// ParseBBox parses an "x,y,w,h" string. An empty string means no box.
func ParseBBox(s string) (*[4]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	var box [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		box[i] = v
	}
	if box[2] <= 0 || box[3] <= 0 {
		return nil, fmt.Errorf("invalid bbox %q: width and height must be positive", s)
	}
	return &box, nil
}

// isEmptyGroup reports whether el is a structural container with nothing
// to read or act on.
func isEmptyGroup(el Element) bool {
	switch el.Role {
	case "group", "view", "other":
	default:
		return false
	}
	return el.Text == "" && !el.Clickable && len(el.Actions) == 0
}

// PruneEmptyGroups removes anonymous containers from a tree, promoting
// their children to the parent.
func PruneEmptyGroups(elements []Element) []Element {
	var result []Element
	for _, el := range elements {
		prunedChildren := PruneEmptyGroups(el.Children)

		if isEmptyGroup(el) {
			result = append(result, prunedChildren...)
		} else {
			pruned := el
			pruned.Children = prunedChildren
			result = append(result, pruned)
		}
	}
	return result
}

// PruneEmptyGroupsFlat is PruneEmptyGroups for flat lists. Paths of the
// remaining elements keep the full ancestry.
func PruneEmptyGroupsFlat(elements []FlatElement) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		if isEmptyGroup(Element{Role: el.Role, Text: el.Text, Clickable: el.Clickable, Actions: el.Actions}) {
			continue
		}
		result = append(result, el)
	}
	return result
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
