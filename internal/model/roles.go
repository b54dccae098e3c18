package model

import "strings"

// RoleMap maps Android widget class simple names to compact role codes.
var RoleMap = map[string]string{
	"Button":               "btn",
	"ImageButton":          "btn",
	"TextView":             "txt",
	"CheckedTextView":      "txt",
	"ImageView":            "img",
	"EditText":             "input",
	"CheckBox":             "chk",
	"Switch":               "toggle",
	"ToggleButton":         "toggle",
	"RadioButton":          "radio",
	"RecyclerView":         "list",
	"ListView":             "list",
	"GridView":             "list",
	"ScrollView":           "scroll",
	"HorizontalScrollView": "scroll",
	"ViewPager":            "pager",
	"FrameLayout":          "group",
	"LinearLayout":         "group",
	"RelativeLayout":       "group",
	"ViewGroup":            "group",
	"View":                 "view",
	"WebView":              "web",
	"Toolbar":              "toolbar",
}

// MapRole converts a fully qualified class name to a compact role code.
// Compose and custom views that only report a package-less name are matched
// on their last path segment.
func MapRole(className string) string {
	simple := className
	if idx := strings.LastIndex(simple, "."); idx >= 0 {
		simple = simple[idx+1:]
	}
	if short, ok := RoleMap[simple]; ok {
		return short
	}
	return "other"
}
