package tag

import "strings"

// Tag is a trade/category label derived from message content. Tags are never
// stored; they are recomputed from the keyword table on every read.
type Tag struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Keywords []string `json:"-"`
}

// table is the fixed, compiled-in tag configuration. Order matters: Detect
// returns matches in table order.
var table = []Tag{
	{
		ID: "concrete", Label: "Concrete", Icon: "🧱", Color: "#78716C",
		Keywords: []string{"concrete", "pour", "slab", "rebar", "foundation", "footing", "cement"},
	},
	{
		ID: "electrical", Label: "Electrical", Icon: "⚡", Color: "#EAB308",
		Keywords: []string{"electric", "wiring", "conduit", "panel", "breaker", "transformer"},
	},
	{
		ID: "framing", Label: "Framing", Icon: "🔨", Color: "#D97706",
		Keywords: []string{"framing", "stud", "joist", "truss", "sheathing", "lumber"},
	},
	{
		ID: "plumbing", Label: "Plumbing", Icon: "🚿", Color: "#3B82F6",
		Keywords: []string{"plumb", "pipe", "drain", "water line", "sewer", "fixture"},
	},
	{
		ID: "hvac", Label: "HVAC", Icon: "🌬️", Color: "#06B6D4",
		Keywords: []string{"hvac", "duct", "furnace", "air handler", "ventilation", "mechanical"},
	},
	{
		ID: "roofing", Label: "Roofing", Icon: "🏠", Color: "#DC2626",
		Keywords: []string{"roof", "shingle", "flashing", "membrane", "gutter"},
	},
	{
		ID: "safety", Label: "Safety", Icon: "🦺", Color: "#F97316",
		Keywords: []string{"safety", "osha", "hazard", "incident", "injury", "harness", "ppe"},
	},
	{
		ID: "rfi", Label: "RFIs", Icon: "❓", Color: "#8B5CF6",
		Keywords: []string{"rfi", "request for information", "clarification"},
	},
	{
		ID: "submittal", Label: "Submittals", Icon: "📋", Color: "#6366F1",
		Keywords: []string{"submittal", "shop drawing", "spec sheet", "product data"},
	},
}

// Detector classifies message text against the keyword table.
type Detector struct {
	tags []Tag
}

func NewDetector() *Detector {
	return &Detector{tags: table}
}

// Detect returns the tags whose keywords appear in text, in table order. A
// keyword matches anywhere as a case-insensitive substring — "rained" matches
// "rain". This is deliberate: tokenized matching would change which messages
// land in which channel.
func (d *Detector) Detect(text string) []Tag {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var matched []Tag
	for _, t := range d.tags {
		for _, kw := range t.Keywords {
			if strings.Contains(lowered, kw) {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched
}

// All returns the full tag table in display order.
func All() []Tag {
	return table
}

// ByID looks up a tag definition by its stable id.
func ByID(id string) (Tag, bool) {
	for _, t := range table {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}
