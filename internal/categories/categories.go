// Package categories maps raw detector labels to object categories and object
// categories to the leak-frequency table categories.
package categories

import (
	"sort"
	"strconv"
	"strings"
)

// Unknown is returned by ObjectCategory for labels with no mapping.
const Unknown = "Unknown"

// frequencyCategories lists every category present in the leak-frequency table.
var frequencyCategories = []string{
	"Steel Pipes",
	"Flexible Piping",
	"Flanged Joints",
	"Manual Valves",
	"Actuated Valves",
	"Instrument Connection",
	"Process Pressure Vessel",
	"Centrifugal Pumps",
	"Reciprocating Pumps",
	"Centrifugal Compressor",
	"Reciprocating Compressor",
	"Shell & Tube (Shell HC)",
	"Shell & Tube (Tube HC)",
	"Plate & Frame / PCHE",
	"Air Cooler",
	"Filters",
	"Pig Traps",
	"Pressure Vessel (Other)",
	"Degasser",
	"Expanders",
	"Xmas Tree",
	"Turbine",
	"SSIV Assembly",
}

// objectToFrequency maps lowercase object categories to frequency categories.
var objectToFrequency = map[string]string{
	"manual valve":             "Manual Valves",
	"actuated valve":           "Actuated Valves",
	"check valve":              "Manual Valves",
	"relief valve":             "Manual Valves",
	"flange":                   "Flanged Joints",
	"strainer":                 "Filters",
	"piping":                   "Steel Pipes",
	"pipe":                     "Steel Pipes",
	"flexible piping":          "Flexible Piping",
	"instrument":               "Instrument Connection",
	"expander":                 "Expanders",
	"centrifugal pump":         "Centrifugal Pumps",
	"reciprocating pump":       "Reciprocating Pumps",
	"centrifugal compressor":   "Centrifugal Compressor",
	"reciprocating compressor": "Reciprocating Compressor",
	"shell & tube (shell hc)":  "Shell & Tube (Shell HC)",
	"shell & tube (tube hc)":   "Shell & Tube (Tube HC)",
	"plate & frame":            "Plate & Frame / PCHE",
	"pche":                     "Plate & Frame / PCHE",
	"air cooler":               "Air Cooler",
	"filter":                   "Filters",
	"pig trap":                 "Pig Traps",
	"pressure vessel":          "Pressure Vessel (Other)",
	"degasser":                 "Degasser",
	"xmas tree":                "Xmas Tree",
	"turbine":                  "Turbine",
	"ssiv assembly":            "SSIV Assembly",
}

// detectorClasses maps the detector's raw class labels (numeric ids and a
// few free-text classes) to object categories. Keys are lowercase.
var detectorClasses = func() map[string]string {
	m := make(map[string]string)
	for i := 1; i <= 15; i++ {
		m[strconv.Itoa(i)] = "Manual Valve"
	}
	m["16"] = "Relief Valve"
	for i := 17; i <= 19; i++ {
		m[strconv.Itoa(i)] = "Spectacle Blind"
	}
	m["20"] = "Expander"
	m["21"] = "Flange"
	m["22"] = "Strainer"
	m["23"] = "Piping"
	m["24"] = "Check Valve"
	m["25"] = "Actuated Valve"
	for i := 26; i <= 32; i++ {
		m[strconv.Itoa(i)] = "Instrument"
	}
	m["pneumatic valve"] = "Actuated Valve"
	m["two way on-off solenoid valve"] = "Actuated Valve"
	return m
}()

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ObjectCategory maps a raw detector class label to an object category,
// case-insensitively. Unmapped labels return Unknown.
func ObjectCategory(rawClass string) string {
	if c, ok := detectorClasses[normalize(rawClass)]; ok {
		return c
	}
	return Unknown
}

// FrequencyCategory maps an object category to a frequency table category.
// The explicit mapping is consulted first, then a case-insensitive match
// against the table's own category names. The second result is false when
// neither matches.
func FrequencyCategory(objectType string) (string, bool) {
	key := normalize(objectType)
	if key == "" {
		return "", false
	}
	if c, ok := objectToFrequency[key]; ok {
		return c, true
	}
	for _, c := range frequencyCategories {
		if key == normalize(c) {
			return c, true
		}
	}
	return "", false
}

// AllFrequencyCategories returns a copy of the frequency table categories in
// table order.
func AllFrequencyCategories() []string {
	out := make([]string, len(frequencyCategories))
	copy(out, frequencyCategories)
	return out
}

// AllObjectCategories returns the sorted, de-duplicated object categories the
// detector can produce.
func AllObjectCategories() []string {
	seen := make(map[string]bool)
	for _, c := range detectorClasses {
		seen[c] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
