package categories

import "testing"

func TestObjectCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1", "Manual Valve"},
		{"15", "Manual Valve"},
		{"16", "Relief Valve"},
		{" 18 ", "Spectacle Blind"},
		{"21", "Flange"},
		{"32", "Instrument"},
		{"Pneumatic Valve", "Actuated Valve"},
		{"TWO WAY ON-OFF SOLENOID VALVE", "Actuated Valve"},
		{"33", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := ObjectCategory(tt.raw); got != tt.want {
			t.Errorf("ObjectCategory(%q): got %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFrequencyCategory(t *testing.T) {
	tests := []struct {
		object string
		want   string
		wantOK bool
	}{
		{"Manual Valve", "Manual Valves", true},
		{"check valve", "Manual Valves", true},
		{"Flange", "Flanged Joints", true},
		{"Instrument", "Instrument Connection", true},
		{"manual valves", "Manual Valves", true},
		{"Plate & Frame / PCHE", "Plate & Frame / PCHE", true},
		{"Spectacle Blind", "", false},
		{Unknown, "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := FrequencyCategory(tt.object)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FrequencyCategory(%q): got (%q, %v), want (%q, %v)", tt.object, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAllCategories(t *testing.T) {
	freq := AllFrequencyCategories()
	if len(freq) != 23 {
		t.Errorf("expected 23 frequency categories, got %d", len(freq))
	}
	freq[0] = "mutated"
	if AllFrequencyCategories()[0] != "Steel Pipes" {
		t.Error("AllFrequencyCategories must return a copy")
	}

	objects := AllObjectCategories()
	want := []string{"Actuated Valve", "Check Valve", "Expander", "Flange", "Instrument", "Manual Valve", "Piping", "Relief Valve", "Spectacle Blind", "Strainer"}
	if len(objects) != len(want) {
		t.Fatalf("got %v, want %v", objects, want)
	}
	for i := range want {
		if objects[i] != want[i] {
			t.Errorf("objects[%d]: got %q, want %q", i, objects[i], want[i])
		}
	}
}
