package frequency

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTable = `Category,min_size_mm,max_size_mm,Tiny (1-3 mm),Small (3-10mm),Medium (10-50 mm),Large (50-150 mm),FBR (greater than 150 mm)
Manual Valves,0,20,1e-4,5e-5,1e-5,0,2e-6
Manual Valves,20,50,2e-4,6e-5,2e-5,0,3e-6
Manual Valves,50,150,3e-4,7e-5,3e-5,1e-5,4e-6
Manual Valves,150,1000,4e-4,8e-5,4e-5,2e-5,5e-6
Flanged Joints,0,1000,1e-5,1e-6,1e-7,1e-8,1e-9
`

func mustParse(t *testing.T, data string) *Table {
	t.Helper()
	table, err := ParseTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	return table
}

func TestTable_Lookup(t *testing.T) {
	table := mustParse(t, sampleTable)

	tests := []struct {
		name     string
		category string
		size     float64
		wantMin  float64
		wantMax  float64
	}{
		{"inside bracket", "Manual Valves", 25, 20, 50},
		{"shared boundary takes first row", "Manual Valves", 20, 0, 20},
		{"top bracket", "Manual Valves", 500, 150, 1000},
		{"oversize clamps to largest max", "Manual Valves", 5000, 150, 1000},
		{"zero size", "Manual Valves", 0, 0, 20},
		{"single row category", "Flanged Joints", 80, 0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := table.Lookup(tt.category, tt.size)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if row.MinSize != tt.wantMin || row.MaxSize != tt.wantMax {
				t.Errorf("got bracket [%v,%v], want [%v,%v]", row.MinSize, row.MaxSize, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestTable_LookupUnknownCategory(t *testing.T) {
	table := mustParse(t, sampleTable)

	_, err := table.Lookup("Turbine", 100)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	var le *LookupError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LookupError, got %T", err)
	}
	if le.Category != "Turbine" {
		t.Errorf("error names %q, want Turbine", le.Category)
	}
}

func TestParseTable_BOMAndWhitespace(t *testing.T) {
	data := "\xEF\xBB\xBF category , min_size_mm ,max_size_mm, Tiny (1-3 mm) ,Small (3-10 mm),Medium (10-50 mm),Large (50-150 mm),FBR (>150 mm),Notes\n" +
		"Filters,0,100,1,2,3,4,5,ignored\n" +
		"\n" +
		",,,,,,,,\n"

	table := mustParse(t, data)
	rows := table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Category != "Filters" || r.Tiny != 1 || r.FBR != 5 {
		t.Errorf("unexpected row %+v", r)
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "missing columns",
			data:    "Category,min_size_mm,max_size_mm,Tiny (1-3 mm)\n",
			wantErr: "missing columns",
		},
		{
			name: "bad number",
			data: "Category,min_size_mm,max_size_mm,Tiny (1-3 mm),Small (3-10mm),Medium (10-50 mm),Large (50-150 mm),FBR (greater than 150 mm)\n" +
				"Filters,zero,100,1,2,3,4,5\n",
			wantErr: "line 2",
		},
		{
			name:    "empty input",
			data:    "",
			wantErr: "header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freq.csv")
	if err := os.WriteFile(path, []byte(sampleTable), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if got := len(table.Rows()); got != 5 {
		t.Errorf("got %d rows, want 5", got)
	}

	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRowsIsCopy(t *testing.T) {
	table := NewTable([]Row{{Category: "Filters", MaxSize: 10}})
	rows := table.Rows()
	rows[0].Category = "changed"
	if table.Rows()[0].Category != "Filters" {
		t.Error("Rows exposed internal storage")
	}
}
