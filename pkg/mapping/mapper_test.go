package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMappingFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write mapping file: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeMappingFile(t, "category-mapping.json", `{
		"Food and Drink/Groceries": "Food",
		"Dining Out": "Restaurants",
		"Gas/Fuel": "Auto & Transport"
	}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if m.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", m.Len())
	}

	actual, ok := m.ToActualCategory("Dining Out")
	if !ok || actual != "Restaurants" {
		t.Errorf("ToActualCategory(Dining Out) = (%q, %v)", actual, ok)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeMappingFile(t, "category-mapping.yaml", "Groceries: Food\nDining Out: Restaurants\n")

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, expected 2", m.Len())
	}
}

func TestLoadMissingFileYieldsEmptyMapper(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", m.Len())
	}
	if _, ok := m.ToActualCategory("Groceries"); ok {
		t.Error("empty mapper should not resolve anything")
	}
}

func TestLoadRejectsNonObject(t *testing.T) {
	path := writeMappingFile(t, "bad.json", `["Groceries", "Food"]`)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail for a non-object document")
	}
}

func TestLoadRejectsNonStringValues(t *testing.T) {
	path := writeMappingFile(t, "bad.json", `{"Groceries": {"name": "Food"}}`)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail for a non-string value")
	}
}

func TestToActualCategoryPathQualifiedFirst(t *testing.T) {
	m := New([]Entry{
		{Spliit: "Food and Drink/Groceries", Actual: "Food: Groceries"},
		{Spliit: "Groceries", Actual: "Food: General"},
	})

	tests := []struct {
		name     string
		spliit   string
		expected string
		found    bool
	}{
		{"exact path match wins", "Food and Drink/Groceries", "Food: Groceries", true},
		{"bare name matches directly", "Groceries", "Food: General", true},
		{"path falls back to bare segment", "Entertainment/Groceries", "Food: General", true},
		{"unmapped", "Unknown XYZ", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, ok := m.ToActualCategory(tt.spliit)
			if ok != tt.found || actual != tt.expected {
				t.Errorf("ToActualCategory(%q) = (%q, %v), expected (%q, %v)",
					tt.spliit, actual, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestToSpliitCategoryFirstMatchWins(t *testing.T) {
	// Two Spliit keys map to the same Actual category. The reverse lookup must
	// deterministically return the first one in file order.
	m := New([]Entry{
		{Spliit: "Dining Out", Actual: "Restaurants"},
		{Spliit: "Food and Drink/Restaurants", Actual: "Restaurants"},
	})

	for i := 0; i < 5; i++ {
		spliit, ok := m.ToSpliitCategory("Restaurants")
		if !ok || spliit != "Dining Out" {
			t.Fatalf("ToSpliitCategory(Restaurants) = (%q, %v), expected (Dining Out, true)", spliit, ok)
		}
	}

	if _, ok := m.ToSpliitCategory("Unmapped"); ok {
		t.Error("ToSpliitCategory should miss for unmapped categories")
	}
}
