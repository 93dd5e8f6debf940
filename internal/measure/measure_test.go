package measure

import (
	"os"
	"path/filepath"
	"testing"
)

// TestStoreGet verifies the lookup path and the missing-key errors.
func TestStoreGet(t *testing.T) {
	s := NewStore()
	s.Add("plate1", &TextDataset{Name: "gene", Values: []string{"a", "b"}})

	ds, err := s.Get("plate1", "gene")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ds.Values[1] != "b" {
		t.Errorf("unexpected values: %v", ds.Values)
	}

	if _, err := s.Get("plate1", "missing"); err == nil {
		t.Error("expected error for missing dataset")
	}
	if _, err := s.Get("missing", "gene"); err == nil {
		t.Error("expected error for missing image")
	}
}

// TestStoreNames verifies names are sorted and scoped per image.
func TestStoreNames(t *testing.T) {
	s := NewStore()
	s.Add("plate1", &TextDataset{Name: "zeta"})
	s.Add("plate1", &TextDataset{Name: "alpha"})
	s.Add("plate2", &TextDataset{Name: "other"})

	names := s.Names("plate1")
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("unexpected names: %v", names)
	}
	if len(s.Names("plate3")) != 0 {
		t.Error("expected no names for unknown image")
	}
}

// TestStoreRemove verifies removal and that unknown keys are harmless.
func TestStoreRemove(t *testing.T) {
	s := NewStore()
	s.Add("plate1", &TextDataset{Name: "gene"})
	s.Add("plate1", &TextDataset{Name: "dose"})

	s.Remove("plate1", "gene")
	if _, err := s.Get("plate1", "gene"); err == nil {
		t.Error("removed dataset still present")
	}
	if _, err := s.Get("plate1", "dose"); err != nil {
		t.Errorf("unrelated dataset lost: %v", err)
	}

	s.Remove("plate1", "missing")
	s.Remove("plate9", "gene")
	if names := s.Names("plate1"); len(names) != 1 {
		t.Errorf("unexpected names after removes: %v", names)
	}
}

// TestReorderBySpotTable checks the reorder is applied and is a bijection.
func TestReorderBySpotTable(t *testing.T) {
	values := []string{"a", "b", "c", "d"}
	table := []int{2, 0, 3, 1}

	out, err := ReorderBySpotTable(values, table)
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	want := []string{"c", "a", "d", "b"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %q, want %q", i, out[i], want[i])
		}
	}

	// Every original value must appear exactly once.
	counts := make(map[string]int)
	for _, v := range out {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] != 1 {
			t.Errorf("value %q appears %d times", v, counts[v])
		}
	}
}

// TestReorderErrors exercises the invariant checks.
func TestReorderErrors(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		table  []int
	}{
		{"length mismatch", []string{"a", "b"}, []int{0, 1, 2}},
		{"index out of range", []string{"a", "b"}, []int{0, 2}},
		{"negative index", []string{"a", "b"}, []int{-1, 0}},
		{"duplicate index", []string{"a", "b"}, []int{0, 0}},
	}

	for _, tt := range tests {
		if _, err := ReorderBySpotTable(tt.values, tt.table); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

// TestLoadCSV loads a small CSV and checks column extraction and padding.
func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.csv")
	content := "gene,dose\nactb,10\ngapdh,20\ntubb\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	datasets, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if len(datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(datasets))
	}
	if datasets[0].Name != "gene" || datasets[1].Name != "dose" {
		t.Errorf("unexpected names: %s, %s", datasets[0].Name, datasets[1].Name)
	}
	if len(datasets[0].Values) != 3 || datasets[0].Values[2] != "tubb" {
		t.Errorf("unexpected gene values: %v", datasets[0].Values)
	}
	// Short row pads the second column.
	if datasets[1].Values[2] != "" {
		t.Errorf("expected padded empty value, got %q", datasets[1].Values[2])
	}

	if _, err := LoadCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
