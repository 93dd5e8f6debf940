// Package measure stores per-image text measurement datasets. Datasets are
// produced by earlier pipeline steps (or loaded from CSV) and consumed by
// the annotation renderer, which looks them up by image and dataset name.
package measure

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"sync"
)

// TextDataset is a named ordered sequence of strings with a description.
// For grid annotation its length must equal the grid cell count.
type TextDataset struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Values      []string `json:"values"`
}

// Store holds text datasets keyed by image name, then dataset name.
type Store struct {
	mu      sync.RWMutex
	byImage map[string]map[string]*TextDataset
}

// NewStore creates an empty measurement store.
func NewStore() *Store {
	return &Store{
		byImage: make(map[string]map[string]*TextDataset),
	}
}

// Add stores a dataset for an image, replacing any dataset with the same name.
func (s *Store) Add(imageName string, ds *TextDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byImage[imageName] == nil {
		s.byImage[imageName] = make(map[string]*TextDataset)
	}
	s.byImage[imageName][ds.Name] = ds
}

// Get returns the named dataset for an image. Missing keys are an error;
// the caller decides how to surface it.
func (s *Store) Get(imageName, name string) (*TextDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	datasets, ok := s.byImage[imageName]
	if !ok {
		return nil, fmt.Errorf("no measurements for image %q", imageName)
	}
	ds, ok := datasets[name]
	if !ok {
		return nil, fmt.Errorf("no dataset %q for image %q", name, imageName)
	}
	return ds, nil
}

// Names returns the dataset names stored for an image, sorted.
func (s *Store) Names(imageName string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	datasets := s.byImage[imageName]
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes a dataset. Removing a missing dataset is a no-op.
func (s *Store) Remove(imageName, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if datasets, ok := s.byImage[imageName]; ok {
		delete(datasets, name)
	}
}

// LoadCSV reads datasets from a CSV file: the header row holds dataset
// names, each following row one value per dataset. Short rows pad the
// remaining datasets with empty strings.
func LoadCSV(path string) ([]*TextDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("CSV %s has no header row", path)
	}

	header := records[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("CSV %s has an empty header row", path)
	}

	datasets := make([]*TextDataset, len(header))
	for i, name := range header {
		datasets[i] = &TextDataset{Name: name}
	}
	for _, row := range records[1:] {
		for i := range datasets {
			if i < len(row) {
				datasets[i].Values = append(datasets[i].Values, row[i])
			} else {
				datasets[i].Values = append(datasets[i].Values, "")
			}
		}
	}
	return datasets, nil
}

// ReorderBySpotTable returns a copy of values reordered so that entry i
// holds values[table[i]]. The table must be a permutation of the value
// indexes and the lengths must match.
func ReorderBySpotTable(values []string, table []int) ([]string, error) {
	if len(values) != len(table) {
		return nil, fmt.Errorf("dataset length %d does not match grid cell count %d",
			len(values), len(table))
	}
	seen := make([]bool, len(values))
	out := make([]string, len(values))
	for i, idx := range table {
		if idx < 0 || idx >= len(values) {
			return nil, fmt.Errorf("spot table index %d out of range 0..%d", idx, len(values)-1)
		}
		if seen[idx] {
			return nil, fmt.Errorf("spot table index %d used twice", idx)
		}
		seen[idx] = true
		out[i] = values[idx]
	}
	return out, nil
}
