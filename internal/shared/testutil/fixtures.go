package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Source tables used across package tests. They mirror the layout of the
// real inputs with only a handful of rows.
const (
	SocialProgressCSV = `state_and_score
California(SPI score: 85.50)
New York (SPI score: 80.25)
Texas (SPI score: 70.10)
`

	StateMetadataCSV = `name,code,region
California,CA,West
New York,NY,Northeast
Texas,TX,South
`

	HouseCSV = `name,district,party,crucial_vote_score
Ana Ruiz,CA-12,D,0.9
Bo Lee,NY-3,R,0.2
Cy Park,TX-7,R,0.1
`

	SenateCSV = `name,state,party,crucial_vote_score,term
Di Fox,CA,D,0.8,2
Ed Moss,TX,R,0.15,1
Flo Kent,NY,I,0.7,3
`
)

// SourceFiles names the four fixture files written by WriteSources
type SourceFiles struct {
	SocialProgress string
	StateMetadata  string
	House          string
	Senate         string
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteSources writes the four source tables into dir under data/
func WriteSources(t *testing.T, dir string) SourceFiles {
	t.Helper()

	return SourceFiles{
		SocialProgress: WriteFile(t, dir, "data/social_progressive_index.csv", SocialProgressCSV),
		StateMetadata:  WriteFile(t, dir, "data/us_states.csv", StateMetadataCSV),
		House:          WriteFile(t, dir, "data/house_progressive_score.csv", HouseCSV),
		Senate:         WriteFile(t, dir, "data/senate_progressive_score.csv", SenateCSV),
	}
}
