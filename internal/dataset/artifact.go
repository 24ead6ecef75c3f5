package dataset

import "time"

// Artifact kinds written by the CLI.
const (
	KindCleaned      = "cleaned"
	KindSchema       = "schema"
	KindCorrelations = "correlations"
	KindStrongPairs  = "strong_correlations"
	KindMaterials    = "materials"
	KindRegression   = "regression"
)

// Artifact holds metadata for one file derived from the clean table.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}
