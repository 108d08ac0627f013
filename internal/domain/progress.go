package domain

// IngestionProgress is a snapshot of one user's in-flight ingest batch.
// Completed and CurrentTitle are updated together: a reader never sees a
// count from one item paired with the title of another.
type IngestionProgress struct {
	CurrentTitle string `json:"current_title"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
}

// Percent returns the completion percentage, 0 for an empty batch.
func (p IngestionProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Done reports whether every item in the batch has been processed.
func (p IngestionProgress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}
