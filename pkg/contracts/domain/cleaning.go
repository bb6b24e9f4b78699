package domain

// CleaningReport describes what the cleaning pipeline did to a table.
type CleaningReport struct {
	// DroppedDuplicates is the number of duplicate rows removed.
	DroppedDuplicates int `json:"dropped_duplicates"`

	// ImputedCells is the total number of missing cells seen by the
	// imputation stage, summed across columns before filling.
	ImputedCells int `json:"imputed_cells"`

	// Transformations lists human-readable notes in the order the pipeline
	// stages ran; within a stage, in column order.
	Transformations []string `json:"transformations"`
}
