package dto

// ExportOutput reports where the snapshot landed and how much it covers.
type ExportOutput struct {
	Path          string
	PracticeAreas int
	Sessions      int
	Reflections   int
}

// ImportOutput reports restore counts for user-facing confirmation.
type ImportOutput struct {
	PracticeAreas int
	Sessions      int
	Reflections   int
}
