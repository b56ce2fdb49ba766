package dto

// PromptInput asks for a coaching prompt for one reflection step of a
// session. StepAnswers carries answers already written in this sitting.
type PromptInput struct {
	SessionID   string
	Tone        int
	Step        int
	StepAnswers map[int]string
}

type PromptOutput struct {
	Text   string
	Step   int
	Source string // "plugin" or "fallback"
}

type CoachInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
}

type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
