package domain

import (
	"errors"
	"fmt"
	"regexp"

	practice "prax/internal/modules/practice/domain"
)

var (
	ErrCoachNotConfigured = errors.New("no coach plugin configured")
	ErrCoachDisabled      = errors.New("coach plugin is disabled")
	ErrChecksumMismatch   = errors.New("coach plugin checksum mismatch")
	ErrCoachTimeout       = errors.New("coach plugin timeout")
	ErrEmptyPrompt        = errors.New("coach plugin returned no prompt")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes the single configured coach plugin binary. The
// checksum is verified before every launch.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("coach plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("coach plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("coach plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("coach plugin sha256 must be lowercase 64-char hex")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
}

// Reflection steps the coach can prompt for. Step 1 (tone selection) needs
// no prompt.
const (
	StepWhatHappened = 2
	StepLesson       = 3
	StepNextAction   = 4
)

// SessionContext is the read-only journal excerpt handed to the coach. The
// coach never mutates state; it only sees what it needs to ask a question.
type SessionContext struct {
	AreaName           string
	AreaType           string
	SessionIntent      string
	PreviousNextAction string
}

type PromptRequest struct {
	Context     SessionContext
	Tone        practice.CoachingTone
	Step        int
	StepAnswers map[int]string
}

func (r PromptRequest) Validate() error {
	if err := r.Tone.Validate(); err != nil {
		return err
	}
	if r.Step < StepWhatHappened || r.Step > StepNextAction {
		return fmt.Errorf("prompt step must be between %d and %d, got %d", StepWhatHappened, StepNextAction, r.Step)
	}
	if r.Context.SessionIntent == "" {
		return fmt.Errorf("session intent is required")
	}
	return nil
}

// FallbackPrompt is the deterministic static text used whenever the plugin
// is missing, unhealthy, or silent. Coach failures never block reflecting.
func FallbackPrompt(tone practice.CoachingTone, step int) string {
	prompts := fallbackPrompts[tone]
	if text, ok := prompts[step]; ok {
		return text
	}
	return "Take a moment and write down what stands out from this session."
}

var fallbackPrompts = map[practice.CoachingTone]map[int]string{
	practice.ToneFacilitative: {
		StepWhatHappened: "Walk through the session from start to finish. What actually happened?",
		StepLesson:       "Looking at what happened, what is the one lesson worth keeping?",
		StepNextAction:   "What is the single most useful thing to do in your next session?",
	},
	practice.ToneSocratic: {
		StepWhatHappened: "What did you expect to happen in this session, and where did reality differ?",
		StepLesson:       "Why do you think it went the way it did? What does that tell you?",
		StepNextAction:   "If you could only change one thing next time, what would it be and why?",
	},
	practice.ToneSupportive: {
		StepWhatHappened: "Nice work showing up. What happened during the session, good or bad?",
		StepLesson:       "Every session teaches something. What did this one teach you?",
		StepNextAction:   "Pick one small, concrete step for next time. What feels doable?",
	},
}
