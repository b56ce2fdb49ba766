package domain

import (
	"fmt"
	"strings"
	"time"
)

type AreaType string

const (
	AreaTypeSoloSkill     AreaType = "solo_skill"
	AreaTypePerformance   AreaType = "performance"
	AreaTypeInterpersonal AreaType = "interpersonal"
	AreaTypeCreative      AreaType = "creative"
)

func (t AreaType) Validate() error {
	switch t {
	case AreaTypeSoloSkill, AreaTypePerformance, AreaTypeInterpersonal, AreaTypeCreative:
		return nil
	default:
		return fmt.Errorf("unsupported area type %q", string(t))
	}
}

// Label is the only place area type display names come from. The code is
// authoritative; labels are regenerated from it and never stored.
func (t AreaType) Label() string {
	switch t {
	case AreaTypeSoloSkill:
		return "Solo Skill"
	case AreaTypePerformance:
		return "Performance"
	case AreaTypeInterpersonal:
		return "Interpersonal"
	case AreaTypeCreative:
		return "Creative"
	default:
		return string(t)
	}
}

// Area is a user-defined domain of recurring practice. Areas that own
// sessions are never hard-deleted; Deleted is a soft flag that never
// un-flips.
type Area struct {
	ID        string
	Name      string
	Type      AreaType
	CreatedAt time.Time
	Deleted   bool
}

func (a Area) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("area id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("area name is required")
	}
	return a.Type.Validate()
}
