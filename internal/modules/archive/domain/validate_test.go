package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"prax/internal/modules/archive/domain"
	apperrors "prax/internal/platform/errors"
)

const validPayload = `{
  "metadata": {
    "export_date": "2026-03-12T10:00:00Z",
    "app_version": "0.3.0",
    "total_practice_areas": 1,
    "total_sessions": 2,
    "total_reflections": 1
  },
  "practice_areas": [
    {
      "id": "area-1",
      "name": "Guitar",
      "type": "solo_skill",
      "type_label": "Solo Skill",
      "created_at": "2026-03-01T08:00:00Z",
      "sessions": [
        {
          "id": "sess-1",
          "previous_session_id": null,
          "intent": "chord changes",
          "started_at": "2026-03-10T09:00:00Z",
          "ended_at": "2026-03-10T09:30:00Z",
          "target_duration_seconds": 1500,
          "actual_duration_seconds": 1800,
          "met_target": true,
          "reflection": {
            "coaching_tone": 2,
            "coaching_tone_label": "Socratic",
            "ai_assisted": false,
            "step2": "kept tempo",
            "step3": "slow practice first",
            "step4": "metronome tomorrow",
            "ai_request_count": 0,
            "ai_accept_count": 0,
            "feedback_rating": 3,
            "feedback_rating_label": "Very helpful",
            "feedback_note": null,
            "completed_at": "2026-03-10T10:00:00Z",
            "updated_at": null,
            "is_edited": false
          }
        },
        {
          "id": "sess-2",
          "previous_session_id": "sess-1",
          "intent": "barre chords",
          "started_at": "2026-03-11T09:00:00Z",
          "ended_at": null,
          "target_duration_seconds": null,
          "actual_duration_seconds": null,
          "met_target": null,
          "reflection": null
        }
      ]
    }
  ]
}`

func TestParseSnapshotAcceptsWellFormedPayload(t *testing.T) {
	t.Parallel()
	snapshot, err := domain.ParseSnapshot([]byte(validPayload))
	if err != nil {
		t.Fatalf("parse valid payload: %v", err)
	}
	if snapshot.Metadata.AppVersion != "0.3.0" || len(snapshot.PracticeAreas) != 1 {
		t.Fatalf("unexpected snapshot shape: %+v", snapshot.Metadata)
	}
	sessions := snapshot.PracticeAreas[0].Sessions
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Reflection == nil || sessions[0].Reflection.CoachingTone != 2 {
		t.Fatalf("first session must carry its reflection: %+v", sessions[0].Reflection)
	}
	if sessions[1].Reflection != nil || sessions[1].EndedAt != nil {
		t.Fatalf("second session must be active and unreflected")
	}
}

// mutate decodes the valid payload, applies fn to the generic tree and
// re-encodes it.
func mutate(t *testing.T, fn func(root map[string]any)) []byte {
	t.Helper()
	var root map[string]any
	if err := json.Unmarshal([]byte(validPayload), &root); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	fn(root)
	data, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("re-encode fixture: %v", err)
	}
	return data
}

func session(root map[string]any, area, index int) map[string]any {
	areas := root["practice_areas"].([]any)
	sessions := areas[area].(map[string]any)["sessions"].([]any)
	return sessions[index].(map[string]any)
}

func TestParseSnapshotReportsExactPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		fn       func(root map[string]any)
		wantPath string
	}{
		{
			name:     "missing session intent",
			fn:       func(root map[string]any) { delete(session(root, 0, 1), "intent") },
			wantPath: "practice_areas[0].sessions[1].intent",
		},
		{
			name:     "empty session intent",
			fn:       func(root map[string]any) { session(root, 0, 0)["intent"] = "" },
			wantPath: "practice_areas[0].sessions[0].intent",
		},
		{
			name: "unknown area type",
			fn: func(root map[string]any) {
				root["practice_areas"].([]any)[0].(map[string]any)["type"] = "musical"
			},
			wantPath: "practice_areas[0].type",
		},
		{
			name:     "absent nullable field",
			fn:       func(root map[string]any) { delete(session(root, 0, 1), "previous_session_id") },
			wantPath: "practice_areas[0].sessions[1].previous_session_id",
		},
		{
			name:     "wrong type for started_at",
			fn:       func(root map[string]any) { session(root, 0, 0)["started_at"] = 12345 },
			wantPath: "practice_areas[0].sessions[0].started_at",
		},
		{
			name: "coaching tone out of range",
			fn: func(root map[string]any) {
				session(root, 0, 0)["reflection"].(map[string]any)["coaching_tone"] = 9
			},
			wantPath: "practice_areas[0].sessions[0].reflection.coaching_tone",
		},
		{
			name: "feedback rating out of range",
			fn: func(root map[string]any) {
				session(root, 0, 0)["reflection"].(map[string]any)["feedback_rating"] = 7
			},
			wantPath: "practice_areas[0].sessions[0].reflection.feedback_rating",
		},
		{
			name: "updated_at before completed_at",
			fn: func(root map[string]any) {
				session(root, 0, 0)["reflection"].(map[string]any)["updated_at"] = "2026-03-10T09:59:00Z"
			},
			wantPath: "practice_areas[0].sessions[0].reflection.updated_at",
		},
		{
			name:     "missing app version",
			fn:       func(root map[string]any) { delete(root["metadata"].(map[string]any), "app_version") },
			wantPath: "metadata.app_version",
		},
		{
			name:     "practice_areas not an array",
			fn:       func(root map[string]any) { root["practice_areas"] = "nope" },
			wantPath: "practice_areas",
		},
		{
			name:     "actual duration on active session",
			fn:       func(root map[string]any) { session(root, 0, 1)["actual_duration_seconds"] = 60 },
			wantPath: "practice_areas[0].sessions[1].actual_duration_seconds",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseSnapshot(mutate(t, tc.fn))
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantPath) {
				t.Fatalf("error must name path %q, got %q", tc.wantPath, err)
			}
		})
	}
}

func TestParseSnapshotRejectsNonObject(t *testing.T) {
	t.Parallel()
	for _, payload := range []string{`[]`, `"snapshot"`, `42`, `not json`} {
		if _, err := domain.ParseSnapshot([]byte(payload)); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("payload %q: want ErrInvalidInput, got %v", payload, err)
		}
	}
}

func TestRestoredReflectionIDStable(t *testing.T) {
	t.Parallel()
	first := domain.RestoredReflectionID("sess-1")
	if first != domain.RestoredReflectionID("sess-1") {
		t.Fatalf("id must be deterministic per session")
	}
	if first == domain.RestoredReflectionID("sess-2") {
		t.Fatalf("distinct sessions must yield distinct ids")
	}
}
