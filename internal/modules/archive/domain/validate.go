package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	practice "prax/internal/modules/practice/domain"
	apperrors "prax/internal/platform/errors"
)

// ParseSnapshot structurally validates a candidate payload and decodes it.
// It has no side effects: a failure reports the first offending path and
// leaves the caller free to abort before touching any store. Nullable
// fields must be explicitly null, never absent.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return Snapshot{}, invalid("(root)", "payload must be a JSON object")
	}
	if err := validateMetadata(root); err != nil {
		return Snapshot{}, err
	}
	areasRaw, ok := root["practice_areas"]
	if !ok {
		return Snapshot{}, invalid("practice_areas", "missing required field")
	}
	var areas []json.RawMessage
	if err := json.Unmarshal(areasRaw, &areas); err != nil {
		return Snapshot{}, invalid("practice_areas", "must be an array")
	}
	for i, areaRaw := range areas {
		if err := validateArea(areaRaw, fmt.Sprintf("practice_areas[%d]", i)); err != nil {
			return Snapshot{}, err
		}
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, invalid("(root)", err.Error())
	}
	return snapshot, nil
}

func validateMetadata(root map[string]json.RawMessage) error {
	metaRaw, ok := root["metadata"]
	if !ok {
		return invalid("metadata", "missing required field")
	}
	meta, err := asObject(metaRaw, "metadata")
	if err != nil {
		return err
	}
	if _, err := meta.requireTime("export_date"); err != nil {
		return err
	}
	if _, err := meta.requireString("app_version"); err != nil {
		return err
	}
	for _, name := range []string{"total_practice_areas", "total_sessions", "total_reflections"} {
		count, err := meta.requireInt(name)
		if err != nil {
			return err
		}
		if count < 0 {
			return invalid("metadata."+name, "must not be negative")
		}
	}
	return nil
}

func validateArea(raw json.RawMessage, path string) error {
	area, err := asObject(raw, path)
	if err != nil {
		return err
	}
	if _, err := area.requireString("id"); err != nil {
		return err
	}
	if _, err := area.requireString("name"); err != nil {
		return err
	}
	areaType, err := area.requireString("type")
	if err != nil {
		return err
	}
	if err := practice.AreaType(areaType).Validate(); err != nil {
		return invalid(path+".type", fmt.Sprintf("unknown practice area type %q", areaType))
	}
	if _, err := area.requireString("type_label"); err != nil {
		return err
	}
	if _, err := area.requireTime("created_at"); err != nil {
		return err
	}
	sessionsRaw, ok := area.obj["sessions"]
	if !ok {
		return invalid(path+".sessions", "missing required field")
	}
	var sessions []json.RawMessage
	if err := json.Unmarshal(sessionsRaw, &sessions); err != nil {
		return invalid(path+".sessions", "must be an array")
	}
	for j, sessionRaw := range sessions {
		if err := validateSession(sessionRaw, fmt.Sprintf("%s.sessions[%d]", path, j)); err != nil {
			return err
		}
	}
	return nil
}

func validateSession(raw json.RawMessage, path string) error {
	session, err := asObject(raw, path)
	if err != nil {
		return err
	}
	if _, err := session.requireString("id"); err != nil {
		return err
	}
	if _, err := session.optionalString("previous_session_id"); err != nil {
		return err
	}
	if _, err := session.requireString("intent"); err != nil {
		return err
	}
	if _, err := session.requireTime("started_at"); err != nil {
		return err
	}
	ended, err := session.optionalTime("ended_at")
	if err != nil {
		return err
	}
	target, err := session.optionalInt("target_duration_seconds")
	if err != nil {
		return err
	}
	if target != nil && *target <= 0 {
		return invalid(path+".target_duration_seconds", "must be a positive integer or null")
	}
	actual, err := session.optionalInt("actual_duration_seconds")
	if err != nil {
		return err
	}
	if actual != nil && ended == nil {
		return invalid(path+".actual_duration_seconds", "must be null while the session is active")
	}
	if _, err := session.optionalBool("met_target"); err != nil {
		return err
	}
	reflectionRaw, ok := session.obj["reflection"]
	if !ok {
		return invalid(path+".reflection", "missing required field")
	}
	if isNull(reflectionRaw) {
		return nil
	}
	return validateReflection(reflectionRaw, path+".reflection")
}

func validateReflection(raw json.RawMessage, path string) error {
	reflection, err := asObject(raw, path)
	if err != nil {
		return err
	}
	tone, err := reflection.requireInt("coaching_tone")
	if err != nil {
		return err
	}
	if err := practice.CoachingTone(tone).Validate(); err != nil {
		return invalid(path+".coaching_tone", fmt.Sprintf("unknown coaching tone %d", tone))
	}
	if _, err := reflection.requireString("coaching_tone_label"); err != nil {
		return err
	}
	if _, err := reflection.requireBool("ai_assisted"); err != nil {
		return err
	}
	for _, name := range []string{"step2", "step3", "step4"} {
		if _, err := reflection.requireString(name); err != nil {
			return err
		}
	}
	for _, name := range []string{"ai_request_count", "ai_accept_count"} {
		count, err := reflection.requireInt(name)
		if err != nil {
			return err
		}
		if count < 0 {
			return invalid(path+"."+name, "must not be negative")
		}
	}
	rating, err := reflection.optionalInt("feedback_rating")
	if err != nil {
		return err
	}
	if rating != nil {
		if err := practice.FeedbackRating(*rating).Validate(); err != nil {
			return invalid(path+".feedback_rating", fmt.Sprintf("rating %d out of range", *rating))
		}
	}
	if _, err := reflection.optionalString("feedback_rating_label"); err != nil {
		return err
	}
	if _, err := reflection.optionalString("feedback_note"); err != nil {
		return err
	}
	completed, err := reflection.requireTime("completed_at")
	if err != nil {
		return err
	}
	updated, err := reflection.optionalTime("updated_at")
	if err != nil {
		return err
	}
	if updated != nil && updated.Before(completed) {
		return invalid(path+".updated_at", "must not precede completed_at")
	}
	if _, err := reflection.requireBool("is_edited"); err != nil {
		return err
	}
	return nil
}

// object pairs a decoded JSON object with its path so every field check
// reports where it failed.
type object struct {
	obj  map[string]json.RawMessage
	path string
}

func asObject(raw json.RawMessage, path string) (object, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return object{}, invalid(path, "must be an object")
	}
	return object{obj: obj, path: path}, nil
}

func (o object) requireString(name string) (string, error) {
	raw, ok := o.obj[name]
	if !ok {
		return "", invalid(o.path+"."+name, "missing required field")
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", invalid(o.path+"."+name, "must be a string")
	}
	if value == "" {
		return "", invalid(o.path+"."+name, "must not be empty")
	}
	return value, nil
}

func (o object) optionalString(name string) (*string, error) {
	raw, ok := o.obj[name]
	if !ok {
		return nil, invalid(o.path+"."+name, "missing required field")
	}
	if isNull(raw) {
		return nil, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, invalid(o.path+"."+name, "must be a string or null")
	}
	return &value, nil
}

func (o object) requireInt(name string) (int, error) {
	raw, ok := o.obj[name]
	if !ok {
		return 0, invalid(o.path+"."+name, "missing required field")
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, invalid(o.path+"."+name, "must be an integer")
	}
	return value, nil
}

func (o object) optionalInt(name string) (*int, error) {
	raw, ok := o.obj[name]
	if !ok {
		return nil, invalid(o.path+"."+name, "missing required field")
	}
	if isNull(raw) {
		return nil, nil
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, invalid(o.path+"."+name, "must be an integer or null")
	}
	return &value, nil
}

func (o object) requireBool(name string) (bool, error) {
	raw, ok := o.obj[name]
	if !ok {
		return false, invalid(o.path+"."+name, "missing required field")
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, invalid(o.path+"."+name, "must be a boolean")
	}
	return value, nil
}

func (o object) optionalBool(name string) (*bool, error) {
	raw, ok := o.obj[name]
	if !ok {
		return nil, invalid(o.path+"."+name, "missing required field")
	}
	if isNull(raw) {
		return nil, nil
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, invalid(o.path+"."+name, "must be a boolean or null")
	}
	return &value, nil
}

func (o object) requireTime(name string) (time.Time, error) {
	raw, ok := o.obj[name]
	if !ok {
		return time.Time{}, invalid(o.path+"."+name, "missing required field")
	}
	var value time.Time
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, invalid(o.path+"."+name, "must be an RFC 3339 timestamp")
	}
	return value, nil
}

func (o object) optionalTime(name string) (*time.Time, error) {
	raw, ok := o.obj[name]
	if !ok {
		return nil, invalid(o.path+"."+name, "missing required field")
	}
	if isNull(raw) {
		return nil, nil
	}
	var value time.Time
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, invalid(o.path+"."+name, "must be an RFC 3339 timestamp or null")
	}
	return &value, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func invalid(path, reason string) error {
	return fmt.Errorf("%s: %s: %w", path, reason, apperrors.ErrInvalidInput)
}
