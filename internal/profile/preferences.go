// internal/profile/preferences.go
// Discovery preferences and their normalization. Stored preference blobs may
// be legacy or partial data, so normalization is total: whatever is persisted,
// reading preferences always yields a fully-populated, consistent value.

package profile

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
)

// Relationship goals
const (
	GoalCasual    = "casual"
	GoalSerious   = "serious"
	GoalNotSure   = "not_sure"
	GoalExploring = "exploring"
)

// Preference defaults
const (
	DefaultAgeMin      = 18
	DefaultAgeMax      = 50
	DefaultMaxDistance = 25
)

var validGoals = map[string]bool{
	GoalCasual:    true,
	GoalSerious:   true,
	GoalNotSure:   true,
	GoalExploring: true,
}

// AgeRange is the accepted age window for discovery
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences represents a user's discovery preferences
type Preferences struct {
	AgeRange         AgeRange `json:"age_range"`
	MaxDistanceKM    int      `json:"max_distance_km"`
	Genders          []string `json:"genders"`
	RelationshipGoal string   `json:"relationship_goal"`
}

// PreferencesPatch is a partial preferences update. Nil fields keep the
// current value; a non-nil Genders list fully replaces the current list.
type PreferencesPatch struct {
	AgeMin           *int     `json:"age_min" validate:"omitempty,min=18,max=100"`
	AgeMax           *int     `json:"age_max" validate:"omitempty,min=18,max=100"`
	MaxDistanceKM    *int     `json:"max_distance_km" validate:"omitempty,min=1,max=500"`
	Genders          []string `json:"genders" validate:"omitempty,max=10,dive,min=1,max=50"`
	RelationshipGoal *string  `json:"relationship_goal" validate:"omitempty,oneof=casual serious not_sure exploring"`
}

// DefaultPreferences returns the fallback preference set
func DefaultPreferences() Preferences {
	return Preferences{
		AgeRange:         AgeRange{Min: DefaultAgeMin, Max: DefaultAgeMax},
		MaxDistanceKM:    DefaultMaxDistance,
		Genders:          []string{},
		RelationshipGoal: GoalNotSure,
	}
}

// NormalizePreferences coerces a raw stored blob into a valid Preferences
// value. It never fails: malformed fields fall back to their defaults
// individually, not the whole object.
func NormalizePreferences(raw []byte) Preferences {
	prefs := DefaultPreferences()

	if len(raw) == 0 {
		return prefs
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return prefs
	}

	if ar, ok := data["age_range"].(map[string]interface{}); ok {
		prefs.AgeRange.Min = coerceInt(ar["min"], DefaultAgeMin)
		prefs.AgeRange.Max = coerceInt(ar["max"], DefaultAgeMax)
	}
	if prefs.AgeRange.Min > prefs.AgeRange.Max {
		prefs.AgeRange.Min, prefs.AgeRange.Max = prefs.AgeRange.Max, prefs.AgeRange.Min
	}

	prefs.MaxDistanceKM = coerceInt(data["max_distance_km"], DefaultMaxDistance)

	if list, ok := data["genders"].([]interface{}); ok {
		prefs.Genders = dedupeStrings(list)
	}

	if goal, ok := data["relationship_goal"].(string); ok && validGoals[goal] {
		prefs.RelationshipGoal = goal
	}

	return prefs
}

// MergePreferences applies a patch on top of the current preferences.
// An inverted merged age range is swapped rather than rejected.
func MergePreferences(current Preferences, patch *PreferencesPatch) Preferences {
	merged := current
	merged.Genders = append([]string(nil), current.Genders...)

	if patch.AgeMin != nil {
		merged.AgeRange.Min = *patch.AgeMin
	}
	if patch.AgeMax != nil {
		merged.AgeRange.Max = *patch.AgeMax
	}
	if merged.AgeRange.Min > merged.AgeRange.Max {
		merged.AgeRange.Min, merged.AgeRange.Max = merged.AgeRange.Max, merged.AgeRange.Min
	}

	if patch.MaxDistanceKM != nil {
		merged.MaxDistanceKM = *patch.MaxDistanceKM
	}

	if patch.Genders != nil {
		seen := make(map[string]bool, len(patch.Genders))
		genders := make([]string, 0, len(patch.Genders))
		for _, g := range patch.Genders {
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			genders = append(genders, g)
		}
		merged.Genders = genders
	}

	if patch.RelationshipGoal != nil && validGoals[*patch.RelationshipGoal] {
		merged.RelationshipGoal = *patch.RelationshipGoal
	}

	return merged
}

// Scan implements the sql.Scanner interface, normalizing on every read
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		*p = DefaultPreferences()
		return nil
	}
	if bytes, ok := value.([]byte); ok {
		*p = NormalizePreferences(bytes)
		return nil
	}
	*p = DefaultPreferences()
	return nil
}

// Value implements the driver.Valuer interface
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// coerceInt accepts a number or a numeric string, else returns the fallback
func coerceInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return fallback
}

// dedupeStrings keeps non-empty strings in first-seen order
func dedupeStrings(list []interface{}) []string {
	seen := make(map[string]bool, len(list))
	out := []string{}
	for _, item := range list {
		s, ok := item.(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
