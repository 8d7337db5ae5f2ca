// internal/profile/preferences_test.go

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestNormalizePreferences(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Preferences
	}{
		{
			name: "empty blob falls back to defaults",
			raw:  "",
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 50},
				MaxDistanceKM:    25,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "malformed json falls back to defaults",
			raw:  `{"age_range": not-json`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 50},
				MaxDistanceKM:    25,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "fully populated blob passes through",
			raw:  `{"age_range":{"min":21,"max":35},"max_distance_km":80,"genders":["female","nonbinary"],"relationship_goal":"serious"}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 21, Max: 35},
				MaxDistanceKM:    80,
				Genders:          []string{"female", "nonbinary"},
				RelationshipGoal: GoalSerious,
			},
		},
		{
			name: "partial blob fills missing fields with defaults",
			raw:  `{"max_distance_km":10}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 50},
				MaxDistanceKM:    10,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "inverted age range is swapped",
			raw:  `{"age_range":{"min":40,"max":22}}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 22, Max: 40},
				MaxDistanceKM:    25,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "numeric strings are accepted",
			raw:  `{"age_range":{"min":"20","max":"30"},"max_distance_km":"15"}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 20, Max: 30},
				MaxDistanceKM:    15,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "bad field types fall back individually",
			raw:  `{"age_range":{"min":true,"max":33},"max_distance_km":{"oops":1},"genders":"female","relationship_goal":42}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 33},
				MaxDistanceKM:    25,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "genders are deduped and cleaned",
			raw:  `{"genders":["female","","female","male",7]}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 50},
				MaxDistanceKM:    25,
				Genders:          []string{"female", "male"},
				RelationshipGoal: GoalNotSure,
			},
		},
		{
			name: "unknown relationship goal falls back",
			raw:  `{"relationship_goal":"complicated"}`,
			expected: Preferences{
				AgeRange:         AgeRange{Min: 18, Max: 50},
				MaxDistanceKM:    25,
				Genders:          []string{},
				RelationshipGoal: GoalNotSure,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePreferences([]byte(tt.raw))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMergePreferences(t *testing.T) {
	current := Preferences{
		AgeRange:         AgeRange{Min: 20, Max: 30},
		MaxDistanceKM:    50,
		Genders:          []string{"female"},
		RelationshipGoal: GoalCasual,
	}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		merged := MergePreferences(current, &PreferencesPatch{})
		assert.Equal(t, current, merged)
	})

	t.Run("set fields replace, unset fields persist", func(t *testing.T) {
		merged := MergePreferences(current, &PreferencesPatch{
			AgeMax:        intPtr(45),
			MaxDistanceKM: intPtr(5),
		})
		assert.Equal(t, AgeRange{Min: 20, Max: 45}, merged.AgeRange)
		assert.Equal(t, 5, merged.MaxDistanceKM)
		assert.Equal(t, []string{"female"}, merged.Genders)
		assert.Equal(t, GoalCasual, merged.RelationshipGoal)
	})

	t.Run("genders list is replaced wholesale and deduped", func(t *testing.T) {
		merged := MergePreferences(current, &PreferencesPatch{
			Genders: []string{"male", "male", "", "nonbinary"},
		})
		assert.Equal(t, []string{"male", "nonbinary"}, merged.Genders)
	})

	t.Run("inverted merged range is swapped", func(t *testing.T) {
		merged := MergePreferences(current, &PreferencesPatch{AgeMin: intPtr(40)})
		assert.Equal(t, AgeRange{Min: 30, Max: 40}, merged.AgeRange)
	})

	t.Run("relationship goal must be known", func(t *testing.T) {
		merged := MergePreferences(current, &PreferencesPatch{RelationshipGoal: strPtr(GoalSerious)})
		assert.Equal(t, GoalSerious, merged.RelationshipGoal)

		merged = MergePreferences(current, &PreferencesPatch{RelationshipGoal: strPtr("complicated")})
		assert.Equal(t, GoalCasual, merged.RelationshipGoal)
	})

	t.Run("merge does not mutate the current value", func(t *testing.T) {
		before := append([]string(nil), current.Genders...)
		MergePreferences(current, &PreferencesPatch{Genders: []string{"male"}})
		assert.Equal(t, before, current.Genders)
	})
}

func TestPreferencesScan(t *testing.T) {
	t.Run("nil column yields defaults", func(t *testing.T) {
		var p Preferences
		assert.NoError(t, p.Scan(nil))
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("garbage column yields defaults, not an error", func(t *testing.T) {
		var p Preferences
		assert.NoError(t, p.Scan([]byte("{{")))
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("valid column normalizes", func(t *testing.T) {
		var p Preferences
		assert.NoError(t, p.Scan([]byte(`{"age_range":{"min":35,"max":25}}`)))
		assert.Equal(t, AgeRange{Min: 25, Max: 35}, p.AgeRange)
	})
}
