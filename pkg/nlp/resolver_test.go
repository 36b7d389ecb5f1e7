package nlp

import (
	"testing"

	"TutorDesk/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() []entity.Student {
	return []entity.Student{
		{ID: "s1", FirstName: "Sarah", LastName: "Chen"},
		{ID: "s2", FirstName: "Tiffany", LastName: "Lau"},
		{ID: "s3", FirstName: "Emma", LastName: "Brooks"},
		{ID: "s4", FirstName: "Emma", LastName: "Klein"},
		{ID: "s5", FirstName: "Leo", LastName: "Tanaka"},
		{ID: "s6", FirstName: "Chloe", LastName: "Park"},
		{ID: "s7", FirstName: "Mia", LastName: "Romero"},
	}
}

func TestResolveNameExact(t *testing.T) {
	tests := []struct {
		fragment string
		wantID   string
		score    float64
	}{
		{"sarah chen", "s1", 1.0},
		{"sarah", "s1", 0.95},
		{"chen", "s1", 0.90},
		{"tiffany", "s2", 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			res := ResolveName(tt.fragment, testRoster(), map[string]bool{})
			require.Equal(t, ResolutionResolved, res.Outcome)
			assert.Equal(t, tt.wantID, res.Match.Student.ID)
			assert.InDelta(t, tt.score, res.Match.Score, 1e-9)
		})
	}
}

func TestResolveNameContains(t *testing.T) {
	res := ResolveName("sara", testRoster(), map[string]bool{})
	require.Equal(t, ResolutionResolved, res.Outcome)
	assert.Equal(t, "s1", res.Match.Student.ID)
	assert.InDelta(t, 0.80, res.Match.Score, 1e-9)
	assert.Equal(t, MatchContains, res.Match.Strategy)
}

// Containment has no length floor; a two-letter prefix resolves as long as
// it points at exactly one student.
func TestResolveNameShortPrefix(t *testing.T) {
	res := ResolveName("ti", testRoster(), map[string]bool{})
	require.Equal(t, ResolutionResolved, res.Outcome)
	assert.Equal(t, "s2", res.Match.Student.ID)
	assert.InDelta(t, 0.80, res.Match.Score, 1e-9)
	assert.Equal(t, MatchContains, res.Match.Strategy)
}

func TestResolveNameFuzzy(t *testing.T) {
	// Two edits from "sarah", not a substring: max(0.72, 0.90 - 0.12*2).
	res := ResolveName("sarha", testRoster(), map[string]bool{})
	require.Equal(t, ResolutionResolved, res.Outcome)
	assert.Equal(t, "s1", res.Match.Student.ID)
	assert.InDelta(t, 0.72, res.Match.Score, 1e-9)
	assert.Equal(t, MatchFuzzy, res.Match.Strategy)
}

func TestResolveNameAmbiguous(t *testing.T) {
	res := ResolveName("emma", testRoster(), map[string]bool{})
	require.Equal(t, ResolutionAmbiguous, res.Outcome)
	require.Len(t, res.Candidates, 2)
	// Equal scores tie-break alphabetically by full name.
	assert.Equal(t, "Emma Brooks", res.Candidates[0].Student.FullName())
	assert.Equal(t, "Emma Klein", res.Candidates[1].Student.FullName())
}

func TestResolveNameMissing(t *testing.T) {
	res := ResolveName("zxq", testRoster(), map[string]bool{})
	assert.Equal(t, ResolutionMissing, res.Outcome)
}

func TestResolveNameUsedSet(t *testing.T) {
	used := map[string]bool{}

	first := ResolveName("emma brooks", testRoster(), used)
	require.Equal(t, ResolutionResolved, first.Outcome)
	assert.Equal(t, "s3", first.Match.Student.ID)

	// With Brooks claimed, the bare first name has one candidate left.
	second := ResolveName("emma", testRoster(), used)
	require.Equal(t, ResolutionResolved, second.Outcome)
	assert.Equal(t, "s4", second.Match.Student.ID)
}

func TestResolveNameDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		res := ResolveName("emma", testRoster(), map[string]bool{})
		require.Equal(t, ResolutionAmbiguous, res.Outcome)
		assert.Equal(t, "Emma Brooks", res.Candidates[0].Student.FullName())
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("sarah", "sarah"))
	assert.Equal(t, 1, levenshtein("sara", "sarah"))
	assert.Equal(t, 2, levenshtein("saar", "sarah"))
	assert.Equal(t, 5, levenshtein("", "sarah"))
}
