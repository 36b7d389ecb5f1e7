package nlp

import (
	"math"
	"sort"
	"strings"

	"TutorDesk/internal/entity"
)

const (
	// Candidates scoring below this are discarded entirely.
	minCandidateScore = 0.66
	// Top two candidates within this margin of each other are ambiguous.
	ambiguityMargin = 0.08
	// Shortest strings considered for the edit-distance fallback.
	minFuzzyLen = 4

	maxAmbiguousCandidates = 5
)

// ResolveName scores one name fragment against the student roster and
// decides resolved, ambiguous, or missing. Students already claimed by an
// earlier fragment of the same request (the used set) are skipped; on a
// clean resolution the winner is added to the set. Scoring is pure and
// deterministic, so identical inputs always produce identical outcomes.
func ResolveName(fragment string, students []entity.Student, used map[string]bool) Resolution {
	frag := foldText(fragment)

	var candidates []NameMatch
	for _, student := range students {
		if used[student.ID] {
			continue
		}
		if match, ok := scoreStudent(frag, student); ok {
			candidates = append(candidates, match)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Student.FullName() < candidates[j].Student.FullName()
	})

	if len(candidates) == 0 {
		return Resolution{Fragment: fragment, Outcome: ResolutionMissing}
	}

	if len(candidates) >= 2 && candidates[0].Score-candidates[1].Score <= ambiguityMargin {
		kept := candidates
		if len(kept) > maxAmbiguousCandidates {
			kept = kept[:maxAmbiguousCandidates]
		}
		return Resolution{Fragment: fragment, Outcome: ResolutionAmbiguous, Candidates: kept}
	}

	winner := candidates[0]
	used[winner.Student.ID] = true
	return Resolution{Fragment: fragment, Outcome: ResolutionResolved, Match: &winner}
}

// scoreStudent applies the scoring rules in priority order; the first rule
// that fires wins for the pair.
func scoreStudent(frag string, student entity.Student) (NameMatch, bool) {
	first := foldText(student.FirstName)
	last := foldText(student.LastName)
	full := foldText(student.FullName())

	switch frag {
	case full:
		return NameMatch{Student: student, Score: 1.0, Strategy: MatchExact}, true
	case first:
		return NameMatch{Student: student, Score: 0.95, Strategy: MatchExact}, true
	case last:
		if last != "" {
			return NameMatch{Student: student, Score: 0.90, Strategy: MatchExact}, true
		}
	}

	for _, name := range []string{first, last, full} {
		if name == "" {
			continue
		}
		if containsEither(frag, name) {
			return NameMatch{Student: student, Score: 0.80, Strategy: MatchContains}, true
		}
	}

	best := 0.0
	if d := levenshtein(frag, first); eligible(frag, first) && d <= 2 {
		best = math.Max(best, math.Max(0.72, 0.90-0.12*float64(d)))
	}
	if d := levenshtein(frag, last); eligible(frag, last) && d <= 2 {
		best = math.Max(best, math.Max(0.70, 0.82-0.10*float64(d)))
	}
	if d := levenshtein(frag, full); eligible(frag, full) && d <= 3 {
		best = math.Max(best, math.Max(0.66, 0.78-0.06*float64(d)))
	}

	if best < minCandidateScore {
		return NameMatch{}, false
	}
	return NameMatch{Student: student, Score: best, Strategy: MatchFuzzy}, true
}

func eligible(a, b string) bool {
	return len(a) >= minFuzzyLen && len(b) >= minFuzzyLen
}

func containsEither(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	if a < b && a < c {
		return a
	} else if b < c {
		return b
	}
	return c
}
