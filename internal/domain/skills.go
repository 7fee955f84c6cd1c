package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

const (
	// SkillMatchPoints is awarded for every wanted skill the other side can teach.
	SkillMatchPoints = 10
	// SameLocationPoints is awarded when both users report the same location.
	SameLocationPoints = 5
)

// SkillSet is the part of a profile the matcher looks at.
type SkillSet struct {
	Teach    []string
	Learn    []string
	Location string
}

// Candidate is a user considered for matching against the current user.
type Candidate struct {
	UserID string
	Skills SkillSet
}

// Match is a ranked candidate.
type Match struct {
	UserID string
	Score  int
	Skills SkillSet
}

func containsSkill(list []string, skill string) bool {
	for _, s := range list {
		if s == skill {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, s := range a {
		if containsSkill(b, s) {
			return true
		}
	}
	return false
}

// IsMutualMatch reports whether each user wants at least one skill the other teaches.
// Skill labels are compared exactly.
func IsMutualMatch(a, b SkillSet) bool {
	return intersects(a.Learn, b.Teach) && intersects(b.Learn, a.Teach)
}

// SameLocation compares two free-text locations case-insensitively.
// Empty locations never match.
func SameLocation(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return cases.Fold().String(a) == cases.Fold().String(b)
}

// MatchScore returns the point total between two users. Every occurrence counts,
// so duplicated labels in a list score more than once.
func MatchScore(a, b SkillSet) int {
	score := 0
	for _, skill := range a.Learn {
		if containsSkill(b.Teach, skill) {
			score += SkillMatchPoints
		}
	}
	for _, skill := range b.Learn {
		if containsSkill(a.Teach, skill) {
			score += SkillMatchPoints
		}
	}
	if SameLocation(a.Location, b.Location) {
		score += SameLocationPoints
	}
	return score
}

// RankMatches keeps the mutual matches among candidates and orders them by
// descending score. Equal scores keep their input order.
func RankMatches(current SkillSet, candidates []Candidate) []Match {
	if len(current.Teach) == 0 || len(current.Learn) == 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if !IsMutualMatch(current, c.Skills) {
			continue
		}
		matches = append(matches, Match{
			UserID: c.UserID,
			Score:  MatchScore(current, c.Skills),
			Skills: c.Skills,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// SuggestExchangeSkills picks the first skill the requester can teach that the
// recipient wants, and the first skill the recipient teaches that the requester wants.
func SuggestExchangeSkills(requester, recipient SkillSet) (toTeach, toLearn string) {
	for _, skill := range requester.Teach {
		if containsSkill(recipient.Learn, skill) {
			toTeach = skill
			break
		}
	}
	for _, skill := range recipient.Teach {
		if containsSkill(requester.Learn, skill) {
			toLearn = skill
			break
		}
	}
	return toTeach, toLearn
}

// NormalizeSkills trims labels, drops blanks and removes duplicates keeping the
// first occurrence.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
