package domain

import (
	"reflect"
	"testing"
)

func TestIsMutualMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b SkillSet
		want bool
	}{
		{
			name: "both directions overlap",
			a:    SkillSet{Teach: []string{"Go"}, Learn: []string{"Piano"}},
			b:    SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}},
			want: true,
		},
		{
			name: "one direction only",
			a:    SkillSet{Teach: []string{"Go"}, Learn: []string{"Piano"}},
			b:    SkillSet{Teach: []string{"Piano"}, Learn: []string{"Cooking"}},
			want: false,
		},
		{
			name: "labels are case sensitive",
			a:    SkillSet{Teach: []string{"go"}, Learn: []string{"Piano"}},
			b:    SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}},
			want: false,
		},
		{
			name: "missing lists never match",
			a:    SkillSet{Teach: []string{"Go"}},
			b:    SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMutualMatch(tt.a, tt.b); got != tt.want {
				t.Fatalf("IsMutualMatch(a, b) = %v, want %v", got, tt.want)
			}
			if got := IsMutualMatch(tt.b, tt.a); got != tt.want {
				t.Fatalf("IsMutualMatch(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchScore(t *testing.T) {
	a := SkillSet{Teach: []string{"Go", "SQL"}, Learn: []string{"Piano", "Spanish"}, Location: "Berlin"}
	b := SkillSet{Teach: []string{"Piano", "Spanish"}, Learn: []string{"Go"}, Location: "berlin"}

	// two wanted skills taught by b, one wanted skill taught by a, same city
	want := 2*SkillMatchPoints + SkillMatchPoints + SameLocationPoints
	if got := MatchScore(a, b); got != want {
		t.Fatalf("MatchScore = %d, want %d", got, want)
	}
	if MatchScore(a, b) != MatchScore(b, a) {
		t.Fatalf("MatchScore should be symmetric")
	}
}

func TestMatchScoreLocation(t *testing.T) {
	base := SkillSet{Teach: []string{"Go"}, Learn: []string{"Piano"}}
	other := SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}}

	withLoc := func(s SkillSet, loc string) SkillSet {
		s.Location = loc
		return s
	}

	if got := MatchScore(withLoc(base, ""), withLoc(other, "")); got != 20 {
		t.Fatalf("empty locations: got %d, want 20", got)
	}
	if got := MatchScore(withLoc(base, "Lagos"), withLoc(other, "")); got != 20 {
		t.Fatalf("one empty location: got %d, want 20", got)
	}
	if got := MatchScore(withLoc(base, "NEW YORK"), withLoc(other, "New York")); got != 25 {
		t.Fatalf("case folded location: got %d, want 25", got)
	}
	if got := MatchScore(withLoc(base, "Paris"), withLoc(other, "Lyon")); got != 20 {
		t.Fatalf("different locations: got %d, want 20", got)
	}
}

func TestMatchScoreCountsDuplicates(t *testing.T) {
	a := SkillSet{Teach: []string{"Go"}, Learn: []string{"Piano", "Piano"}}
	b := SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}}
	if got := MatchScore(a, b); got != 30 {
		t.Fatalf("MatchScore = %d, want 30", got)
	}
}

func TestRankMatches(t *testing.T) {
	current := SkillSet{Teach: []string{"Go", "SQL"}, Learn: []string{"Piano", "Chess"}, Location: "Oslo"}
	candidates := []Candidate{
		{UserID: "no-match", Skills: SkillSet{Teach: []string{"Piano"}, Learn: []string{"Knitting"}}},
		{UserID: "low", Skills: SkillSet{Teach: []string{"Piano"}, Learn: []string{"Go"}}},
		{UserID: "high", Skills: SkillSet{Teach: []string{"Piano", "Chess"}, Learn: []string{"Go", "SQL"}}},
		{UserID: "low-local", Skills: SkillSet{Teach: []string{"Chess"}, Learn: []string{"SQL"}, Location: "oslo"}},
		{UserID: "low-2", Skills: SkillSet{Teach: []string{"Chess"}, Learn: []string{"SQL"}}},
	}

	got := RankMatches(current, candidates)

	var ids []string
	for _, m := range got {
		ids = append(ids, m.UserID)
	}
	want := []string{"high", "low-local", "low", "low-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ranking = %v, want %v", ids, want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Fatalf("scores not descending at %d: %d < %d", i, got[i-1].Score, got[i].Score)
		}
	}
	if got[0].Score != 40 {
		t.Fatalf("top score = %d, want 40", got[0].Score)
	}
}

func TestRankMatchesWithoutSkills(t *testing.T) {
	candidates := []Candidate{{UserID: "x", Skills: SkillSet{Teach: []string{"Go"}, Learn: []string{"Go"}}}}
	if got := RankMatches(SkillSet{Teach: []string{"Go"}}, candidates); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestSuggestExchangeSkills(t *testing.T) {
	me := SkillSet{Teach: []string{"Cooking", "Go", "SQL"}, Learn: []string{"Piano", "French"}}
	them := SkillSet{Teach: []string{"French", "Piano"}, Learn: []string{"SQL", "Go"}}

	teach, learn := SuggestExchangeSkills(me, them)
	if teach != "Go" {
		t.Fatalf("toTeach = %q, want Go", teach)
	}
	if learn != "French" {
		t.Fatalf("toLearn = %q, want French", learn)
	}

	teach, learn = SuggestExchangeSkills(me, SkillSet{})
	if teach != "" || learn != "" {
		t.Fatalf("expected empty suggestions, got %q/%q", teach, learn)
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{" Go ", "", "Piano", "Go", "  ", "piano"})
	want := []string{"Go", "Piano", "piano"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSkills = %v, want %v", got, want)
	}
	if got := NormalizeSkills(nil); got == nil || len(got) != 0 {
		t.Fatalf("NormalizeSkills(nil) = %#v, want empty slice", got)
	}
}
