package model

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestComputeAudienceStats(t *testing.T) {
	if stats := ComputeAudienceStats(nil); stats != nil {
		t.Fatalf("expected nil stats for no participants, got %+v", stats)
	}
	if stats := ComputeAudienceStats([]Participant{{Name: "Pat"}}); stats != nil {
		t.Fatalf("expected nil stats when no participant has an age, got %+v", stats)
	}

	stats := ComputeAudienceStats([]Participant{
		{Age: intPtr(25)},
		{Age: intPtr(35)},
		{Age: intPtr(30)},
	})
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.Min != 25 || stats.Max != 35 || stats.Avg != 30.0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestComputeAudienceStatsRoundsAvgToOneDecimal(t *testing.T) {
	stats := ComputeAudienceStats([]Participant{
		{Age: intPtr(20)},
		{Age: intPtr(25)},
		{Age: intPtr(29)},
	})
	if stats.Avg != 24.7 {
		t.Fatalf("expected avg 24.7, got %v", stats.Avg)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p := GenerationParams{Theme: "Space"}
	p.Normalize()

	if p.Rounds != 3 {
		t.Errorf("expected default rounds 3, got %d", p.Rounds)
	}
	if p.QuestionsPerRound != 7 {
		t.Errorf("expected default questions per round 7, got %d", p.QuestionsPerRound)
	}
	if p.BrainrotLevel != BrainrotMedium {
		t.Errorf("expected default brainrot level medium, got %s", p.BrainrotLevel)
	}
	if !reflect.DeepEqual(p.AllowedTypes, AllQuestionTypes) {
		t.Errorf("expected all question types, got %v", p.AllowedTypes)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	p := GenerationParams{Theme: "Space", Rounds: 5, QuestionsPerRound: 2, BrainrotLevel: BrainrotHigh, AllowedTypes: []string{"text"}}
	p.Normalize()

	if p.Rounds != 5 || p.QuestionsPerRound != 2 || p.BrainrotLevel != BrainrotHigh {
		t.Fatalf("normalize overwrote explicit values: %+v", p)
	}
	if !reflect.DeepEqual(p.AllowedTypes, []string{"text"}) {
		t.Fatalf("normalize overwrote allowed types: %v", p.AllowedTypes)
	}
}

func TestEffectiveCountriesDerivedFromParticipants(t *testing.T) {
	p := GenerationParams{
		Participants: []Participant{
			{Country: "NL"},
			{Country: "US"},
			{Country: "NL"},
			{Country: ""},
			{Country: "DE"},
		},
	}
	got := p.EffectiveCountries()
	want := []string{"NL", "US", "DE"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEffectiveCountriesExplicitWins(t *testing.T) {
	p := GenerationParams{
		Countries:    []string{"UK"},
		Participants: []Participant{{Country: "NL"}},
	}
	if got := p.EffectiveCountries(); !reflect.DeepEqual(got, []string{"UK"}) {
		t.Fatalf("expected explicit countries to win, got %v", got)
	}
}
