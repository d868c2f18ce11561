package model

import "math"

const (
	BrainrotLow    = "low"
	BrainrotMedium = "medium"
	BrainrotHigh   = "high"
)

// AllQuestionTypes is the full set of question types a quiz may use when the
// request does not restrict them.
var AllQuestionTypes = []string{"text", "audio", "video", "image", "true_false", "multiple_choice"}

type Participant struct {
	Name    string `json:"name,omitempty"`
	Age     *int   `json:"age,omitempty"`
	Country string `json:"country,omitempty"`
}

// GenerationParams is the immutable input of one generation attempt. It is
// persisted on the quiz record so regeneration can reuse it.
type GenerationParams struct {
	Theme             string        `json:"theme"`
	Participants      []Participant `json:"participants"`
	Countries         []string      `json:"countries,omitempty"`
	Rounds            int           `json:"rounds"`
	QuestionsPerRound int           `json:"questions_per_round"`
	BrainrotLevel     string        `json:"brainrot_level"`
	AllowedTypes      []string      `json:"allowed_types"`
}

// Normalize fills in the documented defaults for zero-valued fields.
func (p *GenerationParams) Normalize() {
	if p.Rounds <= 0 {
		p.Rounds = 3
	}
	if p.QuestionsPerRound <= 0 {
		p.QuestionsPerRound = 7
	}
	if p.BrainrotLevel == "" {
		p.BrainrotLevel = BrainrotMedium
	}
	if len(p.AllowedTypes) == 0 {
		p.AllowedTypes = append([]string(nil), AllQuestionTypes...)
	}
	if p.Participants == nil {
		p.Participants = []Participant{}
	}
}

// EffectiveCountries returns the explicitly supplied countries when present,
// otherwise the unique participant countries in first-seen order.
func (p *GenerationParams) EffectiveCountries() []string {
	if len(p.Countries) > 0 {
		return p.Countries
	}
	seen := map[string]bool{}
	var out []string
	for _, participant := range p.Participants {
		c := participant.Country
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// AudienceStats summarizes participant ages for prompt tailoring.
type AudienceStats struct {
	Min int     `json:"min"`
	Max int     `json:"max"`
	Avg float64 `json:"avg"`
}

// ComputeAudienceStats returns nil when no participant has an age. Avg is
// rounded to one decimal.
func ComputeAudienceStats(participants []Participant) *AudienceStats {
	var ages []int
	for _, p := range participants {
		if p.Age != nil {
			ages = append(ages, *p.Age)
		}
	}
	if len(ages) == 0 {
		return nil
	}

	stats := AudienceStats{Min: ages[0], Max: ages[0]}
	sum := 0
	for _, age := range ages {
		if age < stats.Min {
			stats.Min = age
		}
		if age > stats.Max {
			stats.Max = age
		}
		sum += age
	}
	stats.Avg = math.Round(float64(sum)/float64(len(ages))*10) / 10
	return &stats
}
