package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thinknt/quizforge/internal/model"
	"github.com/thinknt/quizforge/internal/schema"
)

// PlaceholderVideoID is what the model is told to emit for YouTube questions;
// enrichment replaces it with a real search result.
const PlaceholderVideoID = "dQw4w9WgXcQ"

// SystemPrompt returns the fixed system message: persona, the quiz schema and
// the hard structural constraints the model must follow.
func SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are Thinkn't, a quiz master that generates quizzes for team building.\n\n")
	b.WriteString("CRITICAL: Your output MUST be valid JSON matching this EXACT schema:\n\n")
	b.WriteString("```json\n")
	b.WriteString(schema.Pretty())
	b.WriteString("\n```\n\n")
	b.WriteString(`ABSOLUTE REQUIREMENTS - FAILURE TO FOLLOW THESE WILL RESULT IN REJECTION:

1. THEME ADHERENCE: EVERY SINGLE QUESTION must be directly related to the provided theme.
   - If theme is "90s music", ALL questions must be about 90s songs, artists, albums, etc.
   - Do NOT include generic trivia questions unrelated to the theme.

2. QUESTION TYPES: Use ONLY the question types listed in "allowed_types".
   - If allowed_types is ["audio", "video"], you MUST NOT use text, multiple_choice, or true_false.
   - Respect this constraint strictly for every question.

3. DIFFICULTY PROGRESSION:
   - Round 1: easy difficulty
   - Middle rounds: medium difficulty
   - Final round: hard difficulty
   - Every question MUST include: id, type, difficulty (easy|medium|hard), prompt, answer.display.

4. MEDIA REQUIREMENTS:
   - For YouTube: Use ONLY the video_id (11-character YouTube ID from a REAL video)
   - For YouTube: Include start_sec and end_sec as integers (seconds)
   - For images: Use image_url with a complete, REAL URL to an actual accessible image
   - NEVER use placeholder URLs like "example.com" or fake/example video IDs
   - For audio/video questions: NEVER include the song/movie title in the prompt (avoid spoilers)

5. MULTIPLE CHOICE & TRUE/FALSE:
   - For multiple_choice: provide 4 choices and correct_choice_index
   - For true_false: choices MUST be ["True","False"] and correct_choice_index must be 0 or 1

6. CONTENT GUIDELINES:
   - Keep content inclusive and safe for work
   - Avoid politics, religion, sexual content, and personal attacks
   - Match the provided brainrot level tone

Return ONLY JSON. No markdown, no extra text.
`)
	return b.String()
}

// UserPrompt interpolates the request parameters into the generation request
// message. Pure; the same inputs always produce the same prompt.
func UserPrompt(params model.GenerationParams, stats *model.AudienceStats) string {
	participantsJSON := mustJSON(params.Participants)
	countries := params.EffectiveCountries()
	countriesJSON := mustJSON(countries)
	typesJSON := mustJSON(params.AllowedTypes)

	ageRange := "unknown"
	if stats != nil {
		ageRange = fmt.Sprintf("%d-%d (avg: %.1f)", stats.Min, stats.Max, stats.Avg)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "========================================\nTHEME: %q\n========================================\n\n", params.Theme)
	fmt.Fprintf(&b, "CRITICAL: Every question MUST be about %q. Do NOT include generic trivia!\n\n", params.Theme)

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Participants: %s\n", participantsJSON)
	fmt.Fprintf(&b, "- Countries: %s\n", countriesJSON)
	fmt.Fprintf(&b, "- ALLOWED QUESTION TYPES (use ONLY these): %s\n", typesJSON)
	fmt.Fprintf(&b, "- Rounds: %d\n", params.Rounds)
	fmt.Fprintf(&b, "- Questions per round: %d\n", params.QuestionsPerRound)
	fmt.Fprintf(&b, "- Brainrot level: %s\n", params.BrainrotLevel)
	fmt.Fprintf(&b, "- Audience age range: %s\n\n", ageRange)

	b.WriteString("TONE:\n")
	b.WriteString(toneGuidance(params.BrainrotLevel))
	b.WriteString("\n")

	b.WriteString("THEME REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- ALL %d questions must relate directly to: %q\n", params.Rounds*params.QuestionsPerRound, params.Theme)
	fmt.Fprintf(&b, "- Content should be recognizable for people from: %s\n", strings.Join(countries, ", "))
	b.WriteString("- If the theme is about music, use audio questions with real song clips\n")
	b.WriteString("- If the theme is about movies, use video questions with real movie clips\n")
	fmt.Fprintf(&b, "- Make questions progressively harder: Round 1 (easy) through Round %d (hard)\n\n", params.Rounds)

	b.WriteString("STRICT TYPE CONSTRAINT:\n")
	fmt.Fprintf(&b, "You may ONLY use these question types: %s\n", typesJSON)
	b.WriteString("Do NOT use any other question types!\n\n")

	b.WriteString("MEDIA INSTRUCTIONS:\n")
	b.WriteString("For YouTube videos/audio:\n")
	fmt.Fprintf(&b, "- Use placeholder video_id %q - we will replace it with actual search results\n", PlaceholderVideoID)
	b.WriteString("- Set start_sec to 10 and end_sec to 25 as defaults - we will adjust these automatically\n")
	b.WriteString("- DO NOT reveal the answer in the prompt - make them guess from the clip!\n")
	b.WriteString("- Make sure the answer.display field contains searchable text (e.g., \"Artist - Song Title\" or \"Movie Title scene\")\n\n")
	b.WriteString("For images:\n")
	b.WriteString("- Use REAL Wikimedia Commons URLs: \"https://upload.wikimedia.org/wikipedia/commons/...\"\n")
	fmt.Fprintf(&b, "- Choose iconic images related to %q\n", params.Theme)
	b.WriteString("- DO NOT use placeholder URLs\n")
	b.WriteString("- IMPORTANT: Only use image questions for public domain content (historical figures, landmarks, nature, etc.)\n")
	b.WriteString("- AVOID image questions for copyrighted characters, logos, or modern media (use video/audio instead)\n\n")

	fmt.Fprintf(&b, "Remember: Theme is %q - EVERY question must be about this topic!\n", params.Theme)
	return b.String()
}

// RepairPrompt asks the model to fix structure only, restating the schema and
// the violations found in its previous response.
func RepairPrompt(violations []string) string {
	var b strings.Builder
	b.WriteString("Your JSON did not match the required schema. Fix ONLY the JSON structure to satisfy the schema. Do not change the topic or counts.\n\n")
	b.WriteString("Required schema:\n```json\n")
	b.WriteString(schema.Pretty())
	b.WriteString("\n```\n\n")
	b.WriteString("Validation errors found:\n")
	b.WriteString(strings.Join(violations, "\n"))
	b.WriteString("\n\nReturn ONLY the corrected JSON matching the schema above.\n")
	return b.String()
}

func toneGuidance(level string) string {
	switch level {
	case model.BrainrotLow:
		return `- Keep the register professional and clear, like a pub-quiz host reading from cards.
- Example: "Which planet in our solar system is closest to the sun?"
`
	case model.BrainrotHigh:
		return `- Go full internet-brainrot: heavy slang, chaotic energy, meme speak. Content stays accurate, only the phrasing is unhinged.
- Example: "no cap which planet is literally glazing the sun rn, its giving closest orbit fr fr"
`
	default:
		return `- Casual and playful with light slang, like a fun host at a team event.
- Example: "Ok space fans, which planet hangs out closest to the sun?"
`
	}
}

func mustJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(out)
}
