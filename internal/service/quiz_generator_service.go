package service

import (
	"context"
	"math/rand"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/internal/model"
	"github.com/thinknt/quizforge/internal/schema"
)

// GenerationError is the only error type Generate surfaces: either the LLM
// call failed, or its output stayed schema-invalid after the repair attempt.
// Enrichment problems never become a GenerationError.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }
func (e *GenerationError) Unwrap() error { return e.Err }

const generationTemperature = 0.8

// The two states of the bounded generate loop. Total LLM calls per
// generation never exceed two.
const (
	attemptFirst = iota
	attemptRepair
)

type QuizGeneratorService interface {
	Generate(ctx context.Context, params model.GenerationParams) (map[string]any, error)
}

type quizGeneratorService struct {
	llm       LLMService
	youtube   VideoSearcher // nil when the YouTube client could not be built
	wikimedia ImageSearcher // nil when the Wikimedia client is disabled
}

func NewQuizGeneratorService(llm LLMService, youtube VideoSearcher, wikimedia ImageSearcher) QuizGeneratorService {
	return &quizGeneratorService{llm: llm, youtube: youtube, wikimedia: wikimedia}
}

// Generate drives prompt -> LLM -> validate -> repair-once -> enrichment and
// returns the final quiz document.
func (s *quizGeneratorService) Generate(ctx context.Context, params model.GenerationParams) (map[string]any, error) {
	params.Normalize()
	stats := model.ComputeAudienceStats(params.Participants)

	systemPrompt := SystemPrompt()
	userPrompt := UserPrompt(params, stats)

	var doc map[string]any
	for attempt := attemptFirst; ; attempt++ {
		raw, err := s.llm.Complete(ctx, LLMRequest{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			Temperature:  generationTemperature,
		})
		if err != nil {
			return nil, &GenerationError{Message: err.Error(), Err: err}
		}

		var violations []string
		doc, violations = schema.ValidateJSON(raw)
		if len(violations) == 0 {
			break
		}

		if attempt == attemptRepair {
			return nil, &GenerationError{Message: "Failed to generate valid quiz after repair attempt"}
		}

		log.Warn().Int("violations", len(violations)).Msg("Quiz response failed schema validation, attempting repair")
		userPrompt = RepairPrompt(violations)
	}

	if s.youtube != nil {
		s.enrichWithYoutube(ctx, doc)
	} else {
		log.Warn().Msg("Skipping YouTube enrichment - service not available")
	}

	if s.wikimedia != nil {
		s.enrichWithWikimedia(ctx, doc)
	} else {
		log.Warn().Msg("Skipping Wikimedia enrichment - service not available")
	}

	return doc, nil
}

// enrichWithYoutube replaces placeholder video ids on audio/video questions
// with real search hits and computes a playable clip window. Every failure is
// per-question: the placeholder stays and the pass continues.
func (s *quizGeneratorService) enrichWithYoutube(ctx context.Context, doc map[string]any) {
	total, enriched := 0, 0

	forEachQuestion(doc, func(question map[string]any) {
		qType, _ := question["type"].(string)
		if qType != "audio" && qType != "video" {
			return
		}
		media, _ := question["media"].(map[string]any)
		if media == nil || media["provider"] != "youtube" {
			return
		}
		total++

		answerText := digString(question, "answer", "display")
		if answerText == "" {
			log.Warn().Str("question", digString(question, "id")).Msg("Question has no answer.display - skipping enrichment")
			return
		}

		results, err := s.youtube.SmartSearch(ctx, answerText, qType, 3)
		if err != nil {
			log.Error().Err(err).Str("question", digString(question, "id")).Msg("YouTube enrichment failed, keeping placeholder")
			return
		}
		if len(results) == 0 {
			log.Warn().Str("query", answerText).Msg("No YouTube results found")
			return
		}

		video := results[0]
		duration := 300
		if video.DurationSeconds != nil {
			duration = *video.DurationSeconds
		}

		start := clipStart(duration)
		media["video_id"] = video.VideoID
		media["start_sec"] = start
		media["end_sec"] = clipEnd(duration, start)
		enriched++

		log.Info().Str("question", digString(question, "id")).Str("video_id", video.VideoID).Str("title", video.Title).Msg("Enriched question with YouTube result")
	})

	log.Info().Int("enriched", enriched).Int("total", total).Msg("YouTube enrichment summary")
}

// enrichWithWikimedia swaps image question URLs for real Commons hits,
// falling back to a generated placeholder image when the search comes back
// empty.
func (s *quizGeneratorService) enrichWithWikimedia(ctx context.Context, doc map[string]any) {
	total, enriched := 0, 0

	forEachQuestion(doc, func(question map[string]any) {
		if question["type"] != "image" {
			return
		}
		media, _ := question["media"].(map[string]any)
		if media == nil || media["provider"] != "static" {
			return
		}
		total++

		answerText := digString(question, "answer", "display")
		if answerText == "" {
			log.Warn().Str("question", digString(question, "id")).Msg("Question has no answer.display - skipping enrichment")
			return
		}

		results, err := s.wikimedia.SmartSearch(ctx, answerText, 3)
		if err != nil || len(results) == 0 {
			media["image_url"] = placeholderImageURL(answerText)
			log.Warn().Str("query", answerText).Msg("No Wikimedia results, using placeholder image")
			return
		}

		media["image_url"] = results[0].URL
		enriched++
		log.Info().Str("question", digString(question, "id")).Str("image", results[0].Title).Msg("Enriched question with Wikimedia result")
	})

	log.Info().Int("enriched", enriched).Int("total", total).Msg("Wikimedia enrichment summary")
}

func placeholderImageURL(text string) string {
	return "https://via.placeholder.com/800x600/4A5568/FFFFFF?text=" + url.QueryEscape(text)
}

// clipStart lands in roughly the first third of the video, never within the
// first 5 seconds nor closer than 20 seconds to the end.
func clipStart(duration int) int {
	maxStart := duration / 3
	if duration-20 < maxStart {
		maxStart = duration - 20
	}
	if maxStart <= 5 {
		return 5
	}
	return 5 + rand.Intn(maxStart-5+1)
}

// clipEnd plays 10-15 seconds, clamped to duration-1.
func clipEnd(duration, start int) int {
	end := start + 10 + rand.Intn(6)
	if end > duration-1 {
		end = duration - 1
	}
	if end <= start {
		end = start + 1
	}
	return end
}

func forEachQuestion(doc map[string]any, fn func(question map[string]any)) {
	rounds, _ := doc["rounds"].([]any)
	for _, r := range rounds {
		round, _ := r.(map[string]any)
		if round == nil {
			continue
		}
		questions, _ := round["questions"].([]any)
		for _, q := range questions {
			if question, ok := q.(map[string]any); ok {
				fn(question)
			}
		}
	}
}

func digString(m map[string]any, keys ...string) string {
	current := m
	for i, key := range keys {
		if i == len(keys)-1 {
			s, _ := current[key].(string)
			return s
		}
		next, _ := current[key].(map[string]any)
		if next == nil {
			return ""
		}
		current = next
	}
	return ""
}
