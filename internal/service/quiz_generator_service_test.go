package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/thinknt/quizforge/internal/model"
)

type stubLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *stubLLM) Complete(ctx context.Context, req LLMRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.calls > len(s.responses) {
		return "", fmt.Errorf("stub exhausted after %d calls", len(s.responses))
	}
	return s.responses[s.calls-1], nil
}

type stubVideoSearcher struct {
	results []VideoResult
	err     error
	calls   int
}

func (s *stubVideoSearcher) SmartSearch(ctx context.Context, query, questionType string, maxResults int64) ([]VideoResult, error) {
	s.calls++
	return s.results, s.err
}

type stubImageSearcher struct {
	results []ImageResult
	err     error
	calls   int
}

func (s *stubImageSearcher) SmartSearch(ctx context.Context, query string, maxResults int) ([]ImageResult, error) {
	s.calls++
	return s.results, s.err
}

func testParams() model.GenerationParams {
	return model.GenerationParams{
		Theme:             "Space Exploration",
		Participants:      []model.Participant{{Age: intPtr(28)}},
		Rounds:            3,
		QuestionsPerRound: 5,
		AllowedTypes:      []string{"text", "multiple_choice"},
	}
}

func textQuestion(id string) map[string]any {
	return map[string]any{
		"id":         id,
		"type":       "text",
		"difficulty": "easy",
		"prompt":     "A question?",
		"answer":     map[string]any{"display": "An answer"},
	}
}

func docWithRounds(rounds, questionsPerRound int) map[string]any {
	roundList := make([]any, 0, rounds)
	for r := 1; r <= rounds; r++ {
		questions := make([]any, 0, questionsPerRound)
		for q := 0; q < questionsPerRound; q++ {
			questions = append(questions, textQuestion(fmt.Sprintf("q_%d_%d", r, q)))
		}
		roundList = append(roundList, map[string]any{
			"round_index": r,
			"title":       fmt.Sprintf("Round %d", r),
			"difficulty":  "easy",
			"questions":   questions,
		})
	}
	return map[string]any{
		"id":     "qz_test_001",
		"title":  "Test Quiz",
		"rounds": roundList,
	}
}

func docWithMediaQuestion(qType, provider string) map[string]any {
	question := map[string]any{
		"id":         "q_media",
		"type":       qType,
		"difficulty": "easy",
		"prompt":     "Name this one from the clip",
		"answer":     map[string]any{"display": "Artist - Song Title"},
	}
	if qType == "image" {
		question["media"] = map[string]any{"provider": provider, "image_url": "https://example.org/placeholder.png"}
	} else {
		question["media"] = map[string]any{"provider": provider, "video_id": PlaceholderVideoID, "start_sec": 10, "end_sec": 25}
	}
	return map[string]any{
		"id":    "qz_media_001",
		"title": "Media Quiz",
		"rounds": []any{
			map[string]any{
				"round_index": 1,
				"title":       "Round 1",
				"difficulty":  "easy",
				"questions":   []any{question},
			},
		},
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(raw)
}

func mediaOf(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()
	question := doc["rounds"].([]any)[0].(map[string]any)["questions"].([]any)[0].(map[string]any)
	media, _ := question["media"].(map[string]any)
	if media == nil {
		t.Fatal("fixture question has no media")
	}
	return media
}

func TestGenerateFirstAttemptValid(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithRounds(3, 5))}}
	videos := &stubVideoSearcher{}
	images := &stubImageSearcher{}
	gen := NewQuizGeneratorService(llm, videos, images)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if llm.calls != 1 {
		t.Fatalf("expected exactly 1 LLM call, got %d", llm.calls)
	}
	if videos.calls != 0 || images.calls != 0 {
		t.Fatalf("expected no enrichment calls for text/multiple_choice quiz, got %d video, %d image", videos.calls, images.calls)
	}

	rounds := doc["rounds"].([]any)
	if len(rounds) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(rounds))
	}
	for _, r := range rounds {
		questions := r.(map[string]any)["questions"].([]any)
		if len(questions) != 5 {
			t.Fatalf("expected 5 questions per round, got %d", len(questions))
		}
	}
}

func TestGenerateRepairsInvalidResponse(t *testing.T) {
	llm := &stubLLM{responses: []string{`{"title": "Test"}`, mustMarshal(t, docWithRounds(1, 1))}}
	gen := NewQuizGeneratorService(llm, nil, nil)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate after repair: %v", err)
	}
	if llm.calls != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", llm.calls)
	}
	if doc["id"] != "qz_test_001" {
		t.Fatalf("expected repaired document, got %v", doc["id"])
	}
}

func TestGenerateFailsAfterRepairAttempt(t *testing.T) {
	llm := &stubLLM{responses: []string{`{"title": "Test"}`, `not even json`}}
	gen := NewQuizGeneratorService(llm, nil, nil)

	_, err := gen.Generate(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected error after failed repair")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if !strings.Contains(genErr.Message, "repair attempt") {
		t.Fatalf("error should mention the repair attempt, got %q", genErr.Message)
	}
	if llm.calls != 2 {
		t.Fatalf("expected exactly 2 LLM calls, never more, got %d", llm.calls)
	}
}

func TestGenerateWrapsLLMTransportError(t *testing.T) {
	transportErr := fmt.Errorf("OpenAI API error: connection refused")
	llm := &stubLLM{err: transportErr}
	gen := NewQuizGeneratorService(llm, nil, nil)

	_, err := gen.Generate(context.Background(), testParams())
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if !errors.Is(err, transportErr) {
		t.Fatal("GenerationError should wrap the transport error")
	}
	if llm.calls != 1 {
		t.Fatalf("transport failures must not be retried, got %d calls", llm.calls)
	}
}

func TestGenerateEnrichesAudioQuestion(t *testing.T) {
	duration := 245
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("audio", "youtube"))}}
	videos := &stubVideoSearcher{results: []VideoResult{{
		VideoID:         "abc123def45",
		Title:           "Artist - Song Title (Official Audio)",
		DurationSeconds: &duration,
	}}}
	gen := NewQuizGeneratorService(llm, videos, nil)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if videos.calls != 1 {
		t.Fatalf("expected 1 search call, got %d", videos.calls)
	}

	media := mediaOf(t, doc)
	if media["video_id"] != "abc123def45" {
		t.Fatalf("expected placeholder to be replaced, got %v", media["video_id"])
	}
	start := media["start_sec"].(int)
	end := media["end_sec"].(int)
	if start >= end {
		t.Fatalf("expected start_sec < end_sec, got %d >= %d", start, end)
	}
	if start < 5 || end > duration-1 {
		t.Fatalf("clip window out of bounds: start=%d end=%d duration=%d", start, end, duration)
	}
}

func TestGenerateKeepsPlaceholderOnSearchFailure(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("audio", "youtube"))}}
	videos := &stubVideoSearcher{err: fmt.Errorf("quota exceeded")}
	gen := NewQuizGeneratorService(llm, videos, nil)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("search failures must not fail generation: %v", err)
	}
	if media := mediaOf(t, doc); media["video_id"] != PlaceholderVideoID {
		t.Fatalf("expected placeholder to survive, got %v", media["video_id"])
	}
}

func TestGenerateKeepsPlaceholderOnEmptyResults(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("video", "youtube"))}}
	videos := &stubVideoSearcher{}
	gen := NewQuizGeneratorService(llm, videos, nil)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if media := mediaOf(t, doc); media["video_id"] != PlaceholderVideoID {
		t.Fatalf("expected placeholder to survive empty results, got %v", media["video_id"])
	}
}

func TestGenerateSkipsEnrichmentWithoutClients(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("audio", "youtube"))}}
	gen := NewQuizGeneratorService(llm, nil, nil)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if media := mediaOf(t, doc); media["video_id"] != PlaceholderVideoID {
		t.Fatalf("expected placeholder to ship as-is, got %v", media["video_id"])
	}
}

func TestGenerateEnrichesImageQuestion(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("image", "static"))}}
	images := &stubImageSearcher{results: []ImageResult{{
		Title: "Saturn V launch.jpg",
		URL:   "https://upload.wikimedia.org/wikipedia/commons/saturn_v.jpg",
	}}}
	gen := NewQuizGeneratorService(llm, nil, images)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if media := mediaOf(t, doc); media["image_url"] != "https://upload.wikimedia.org/wikipedia/commons/saturn_v.jpg" {
		t.Fatalf("expected image_url replaced, got %v", media["image_url"])
	}
}

func TestGenerateSubstitutesImagePlaceholderOnEmptyResults(t *testing.T) {
	llm := &stubLLM{responses: []string{mustMarshal(t, docWithMediaQuestion("image", "static"))}}
	images := &stubImageSearcher{}
	gen := NewQuizGeneratorService(llm, nil, images)

	doc, err := gen.Generate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	media := mediaOf(t, doc)
	url, _ := media["image_url"].(string)
	if !strings.HasPrefix(url, "https://via.placeholder.com/") {
		t.Fatalf("expected placeholder image URL, got %q", url)
	}
	if !strings.Contains(url, "text=") {
		t.Fatalf("placeholder URL should carry the answer text, got %q", url)
	}
}

func TestClipWindowBounds(t *testing.T) {
	const duration = 300
	for i := 0; i < 500; i++ {
		start := clipStart(duration)
		end := clipEnd(duration, start)

		if start < 5 {
			t.Fatalf("start %d below minimum", start)
		}
		if start > duration/3 {
			t.Fatalf("start %d beyond first third of %d", start, duration)
		}
		if end > duration-1 {
			t.Fatalf("end %d past duration-1", end)
		}
		if end <= start {
			t.Fatalf("end %d not after start %d", end, start)
		}
		if end-start > 15 {
			t.Fatalf("clip length %d exceeds 15s", end-start)
		}
	}
}

func TestClipWindowShortVideo(t *testing.T) {
	for i := 0; i < 100; i++ {
		start := clipStart(20)
		end := clipEnd(20, start)
		if start != 5 {
			t.Fatalf("short videos should start at 5, got %d", start)
		}
		if end <= start || end > 19 {
			t.Fatalf("invalid short-video window: start=%d end=%d", start, end)
		}
	}
}
