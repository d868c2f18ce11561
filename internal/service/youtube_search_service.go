package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/config"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// SearchError reports a search client that could not be constructed, usually
// a missing credential. Callers treat it as "service unavailable" and degrade.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string { return e.Message }

// musicCategoryID is YouTube's video category for music.
const musicCategoryID = "10"

type VideoResult struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	DurationSeconds *int   `json:"duration_seconds"` // nil when unknown
	Thumbnail       string `json:"thumbnail"`
}

// VideoSearcher is what the generator needs from the YouTube client.
type VideoSearcher interface {
	SmartSearch(ctx context.Context, query, questionType string, maxResults int64) ([]VideoResult, error)
}

type YoutubeSearchService struct {
	svc *youtube.Service

	// search is the API round-trip SmartSearch goes through; tests swap it out.
	search func(ctx context.Context, query string, maxResults int64, categoryID string) ([]VideoResult, error)
}

func NewYoutubeSearchService(cfg *config.Config) (*YoutubeSearchService, error) {
	if cfg.YouTube.ApiKey == "" {
		return nil, &SearchError{Message: "YouTube API key not configured"}
	}

	svc, err := youtube.NewService(context.Background(), option.WithAPIKey(cfg.YouTube.ApiKey))
	if err != nil {
		return nil, &SearchError{Message: fmt.Sprintf("failed to initialize YouTube client: %v", err)}
	}
	s := &YoutubeSearchService{svc: svc}
	s.search = s.Search
	return s, nil
}

// Search runs a keyword search for embeddable videos, then fetches per-video
// metadata (including duration) for the candidates.
func (s *YoutubeSearchService) Search(ctx context.Context, query string, maxResults int64, categoryID string) ([]VideoResult, error) {
	call := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		VideoEmbeddable("true").
		VideoSyndicated("true").
		Order("relevance").
		SafeSearch("none")
	if categoryID != "" {
		call = call.VideoCategoryId(categoryID)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("YouTube search failed")
		return nil, fmt.Errorf("YouTube search failed: %w", err)
	}

	var videoIDs []string
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			videoIDs = append(videoIDs, item.Id.VideoId)
		}
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	return s.videoDetails(ctx, videoIDs)
}

func (s *YoutubeSearchService) videoDetails(ctx context.Context, videoIDs []string) ([]VideoResult, error) {
	resp, err := s.svc.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoIDs...).
		Context(ctx).
		Do()
	if err != nil {
		log.Error().Err(err).Msg("YouTube video details failed")
		return nil, fmt.Errorf("YouTube video details failed: %w", err)
	}

	results := make([]VideoResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		result := VideoResult{VideoID: item.Id}
		if item.Snippet != nil {
			result.Title = item.Snippet.Title
			result.Channel = item.Snippet.ChannelTitle
			if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
				result.Thumbnail = item.Snippet.Thumbnails.Medium.Url
			}
		}
		if item.ContentDetails != nil {
			result.DurationSeconds = ParseISODuration(item.ContentDetails.Duration)
		}
		results = append(results, result)
	}
	return results, nil
}

// SmartSearch tries an ordered list of keyword qualifiers tailored to the
// question type, stopping at the first non-empty result set. Within that set,
// entries whose title contains "official" are preferred. An empty result is
// not an error.
func (s *YoutubeSearchService) SmartSearch(ctx context.Context, query, questionType string, maxResults int64) ([]VideoResult, error) {
	var keywords []string
	categoryID := ""
	switch questionType {
	case "audio":
		keywords = []string{"official music video", "official audio", "official video", "lyrics video"}
		categoryID = musicCategoryID
	case "video":
		keywords = []string{"official video", "official music video", "music video"}
	default:
		keywords = []string{""}
	}

	for _, keyword := range keywords {
		searchQuery := query
		if keyword != "" {
			searchQuery = query + " " + keyword
		}

		results, err := s.search(ctx, searchQuery, maxResults, categoryID)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			continue
		}

		if official := filterOfficial(results); len(official) > 0 {
			return official, nil
		}
		return results, nil
	}

	return nil, nil
}

func filterOfficial(results []VideoResult) []VideoResult {
	var official []VideoResult
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Title), "official") {
			official = append(official, r)
		}
	}
	return official
}

var isoDurationRE = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts an ISO-8601 duration like "PT3M45S" to seconds.
// Missing components count as zero; anything that does not match yields nil.
func ParseISODuration(iso string) *int {
	if iso == "" {
		return nil
	}
	match := isoDurationRE.FindStringSubmatch(iso)
	if match == nil {
		return nil
	}

	hours, _ := strconv.Atoi(zeroIfEmpty(match[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(match[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(match[3]))

	total := hours*3600 + minutes*60 + seconds
	return &total
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
