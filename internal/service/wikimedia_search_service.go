package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const wikimediaAPIURL = "https://commons.wikimedia.org/w/api.php"

type ImageResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ImageSearcher is what the generator needs from the Wikimedia client.
type ImageSearcher interface {
	SmartSearch(ctx context.Context, query string, maxResults int) ([]ImageResult, error)
}

// WikimediaSearchService queries Wikimedia Commons for bitmap images. It is
// keyless, and it never raises out of Search: transport or decode failures log
// and come back as an empty result list so enrichment is never interrupted.
type WikimediaSearchService struct {
	httpClient *http.Client
	baseURL    string
}

func NewWikimediaSearchService() *WikimediaSearchService {
	return &WikimediaSearchService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    wikimediaAPIURL,
	}
}

type wikimediaResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Search looks up bitmap files in the Commons File namespace. Pages without
// resolvable file info are skipped.
func (s *WikimediaSearchService) Search(ctx context.Context, query string, maxResults int) ([]ImageResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query+" filetype:bitmap")
	params.Set("gsrlimit", fmt.Sprintf("%d", maxResults))
	params.Set("gsrnamespace", "6")
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|size|mime")
	params.Set("iiurlwidth", "800")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Wikimedia request build failed")
		return nil, nil
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Wikimedia search error")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("query", query).Msg("Wikimedia API error")
		return nil, nil
	}

	var decoded wikimediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Error().Err(err).Str("query", query).Msg("Wikimedia response decode error")
		return nil, nil
	}

	var results []ImageResult
	for _, page := range decoded.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		results = append(results, ImageResult{
			Title:    strings.TrimPrefix(page.Title, "File:"),
			URL:      info.URL,
			ThumbURL: info.ThumbURL,
			Width:    info.Width,
			Height:   info.Height,
		})
	}
	return results, nil
}

// SmartSearch tries the bare query first, then widens with descriptive
// qualifiers until one yields results. Returns empty when all attempts do.
func (s *WikimediaSearchService) SmartSearch(ctx context.Context, query string, maxResults int) ([]ImageResult, error) {
	results, _ := s.Search(ctx, query, maxResults)
	if len(results) > 0 {
		return results, nil
	}

	qualifiers := []string{"logo", "character", "artwork", "poster", "photo"}
	for _, qualifier := range qualifiers {
		results, _ = s.Search(ctx, query+" "+qualifier, maxResults)
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, nil
}
