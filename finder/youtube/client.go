package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/MrModa2442/YouTube-comment-check/internal/models"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrAPIKeyMissing signals that the YouTube Data API key is not configured.
// Distinguishable from upstream failures so the caller can show a
// configuration-specific message.
var ErrAPIKeyMissing = errors.New("YouTube API key is not configured (set YOUTUBE_API_KEY or youtube.api_key)")

var (
	// The ID is any 11 characters that are not a quote, ampersand, question
	// mark, slash or whitespace, in any of the supported URL shapes:
	// watch?v=, /embed/, /v/, youtu.be/ and generic two-segment paths.
	videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|embed)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	bareIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// The second return value is false when no ID is found; that is a user
// input problem, not a system fault.
func ExtractVideoID(input string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsVideoID reports whether s already looks like a bare 11-character
// video ID.
func IsVideoID(s string) bool {
	return bareIDPattern.MatchString(s)
}

// Client fetches top-level comments through the YouTube Data API.
type Client struct {
	service *youtube.Service
	config  *config.YouTubeConfig
}

// NewClient builds a key-authenticated YouTube client. Extra options are
// accepted so tests can redirect the service at a local endpoint.
func NewClient(cfg *config.YouTubeConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	ctx := context.Background()
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service: service,
		config:  cfg,
	}, nil
}

// FetchComments pages through the video's top-level comments ordered by
// relevance until the configured ceiling or the page cap is reached,
// whichever comes first. A zero-item result after a successful page means
// the video has no comments (or comments are disabled) and is not an error.
// Any failed page aborts the whole fetch; there is no retry and no partial
// recovery.
func (c *Client) FetchComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	maxComments := c.config.MaxComments
	pageSize := c.config.PageSize
	maxPages := (maxComments + int(pageSize) - 1) / int(pageSize)

	var comments []models.Comment
	pageToken := ""

	for page := 0; page < maxPages && len(comments) < maxComments; page++ {
		call := c.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(pageSize).
			Order("relevance").
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, annotateAPIError(err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			top := item.Snippet.TopLevelComment
			comments = append(comments, models.Comment{
				ID:     top.Id,
				Author: top.Snippet.AuthorDisplayName,
				Text:   top.Snippet.TextDisplay,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(comments) > maxComments {
		comments = comments[:maxComments]
	}

	log.Printf("Fetched %d top-level comments for video %s", len(comments), videoID)
	return comments, nil
}

// annotateAPIError turns a failed page request into a descriptive error
// carrying the HTTP status and the upstream reason when available.
func annotateAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}

	reason := ""
	if len(apiErr.Errors) > 0 {
		reason = apiErr.Errors[0].Reason
	}

	switch apiErr.Code {
	case http.StatusForbidden:
		return fmt.Errorf("comments request rejected with status 403 (reason: %s) - check that the API key is not restricted, the YouTube Data API v3 is enabled, and quota/billing are in order: %w", reason, err)
	case http.StatusNotFound:
		return fmt.Errorf("comments request returned status 404 (reason: %s) - video not found or comments disabled: %w", reason, err)
	default:
		return fmt.Errorf("comments request returned status %d (reason: %s): %w", apiErr.Code, reason, err)
	}
}
