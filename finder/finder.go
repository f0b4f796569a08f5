// Package finder wires the pipeline together: resolve the video ID, fetch
// the top-level comments, classify them with the AI, and attach clip links
// to the results that carry a parsable timestamp.
package finder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MrModa2442/YouTube-comment-check/finder/timestamp"
	"github.com/MrModa2442/YouTube-comment-check/finder/youtube"
	"github.com/MrModa2442/YouTube-comment-check/internal/models"
	"github.com/MrModa2442/YouTube-comment-check/shared/ai"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"
	"github.com/MrModa2442/YouTube-comment-check/shared/email"
	"github.com/MrModa2442/YouTube-comment-check/shared/monitoring"
	"github.com/MrModa2442/YouTube-comment-check/shared/storage"
)

var (
	// ErrInvalidURL signals that no video ID could be extracted from the
	// user's input. A user-correctable error, not a system fault.
	ErrInvalidURL = errors.New("no YouTube video ID found in input")

	// ErrBusy signals that a fetch-and-analyze run is already in flight.
	// The in-flight run is never aborted.
	ErrBusy = errors.New("an analysis is already in flight")
)

// CommentSource fetches the top-level comments of a video.
type CommentSource interface {
	FetchComments(ctx context.Context, videoID string) ([]models.Comment, error)
}

// Classifier identifies which comments in a block are music-related.
type Classifier interface {
	Classify(ctx context.Context, commentBlock string) ([]models.AnalysisResult, error)
}

// Finder runs the comment-to-result pipeline.
type Finder struct {
	config     *config.Config
	comments   CommentSource
	classifier Classifier
	monitor    *monitoring.Monitor
	tracker    *storage.CommentTracker
	sender     *email.Sender
}

func New(cfg *config.Config) *Finder {
	return &Finder{
		config:  cfg,
		monitor: monitoring.NewMonitor(),
	}
}

// NewWithClients builds a Finder with explicit collaborators. Used by tests
// and by callers that already hold configured clients.
func NewWithClients(cfg *config.Config, comments CommentSource, classifier Classifier) *Finder {
	return &Finder{
		config:     cfg,
		comments:   comments,
		classifier: classifier,
		monitor:    monitoring.NewMonitor(),
	}
}

func (f *Finder) Name() string {
	return "Music Comment Finder"
}

func (f *Finder) Monitor() *monitoring.Monitor {
	return f.monitor
}

// Initialize creates the external clients. Each missing credential surfaces
// as its own sentinel so the caller can name the credential in its message.
func (f *Finder) Initialize() error {
	log.Printf("Initializing %s...", f.Name())

	if f.comments == nil {
		client, err := youtube.NewClient(&f.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		f.comments = client
		log.Println("YouTube client initialized")
	}

	if f.classifier == nil {
		analyzer, err := ai.NewAnalyzer(&f.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI analyzer: %w", err)
		}
		f.classifier = analyzer
		log.Println("AI analyzer initialized")
	}

	if f.tracker == nil && f.config.Watch.Video != "" {
		tracker, err := storage.NewCommentTracker("data", 30*24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to create comment tracker: %w", err)
		}
		f.tracker = tracker
		log.Printf("Comment tracker initialized (%d comments tracked)", tracker.Count())
	}

	if f.sender == nil && f.config.EmailConfigured() {
		f.sender = email.NewSender(&f.config.Email)
		log.Println("Email sender initialized")
	}

	return nil
}

// FetchAndAnalyze resolves the video, fetches its comments, classifies them
// and attaches clip links. Exactly one run may be in flight at a time.
func (f *Finder) FetchAndAnalyze(ctx context.Context, videoURLOrID string) (*models.Report, error) {
	videoID, ok := resolveVideoID(videoURLOrID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, videoURLOrID)
	}

	if !f.monitor.TryBegin() {
		return nil, ErrBusy
	}

	startTime := time.Now()
	report, err := f.run(ctx, videoID)
	if err != nil {
		f.monitor.RecordFailure(err, time.Since(startTime))
		return nil, err
	}

	f.monitor.RecordSuccess(
		fmt.Sprintf("fetched %d comments, found %d music-related", report.CommentsFetched, len(report.Results)),
		time.Since(startTime))
	return report, nil
}

func (f *Finder) run(ctx context.Context, videoID string) (*models.Report, error) {
	log.Printf("Fetching comments for video %s...", videoID)
	comments, err := f.comments.FetchComments(ctx, videoID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		VideoID:         videoID,
		CommentsFetched: len(comments),
		Results:         []models.AnalysisResult{},
	}

	if len(comments) == 0 {
		log.Printf("Video %s has no comments (or comments are disabled)", videoID)
		return report, nil
	}

	results, err := f.classifier.Classify(ctx, ai.FormatComments(comments))
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.AnalysisResult{}
	}

	for i := range results {
		if results[i].Timestamp == "" || results[i].Timestamp == "N/A" {
			continue
		}
		clipURL := timestamp.ClipURL(videoID, results[i].Timestamp)
		if clipURL == "" {
			log.Printf("Could not parse timestamp %q for %s, leaving result without a clip link",
				results[i].Timestamp, results[i].Username)
			continue
		}
		results[i].ClipURL = clipURL
	}

	report.Results = results
	return report, nil
}

// RunOnce is the watch-mode entry point: re-analyze the configured video and
// report only the music-related comments not seen in a previous run.
func (f *Finder) RunOnce(ctx context.Context) error {
	video := f.config.Watch.Video
	if video == "" {
		return fmt.Errorf("watch.video is not configured")
	}

	report, err := f.FetchAndAnalyze(ctx, video)
	if err != nil {
		return err
	}

	var fresh []models.AnalysisResult
	var keys []string
	for _, result := range report.Results {
		key := result.Username + ": " + result.Comment
		if f.tracker != nil && f.tracker.IsSeen(key) {
			continue
		}
		fresh = append(fresh, result)
		keys = append(keys, key)
	}

	log.Printf("Watch run: %d comments fetched, %d music-related, %d new",
		report.CommentsFetched, len(report.Results), len(fresh))

	if len(fresh) == 0 {
		return nil
	}

	for _, result := range fresh {
		log.Printf("New music comment by %s at %s: %s", result.Username, result.Timestamp, result.Comment)
	}

	if f.sender != nil {
		emailReport := &models.EmailReport{
			Date:            time.Now(),
			VideoID:         report.VideoID,
			CommentsFetched: report.CommentsFetched,
			Results:         fresh,
		}
		if err := f.sender.SendReport(emailReport); err != nil {
			log.Printf("Warning: Failed to send email report: %v", err)
		} else {
			log.Printf("Email report sent with %d new comments", len(fresh))
		}
	}

	if f.tracker != nil {
		if err := f.tracker.MarkSeen(keys); err != nil {
			log.Printf("Warning: Failed to mark comments as reported: %v", err)
		}
	}

	return nil
}

// resolveVideoID accepts either a URL in any of the supported shapes or a
// bare 11-character video ID.
func resolveVideoID(input string) (string, bool) {
	if id, ok := youtube.ExtractVideoID(input); ok {
		return id, true
	}
	if youtube.IsVideoID(input) {
		return input, true
	}
	return "", false
}
