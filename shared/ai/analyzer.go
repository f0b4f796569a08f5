package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/MrModa2442/YouTube-comment-check/internal/models"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"

	"google.golang.org/genai"
)

var (
	// ErrAPIKeyMissing signals that the Gemini API key is not configured.
	ErrAPIKeyMissing = errors.New("Gemini API key is not configured (set GEMINI_API_KEY or ai.gemini_api_key)")

	// ErrInvalidAPIKey signals that the text-generation service rejected the
	// configured key.
	ErrInvalidAPIKey = errors.New("Gemini API key was rejected as invalid")

	// ErrBadResponseFormat signals that the AI output could not be recovered
	// into the expected JSON array even after the repair heuristics.
	ErrBadResponseFormat = errors.New("AI response was not in the expected JSON array format")
)

// Analyzer sends a block of comments to Gemini and parses the classification
// back into results.
type Analyzer struct {
	client *genai.Client
	model  string
}

func NewAnalyzer(cfg *config.AIConfig) (*Analyzer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Analyzer{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Classify asks the model which comments in the block are music-related
// inquiries. An empty block returns an empty slice without contacting the
// service at all.
func (a *Analyzer) Classify(ctx context.Context, commentBlock string) ([]models.AnalysisResult, error) {
	if strings.TrimSpace(commentBlock) == "" {
		return []models.AnalysisResult{}, nil
	}

	prompt := buildClassificationPrompt(commentBlock)

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), genConfig)
	if err != nil {
		if isInvalidKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
		}
		return nil, fmt.Errorf("comment analysis failed: %w", err)
	}

	results, err := ParseResults(result.Text())
	if err != nil {
		return nil, err
	}

	log.Printf("AI classified %d comments as music-related", len(results))
	return results, nil
}

// FormatComments flattens fetched comments into the one-per-line
// "author: text" block the prompt embeds. Newlines inside a comment are
// collapsed to spaces so each comment stays on one line.
func FormatComments(comments []models.Comment) string {
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		text := strings.ReplaceAll(c.Text, "\r\n", " ")
		text = strings.ReplaceAll(text, "\n", " ")
		text = strings.ReplaceAll(text, "\r", " ")
		lines = append(lines, fmt.Sprintf("%s: %s", c.Author, text))
	}
	return strings.Join(lines, "\n")
}

func buildClassificationPrompt(commentBlock string) string {
	return fmt.Sprintf(`You are analyzing YouTube comments on a single video.

TASK:
Find every comment that expresses interest in identifying a musical element heard in the video: a song, track, score, beat, soundtrack or background music. Include indirect phrasing and slang ("this goes hard", "banger", "who produced this"), and comments that are just a timestamp plus sentiment or emoji.

MANDATORY RULE (highest priority):
Any comment containing the word "music" (case-insensitive) together with a recognizable timestamp MUST be included.

OUTPUT FORMAT:
Respond with a JSON array of objects with exactly these fields:
- "username": the commenter's name, or "N/A" if unknown
- "comment": the comment text, verbatim
- "timestamp": the timestamp formatted as HH:MM:SS or MM:SS; for a range use the earliest point; "N/A" if the comment is music-related but states no timestamp

Output ONLY the JSON array. No surrounding prose, no code fences. If no comments qualify, output [].

COMMENTS (one per line, as "author: text"):
%s`, commentBlock)
}

func isInvalidKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "API key not valid") ||
		strings.Contains(msg, "API_KEY_INVALID") ||
		strings.Contains(msg, "PERMISSION_DENIED")
}

var (
	codeFencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	noneFoundPattern = regexp.MustCompile(`(?i)no\b.*comments?\s*found`)
	arrayPattern     = regexp.MustCompile(`(?s)\[.*\]`)
	// A stray bare token sandwiched between a closing quote and the next
	// comma/brace/bracket, e.g. `"1:23" oops,` left behind by the model.
	strayTokenPattern = regexp.MustCompile(`"\s*[^",:{}\[\]\s]+\s*([,}\]])`)
)

// ParseResults recovers a result array from the raw model output. The model
// is asked for a bare JSON array but routinely wraps it in code fences,
// prefixes prose, emits a lone object, or answers "No music-related comments
// found", so recovery runs as an ordered chain of repairs before parsing.
func ParseResults(raw string) ([]models.AnalysisResult, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return []models.AnalysisResult{}, nil
	}

	if !strings.HasPrefix(text, "[") && !strings.HasPrefix(text, "{") {
		repaired, empty, err := recoverArrayText(text)
		if err != nil {
			return nil, err
		}
		if empty {
			return []models.AnalysisResult{}, nil
		}
		text = repaired
	}

	if text == "[]" {
		return []models.AnalysisResult{}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON (%v): %w", err, ErrBadResponseFormat)
	}

	switch v := parsed.(type) {
	case []any:
		return collectResults(v), nil
	case map[string]any:
		// Tolerate a model that emits a bare object instead of a
		// one-element array.
		if comment, ok := v["comment"].(string); ok && comment != "" {
			return []models.AnalysisResult{resultFromObject(v)}, nil
		}
	}

	return nil, fmt.Errorf("AI response was not a JSON array as expected: %w", ErrBadResponseFormat)
}

func stripCodeFence(text string) string {
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// recoverArrayText handles output that does not start with '[' or '{': a
// plain-language "no comments found" answer (empty result), an array
// embedded in prose, or an array preceded by stray tokens that one repair
// pass can remove. Anything else is a format failure carrying the first 50
// characters of the offending text.
func recoverArrayText(text string) (repaired string, empty bool, err error) {
	if noneFoundPattern.MatchString(text) {
		return "", true, nil
	}

	if m := arrayPattern.FindString(text); m != "" {
		return m, false, nil
	}

	cleaned := strings.TrimSpace(strayTokenPattern.ReplaceAllString(text, `"$1`))
	if strings.HasPrefix(cleaned, "[") {
		return cleaned, false, nil
	}

	return "", false, fmt.Errorf("AI response not in expected JSON array format (starts with %q): %w", truncateString(text, 50), ErrBadResponseFormat)
}

// collectResults keeps only array elements that carry a string-typed
// comment field, defaulting the other fields to "N/A".
func collectResults(items []any) []models.AnalysisResult {
	results := make([]models.AnalysisResult, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := obj["comment"].(string); !ok {
			continue
		}
		results = append(results, resultFromObject(obj))
	}
	return results
}

func resultFromObject(obj map[string]any) models.AnalysisResult {
	result := models.AnalysisResult{
		Username:  "N/A",
		Timestamp: "N/A",
	}
	result.Comment, _ = obj["comment"].(string)
	if u, ok := obj["username"].(string); ok && u != "" {
		result.Username = u
	}
	if t, ok := obj["timestamp"].(string); ok && t != "" {
		result.Timestamp = t
	}
	return result
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
