package models

import "time"

// Comment is a single top-level comment on a video. Threaded replies are
// never fetched.
type Comment struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// AnalysisResult is one comment the AI identified as a music-related inquiry.
// Username and Timestamp carry the sentinel "N/A" when unknown. ClipURL is
// set only when Timestamp was successfully converted to a second count.
type AnalysisResult struct {
	Username  string `json:"username"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
	ClipURL   string `json:"clipUrl,omitempty"`
}

// Report is the outcome of one fetch-and-analyze run. CommentsFetched
// distinguishes "video has no comments" from "comments fetched but none
// music-related" when Results is empty.
type Report struct {
	VideoID         string           `json:"video_id"`
	CommentsFetched int              `json:"comments_fetched"`
	Results         []AnalysisResult `json:"results"`
}

// EmailReport is the payload for the watch-mode digest email.
type EmailReport struct {
	Date            time.Time        `json:"date"`
	VideoID         string           `json:"video_id"`
	CommentsFetched int              `json:"comments_fetched"`
	Results         []AnalysisResult `json:"results"`
}
