package models

// Display placeholders used in VideoRecord fields.
const (
	// Absent marks a field the page did not expose. It is distinct from "".
	Absent = "-"

	// UnknownTitle and UnknownChannel stand in for a missing title or channel name.
	UnknownTitle   = "Unknown title"
	UnknownChannel = "Unknown channel"

	// ParseFailed is the title of a synthetic record built from a failed page visit.
	ParseFailed = "Parse failed"

	// MsgUnavailable is the record error when the page state lacks the minimum fields.
	MsgUnavailable = "could not retrieve video info, possibly private or deleted"
)

// VideoRecord is the cleaned metadata of one video page.
//
// Error is non-empty if and only if extraction is judged to have failed.
// A record is immutable once it has been handed to a result callback.
type VideoRecord struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	ChannelName     string `json:"channel_name"`
	SubscriberCount string `json:"subscriber_count"`
	ViewCount       string `json:"view_count"`
	LikeCount       string `json:"like_count"`
	CommentCount    string `json:"comment_count"`
	PublishDate     string `json:"publish_date"`
	Error           string `json:"error,omitempty"`
}

// Failed reports whether the record carries an extraction error.
func (r VideoRecord) Failed() bool {
	return r.Error != ""
}

// FailedRecord builds the synthetic record for a URL whose visit returned err.
// Display fields fall back to placeholders, never to partial data.
func FailedRecord(url string, err error) VideoRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return VideoRecord{
		URL:             url,
		Title:           ParseFailed,
		ChannelName:     Absent,
		SubscriberCount: Absent,
		ViewCount:       Absent,
		LikeCount:       Absent,
		CommentCount:    Absent,
		PublishDate:     Absent,
		Error:           msg,
	}
}

// CountSucceeded returns how many records carry no error.
func CountSucceeded(recs []VideoRecord) int {
	n := 0
	for _, r := range recs {
		if !r.Failed() {
			n++
		}
	}
	return n
}
