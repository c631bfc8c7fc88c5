// Package normalizer turns raw page text into the canonical VideoRecord form.
package normalizer

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
	"github.com/use-agent/tubemeta/extractor"
	"github.com/use-agent/tubemeta/models"
)

var (
	subscriberUnitRE = regexp.MustCompile(`(?i)\s*subscribers?`)
	viewUnitRE       = regexp.MustCompile(`(?i)\s*views?`)
)

// Normalize cleans raw fields into a record. The URL is left for the caller.
//
// The record is marked failed unless title, channel name and at least one of
// view count or subscriber count are present. Like, comment and date data are
// not required.
func Normalize(fields extractor.RawFields) models.VideoRecord {
	title, hasTitle := fields.Get(extractor.Title)
	channel, hasChannel := fields.Get(extractor.ChannelName)

	rec := models.VideoRecord{
		Title:           orDefault(title, models.UnknownTitle),
		ChannelName:     orDefault(channel, models.UnknownChannel),
		SubscriberCount: stripUnit(fields, extractor.SubscriberCount, subscriberUnitRE),
		ViewCount:       stripUnit(fields, extractor.ViewCount, viewUnitRE),
		LikeCount:       passThrough(fields, extractor.LikeCount),
		CommentCount:    passThrough(fields, extractor.CommentCount),
		PublishDate:     formatDate(fields, extractor.PublishDate),
	}

	hasCount := fields.Has(extractor.ViewCount) || fields.Has(extractor.SubscriberCount)
	if !hasTitle || !hasChannel || !hasCount {
		rec.Error = models.MsgUnavailable
	}
	return rec
}

// FieldsOf maps a normalized record back to raw fields. Placeholders and
// absent markers are treated as absent, so Normalize(FieldsOf(r)) == r for
// any r that Normalize produced (ignoring URL).
func FieldsOf(rec models.VideoRecord) extractor.RawFields {
	out := make(extractor.RawFields)
	put := func(f extractor.Field, v string, placeholder string) {
		if v == "" || v == models.Absent || v == placeholder {
			return
		}
		out[f] = v
	}
	put(extractor.Title, rec.Title, models.UnknownTitle)
	put(extractor.ChannelName, rec.ChannelName, models.UnknownChannel)
	put(extractor.SubscriberCount, rec.SubscriberCount, "")
	put(extractor.ViewCount, rec.ViewCount, "")
	put(extractor.LikeCount, rec.LikeCount, "")
	put(extractor.CommentCount, rec.CommentCount, "")
	put(extractor.PublishDate, rec.PublishDate, "")
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// stripUnit removes the first unit word ("views", "subscriber", ...) and
// the whitespace before it, keeping the number text verbatim.
func stripUnit(fields extractor.RawFields, f extractor.Field, unit *regexp.Regexp) string {
	raw, ok := fields.Get(f)
	if !ok {
		return models.Absent
	}
	loc := unit.FindStringIndex(raw)
	if loc == nil {
		return raw
	}
	return raw[:loc[0]] + raw[loc[1]:]
}

func passThrough(fields extractor.RawFields, f extractor.Field) string {
	raw, ok := fields.Get(f)
	if !ok {
		return models.Absent
	}
	return raw
}

// formatDate renders a parsable date as YYYY-MM-DD and returns anything
// else unchanged.
func formatDate(fields extractor.RawFields, f extractor.Field) string {
	raw, ok := fields.Get(f)
	if !ok {
		return models.Absent
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return raw
	}
	return t.Format(time.DateOnly)
}
