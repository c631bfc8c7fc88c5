package extractor

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// commentsPanelID identifies the engagement panel that holds the comment count.
const commentsPanelID = "engagement-panel-comments-section"

// shortDateLayout is the en-US short month/day/year form the primary tree uses.
const shortDateLayout = "Jan 2, 2006"

var digitsRE = regexp.MustCompile(`^\d+$`)

// strategy pulls fields from one source. It must only fill fields that are
// still unset, so earlier strategies win.
type strategy struct {
	name  string
	apply func(state RawPageState, out RawFields)
}

// strategies run in priority order: the rendered view model first, then the
// player response for whatever is still missing.
var strategies = []strategy{
	{name: "initialData", apply: fromInitialData},
	{name: "playerResponse", apply: fromPlayerResponse},
}

// Extract pulls raw field values out of the page state. It never fails:
// missing nodes yield absent fields, and a panic during traversal returns
// the fields collected up to that point.
func Extract(state RawPageState) (fields RawFields) {
	fields = make(RawFields)
	current := ""
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extractor: traversal aborted, returning partial fields",
				"strategy", current,
				"fields", len(fields),
				"panic", r,
			)
		}
	}()

	for _, s := range strategies {
		current = s.name
		s.apply(state, fields)
	}
	return fields
}

func fromInitialData(state RawPageState, out RawFields) {
	data, ok := walk(state.InitialData)
	if !ok {
		return
	}

	contents, _ := walk(data, "contents", "twoColumnWatchNextResults", "results", "results", "contents")

	if info, ok := walk(contents, 0, "videoPrimaryInfoRenderer"); ok {
		out.fill(Title, text(info, "title", "runs", 0, "text"))
		out.fill(ViewCount, text(info, "viewCount", "videoViewCountRenderer", "viewCount", "simpleText"))

		toggle, _ := walk(info,
			"videoActions", "menuRenderer", "topLevelButtons", 0,
			"segmentedLikeDislikeButtonViewModel", "likeButtonViewModel",
			"likeButtonViewModel", "toggleButtonViewModel", "toggleButtonViewModel",
		)
		out.fill(LikeCount, text(toggle, "defaultButtonViewModel", "buttonViewModel", "title"))
		out.fill(LikeCount, text(toggle, "toggledButtonViewModel", "buttonViewModel", "title"))

		out.fill(PublishDate, text(info, "dateText", "simpleText"))
	}

	if owner, ok := walk(contents, 1, "videoSecondaryInfoRenderer", "owner", "videoOwnerRenderer"); ok {
		out.fill(ChannelName, text(owner, "title", "runs", 0, "text"))
		out.fill(SubscriberCount, text(owner, "subscriberCountText", "simpleText"))
	}

	out.fill(CommentCount, commentCount(data))
}

// commentCount scans the engagement panels for the comments section and
// returns its label only when it is a plain number. The scan stops at the
// first comments panel.
func commentCount(data any) string {
	panels, ok := walk(data, "engagementPanels")
	if !ok {
		return ""
	}
	list, ok := panels.([]any)
	if !ok {
		return ""
	}
	for _, panel := range list {
		renderer, ok := walk(panel, "engagementPanelSectionListRenderer")
		if !ok || text(renderer, "panelIdentifier") != commentsPanelID {
			continue
		}
		label := text(renderer, "header", "engagementPanelTitleHeaderRenderer", "contextualInfo", "runs", 0, "text")
		if digitsRE.MatchString(label) {
			return label
		}
		return ""
	}
	return ""
}

func fromPlayerResponse(state RawPageState, out RawFields) {
	player, ok := walk(state.PlayerResponse)
	if !ok {
		return
	}

	out.fill(Title, text(player, "videoDetails", "title"))
	out.fill(ChannelName, text(player, "videoDetails", "author"))
	out.fill(ViewCount, text(player, "videoDetails", "viewCount"))

	if !out.Has(PublishDate) {
		out.fill(PublishDate, shortDate(text(player, "microformat", "playerMicroformatRenderer", "publishDate")))
	}
}

// shortDate turns a machine-readable date ("2025-09-16" or RFC 3339) into the
// "Sep 16, 2025" form the primary tree renders. Unparsable input is returned
// unchanged so the normalizer can decide what to do with it.
func shortDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return raw
	}
	return t.Format(shortDateLayout)
}
