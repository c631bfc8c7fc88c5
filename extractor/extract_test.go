package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"
)

const watchInitialData = `{
  "contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
    {"videoPrimaryInfoRenderer": {
      "title": {"runs": [{"text": "Building a Go scraper"}, {"text": " (part 2)"}]},
      "viewCount": {"videoViewCountRenderer": {"viewCount": {"simpleText": "1,234,567 views"}}},
      "dateText": {"simpleText": "Sep 16, 2025"},
      "videoActions": {"menuRenderer": {"topLevelButtons": [
        {"segmentedLikeDislikeButtonViewModel": {"likeButtonViewModel": {"likeButtonViewModel": {
          "toggleButtonViewModel": {"toggleButtonViewModel": {
            "defaultButtonViewModel": {"buttonViewModel": {"title": "45K"}},
            "toggledButtonViewModel": {"buttonViewModel": {"title": "45,001"}}
          }}
        }}}}
      ]}}
    }},
    {"videoSecondaryInfoRenderer": {"owner": {"videoOwnerRenderer": {
      "title": {"runs": [{"text": "Gopher Channel"}]},
      "subscriberCountText": {"simpleText": "12,345 subscribers"}
    }}}}
  ]}}}},
  "engagementPanels": [
    {"engagementPanelSectionListRenderer": {"panelIdentifier": "engagement-panel-structured-description"}},
    {"engagementPanelSectionListRenderer": {
      "panelIdentifier": "engagement-panel-comments-section",
      "header": {"engagementPanelTitleHeaderRenderer": {"contextualInfo": {"runs": [{"text": "892"}]}}}
    }}
  ]
}`

const watchPlayerResponse = `{
  "videoDetails": {"title": "Player title", "author": "Player author", "viewCount": "1234567"},
  "microformat": {"playerMicroformatRenderer": {"publishDate": "2024-02-03T00:00:00-08:00"}}
}`

func tree(t *testing.T, raw string) gson.JSON {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return gson.New(v)
}

func TestExtract_PrimaryTree(t *testing.T) {
	fields := Extract(RawPageState{
		InitialData:    tree(t, watchInitialData),
		PlayerResponse: tree(t, watchPlayerResponse),
	})

	assert.Equal(t, RawFields{
		Title:           "Building a Go scraper",
		ViewCount:       "1,234,567 views",
		LikeCount:       "45K",
		PublishDate:     "Sep 16, 2025",
		ChannelName:     "Gopher Channel",
		SubscriberCount: "12,345 subscribers",
		CommentCount:    "892",
	}, fields, "primary values win over the player response")
}

func TestExtract_PlayerResponseFillsGaps(t *testing.T) {
	fields := Extract(RawPageState{
		InitialData:    tree(t, `{"contents": {}}`),
		PlayerResponse: tree(t, watchPlayerResponse),
	})

	assert.Equal(t, RawFields{
		Title:       "Player title",
		ChannelName: "Player author",
		ViewCount:   "1234567",
		PublishDate: "Feb 3, 2024",
	}, fields)
}

func TestExtract_PlayerDateOnly(t *testing.T) {
	fields := Extract(RawPageState{
		PlayerResponse: tree(t, `{"microformat": {"playerMicroformatRenderer": {"publishDate": "2025-09-16"}}}`),
	})
	v, ok := fields.Get(PublishDate)
	require.True(t, ok)
	assert.Equal(t, "Sep 16, 2025", v)
}

func TestExtract_EmptyOrAbsentPrimaryTree(t *testing.T) {
	tests := []struct {
		name  string
		state RawPageState
	}{
		{"zero state", RawPageState{}},
		{"nil trees", RawPageState{InitialData: gson.New(nil), PlayerResponse: gson.New(nil)}},
		{"empty object", RawPageState{InitialData: tree(t, `{}`)}},
		{"wrong shape", RawPageState{InitialData: tree(t, `{"contents": [1, 2, 3], "engagementPanels": "nope"}`)}},
		{"array root", RawPageState{InitialData: tree(t, `[]`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields RawFields
			require.NotPanics(t, func() { fields = Extract(tt.state) })
			assert.Empty(t, fields)
		})
	}
}

func TestExtract_LikeFallsBackToToggledState(t *testing.T) {
	data := `{"contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
	  {"videoPrimaryInfoRenderer": {"videoActions": {"menuRenderer": {"topLevelButtons": [
	    {"segmentedLikeDislikeButtonViewModel": {"likeButtonViewModel": {"likeButtonViewModel": {
	      "toggleButtonViewModel": {"toggleButtonViewModel": {
	        "defaultButtonViewModel": {"buttonViewModel": {}},
	        "toggledButtonViewModel": {"buttonViewModel": {"title": "1.2K"}}
	      }}
	    }}}}
	  ]}}}}
	]}}}}}`

	fields := Extract(RawPageState{InitialData: tree(t, data)})
	v, ok := fields.Get(LikeCount)
	require.True(t, ok)
	assert.Equal(t, "1.2K", v)
}

func TestExtract_CommentLabel(t *testing.T) {
	panels := func(label string) string {
		return `{"engagementPanels": [
		  {"engagementPanelSectionListRenderer": {
		    "panelIdentifier": "engagement-panel-comments-section",
		    "header": {"engagementPanelTitleHeaderRenderer": {"contextualInfo": {"runs": [{"text": "` + label + `"}]}}}
		  }},
		  {"engagementPanelSectionListRenderer": {
		    "panelIdentifier": "engagement-panel-comments-section",
		    "header": {"engagementPanelTitleHeaderRenderer": {"contextualInfo": {"runs": [{"text": "77"}]}}}
		  }}
		]}`
	}

	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"1523", "1523", true},
		{"Comments", "", false},
		{"1,523", "", false},
		{"12 comments", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			fields := Extract(RawPageState{InitialData: tree(t, panels(tt.label))})
			got, ok := fields.Get(CommentCount)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got, "only the first comments panel is considered")
		})
	}
}

func TestStateFromSnapshot(t *testing.T) {
	snap := tree(t, `{"initialData": {"contents": {}}, "playerResponse": null}`)
	state := StateFromSnapshot(snap)

	_, ok := walk(state.InitialData, "contents")
	assert.True(t, ok)
	_, ok = walk(state.PlayerResponse)
	assert.False(t, ok)
}

func TestWalk(t *testing.T) {
	root := tree(t, `{"a": {"b": [{"c": "x"}, null]}, "n": 42}`)

	tests := []struct {
		name string
		path []any
		want string
	}{
		{"leaf", []any{"a", "b", 0, "c"}, "x"},
		{"number", []any{"n"}, "42"},
		{"null element", []any{"a", "b", 1, "c"}, ""},
		{"index out of range", []any{"a", "b", 5}, ""},
		{"negative index", []any{"a", "b", -1}, ""},
		{"key on array", []any{"a", "b", "c"}, ""},
		{"index on object", []any{"a", 0}, ""},
		{"missing key", []any{"z"}, ""},
		{"object is not text", []any{"a"}, ""},
		{"unsupported section", []any{1.5}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text(root, tt.path...))
		})
	}
}
