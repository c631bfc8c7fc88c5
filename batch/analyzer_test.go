package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/tubemeta/models"
)

// fakeSession returns canned records and fails URLs listed in failing.
type fakeSession struct {
	mu      sync.Mutex
	visited []string
	failing map[string]error
	onVisit func(url string)
	closed  int
}

func (f *fakeSession) Visit(_ context.Context, url string) (models.VideoRecord, error) {
	f.mu.Lock()
	f.visited = append(f.visited, url)
	f.mu.Unlock()

	if f.onVisit != nil {
		f.onVisit(url)
	}
	if err, ok := f.failing[url]; ok {
		return models.VideoRecord{}, err
	}
	return models.VideoRecord{
		URL:             url,
		Title:           "title of " + url,
		ChannelName:     "chan",
		SubscriberCount: "10",
		ViewCount:       "100",
		LikeCount:       models.Absent,
		CommentCount:    models.Absent,
		PublishDate:     models.Absent,
	}, nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type callback struct {
	url     string
	current int
	total   int
	seen    int
}

func recorder(calls *[]callback) ResultFunc {
	return func(rec models.VideoRecord, current, total int, results []models.VideoRecord) {
		*calls = append(*calls, callback{url: rec.URL, current: current, total: total, seen: len(results)})
	}
}

func newAnalyzer(s *fakeSession, launches *int) *Analyzer {
	return New(func(context.Context) (Session, error) {
		if launches != nil {
			*launches++
		}
		return s, nil
	})
}

func TestAnalyzeVideos_FailureIsolation(t *testing.T) {
	s := &fakeSession{failing: map[string]error{"u2": errors.New("navigation timeout")}}
	a := newAnalyzer(s, nil)

	results, err := a.AnalyzeVideos(context.Background(), []string{"u1", "u2", "u3"}, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.False(t, results[2].Failed())

	failed := results[1]
	assert.Equal(t, "u2", failed.URL)
	assert.Equal(t, "navigation timeout", failed.Error)
	assert.Equal(t, models.ParseFailed, failed.Title)
	assert.Equal(t, models.Absent, failed.ChannelName)
	assert.Equal(t, models.Absent, failed.ViewCount)
}

func TestAnalyzeVideos_CallbackPerItem(t *testing.T) {
	s := &fakeSession{failing: map[string]error{"not-a-video-link": errors.New("net::ERR_NAME_NOT_RESOLVED")}}
	a := newAnalyzer(s, nil)

	var calls []callback
	results, err := a.AnalyzeVideos(context.Background(),
		[]string{"https://youtu.be/abc", "not-a-video-link"}, nil, recorder(&calls), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, []callback{
		{url: "https://youtu.be/abc", current: 1, total: 2, seen: 1},
		{url: "not-a-video-link", current: 2, total: 2, seen: 2},
	}, calls)
}

func TestAnalyzeVideos_PreservesOrder(t *testing.T) {
	s := &fakeSession{}
	a := newAnalyzer(s, nil)
	urls := []string{"e", "d", "c", "b", "a"}

	results, err := a.AnalyzeVideos(context.Background(), urls, nil, nil, nil)
	require.NoError(t, err)

	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, r.URL)
	}
	assert.Equal(t, urls, got)
	assert.Equal(t, urls, s.visited)
}

func TestAnalyzeVideos_StopBetweenItems(t *testing.T) {
	s := &fakeSession{}
	a := newAnalyzer(s, nil)
	tok := &StopToken{}

	var calls []callback
	onResult := func(rec models.VideoRecord, current, total int, results []models.VideoRecord) {
		recorder(&calls)(rec, current, total, results)
		if current == 1 {
			tok.Stop()
		}
	}

	results, err := a.AnalyzeVideos(context.Background(), []string{"u1", "u2", "u3", "u4", "u5"}, nil, onResult, tok)
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Len(t, calls, 1)
	assert.Equal(t, []string{"u1"}, s.visited)
}

func TestAnalyzeVideos_StopDuringFailingVisitDropsItem(t *testing.T) {
	tok := &StopToken{}
	s := &fakeSession{
		failing: map[string]error{"u2": errors.New("page crashed")},
		onVisit: func(url string) {
			if url == "u2" {
				tok.Stop()
			}
		},
	}
	a := newAnalyzer(s, nil)

	var calls []callback
	results, err := a.AnalyzeVideos(context.Background(), []string{"u1", "u2", "u3"}, nil, recorder(&calls), tok)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "u1", results[0].URL)
	assert.Len(t, calls, 1)
	assert.Equal(t, []string{"u1", "u2"}, s.visited)
}

func TestAnalyzeVideos_StopDuringSuccessfulVisitKeepsItem(t *testing.T) {
	tok := &StopToken{}
	s := &fakeSession{onVisit: func(url string) {
		if url == "u2" {
			tok.Stop()
		}
	}}
	a := newAnalyzer(s, nil)

	var calls []callback
	results, err := a.AnalyzeVideos(context.Background(), []string{"u1", "u2", "u3"}, nil, recorder(&calls), tok)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "u2", results[1].URL)
	require.Len(t, calls, 1, "the item finished after the stop is kept but not reported")
	assert.Equal(t, "u1", calls[0].url)
	assert.Equal(t, []string{"u1", "u2"}, s.visited)
}

func TestAnalyzeVideos_TrimsURLs(t *testing.T) {
	s := &fakeSession{failing: map[string]error{"not-a-video-link": errors.New("navigation failed")}}
	a := newAnalyzer(s, nil)

	var calls []callback
	results, err := a.AnalyzeVideos(context.Background(),
		[]string{"  not-a-video-link \n", "\thttps://youtu.be/a  "}, nil, recorder(&calls), nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "not-a-video-link", results[0].URL)
	assert.True(t, results[0].Failed())
	assert.Equal(t, models.ParseFailed, results[0].Title)
	assert.Equal(t, "https://youtu.be/a", results[1].URL)
	assert.Equal(t, []string{"not-a-video-link", "https://youtu.be/a"}, s.visited)
	require.Len(t, calls, 2)
	assert.Equal(t, "not-a-video-link", calls[0].url)
}

func TestAnalyzeVideos_LaunchFailure(t *testing.T) {
	launchErr := models.NewScrapeError(models.ErrCodeBrowserNotFound, "no browser executable configured", nil)
	a := New(func(context.Context) (Session, error) { return nil, launchErr })

	var calls []callback
	results, err := a.AnalyzeVideos(context.Background(), []string{"u1", "u2"}, nil, recorder(&calls), nil)

	require.ErrorIs(t, err, launchErr)
	assert.True(t, models.IsPrecondition(err))
	assert.Empty(t, results)
	assert.Empty(t, calls)
	assert.False(t, a.HasSession())
}

func TestAnalyzeVideos_ReusesSession(t *testing.T) {
	s := &fakeSession{}
	launches := 0
	a := newAnalyzer(s, &launches)

	for range 3 {
		_, err := a.AnalyzeVideos(context.Background(), []string{"u"}, nil, nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, launches)
	assert.Len(t, s.visited, 3)

	require.NoError(t, a.Close())
	assert.Equal(t, 1, s.closed)

	_, err := a.AnalyzeVideos(context.Background(), []string{"u"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, launches, "a closed session is relaunched on next use")
}

func TestAnalyzeVideos_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &fakeSession{onVisit: func(string) { cancel() }}
	a := newAnalyzer(s, nil)

	results, err := a.AnalyzeVideos(ctx, []string{"u1", "u2", "u3"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAnalyzeVideos_EmptyInput(t *testing.T) {
	a := newAnalyzer(&fakeSession{}, nil)

	results, err := a.AnalyzeVideos(context.Background(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAnalyzer_CloseWithoutSession(t *testing.T) {
	a := New(func(context.Context) (Session, error) {
		t.Fatal("launch must not be called")
		return nil, nil
	})
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestAnalyzer_OwnTokenClearedAtStart(t *testing.T) {
	s := &fakeSession{}
	a := newAnalyzer(s, nil)

	a.StopToken().Stop()
	results, err := a.AnalyzeVideos(context.Background(), []string{"u1"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1, "a stop left over from an earlier batch does not carry over")

	s.onVisit = func(string) { a.StopToken().Stop() }
	results, err = a.AnalyzeVideos(context.Background(), []string{"u1", "u2"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1, "the analyzer token is used when none is passed")
}

func TestAnalyzer_CloseResetsOwnToken(t *testing.T) {
	a := newAnalyzer(&fakeSession{}, nil)
	_, err := a.AnalyzeVideos(context.Background(), []string{"u1"}, nil, nil, nil)
	require.NoError(t, err)

	a.StopToken().Stop()
	require.NoError(t, a.Close())
	assert.False(t, a.StopToken().Stopped())
	assert.False(t, a.HasSession())
}

func TestStopToken_NilNeverStops(t *testing.T) {
	var tok *StopToken
	tok.Stop()
	tok.Reset()
	assert.False(t, tok.Stopped())
}
