package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/models"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"wrapped deadline", fmt.Errorf("navigate: %w", context.DeadlineExceeded), models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := categorizeError(tt.err, "navigation failed")
			assert.Equal(t, tt.code, se.Code)
			assert.ErrorIs(t, se, tt.err)
		})
	}
}

func TestLaunch_MissingExecutable(t *testing.T) {
	tests := []struct {
		name string
		bin  string
	}{
		{"empty", ""},
		{"missing file", filepath.Join(t.TempDir(), "no-such-browser")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Launch(tt.bin, config.BrowserConfig{Headless: true}, config.ScraperConfig{})
			require.Error(t, err)
			assert.Nil(t, s)

			se, ok := models.AsScrapeError(err)
			require.True(t, ok)
			assert.Equal(t, models.ErrCodeBrowserNotFound, se.Code)
			assert.True(t, models.IsPrecondition(err))
		})
	}
}

func TestIsAdHost(t *testing.T) {
	assert.True(t, isAdHost("doubleclick.net"))
	assert.True(t, isAdHost("static.DoubleClick.net"))
	assert.True(t, isAdHost("pagead2.googlesyndication.com"))
	assert.False(t, isAdHost("www.youtube.com"))
	assert.False(t, isAdHost("i.ytimg.com"))
	assert.False(t, isAdHost(""))
}

func TestBlockedSet(t *testing.T) {
	set := blockedSet([]string{"Image", "Script", "Font", "bogus"})

	assert.Len(t, set, 2)
	assert.Contains(t, set, proto.NetworkResourceTypeImage)
	assert.Contains(t, set, proto.NetworkResourceTypeFont)
	assert.NotContains(t, set, proto.NetworkResourceTypeScript)
}

func TestToHeadersMap(t *testing.T) {
	h := toHeadersMap(map[string]string{"Accept-Language": "en-US,en;q=0.9"})

	require.Contains(t, h, "Accept-Language")
	assert.Equal(t, "en-US,en;q=0.9", h["Accept-Language"].Val())
}
