package extractor

import (
	"encoding/json"
	"strconv"

	"github.com/ysmood/gson"
)

// RawPageState holds the two embedded state trees a watch page exposes.
// Either tree may be nil; their shape is not contractually stable.
type RawPageState struct {
	// InitialData is window.ytInitialData.
	InitialData gson.JSON

	// PlayerResponse is window.ytInitialPlayerResponse.
	PlayerResponse gson.JSON
}

// SnapshotJS returns both trees in a single evaluation.
const SnapshotJS = `() => ({
	initialData: window.ytInitialData || null,
	playerResponse: window.ytInitialPlayerResponse || null,
})`

// StateFromSnapshot splits the value returned by SnapshotJS.
func StateFromSnapshot(snap gson.JSON) RawPageState {
	initial, _ := walk(snap, "initialData")
	player, _ := walk(snap, "playerResponse")
	return RawPageState{
		InitialData:    gson.New(initial),
		PlayerResponse: gson.New(player),
	}
}

// walk follows path through a decoded JSON value. String sections index
// objects, int sections index arrays. Any missing link, null, or type
// mismatch yields (nil, false).
func walk(v any, path ...any) (any, bool) {
	for _, section := range path {
		v = unwrap(v)
		switch key := section.(type) {
		case string:
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			if v, ok = obj[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := v.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			v = arr[key]
		default:
			return nil, false
		}
	}
	v = unwrap(v)
	return v, v != nil
}

// text walks path and returns the leaf as text, or "" when it is absent
// or not a scalar.
func text(v any, path ...any) string {
	leaf, ok := walk(v, path...)
	if !ok {
		return ""
	}
	switch s := leaf.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func unwrap(v any) any {
	switch j := v.(type) {
	case gson.JSON:
		return j.Val()
	case *gson.JSON:
		if j == nil {
			return nil
		}
		return j.Val()
	}
	return v
}
