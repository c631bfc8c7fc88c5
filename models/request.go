package models

// AnalyzeRequest is the payload for POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URLs is the ordered list of video pages to analyze. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=500"`

	// Append keeps previously accumulated results and adds this batch after them.
	// When false the accumulated results are cleared first.
	Append bool `json:"append,omitempty"`

	// Filter drops lines that do not look like video links before the batch starts.
	Filter bool `json:"filter,omitempty"`
}

// BrowserPrefsRequest is the payload for PUT /api/v1/browser.
type BrowserPrefsRequest struct {
	// Browser is "edge", "chrome" or "custom".
	Browser string `json:"browser" binding:"required,oneof=edge chrome custom"`

	// Path is required when Browser is "custom".
	Path string `json:"path,omitempty"`
}
