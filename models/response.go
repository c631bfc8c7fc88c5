package models

// ResultEvent is streamed once per processed video.
type ResultEvent struct {
	Record  VideoRecord `json:"record"`
	Current int         `json:"current"`
	Total   int         `json:"total"`
}

// DoneEvent closes an analyze stream.
type DoneEvent struct {
	Succeeded int  `json:"succeeded"`
	Processed int  `json:"processed"`
	Total     int  `json:"total"`
	Stopped   bool `json:"stopped"`
}

// ResultsResponse is the response for GET /api/v1/results.
type ResultsResponse struct {
	Success bool          `json:"success"`
	Results []VideoRecord `json:"results"`
	Total   int           `json:"total"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// StatusResponse is the generic acknowledgement body.
type StatusResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// BrowserPrefsResponse is the response for GET /api/v1/browser.
type BrowserPrefsResponse struct {
	Browser  string `json:"browser,omitempty"`
	Path     string `json:"path,omitempty"`
	Resolved string `json:"resolved,omitempty"`
}

// BrowserCheckResponse is the response for GET /api/v1/browser/check/:kind.
type BrowserCheckResponse struct {
	Browser   string `json:"browser"`
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "idle", "busy" or "degraded"
	Uptime  string `json:"uptime"`
	Busy    bool   `json:"busy"`
	Stored  int    `json:"stored"`
	Version string `json:"version"`
}
