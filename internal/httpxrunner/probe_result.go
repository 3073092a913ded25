package httpxrunner

// ProbeResult is the subset of an httpx response the liveness filter needs.
type ProbeResult struct {
	InputURL   string `json:"input_url"`
	URL        string `json:"url,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Failed     bool   `json:"failed,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Alive reports whether the probe reached the target with the wanted status.
func (pr *ProbeResult) Alive(statusCode int) bool {
	if pr == nil || pr.Failed || pr.Error != "" {
		return false
	}
	return pr.StatusCode == statusCode
}
