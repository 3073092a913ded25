package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BishopFox/jsluice"
	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/projectdiscovery/retryablehttp-go"
	"github.com/rs/zerolog"
)

var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// JSluiceInvoker downloads a script and analyzes it in-process with jsluice.
// Endpoint invokers emit one raw URL per line; secret invokers emit one JSON
// object per finding.
type JSluiceInvoker struct {
	kind    Kind
	cfg     config.ExtractorConfig
	logger  zerolog.Logger
	client  *retryablehttp.Client
	maxBody int64
}

// secretLine is the JSON shape of one secret finding
type secretLine struct {
	URL string `json:"url"`
	*jsluice.Secret
}

func NewJSluiceInvoker(kind Kind, cfg config.ExtractorConfig, logger zerolog.Logger) *JSluiceInvoker {
	opts := retryablehttp.DefaultOptionsSingle
	opts.Timeout = cfg.FetchTimeout()
	opts.RetryMax = cfg.FetchRetries

	return &JSluiceInvoker{
		kind:    kind,
		cfg:     cfg,
		logger:  logger,
		client:  retryablehttp.NewClient(opts),
		maxBody: int64(cfg.FetchMaxBodyMB) * 1024 * 1024,
	}
}

func (j *JSluiceInvoker) Kind() Kind { return j.kind }

// Prepare has nothing to resolve for the in-process engine
func (j *JSluiceInvoker) Prepare() error { return nil }

func (j *JSluiceInvoker) Invoke(ctx context.Context, url string) (Output, error) {
	content, contentType, status, err := j.fetch(ctx, url)
	if err != nil {
		return Output{ExitCode: status}, err
	}

	if !isJavaScript(url, contentType) {
		j.logger.Debug().Str("url", url).Str("content_type", contentType).Msg("Content does not look like JavaScript, analyzing anyway")
	}

	analyzer := jsluice.NewAnalyzer(content)
	var lines []string
	switch j.kind {
	case KindSecrets:
		for _, secret := range analyzer.GetSecrets() {
			data, err := json.Marshal(secretLine{URL: url, Secret: secret})
			if err != nil {
				j.logger.Warn().Err(err).Str("url", url).Str("secret_kind", secret.Kind).Msg("Failed to encode secret")
				continue
			}
			lines = append(lines, string(data))
		}
	default:
		for _, u := range analyzer.GetURLs() {
			if raw := strings.TrimSpace(u.URL); raw != "" {
				lines = append(lines, raw)
			}
		}
	}

	j.logger.Debug().Str("url", url).Int("findings", len(lines)).Msg("jsluice analysis completed")
	return Output{Lines: lines, ExitCode: 0}, nil
}

// fetch downloads url. The returned status is the HTTP status code, or -1
// when no response was received.
func (j *JSluiceInvoker) fetch(ctx context.Context, url string) ([]byte, string, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", -1, errorwrapper.WrapErrorf(err, "failed to build request for %s", url)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, "", -1, errorwrapper.WrapErrorf(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", resp.StatusCode, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, j.maxBody+1))
	if err != nil {
		return nil, "", resp.StatusCode, errorwrapper.WrapErrorf(err, "failed to read body of %s", url)
	}
	if int64(len(body)) > j.maxBody {
		return nil, "", resp.StatusCode, fmt.Errorf("fetch %s: body exceeds %d bytes", url, j.maxBody)
	}
	return body, resp.Header.Get("Content-Type"), resp.StatusCode, nil
}

// isJavaScript checks the content type first and falls back to the URL extension
func isJavaScript(sourceURL, contentType string) bool {
	if strings.Contains(contentType, "javascript") {
		return true
	}
	path := strings.ToLower(sourceURL)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range jsExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
