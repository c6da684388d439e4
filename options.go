package orpheus

import (
	"log/slog"
	"net/http"

	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/tool"
	"github.com/ajac-zero/orpheus/transport"
)

type clientConfig struct {
	apiKey  string
	baseURL string

	settingsFile string

	defaultHeaders map[string]string
	defaultQuery   map[string]string

	httpClient *http.Client
	logger     *slog.Logger
	retry      *transport.RetryConfig

	core core.Core
}

// ClientOption configures a Client at construction time.
type ClientOption func(*clientConfig)

// WithAPIKey sets the API key explicitly, taking precedence over the
// environment.
func WithAPIKey(key string) ClientOption {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithBaseURL sets the API base URL explicitly, taking precedence over
// the environment. See config.OpenRouterBaseURL for a common choice.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

// WithSettingsFile loads client settings from a config file. File values
// rank below explicit options and the environment.
func WithSettingsFile(path string) ClientOption {
	return func(c *clientConfig) { c.settingsFile = path }
}

// WithDefaultHeaders sets headers sent with every request.
func WithDefaultHeaders(h map[string]string) ClientOption {
	return func(c *clientConfig) { c.defaultHeaders = h }
}

// WithDefaultQuery sets query parameters appended to every request URL.
func WithDefaultQuery(q map[string]string) ClientOption {
	return func(c *clientConfig) { c.defaultQuery = q }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger sets the structured logger. Logging defaults to discard.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *clientConfig) { c.logger = l }
}

// WithRetry sets the retry policy for non-streaming requests.
func WithRetry(r transport.RetryConfig) ClientOption {
	return func(c *clientConfig) { c.retry = &r }
}

// WithCore swaps in a custom provider implementation. Intended for tests
// and alternative transports; credential resolution is skipped.
func WithCore(co core.Core) ClientOption {
	return func(c *clientConfig) { c.core = co }
}

type requestConfig struct {
	tools []tool.Tool

	extraHeaders map[string]string
	extraQuery   map[string]string
	extra        map[string]any

	dimensions     *int
	encodingFormat string
	user           string
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// WithTools declares the tools the model may call.
func WithTools(tools ...tool.Tool) RequestOption {
	return func(c *requestConfig) { c.tools = append(c.tools, tools...) }
}

// WithExtraHeaders adds headers to this request only.
func WithExtraHeaders(h map[string]string) RequestOption {
	return func(c *requestConfig) { c.extraHeaders = h }
}

// WithExtraQuery adds query parameters to this request only.
func WithExtraQuery(q map[string]string) RequestOption {
	return func(c *requestConfig) { c.extraQuery = q }
}

// WithExtra merges fields into the top level of the request body.
// Colliding with a built-in field is an error.
func WithExtra(fields map[string]any) RequestOption {
	return func(c *requestConfig) { c.extra = fields }
}

// WithDimensions asks for embeddings of the given dimensionality.
func WithDimensions(n int) RequestOption {
	return func(c *requestConfig) { c.dimensions = &n }
}

// WithEncodingFormat sets the embeddings encoding format ("float" or
// "base64").
func WithEncodingFormat(format string) RequestOption {
	return func(c *requestConfig) { c.encodingFormat = format }
}

// WithUser tags the request with an end-user identifier.
func WithUser(user string) RequestOption {
	return func(c *requestConfig) { c.user = user }
}

func applyRequestOptions(opts []RequestOption) requestConfig {
	var cfg requestConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
