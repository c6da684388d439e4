package orpheus

import (
	"context"

	"github.com/ajac-zero/orpheus/config"
	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
	"github.com/ajac-zero/orpheus/transport"
)

// Client is the SDK entrypoint. Construct it once and share it; all
// methods are safe for concurrent use.
type Client struct {
	cfg  config.Config
	core core.Core

	Chat       *ChatService
	Embeddings *EmbeddingsService
}

// ChatService groups the chat endpoints, mirroring the API's URL layout.
type ChatService struct {
	Completions *CompletionsService
}

// New builds a client. Credentials resolve once, here: explicit options
// first, then ORPHEUS_ environment variables, then their OPENAI_
// counterparts, then the settings file when one was given.
func New(opts ...ClientOption) (*Client, error) {
	var cc clientConfig
	for _, opt := range opts {
		opt(&cc)
	}

	c := &Client{}

	if cc.core != nil {
		c.core = cc.core
	} else {
		cfg, err := resolveConfig(cc)
		if err != nil {
			return nil, err
		}
		c.cfg = cfg

		var topts []transport.Option
		if cc.httpClient != nil {
			topts = append(topts, transport.WithHTTPClient(cc.httpClient))
		}
		if cc.logger != nil {
			topts = append(topts, transport.WithLogger(cc.logger))
		}
		if cc.retry != nil {
			topts = append(topts, transport.WithRetry(*cc.retry))
		}
		c.core = transport.New(cfg, topts...)
	}

	c.Chat = &ChatService{Completions: &CompletionsService{client: c}}
	c.Embeddings = &EmbeddingsService{client: c}
	return c, nil
}

func resolveConfig(cc clientConfig) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if cc.settingsFile != "" {
		var src *config.FileSource
		src, err = config.LoadFile(cc.settingsFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg, err = src.Resolve(cc.apiKey, cc.baseURL)
	} else {
		cfg, err = config.Resolve(cc.apiKey, cc.baseURL)
	}
	if err != nil {
		return config.Config{}, err
	}

	// 选项里的默认头和查询参数覆盖文件里的同名键
	if cc.defaultHeaders != nil {
		if cfg.DefaultHeaders == nil {
			cfg.DefaultHeaders = make(map[string]string, len(cc.defaultHeaders))
		}
		for k, v := range cc.defaultHeaders {
			cfg.DefaultHeaders[k] = v
		}
	}
	if cc.defaultQuery != nil {
		if cfg.DefaultQuery == nil {
			cfg.DefaultQuery = make(map[string]string, len(cc.defaultQuery))
		}
		for k, v := range cc.defaultQuery {
			cfg.DefaultQuery[k] = v
		}
	}
	return cfg, nil
}

// Config returns the resolved client configuration. Zero when the client
// was built with WithCore.
func (c *Client) Config() config.Config {
	return c.cfg
}

// Message is shorthand for Chat.Completions.Create.
func (c *Client) Message(ctx context.Context, model string, messages schema.Messages, opts ...RequestOption) (*schema.Completion, error) {
	return c.Chat.Completions.Create(ctx, model, messages, opts...)
}
