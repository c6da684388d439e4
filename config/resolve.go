package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config 是一次解析完成后的客户端配置。解析发生在客户端构造时，
// 之后不再回读环境变量。
type Config struct {
	APIKey  string
	BaseURL string

	// DefaultHeaders 随每个请求发送，可被单次请求的头覆盖
	DefaultHeaders map[string]string

	// DefaultQuery 附加到每个请求的 URL 上
	DefaultQuery map[string]string
}

// Source 是凭证的一个查找层：显式参数、环境变量等。
// Resolve 按顺序尝试，取第一个非空值。
type Source struct {
	Name   string
	Lookup func() (string, bool)
}

// Static 把一个显式值包装成最高优先级的 Source
func Static(name, value string) Source {
	return Source{Name: name, Lookup: func() (string, bool) {
		return value, value != ""
	}}
}

// Env 把一个环境变量包装成 Source。空值视为未设置。
func Env(key string) Source {
	return Source{Name: key, Lookup: func() (string, bool) {
		v := os.Getenv(key)
		return v, v != ""
	}}
}

func resolveField(sources []Source) (string, []string) {
	checked := make([]string, 0, len(sources))
	for _, s := range sources {
		if v, ok := s.Lookup(); ok {
			return v, nil
		}
		checked = append(checked, s.Name)
	}
	return "", checked
}

// Missing 记录一个解析失败的字段以及尝试过的来源
type Missing struct {
	Field   string
	Checked []string
}

// ResolveError 在凭证缺失时返回，列出所有缺失字段而不是只报第一个。
type ResolveError struct {
	Missing []Missing
}

func (e *ResolveError) Error() string {
	var b strings.Builder
	b.WriteString("config: missing ")
	for i, m := range e.Missing {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (checked %s)", m.Field, strings.Join(m.Checked, ", "))
	}
	return b.String()
}

var (
	ErrMissingAPIKey  = errors.New("config: api key is not set")
	ErrMissingBaseURL = errors.New("config: base url is not set")
)

// Is 支持用 errors.Is 按字段匹配 ResolveError
func (e *ResolveError) Is(target error) bool {
	for _, m := range e.Missing {
		switch m.Field {
		case "api key":
			if target == ErrMissingAPIKey {
				return true
			}
		case "base url":
			if target == ErrMissingBaseURL {
				return true
			}
		}
	}
	return false
}

// Resolve 解析客户端凭证。每个字段按 显式参数 > ORPHEUS_ 变量 >
// OpenAI 兼容变量 的顺序取第一个非空值，全部缺失时收集进同一个
// ResolveError 一次性报告。
func Resolve(apiKey, baseURL string) (Config, error) {
	var resErr ResolveError

	key, checked := resolveField([]Source{
		Static("api key argument", apiKey),
		Env(EnvAPIKey),
		Env(EnvAPIKeyCompat),
	})
	if key == "" {
		resErr.Missing = append(resErr.Missing, Missing{Field: "api key", Checked: checked})
	}

	base, checked := resolveField([]Source{
		Static("base url argument", baseURL),
		Env(EnvBaseURL),
		Env(EnvBaseURLCompat),
	})
	if base == "" {
		resErr.Missing = append(resErr.Missing, Missing{Field: "base url", Checked: checked})
	}

	if len(resErr.Missing) > 0 {
		return Config{}, &resErr
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("config: base url %q is not an absolute URL", base)
	}

	return Config{APIKey: key, BaseURL: strings.TrimRight(base, "/")}, nil
}
