package config

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings 是配置文件里的客户端设置，字段与 Resolve 的入参对应。
// 支持 viper 认识的所有格式（yaml、toml、json 等）。
type Settings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`

	DefaultHeaders map[string]string `mapstructure:"default_headers"`
	DefaultQuery   map[string]string `mapstructure:"default_query"`
}

// FileSource 持有一个配置文件并监控其变更。Settings 读取并发安全。
type FileSource struct {
	v *viper.Viper

	mu       sync.RWMutex
	value    Settings
	watchers []func(old, new Settings)
}

// LoadFile 加载配置文件并开始监控变更
func LoadFile(path string) (*FileSource, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	f := &FileSource{v: v, value: s}
	f.watch()
	return f, nil
}

// Settings 返回当前设置的副本
func (f *FileSource) Settings() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value.clone()
}

// OnChange 注册设置变更回调。回调在后台 goroutine 里执行。
func (f *FileSource) OnChange(cb func(old, new Settings)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers = append(f.watchers, cb)
}

// Resolve 以文件设置为最低优先级完成凭证解析：
// 显式参数 > 环境变量 > 配置文件。
func (f *FileSource) Resolve(apiKey, baseURL string) (Config, error) {
	s := f.Settings()
	if apiKey == "" {
		apiKey = s.APIKey
	}
	if baseURL == "" {
		baseURL = s.BaseURL
	}

	cfg, err := Resolve(apiKey, baseURL)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultHeaders = s.DefaultHeaders
	cfg.DefaultQuery = s.DefaultQuery
	return cfg, nil
}

func (s Settings) clone() Settings {
	out := s
	if s.DefaultHeaders != nil {
		out.DefaultHeaders = make(map[string]string, len(s.DefaultHeaders))
		for k, v := range s.DefaultHeaders {
			out.DefaultHeaders[k] = v
		}
	}
	if s.DefaultQuery != nil {
		out.DefaultQuery = make(map[string]string, len(s.DefaultQuery))
		for k, v := range s.DefaultQuery {
			out.DefaultQuery[k] = v
		}
	}
	return out
}

// 编辑器保存往往触发多个 fsnotify 事件，用短暂的去抖窗口合并
func (f *FileSource) watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	f.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
			f.handleChange()
		})
		debounceMu.Unlock()
	})

	f.v.WatchConfig()
}

func (f *FileSource) handleChange() {
	old := f.Settings()

	next, watchers, ok := f.reload()
	if !ok {
		return
	}
	if reflect.DeepEqual(old, next) {
		return
	}

	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(old, next)
		}()
	}
}

// reload 重新读取文件；读取或解析失败时保留上一份有效设置
func (f *FileSource) reload() (Settings, []func(old, new Settings), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.v.ReadInConfig(); err != nil {
		return Settings{}, nil, false
	}

	var s Settings
	if err := f.v.Unmarshal(&s); err != nil {
		return Settings{}, nil, false
	}
	f.value = s

	watchers := make([]func(old, new Settings), len(f.watchers))
	copy(watchers, f.watchers)

	return s.clone(), watchers, true
}
