package transport

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"net"
	"sync"
	"time"
)

// RetryConfig 控制非流式请求的重试。流式请求一旦开始产出就不重试。
type RetryConfig struct {
	// MaxAttempts 包含首次请求。<= 1 表示不重试。
	MaxAttempts int

	// Base 是首次重试前的退避时长，之后指数增长
	Base time.Duration

	// Max 是单次退避的上限
	Max time.Duration

	// Jitter 为退避加减的随机比例，取值 0..1
	Jitter float64

	// RespectRetryAfter 在服务端返回 Retry-After 时以其为准
	RespectRetryAfter bool

	// MaxRetryAfter 给 Retry-After 封顶，零值表示不封顶
	MaxRetryAfter time.Duration
}

// DefaultRetry 返回默认重试配置
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		Base:              200 * time.Millisecond,
		Max:               3 * time.Second,
		Jitter:            0.2,
		RespectRetryAfter: true,
		MaxRetryAfter:     30 * time.Second,
	}
}

var (
	jitterMu  sync.Mutex
	jitterRng = rand.New(rand.NewPCG(seed64(), seed64()))
)

func seed64() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:])
	}
	return uint64(time.Now().UnixNano())
}

func jitterFloat64() float64 {
	jitterMu.Lock()
	defer jitterMu.Unlock()
	return jitterRng.Float64()
}

// backoff 计算第 attempt 次重试前的等待时长，attempt 从 1 开始
func (c RetryConfig) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.Base
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	max := c.Max
	if max <= 0 {
		max = 3 * time.Second
	}

	d := base
	for i := 1; i < attempt; i++ {
		if d >= max/2 {
			d = max
			break
		}
		d *= 2
	}
	if d > max {
		d = max
	}

	j := c.Jitter
	if j <= 0 {
		return d
	}
	if j > 1 {
		j = 1
	}
	f := 1 + (jitterFloat64()*2-1)*j
	if f < 0 {
		f = 0
	}
	return time.Duration(float64(d) * f)
}

// delayFor 综合退避与服务端 Retry-After 得出本次等待时长
func (c RetryConfig) delayFor(attempt int, retryAfter time.Duration) time.Duration {
	d := c.backoff(attempt)
	if c.RespectRetryAfter && retryAfter > 0 {
		d = retryAfter
		if c.MaxRetryAfter > 0 && d > c.MaxRetryAfter {
			d = c.MaxRetryAfter
		}
	}
	return d
}

// shouldRetry 判断一个失败是否值得重试
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsTemporary(err) {
		return true
	}
	if _, ok := AsAPIError(err); ok {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	// 其余传输层错误（连接重置等）按可重试处理
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
