// Package retry 提供带指数退避的重试
package retry

import (
	"context"
	"time"
)

// Policy 重试策略
type Policy struct {
	// 最大尝试次数，小于 1 时按 1 处理
	MaxAttempts int
	// 首次重试前的等待
	InitialDelay time.Duration
	// 等待上限
	MaxDelay time.Duration
}

// Do 执行 fn 直到成功、次数耗尽或 ctx 结束，返回最后一次错误
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(attempt); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}

		// 指数退避
		delay = time.Duration(float64(delay) * 1.5)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}
