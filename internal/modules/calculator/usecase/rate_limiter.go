package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited 送信レート制限を超えた
var ErrRateLimited = errors.New("submission rate limit exceeded")

// WindowCounter 固定ウィンドウのカウンタ
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// SubmissionLimiter 外部APIへの送信回数を1分あたりで制限する
type SubmissionLimiter struct {
	counter WindowCounter
	limit   int64
	window  time.Duration
	now     func() time.Time
}

// NewSubmissionLimiter 新しいSubmissionLimiterを作成
func NewSubmissionLimiter(counter WindowCounter, perMinute int) *SubmissionLimiter {
	return &SubmissionLimiter{
		counter: counter,
		limit:   int64(perMinute),
		window:  time.Minute,
		now:     time.Now,
	}
}

// Allow 送信してよいか判定する。カウンタが使えない場合は許可してエラーを返す
func (l *SubmissionLimiter) Allow(ctx context.Context) (bool, error) {
	bucket := l.now().Truncate(l.window).Unix()
	key := fmt.Sprintf("calculator:submissions:%d", bucket)

	n, err := l.counter.IncrementWindow(ctx, key, l.window)
	if err != nil {
		return true, err
	}
	return n <= l.limit, nil
}
