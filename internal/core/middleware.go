package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type HandlerFunc func(ctx context.Context, req *Request) error

type Middleware func(next HandlerFunc) HandlerFunc

func Chain(h HandlerFunc, m ...Middleware) HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func MWTimeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			if d <= 0 {
				return next(ctx, req)
			}
			cctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(cctx, req)
		}
	}
}

func MWPanicRecover(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger := log
					if req != nil && !req.Logger.IsZero() {
						logger = req.Logger
					}
					logger.Error("panic recovered",
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}

func MWRequestLog(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			logger := log
			if req != nil && !req.Logger.IsZero() {
				logger = req.Logger
			}
			err := next(ctx, req)
			d := time.Since(start)

			fields := []logx.Field{
				logx.Int64("chat_id", req.Chat.ChatID),
				logx.Int64("from_id", req.FromID),
				logx.String("cmd", req.Command),
				logx.Duration("dur", d),
			}
			if err != nil {
				logger.Warn("request failed", append(fields, logx.Err(err))...)
			} else {
				logger.Info("request ok", fields...)
			}
			return err
		}
	}
}

// MWErrorReply renders handler failures back to the chat. When the handler
// already sent a placeholder (req.Deferred), the placeholder is edited so the
// user never stares at a stuck "fetching" message; otherwise a fresh generic
// reply is sent.
func MWErrorReply() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			err := next(ctx, req)
			if err == nil {
				return nil
			}
			text := "Something went wrong. Please try again later."
			if req.Deferred != nil {
				_ = req.Adapter.EditText(ctx, *req.Deferred, text, nil)
			} else {
				_, _ = req.Adapter.SendText(ctx, req.Chat, text, &kit.SendOptions{})
			}
			return err
		}
	}
}
