// Package share invokes the platform share capability for a title/URL
// payload, falling back to a clipboard copy with a synchronous user
// notification when native sharing is unavailable or cancelled.
package share

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dtechoracle/linkNest/internal/logger"
)

// Payload is what gets handed to the platform share capability.
type Payload struct {
	Title string
	URL   string
}

// ErrUnavailable is reported by an Invoker when the platform offers no
// native share capability.
var ErrUnavailable = errors.New("native share is unavailable")

// Invoker is the platform-native share capability.
type Invoker interface {
	Invoke(ctx context.Context, payload Payload) error
}

// Clipboard is the fallback copy capability.
type Clipboard interface {
	Write(ctx context.Context, text string) error
}

// Notifier delivers a synchronous user-visible notice.
type Notifier interface {
	Notify(message string)
}

// Service shares payloads through the native capability when possible.
type Service struct {
	invoker   Invoker
	clipboard Clipboard
	notifier  Notifier
}

// New creates a share Service. The invoker may be nil when the platform
// has no native share capability at all.
func New(invoker Invoker, clipboard Clipboard, notifier Notifier) *Service {
	return &Service{
		invoker:   invoker,
		clipboard: clipboard,
		notifier:  notifier,
	}
}

// Share attempts the native share invocation and falls back to copying
// the URL to the clipboard plus a notification. There are no retries;
// a clipboard failure is logged and swallowed.
func (s *Service) Share(ctx context.Context, payload Payload) {
	if s.invoker != nil {
		err := s.invoker.Invoke(ctx, payload)
		if err == nil {
			return
		}
		logger.Log.Debugln("Error calling the native share invoker: ", zap.Error(err))
	}

	if err := s.clipboard.Write(ctx, payload.URL); err != nil {
		logger.Log.Debugln("Error writing to the clipboard: ", zap.Error(err))
		return
	}

	s.notifier.Notify("Link copied to clipboard!")
}
