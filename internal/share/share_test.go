package share

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtechoracle/linkNest/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("debug"); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type invokerStub struct {
	err     error
	invoked []Payload
}

func (s *invokerStub) Invoke(ctx context.Context, payload Payload) error {
	s.invoked = append(s.invoked, payload)
	return s.err
}

type clipboardStub struct {
	err     error
	written []string
}

func (s *clipboardStub) Write(ctx context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.written = append(s.written, text)
	return nil
}

type notifierStub struct {
	messages []string
}

func (s *notifierStub) Notify(message string) {
	s.messages = append(s.messages, message)
}

func TestShareUsesNativeCapabilityWhenAvailable(t *testing.T) {
	invoker := &invokerStub{}
	clipboard := &clipboardStub{}
	notifier := &notifierStub{}
	service := New(invoker, clipboard, notifier)

	payload := Payload{Title: "alice's profile", URL: "https://linknest.example/alice"}
	service.Share(context.Background(), payload)

	assert.Equal(t, []Payload{payload}, invoker.invoked)
	assert.Empty(t, clipboard.written)
	assert.Empty(t, notifier.messages)
}

func TestShareFallsBackToClipboard(t *testing.T) {
	testCases := []struct {
		name    string
		invoker Invoker
	}{
		{name: "no native capability", invoker: nil},
		{name: "capability reports unavailable", invoker: &invokerStub{err: ErrUnavailable}},
		{name: "invocation cancelled", invoker: &invokerStub{err: errors.New("share dismissed")}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clipboard := &clipboardStub{}
			notifier := &notifierStub{}
			service := New(testCase.invoker, clipboard, notifier)

			service.Share(context.Background(), Payload{Title: "a link", URL: "https://example.com/page"})

			assert.Equal(t, []string{"https://example.com/page"}, clipboard.written)
			assert.Equal(t, []string{"Link copied to clipboard!"}, notifier.messages)
		})
	}
}

func TestShareSwallowsClipboardFailure(t *testing.T) {
	clipboard := &clipboardStub{err: errors.New("clipboard unavailable")}
	notifier := &notifierStub{}
	service := New(nil, clipboard, notifier)

	service.Share(context.Background(), Payload{URL: "https://example.com/page"})

	// No notification when nothing was copied.
	assert.Empty(t, notifier.messages)
}
