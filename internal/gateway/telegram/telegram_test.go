package telegram

import (
	"TuneRelay/internal/gateway"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestWrapSendErrorBadRequest(t *testing.T) {
	apiErr := &tgbotapi.Error{Code: 400, Message: "Bad Request: wrong file identifier"}

	wrapped := wrapSendError(apiErr)
	if !errors.Is(wrapped, gateway.ErrStaleHandle) {
		t.Fatalf("a Bad Request must mark the handle stale, got %v", wrapped)
	}
}

func TestWrapSendErrorTransient(t *testing.T) {
	cases := []error{
		&tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 5"},
		&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"},
		fmt.Errorf("post failed: connection reset"),
	}
	for _, err := range cases {
		if errors.Is(wrapSendError(err), gateway.ErrStaleHandle) {
			t.Fatalf("%v must not mark the handle stale", err)
		}
	}
}
