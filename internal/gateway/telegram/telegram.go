// Package telegram adapts the Telegram Bot API to the gateway contract.
package telegram

import (
	"TuneRelay/internal/gateway"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Gateway struct {
	bot       *tgbotapi.BotAPI
	coverPath string
	updates   chan gateway.Update
}

// New connects to the Telegram Bot API with the given token.
func New(token string) (*Gateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("telegram: authorized as @%s", bot.Self.UserName)
	return &Gateway{
		bot:       bot,
		coverPath: findCover(),
		updates:   make(chan gateway.Update),
	}, nil
}

// findCover locates an optional album-art thumbnail next to the binary.
func findCover() string {
	for _, path := range []string{"cover.png", "cover.jpeg"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Updates starts long polling and yields normalized inbound events.
func (g *Gateway) Updates() <-chan gateway.Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	raw := g.bot.GetUpdatesChan(cfg)

	go func() {
		defer close(g.updates)
		for update := range raw {
			if out, ok := normalize(update); ok {
				g.updates <- out
			}
		}
	}()
	return g.updates
}

func normalize(update tgbotapi.Update) (gateway.Update, bool) {
	if m := update.Message; m != nil && m.From != nil {
		msg := &gateway.Message{
			ChatID:   m.Chat.ID,
			UserID:   m.From.ID,
			UserName: m.From.UserName,
			FullName: fullName(m.From),
			Text:     m.Text,
		}
		if m.IsCommand() {
			msg.Command = m.Command()
		}
		return gateway.Update{Message: msg}, true
	}
	if q := update.CallbackQuery; q != nil && q.Message != nil {
		return gateway.Update{Callback: &gateway.Callback{
			ID:        q.ID,
			UserID:    q.From.ID,
			ChatID:    q.Message.Chat.ID,
			MessageID: q.Message.MessageID,
			Data:      q.Data,
		}}, true
	}
	return gateway.Update{}, false
}

func fullName(user *tgbotapi.User) string {
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}

// SendText delivers a plain message and returns its message id.
func (g *Gateway) SendText(chatID int64, text string) (int, error) {
	sent, err := g.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText replaces the text of an earlier message.
func (g *Gateway) EditText(chatID int64, messageID int, text string) error {
	_, err := g.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// DeleteMessage removes an earlier message.
func (g *Gateway) DeleteMessage(chatID int64, messageID int) error {
	_, err := g.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// SendAudioFile uploads a local audio file and returns the transport
// handle and the size Telegram recorded for it.
func (g *Gateway) SendAudioFile(chatID int64, path string, meta gateway.Audio) (string, int64, error) {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Title = meta.Title
	audio.Performer = meta.Performer
	if g.coverPath != "" {
		audio.Thumb = tgbotapi.FilePath(g.coverPath)
	}
	sent, err := g.bot.Send(audio)
	if err != nil {
		return "", 0, err
	}
	if sent.Audio == nil {
		return "", 0, errors.New("telegram: response carries no audio")
	}
	return sent.Audio.FileID, int64(sent.Audio.FileSize), nil
}

// SendAudioHandle resends an artifact by its stored file id.
func (g *Gateway) SendAudioHandle(chatID int64, handle string, meta gateway.Audio) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(handle))
	audio.Title = meta.Title
	audio.Performer = meta.Performer
	if g.coverPath != "" {
		audio.Thumb = tgbotapi.FilePath(g.coverPath)
	}
	_, err := g.bot.Send(audio)
	if err == nil {
		return nil
	}
	return wrapSendError(err)
}

// wrapSendError classifies a resend failure. Telegram answers Bad
// Request for a file id it no longer accepts; other API errors such as
// rate limits or a blocked chat are transient and must not trigger a
// refetch.
func wrapSendError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", gateway.ErrStaleHandle, apiErr.Message)
	}
	return err
}

// SendApprovalRequest asks the administrator to approve or deny a
// pending user via inline buttons bound to the subject identity.
func (g *Gateway) SendApprovalRequest(adminChatID int64, subject gateway.UserRef) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_%d", subject.TelegramID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Deny", fmt.Sprintf("deny_%d", subject.TelegramID)),
		),
	)
	name := strings.TrimSpace(subject.FullName)
	if name == "" {
		name = fmt.Sprintf("ID: %d", subject.TelegramID)
	}
	msg := tgbotapi.NewMessage(adminChatID, fmt.Sprintf("User %s (ID: %d) requests access.", name, subject.TelegramID))
	msg.ReplyMarkup = keyboard
	_, err := g.bot.Send(msg)
	return err
}

// AnswerCallback acknowledges a button press.
func (g *Gateway) AnswerCallback(callbackID, text string, alert bool) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = alert
	_, err := g.bot.Request(callback)
	return err
}
