package bot

import (
	"TuneRelay/internal/gateway"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// HandleCallback processes approve_/deny_ button presses from the
// approval request sent to the administrator.
func (b *Bot) HandleCallback(cb *gateway.Callback) {
	action, subjectID, ok := parseDecision(cb.Data)
	if !ok {
		return
	}
	if cb.UserID != b.adminID {
		b.answer(cb, "Only the administrator can decide access requests.", true)
		return
	}

	name := b.subjectName(subjectID)
	switch action {
	case "approve":
		granted, err := b.access.Approve(subjectID)
		if err != nil || !granted {
			log.Printf("bot: approve %d failed: granted=%v err=%v", subjectID, granted, err)
			b.answer(cb, "Failed to approve the user.", true)
			return
		}
		b.answer(cb, "User approved.", false)
		b.editDecision(cb, fmt.Sprintf("User %s (ID: %d) - approved.", name, subjectID))
		b.notify(subjectID, "Access granted! You can use the bot now.")
		log.Printf("bot: user %d approved by admin", subjectID)
	case "deny":
		denied, err := b.access.Deny(subjectID)
		if err != nil || !denied {
			log.Printf("bot: deny %d failed: denied=%v err=%v", subjectID, denied, err)
			b.answer(cb, "Failed to deny the request.", true)
			return
		}
		b.answer(cb, "Request denied.", false)
		b.editDecision(cb, fmt.Sprintf("User %s (ID: %d) - denied.", name, subjectID))
		b.notify(subjectID, "Your access request was denied by the administrator.")
	}
}

func parseDecision(data string) (action string, subjectID int64, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(data, "approve_"):
		action, rest = "approve", strings.TrimPrefix(data, "approve_")
	case strings.HasPrefix(data, "deny_"):
		action, rest = "deny", strings.TrimPrefix(data, "deny_")
	default:
		return "", 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return action, id, true
}

func (b *Bot) subjectName(telegramID int64) string {
	user, err := b.access.Lookup(telegramID)
	if err != nil || user == nil || user.FullName == "" {
		return fmt.Sprintf("ID: %d", telegramID)
	}
	return user.FullName
}

func (b *Bot) answer(cb *gateway.Callback, text string, alert bool) {
	if err := b.gw.AnswerCallback(cb.ID, text, alert); err != nil {
		log.Printf("bot: callback answer failed: %v", err)
	}
}

func (b *Bot) editDecision(cb *gateway.Callback, text string) {
	if err := b.gw.EditText(cb.ChatID, cb.MessageID, text); err != nil {
		log.Printf("bot: decision message edit failed: %v", err)
	}
}

func (b *Bot) notify(telegramID int64, text string) {
	if _, err := b.gw.SendText(telegramID, text); err != nil {
		log.Printf("bot: notify %d failed: %v", telegramID, err)
	}
}
