package bot

import (
	"TuneRelay/internal/gateway"
	"TuneRelay/internal/queue"
	"TuneRelay/utils"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
)

func (b *Bot) handleStart(msg *gateway.Message) {
	if _, err := b.access.Register(msg.UserID, msg.FullName, msg.UserName); err != nil {
		log.Printf("bot: register failed for %d: %v", msg.UserID, err)
		b.reply(msg, "Registration failed, please try again later.")
		return
	}

	approved, err := b.access.IsApproved(msg.UserID)
	if err != nil {
		log.Printf("bot: approval lookup failed for %d: %v", msg.UserID, err)
	}
	if approved {
		b.reply(msg, "You are authorized.\nSend me YouTube links.")
		return
	}

	subject := gateway.UserRef{TelegramID: msg.UserID, FullName: msg.FullName}
	if err := b.gw.SendApprovalRequest(b.adminID, subject); err != nil {
		log.Printf("bot: approval request to admin failed: %v", err)
	}
	if err := utils.SendApprovalMail(msg.FullName, msg.UserID); err != nil && !errors.Is(err, utils.ErrSMTPNotConfigured) {
		log.Printf("bot: approval mail failed: %v", err)
	}
	b.reply(msg, "You are not authorized. Your request was sent to the administrator.")
}

func (b *Bot) handlePing(msg *gateway.Message) {
	b.reply(msg, "Pong! The bot is running.")
}

func (b *Bot) handleStats(msg *gateway.Message) {
	if msg.UserID != b.adminID {
		b.reply(msg, "This command is available to the administrator only.")
		return
	}

	summary, err := b.stats.Summary()
	if err != nil {
		log.Printf("bot: stats summary failed: %v", err)
		b.reply(msg, "Failed to collect statistics.")
		return
	}

	savings := summary.TotalRequests - summary.UniqueDeliveries
	if savings < 0 {
		savings = 0
	}
	totalMB := float64(summary.TotalBytes) / (1024 * 1024)
	text := fmt.Sprintf(
		"Bot statistics:\n\n"+
			"Total users: %d\n"+
			"Approved users: %d\n"+
			"Total requests: %d\n"+
			"Unique tracks delivered: %d\n"+
			"Unique tracks cached: %d\n"+
			"Served from cache: %d\n"+
			"Total size: %.2f MB",
		summary.TotalUsers,
		summary.ApprovedUsers,
		summary.TotalRequests,
		summary.UniqueDeliveries,
		summary.UniqueCachedURLs,
		savings,
		totalMB,
	)
	b.reply(msg, text)
}

var thanksResponses = []string{
	"You are welcome! Happy to help!",
	"Any time!",
	"My pleasure!",
	"You are welcome! Ping me if you need anything else.",
	"No problem at all!",
}

func (b *Bot) handleThanks(msg *gateway.Message) {
	b.reply(msg, thanksResponses[rand.Intn(len(thanksResponses))])
}

// handleLinks validates submitted links and queues one request per
// valid link. Enqueueing never blocks; the queue's worker picks the
// items up in arrival order.
func (b *Bot) handleLinks(msg *gateway.Message) {
	links := ExtractLinks(msg.Text)
	if len(links) == 0 {
		b.reply(msg, "No YouTube links found.")
		return
	}

	valid := links[:0]
	var rejected []string
	for _, link := range links {
		if err := ValidateLink(link); err != nil {
			log.Printf("bot: rejected link %q: %v", link, err)
			rejected = append(rejected, link)
			continue
		}
		valid = append(valid, link)
	}
	if len(rejected) > 0 {
		b.reply(msg, "Skipping invalid links:\n"+strings.Join(rejected, "\n"))
	}
	if len(valid) == 0 {
		return
	}

	for _, link := range valid {
		b.queue.Enqueue(queue.Request{
			ChatID:     msg.ChatID,
			TelegramID: msg.UserID,
			FullName:   msg.FullName,
			UserName:   msg.UserName,
			SourceURL:  link,
		})
	}
}

func (b *Bot) handleUnauthorized(msg *gateway.Message) {
	b.reply(msg, "You are not authorized. Send /start to request access.")
}

func (b *Bot) reply(msg *gateway.Message, text string) {
	if _, err := b.gw.SendText(msg.ChatID, text); err != nil {
		log.Printf("bot: reply to %d failed: %v", msg.ChatID, err)
	}
}
