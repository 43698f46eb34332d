// Package bot routes inbound messaging-gateway events to handlers:
// registration, admin decisions, statistics and link submissions.
package bot

import (
	"TuneRelay/internal/access"
	"TuneRelay/internal/gateway"
	"TuneRelay/internal/queue"
	"TuneRelay/internal/stats"
	"log"
)

type route struct {
	match  Predicate
	handle func(msg *gateway.Message)
}

type Bot struct {
	gw      gateway.Gateway
	access  *access.Controller
	stats   *stats.Aggregator
	queue   *queue.Queue
	adminID int64
	routes  []route
}

// New wires the bot against its collaborators. adminID is the identity
// allowed to approve users and read statistics.
func New(gw gateway.Gateway, ctl *access.Controller, agg *stats.Aggregator, q *queue.Queue, adminID int64) *Bot {
	b := &Bot{
		gw:      gw,
		access:  ctl,
		stats:   agg,
		queue:   q,
		adminID: adminID,
	}
	b.routes = []route{
		{Command("start"), b.handleStart},
		{Command("ping"), b.handlePing},
		{Command("stats"), b.handleStats},
		{And(b.authorized, IsThanks), b.handleThanks},
		{b.authorized, b.handleLinks},
		{Not(b.authorized), b.handleUnauthorized},
	}
	return b
}

// Run consumes gateway updates until the channel closes.
func (b *Bot) Run() {
	for update := range b.gw.Updates() {
		switch {
		case update.Message != nil:
			b.Dispatch(update.Message)
		case update.Callback != nil:
			b.HandleCallback(update.Callback)
		}
	}
}

// Dispatch routes one message to the first matching handler.
func (b *Bot) Dispatch(msg *gateway.Message) {
	for _, r := range b.routes {
		if r.match(msg) {
			r.handle(msg)
			return
		}
	}
}

// authorized matches messages from approved users. A lookup failure
// counts as unauthorized.
func (b *Bot) authorized(msg *gateway.Message) bool {
	ok, err := b.access.IsApproved(msg.UserID)
	if err != nil {
		log.Printf("bot: approval lookup failed for %d: %v", msg.UserID, err)
		return false
	}
	return ok
}
