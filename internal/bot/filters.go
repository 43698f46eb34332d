package bot

import (
	"TuneRelay/internal/gateway"
	"strings"
)

// Predicate decides whether a handler applies to an inbound message.
// Predicates compose with And/Or/Not so access rules stay flat.
type Predicate func(msg *gateway.Message) bool

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(msg *gateway.Message) bool {
		for _, pred := range preds {
			if !pred(msg) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(msg *gateway.Message) bool {
		for _, pred := range preds {
			if pred(msg) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(msg *gateway.Message) bool {
		return !pred(msg)
	}
}

// Command matches a specific bot command.
func Command(name string) Predicate {
	return func(msg *gateway.Message) bool {
		return msg.Command == name
	}
}

var thanksWords = []string{
	"спасибо", "благодарю", "благодарность", "thanks", "thank you",
	"мерси", "пасибо", "спс", "thx", "ty",
}

// IsThanks matches gratitude messages that carry no links.
func IsThanks(msg *gateway.Message) bool {
	if msg.Text == "" {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(msg.Text))
	if len(ExtractLinks(text)) > 0 {
		return false
	}
	for _, word := range thanksWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
