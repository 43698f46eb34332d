package bot

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com|youtu\.be)/[^\s]+`)

// ExtractLinks returns the recognized links in a message, in order.
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// ValidateLink rejects links with an unsupported scheme or host before
// they can reach the queue.
func ValidateLink(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return errors.New("invalid link")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("unsupported scheme")
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") {
		return nil
	}
	return errors.New("host is not youtube")
}
