package matching

import "strings"

// InboundPayload mirrors the loose shapes SMS-forwarder apps post. Different
// forwarders use different field names for the same thing; every accepted
// alias is declared here and collapsed by Normalize before any business logic
// runs.
type InboundPayload struct {
	Sender  string `json:"sender"`
	From    string `json:"from"`
	Address string `json:"address"`

	Key     string `json:"key"`
	Text    string `json:"text"`
	Message string `json:"message"`
	Body    string `json:"body"`
	Content string `json:"content"`
}

// InboundNotification is the canonical internal record for one inbound
// message.
type InboundNotification struct {
	Sender string
	Text   string
}

// Normalize collapses the alias fields into one canonical record, first
// non-empty alias wins.
func (p InboundPayload) Normalize() InboundNotification {
	return InboundNotification{
		Sender: firstNonEmpty(p.Sender, p.From, p.Address),
		Text:   firstNonEmpty(p.Key, p.Text, p.Message, p.Body, p.Content),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
