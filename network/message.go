package network

import "time"

// Reserved message endpoints.
const (
	// SourceUser marks messages injected by the external user.
	SourceUser = "user"

	// TargetUser marks messages addressed back to the external user.
	TargetUser = "user"

	// TargetBroadcast fans a message out to every alive cell except the sender.
	TargetBroadcast = "broadcast"
)

// Message is one transient communication record. Messages exist only long
// enough to be delivered and displayed, then expire and are purged.
type Message struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"sourceCellId"`
	TargetID  string    `json:"targetCellId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Route     []string  `json:"route,omitempty"`
}

// MessageBuilder helps construct messages with a fluent API.
type MessageBuilder struct {
	msg Message
}

// NewMessage creates a new message builder.
func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			ID:        newMessageID(),
			Timestamp: time.Now(),
		},
	}
}

// From sets the sender of the message.
func (b *MessageBuilder) From(sourceID string) *MessageBuilder {
	b.msg.SourceID = sourceID
	return b
}

// To sets the recipient of the message.
func (b *MessageBuilder) To(targetID string) *MessageBuilder {
	b.msg.TargetID = targetID
	return b
}

// WithContent sets the message content.
func (b *MessageBuilder) WithContent(content string) *MessageBuilder {
	b.msg.Content = content
	return b
}

// WithRoute attaches the resolved delivery path.
func (b *MessageBuilder) WithRoute(route []string) *MessageBuilder {
	b.msg.Route = append([]string(nil), route...)
	return b
}

// Build creates the final message.
func (b *MessageBuilder) Build() Message {
	return b.msg
}

// messageLog is the network-wide transient message record: bounded in count
// and time-boxed by TTL. Not safe for concurrent use; the facade serializes.
type messageLog struct {
	msgs []Message
	cap  int
	ttl  time.Duration
}

func newMessageLog(cap int, ttl time.Duration) *messageLog {
	return &messageLog{
		msgs: make([]Message, 0, cap),
		cap:  cap,
		ttl:  ttl,
	}
}

// add appends a message, purging expired entries first.
func (l *messageLog) add(m Message) {
	l.purge(time.Now())
	l.msgs = append(l.msgs, m)
	l.truncate()
}

// truncate drops the oldest messages past the cap.
func (l *messageLog) truncate() {
	if over := len(l.msgs) - l.cap; over > 0 {
		l.msgs = l.msgs[over:]
	}
}

// purge drops messages older than the TTL.
func (l *messageLog) purge(now time.Time) {
	cutoff := now.Add(-l.ttl)
	keep := l.msgs[:0]
	for _, m := range l.msgs {
		if m.Timestamp.After(cutoff) {
			keep = append(keep, m)
		}
	}
	l.msgs = keep
}

// snapshot returns a copy of the current log.
func (l *messageLog) snapshot() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}
