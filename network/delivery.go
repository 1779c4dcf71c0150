package network

import (
	"fmt"
	"strings"
)

// Auto-reply prefixes. Generated follow-ups are recognizable so a reply does
// not trigger further simulated work and chain forever.
var autoReplyPrefixes = []string{
	"Analysis complete",
	"Task routed",
	"Sensor status",
	"Offer to help",
	"I am ",
}

func isAutoReply(content string) bool {
	for _, prefix := range autoReplyPrefixes {
		if strings.HasPrefix(content, prefix) {
			return true
		}
	}
	return false
}

// helpRequestPrefix marks targeted and broadcast help messages.
const helpRequestPrefix = "Need help with: "

// walkPath delivers a message hop by hop along a resolved path. Each hop
// requires its recipient alive; a dead hop halts propagation there, with a
// route-broken decision recorded on the predecessor. No retry, no reroute.
func (n *Network) walkPath(path []string, msg Message) {
	for i := 1; i < len(path); i++ {
		hop := n.reg.Get(path[i])
		if hop == nil || !hop.IsAlive {
			if prev := n.reg.Get(path[i-1]); prev != nil {
				prev.Record(HistoryDecision, "route broken at "+path[i])
			}
			n.logger.Warn("Route broken, halting propagation",
				Field{Key: "hop", Value: path[i]},
				Field{Key: "message_id", Value: msg.ID},
			)
			return
		}
		n.receive(hop, msg, i == len(path)-1)
	}
}

// deliverBroadcast applies final-hop reception to every alive cell except the
// sender. Broadcasts never use multi-hop routing.
func (n *Network) deliverBroadcast(msg Message) {
	for _, c := range n.reg.List() {
		if !c.IsAlive || c.ID == msg.SourceID {
			continue
		}
		n.receive(c, msg, true)
	}
}

// receive applies one hop's reception side effects: a sleeping recipient
// wakes, the reception lands in history, and the activity clock refreshes.
// Only the final hop runs content reactions.
func (n *Network) receive(c *Cell, msg Message, final bool) {
	tick := n.engine.TickCount()

	// Snapshot the conversation state before this reception lands, since
	// recording it below makes the incoming message the latest history entry.
	wasBusy := c.awaitingReply()

	if c.Status == StatusSleeping {
		c.Status = StatusActive
		c.Record(HistoryWake, "woken by incoming message")
	}

	if final {
		c.Record(HistoryReceived, fmt.Sprintf("from %s: %s", msg.SourceID, msg.Content))
	} else {
		c.Record(HistoryReceived, fmt.Sprintf("relaying for %s: %s", msg.SourceID, msg.Content))
	}
	c.markActive(tick)

	if final {
		n.react(c, msg, wasBusy)
	}
}

// react runs the final-hop content reactions. Administrative commands
// short-circuit everything else; canned queries and help requests produce
// deferred replies; sentiment adjusts the social graph; anything that is not
// itself an auto-reply triggers role-specific simulated work.
func (n *Network) react(c *Cell, msg Message, wasBusy bool) {
	content := msg.Content

	if n.applyAdminCommand(c, content) {
		return
	}

	if content == "purpose?" {
		n.scheduleReply(c.ID, msg.SourceID,
			fmt.Sprintf("I am %s, a %s. My goal: %s", c.ID, c.Expertise, c.Goal))
		return
	}

	if topic, ok := strings.CutPrefix(content, helpRequestPrefix); ok {
		if !wasBusy && n.offersHelp(c, topic) {
			n.scheduleReply(c.ID, msg.SourceID, "Offer to help with: "+topic)
		}
		return
	}

	n.applySentiment(c, msg)

	if !isAutoReply(content) {
		n.scheduleWork(c, msg.SourceID)
	}
}

// applyAdminCommand handles the exact-match administrative commands:
// "color all <group> <color>" tags every cell whose expertise ends in the
// group's singular suffix, and "reset colors" clears the tag. Returns true
// when the content was a command, matched or not.
func (n *Network) applyAdminCommand(c *Cell, content string) bool {
	if content == "reset colors" {
		if c.IndicatorColor != "" {
			c.IndicatorColor = ""
			c.Record(HistoryColor, "indicator color cleared")
		}
		return true
	}

	fields := strings.Fields(content)
	if len(fields) != 4 || fields[0] != "color" || fields[1] != "all" {
		return false
	}

	group := strings.TrimSuffix(strings.ToLower(fields[2]), "s")
	color := fields[3]
	if strings.HasSuffix(strings.ToLower(c.Expertise), group) {
		c.IndicatorColor = color
		c.Record(HistoryColor, "indicator color set to "+color)
	}
	return true
}

// applySentiment likes or unlikes the sender based on sentiment keywords.
func (n *Network) applySentiment(c *Cell, msg Message) {
	if msg.SourceID == SourceUser || msg.SourceID == c.ID {
		return
	}

	lower := strings.ToLower(msg.Content)
	switch {
	case strings.Contains(lower, "thank") || strings.Contains(lower, "helpful"):
		if !c.LikedCells[msg.SourceID] {
			c.Like(msg.SourceID)
			c.Record(HistoryLike, "likes "+msg.SourceID)
		}
	case strings.Contains(lower, "error") || strings.Contains(lower, "failed"):
		if c.LikedCells[msg.SourceID] {
			c.Unlike(msg.SourceID)
			c.Record(HistoryUnlike, "no longer likes "+msg.SourceID)
		}
	}
}

// offersHelp decides whether a cell responds to a help request: expertise
// must match the topic and the cell must be alive and awake. Whether it was
// already mid-conversation is judged by the caller, before the request itself
// landed in history.
func (n *Network) offersHelp(c *Cell, topic string) bool {
	if !c.IsAlive || c.Status != StatusActive {
		return false
	}
	return expertiseMatches(c.Expertise, topic)
}

// scheduleWork defers role-specific simulated work and the follow-up message
// it produces back to the sender.
func (n *Network) scheduleWork(c *Cell, senderID string) {
	var text string
	switch {
	case strings.Contains(c.Expertise, "Analyzer"):
		text = fmt.Sprintf("Analysis complete: %d records processed", n.rng.Intn(900)+100)
	case strings.Contains(c.Expertise, "Coordinator"):
		text = "Task routed to the least busy node"
	case strings.Contains(c.Expertise, "Sensor"):
		text = "Sensor status: readings nominal"
	default:
		return
	}

	cellID := c.ID
	n.schedule(func() {
		worker := n.reg.Get(cellID)
		if worker == nil || !worker.IsAlive {
			return
		}
		worker.Record(HistoryWork, text)
		if _, err := n.sendLocked(cellID, senderID, text); err != nil {
			n.logger.Debug("Work follow-up undeliverable",
				Field{Key: "cell_id", Value: cellID},
				Field{Key: "error", Value: err},
			)
		}
	})
}

// scheduleReply defers an auto-reply through the engine's task queue.
func (n *Network) scheduleReply(fromID, toID, text string) {
	n.schedule(func() {
		sender := n.reg.Get(fromID)
		if sender == nil || !sender.IsAlive {
			return
		}
		if _, err := n.sendLocked(fromID, toID, text); err != nil {
			n.logger.Debug("Auto-reply undeliverable",
				Field{Key: "from_id", Value: fromID},
				Field{Key: "error", Value: err},
			)
		}
	})
}

// schedule enqueues a deferred task with the configured randomized delay.
func (n *Network) schedule(fn func()) {
	delay := n.cfg.ReplyDelayMin
	if spread := n.cfg.ReplyDelayMax - n.cfg.ReplyDelayMin; spread > 0 {
		delay += n.rng.Intn(spread + 1)
	}
	n.engine.Schedule(delay, fn)
}

// expertiseMatches reports whether a help topic concerns a cell's expertise:
// any useful topic token appears in the expertise, or the whole expertise
// appears in the topic.
func expertiseMatches(expertise, topic string) bool {
	expertiseLower := strings.ToLower(expertise)
	topicLower := strings.ToLower(topic)

	if strings.Contains(topicLower, expertiseLower) {
		return true
	}

	for _, token := range strings.Fields(topicLower) {
		token = strings.Trim(token, ".,!?")
		if len(token) >= 4 && strings.Contains(expertiseLower, token) {
			return true
		}
	}
	return false
}
