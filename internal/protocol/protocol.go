package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linechat/linechat/internal/registry"
)

// Kind discriminates the routed message union.
type Kind int

const (
	_ Kind = iota
	// KindBroadcast delivers to every registered client.
	KindBroadcast
	// KindPrivate delivers to exactly one client by id.
	KindPrivate
)

// Message is one parsed inbound line. Constructed per line, handed to the
// router, then discarded.
type Message struct {
	Kind Kind
	From registry.ClientID
	To   registry.ClientID // private only
	Text string
}

const (
	privatePrefix = "/msg "
	welcomePrefix = "Your ID: "
)

// Parse interprets one inbound line from client `from`. A line of the
// form "/msg <id> <text>" becomes a private message; anything else —
// including a malformed /msg (missing id, negative or non-numeric id,
// missing text) — is treated permissively as a broadcast of the raw line.
func Parse(from registry.ClientID, line string) Message {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, privatePrefix) {
		parts := strings.SplitN(trimmed, " ", 3)
		if len(parts) == 3 {
			if to, err := strconv.ParseInt(parts[1], 10, 64); err == nil && to >= 0 {
				return Message{
					Kind: KindPrivate,
					From: from,
					To:   registry.ClientID(to),
					Text: parts[2],
				}
			}
		}
	}

	return Message{Kind: KindBroadcast, From: from, Text: trimmed}
}

// FormatWelcome is the identity line sent once at registration.
func FormatWelcome(id registry.ClientID) string {
	return fmt.Sprintf("%s%d", welcomePrefix, id)
}

// ParseWelcome extracts the assigned id from a welcome line.
func ParseWelcome(line string) (registry.ClientID, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), welcomePrefix)
	if !ok {
		return 0, fmt.Errorf("not a welcome line: %q", line)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id in welcome line %q", line)
	}
	return registry.ClientID(id), nil
}

// FormatBroadcast tags a broadcast line with its sender.
func FormatBroadcast(from registry.ClientID, text string) string {
	return fmt.Sprintf("Client %d: %s", from, text)
}

// FormatPrivate tags a private line as private and with its sender.
func FormatPrivate(from registry.ClientID, text string) string {
	return fmt.Sprintf("[Private] Client %d: %s", from, text)
}

// FormatNotFound is the notice returned to a sender whose private message
// named an unknown recipient.
func FormatNotFound(to registry.ClientID) string {
	return fmt.Sprintf("Client %d not found.", to)
}

// TagOwn appends the self marker to the client's own broadcast lines so
// the terminal user can tell them apart. Private lines and other clients'
// lines pass through untouched.
func TagOwn(line string, self registry.ClientID) string {
	if strings.HasPrefix(line, "[Private]") {
		return line
	}
	if strings.HasPrefix(line, fmt.Sprintf("Client %d:", self)) {
		return line + " (Me)"
	}
	return line
}
