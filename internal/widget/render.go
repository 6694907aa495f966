package widget

import (
	"fmt"
	"html"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

// Element identifiers and classes shared with the page stylesheet.
const (
	TranscriptID      = "chatMessages"
	InputID           = "userInput"
	TypingIndicatorID = "typingIndicator"

	ClassMessage         = "message"
	ClassUserMessage     = "user-message"
	ClassBotMessage      = "bot-message"
	ClassTypingIndicator = "typing-indicator"
)

const typingLabel = "Brainovision AI is typing..."

// MessageClass returns the class attribute of a rendered message row.
func MessageClass(author chat.Author) string {
	if author == chat.AuthorUser {
		return ClassMessage + " " + ClassUserMessage
	}
	return ClassMessage + " " + ClassBotMessage
}

// RenderMessage builds the markup for one transcript row. msg.HTML must
// already be a formatted fragment.
func RenderMessage(msg chat.Message) string {
	icon := "fas fa-robot"
	if msg.IsUser() {
		icon = "fas fa-user"
	}

	return fmt.Sprintf(`<div class="%s" data-id="%s">`+
		`<div class="avatar"><i class="%s"></i></div>`+
		`<div class="message-content">`+
		`<div class="message-bubble">%s</div>`+
		`<div class="message-time">%s</div>`+
		`</div></div>`,
		MessageClass(msg.Author), html.EscapeString(msg.ID), icon, msg.HTML, html.EscapeString(msg.Timestamp))
}

// RenderTypingIndicator builds the placeholder row shown while a reply is pending.
func RenderTypingIndicator() string {
	return `<div class="` + ClassMessage + ` ` + ClassBotMessage + `" id="` + TypingIndicatorID + `">` +
		`<div class="avatar"><i class="fas fa-robot"></i></div>` +
		`<div class="message-content"><div class="` + ClassTypingIndicator + `">` +
		`<div class="typing-dots"><div class="typing-dot"></div><div class="typing-dot"></div><div class="typing-dot"></div></div>` +
		`<span>` + typingLabel + `</span>` +
		`</div></div></div>`
}
