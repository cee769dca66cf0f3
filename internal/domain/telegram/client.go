package telegram

import "gopkg.in/telebot.v3"

// Client is the delivery boundary for outgoing messages. Dispatch hands
// rendered text to it and treats the outcome as opaque beyond logging,
// which also keeps the application logic decoupled from the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
