package telegram

import (
	"context"
	"time"

	"gopkg.in/telebot.v3"
)

const handlerTimeout = 30 * time.Second

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// replyKeyboard lays labels out in rows of cols buttons.
func replyKeyboard(labels []string, cols int) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	var rows []telebot.Row
	var row []telebot.Btn
	for _, label := range labels {
		row = append(row, markup.Text(label))
		if len(row) == cols {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	markup.Reply(rows...)
	return markup
}

func removeKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}
