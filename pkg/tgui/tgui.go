package tgui

import (
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// Inline is a small builder for inline keyboards (ReplyMarkup).
// It stores rows as tele.Row ([]tele.Btn) and applies them via ReplyMarkup.Inline().
type Inline struct {
	rm   *tele.ReplyMarkup
	rows []tele.Row
}

func NewInline() *Inline {
	return &Inline{rm: &tele.ReplyMarkup{}}
}

// Row appends a new row (buttons) to the inline keyboard.
func (i *Inline) Row(btn ...tele.Btn) *Inline {
	i.rows = append(i.rows, i.rm.Row(btn...))
	i.rm.Inline(i.rows...)
	return i
}

// Markup returns the underlying reply markup.
func (i *Inline) Markup() *tele.ReplyMarkup { return i.rm }

// Btn creates a callback button with raw callback_data (we do NOT encode it).
func Btn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}

// ConfirmInline builds a simple 2-button confirm keyboard.
func ConfirmInline(yes, no tele.Btn) *Inline {
	return NewInline().Row(yes, no)
}

// Grid splits buttons into rows of the given width and returns a ready markup.
func Grid(perRow int, buttons []tele.Btn) *tele.ReplyMarkup {
	if perRow <= 0 {
		perRow = 2
	}
	rm := &tele.ReplyMarkup{}
	rows := rm.Split(perRow, buttons)
	rm.Inline(rows...)
	return rm
}

// HourGrid builds a 24-button "HH:00" keyboard, 6 buttons per row.
// Callback data for hour H is produced by the data function.
func HourGrid(data func(hour int) string) *tele.ReplyMarkup {
	buttons := make([]tele.Btn, 0, 24)
	for h := 0; h < 24; h++ {
		buttons = append(buttons, tele.Btn{
			Text: fmt.Sprintf("%02d:00", h),
			Data: data(h),
		})
	}
	return Grid(6, buttons)
}

// Reply builds a persistent reply keyboard from rows of button labels.
func Reply(rows ...[]string) *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{ResizeKeyboard: true}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		btns := make([]tele.Btn, 0, len(labels))
		for _, l := range labels {
			btns = append(btns, tele.Btn{Text: l})
		}
		teleRows = append(teleRows, rm.Row(btns...))
	}
	rm.Reply(teleRows...)
	return rm
}

// RemoveKeyboard builds a markup that removes the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
