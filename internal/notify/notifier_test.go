package notify

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	msgs []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.msgs = append(f.msgs, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestSendHTML(t *testing.T) {
	s := &fakeSender{}
	n := NewTelegramNotifier(s)
	if err := n.SendHTML(42, "<b>hi</b>"); err != nil {
		t.Fatalf("SendHTML(): %v", err)
	}
	if len(s.msgs) != 1 {
		t.Fatalf("sent=%d, want 1", len(s.msgs))
	}
	if got := s.msgs[0]; got.ChatID != 42 || got.ParseMode != tgbotapi.ModeHTML || got.Text != "<b>hi</b>" {
		t.Fatalf("message=%+v", got)
	}
}

func TestSendHTML_WrapsError(t *testing.T) {
	boom := errors.New("forbidden")
	n := NewTelegramNotifier(&fakeSender{err: boom})
	if err := n.SendHTML(1, "x"); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped %v", err, boom)
	}
}
