package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestBuildMessageIncludesBothParts(t *testing.T) {
	m := buildMessage("noreply@medique.test", "Medique App", "patient@example.com",
		"Appointment Booked", "plain body", "<p>html body</p>")

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()

	for _, want := range []string{
		`From: "Medique App" <noreply@medique.test>`,
		"To: patient@example.com",
		"Subject: Appointment Booked",
		"text/plain",
		"text/html",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMessageWithoutHTML(t *testing.T) {
	m := buildMessage("a@b.c", "", "x@y.z", "s", "only text", "")

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if strings.Contains(buf.String(), "text/html") {
		t.Error("did not expect an html part")
	}
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	mailer := &SMTPMailer{from: "a@b.c"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mailer.Send(ctx, "x@y.z", "s", "t", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLogMailerNeverFails(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	if err := NewLogMailer(log).Send(context.Background(), "x@y.z", "Hello", "t", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), "Hello") {
		t.Errorf("expected subject in log output, got %q", buf.String())
	}
}
