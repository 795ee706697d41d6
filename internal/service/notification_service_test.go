package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	delay time.Duration
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func (f *fakeMailer) Sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

var testNotice = AppointmentNotice{
	PatientName:  "Asha",
	PatientEmail: "asha@example.com",
	DoctorName:   "Rao",
	Speciality:   "Dermatologist",
	SlotDate:     "2024-05-01",
	SlotTime:     "10:00",
	Amount:       "500.00",
}

func TestBookingConfirmedSendsRenderedMail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	svc.BookingConfirmed(testNotice)
	svc.Stop()

	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sent))
	}
	m := sent[0]
	if m.to != "asha@example.com" || m.subject != "Appointment Booked" {
		t.Errorf("unexpected envelope: %+v", m)
	}
	for _, want := range []string{"Asha", "Dr. Rao", "2024-05-01", "10:00"} {
		if !strings.Contains(m.text, want) {
			t.Errorf("text body missing %q", want)
		}
	}
	if !strings.Contains(m.html, "<b>Dr. Rao</b>") {
		t.Errorf("html body not rendered: %q", m.html)
	}
}

func TestBookingCancelledByAdminWording(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	svc.BookingCancelled(testNotice, true)
	svc.BookingCancelled(testNotice, false)
	svc.Stop()

	sent := mailer.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(sent))
	}
	byAdmin := 0
	for _, m := range sent {
		if strings.Contains(m.text, "by the admin") {
			byAdmin++
		}
	}
	if byAdmin != 1 {
		t.Errorf("mails mentioning admin = %d, want 1", byAdmin)
	}
}

func TestHTMLBodyEscapesUserInput(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	n := testNotice
	n.PatientName = "<script>x</script>"
	svc.PaymentConfirmed(n)
	svc.Stop()

	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sent))
	}
	if strings.Contains(sent[0].html, "<script>") {
		t.Error("html body must escape patient name")
	}
}

func TestMailerFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	svc.PaymentConfirmed(testNotice)
	svc.Stop()

	if len(mailer.Sent()) != 0 {
		t.Fatal("nothing should be recorded as sent")
	}
}

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	mailer := &fakeMailer{delay: 200 * time.Millisecond}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	start := time.Now()
	svc.BookingConfirmed(testNotice)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("dispatch blocked for %v", elapsed)
	}
	svc.Stop()

	if len(mailer.Sent()) != 1 {
		t.Fatal("Stop should wait for the in-flight delivery")
	}
}

func TestSendTimeoutApplies(t *testing.T) {
	mailer := &fakeMailer{delay: time.Second}
	svc := NewNotificationService(mailer, newTestLogger(), 20*time.Millisecond)

	svc.BookingConfirmed(testNotice)
	svc.Stop()

	if len(mailer.Sent()) != 0 {
		t.Fatal("delivery past the timeout should be abandoned")
	}
}

func TestMissingRecipientSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	n := testNotice
	n.PatientEmail = ""
	svc.BookingConfirmed(n)
	svc.Stop()

	if len(mailer.Sent()) != 0 {
		t.Fatal("no mail expected without a recipient")
	}
}

func TestStopRacingDispatches(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	var wg sync.WaitGroup
	started := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-started
			for j := 0; j < 50; j++ {
				svc.BookingConfirmed(testNotice)
			}
		}()
	}

	close(started)
	svc.Stop()
	afterStop := len(mailer.Sent())
	wg.Wait()

	if got := len(mailer.Sent()); got != afterStop {
		t.Fatalf("%d mails delivered after Stop returned", got-afterStop)
	}
}

func TestDispatchAfterStopDropped(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, newTestLogger(), time.Second)

	svc.Stop()
	svc.PaymentConfirmed(testNotice)
	svc.Stop()

	if len(mailer.Sent()) != 0 {
		t.Fatal("notices after Stop should be dropped")
	}
}
