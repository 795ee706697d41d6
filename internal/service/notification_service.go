package service

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"sync"
	"text/template"
	"time"

	"medique-api/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// AppointmentNotice carries what the appointment emails show.
type AppointmentNotice struct {
	PatientName  string
	PatientEmail string
	DoctorName   string
	Speciality   string
	SlotDate     string
	SlotTime     string
	Amount       string
}

// NotificationService renders appointment emails and hands them to the mailer
// in the background. Delivery failures are logged and dropped.
type NotificationService interface {
	BookingConfirmed(n AppointmentNotice)
	BookingCancelled(n AppointmentNotice, byAdmin bool)
	PaymentConfirmed(n AppointmentNotice)
	Stop()
}

type mailTemplate struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

type templateData struct {
	AppointmentNotice
	ByAdmin bool
}

var (
	bookingConfirmedMail = mailTemplate{
		subject: "Appointment Booked",
		text: template.Must(template.New("booked").Parse(
			"Hello {{.PatientName}},\n\n" +
				"Your appointment with Dr. {{.DoctorName}} ({{.Speciality}}) is booked for {{.SlotDate}} at {{.SlotTime}}.\n" +
				"Consultation fee: {{.Amount}}\n")),
		html: htmltemplate.Must(htmltemplate.New("booked").Parse(
			`<p>Hello {{.PatientName}},</p>` +
				`<p>Your appointment with <b>Dr. {{.DoctorName}}</b> ({{.Speciality}}) is booked for <b>{{.SlotDate}}</b> at <b>{{.SlotTime}}</b>.</p>` +
				`<p>Consultation fee: {{.Amount}}</p>`)),
	}

	bookingCancelledMail = mailTemplate{
		subject: "Appointment Cancelled",
		text: template.Must(template.New("cancelled").Parse(
			"Hello {{.PatientName}},\n\n" +
				"Your appointment with Dr. {{.DoctorName}} on {{.SlotDate}} at {{.SlotTime}} has been cancelled" +
				"{{if .ByAdmin}} by the admin{{end}}.\n")),
		html: htmltemplate.Must(htmltemplate.New("cancelled").Parse(
			`<p>Hello {{.PatientName}},</p>` +
				`<p>Your appointment with <b>Dr. {{.DoctorName}}</b> on <b>{{.SlotDate}}</b> at <b>{{.SlotTime}}</b> has been cancelled` +
				`{{if .ByAdmin}} by the admin{{end}}.</p>`)),
	}

	paymentConfirmedMail = mailTemplate{
		subject: "Appointment Confirmed",
		text: template.Must(template.New("paid").Parse(
			"Hello {{.PatientName}},\n\n" +
				"We received your payment of {{.Amount}}. Your appointment with Dr. {{.DoctorName}} on {{.SlotDate}} at {{.SlotTime}} is confirmed.\n")),
		html: htmltemplate.Must(htmltemplate.New("paid").Parse(
			`<p>Hello {{.PatientName}},</p>` +
				`<p>We received your payment of <b>{{.Amount}}</b>. Your appointment with <b>Dr. {{.DoctorName}}</b> on <b>{{.SlotDate}}</b> at <b>{{.SlotTime}}</b> is confirmed.</p>`)),
	}
)

type notificationService struct {
	mailer  gateway.Mailer
	log     *logrus.Logger
	timeout time.Duration

	// mu orders stopped against wg.Add so Stop never waits while a
	// dispatch is still registering.
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewNotificationService(mailer gateway.Mailer, log *logrus.Logger, timeout time.Duration) NotificationService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &notificationService{
		mailer:  mailer,
		log:     log,
		timeout: timeout,
	}
}

func (s *notificationService) BookingConfirmed(n AppointmentNotice) {
	s.dispatch(bookingConfirmedMail, templateData{AppointmentNotice: n})
}

func (s *notificationService) BookingCancelled(n AppointmentNotice, byAdmin bool) {
	s.dispatch(bookingCancelledMail, templateData{AppointmentNotice: n, ByAdmin: byAdmin})
}

func (s *notificationService) PaymentConfirmed(n AppointmentNotice) {
	s.dispatch(paymentConfirmedMail, templateData{AppointmentNotice: n})
}

// Stop waits for in-flight deliveries. Notices dispatched afterwards are dropped.
func (s *notificationService) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("NotificationService stopped")
}

func (s *notificationService) dispatch(tmpl mailTemplate, data templateData) {
	if data.PatientEmail == "" {
		s.log.Warnf("Skipping %q mail: recipient has no email", tmpl.subject)
		return
	}
	var text, html bytes.Buffer
	if err := tmpl.text.Execute(&text, data); err != nil {
		s.log.Warnf("Failed to render %q mail: %+v", tmpl.subject, err)
		return
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		s.log.Warnf("Failed to render %q mail: %+v", tmpl.subject, err)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.log.Warnf("Skipping %q mail to %s: notification service stopped", tmpl.subject, data.PatientEmail)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.mailer.Send(ctx, data.PatientEmail, tmpl.subject, text.String(), html.String()); err != nil {
			s.log.WithFields(logrus.Fields{
				"to":      data.PatientEmail,
				"subject": tmpl.subject,
			}).Warnf("Failed to send mail: %+v", err)
			return
		}
		s.log.Debugf("Sent %q mail to %s", tmpl.subject, data.PatientEmail)
	}()
}
