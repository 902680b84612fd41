package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Mailer renders a heading and body into the branded template and sends it
type Mailer interface {
	SendTemplate(to []string, subject, heading, body string) error
}

// readBackoff is the pause after a failed read before the next attempt
const readBackoff = 2 * time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader  messageReader
	mailer  Mailer
	backoff time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, mailer Mailer) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		mailer:  mailer,
		backoff: readBackoff,
	}
}

// Run reads until ctx is cancelled. Bad messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Println("[EVENTS] consumer stopped")
				return
			}
			log.Printf("[EVENTS] failed to read message: %v", err)
			select {
			case <-ctx.Done():
				log.Println("[EVENTS] consumer stopped")
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		var e Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			log.Printf("[EVENTS] failed to decode message: %v", err)
			continue
		}
		if err := Handle(c.mailer, e); err != nil {
			log.Printf("[EVENTS] failed to handle %s: %v", e.Type, err)
		}
	}
}

// Handle turns one event into an email. Events without recipients and
// unknown types are ignored.
func Handle(mailer Mailer, e Event) error {
	if len(e.Recipients) == 0 {
		return nil
	}
	var subject, heading, body string
	switch e.Type {
	case TypeAnnouncementCreated:
		subject = fmt.Sprintf("[%s] %s", e.CourseName, e.Subject)
		if e.CourseName == "" {
			subject = e.Subject
		}
		heading = e.Subject
		body = fmt.Sprintf("<p>%s</p>", e.Text)
		if e.Priority == "urgent" {
			subject = "URGENT: " + subject
		}
	case TypeLessonCreated:
		subject = "New lesson in " + e.CourseName
		heading = e.Subject
		body = fmt.Sprintf("<p>A new lesson <strong>%s</strong> is available in <strong>%s</strong>.</p>", e.Subject, e.CourseName)
	case TypeEnrollmentCreated:
		subject = "Course Enrollment Confirmation"
		heading = "Welcome to " + e.CourseName
		body = fmt.Sprintf("<p>You are now enrolled in <strong>%s</strong>. Happy learning!</p>", e.CourseName)
	case TypeCertificateIssued:
		subject = "Your certificate for " + e.CourseName
		heading = "Congratulations!"
		body = fmt.Sprintf(`<p>You completed <strong>%s</strong>.</p><div class="info-box">Certificate number: %s<br>Verification code: %s</div>`,
			e.CourseName, e.Reference, e.Text)
	default:
		return nil
	}
	return mailer.SendTemplate(e.Recipients, subject, heading, body)
}
