// Package events carries domain notifications from actions to the mail
// consumer over Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeLessonCreated       = "lesson.created"
	TypeEnrollmentCreated   = "enrollment.created"
	TypeAnnouncementCreated = "announcement.created"
	TypeCertificateIssued   = "certificate.issued"
)

type Event struct {
	Type       string    `json:"type"`
	CourseID   uint      `json:"course_id,omitempty"`
	CourseName string    `json:"course_name,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Text       string    `json:"text,omitempty"`
	Priority   string    `json:"priority,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Inline hands events straight to the mail handler when no broker is configured
type Inline struct {
	Mailer Mailer
}

func (p Inline) Publish(_ context.Context, e Event) error {
	return Handle(p.Mailer, e)
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Type),
		Value: msg,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
