package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      []string
	subject string
	heading string
	body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendTemplate(to []string, subject, heading, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, heading, body})
	return nil
}

func TestHandleAnnouncement(t *testing.T) {
	m := &fakeMailer{}
	err := Handle(m, Event{
		Type:       TypeAnnouncementCreated,
		CourseName: "Go 101",
		Subject:    "Exam moved",
		Text:       "The exam is now on Friday",
		Priority:   "urgent",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "URGENT: [Go 101] Exam moved", m.sent[0].subject)
	assert.Len(t, m.sent[0].to, 2)
	assert.Contains(t, m.sent[0].body, "Friday")
}

func TestHandleCertificate(t *testing.T) {
	m := &fakeMailer{}
	require.NoError(t, Handle(m, Event{
		Type:       TypeCertificateIssued,
		CourseName: "Go 101",
		Reference:  "CERT-20260101-ABCDEF12",
		Text:       "ABCD1234",
		Recipients: []string{"a@example.com"},
	}))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].body, "CERT-20260101-ABCDEF12")
	assert.Contains(t, m.sent[0].body, "ABCD1234")
}

func TestHandleSkipsWithoutRecipientsOrUnknownType(t *testing.T) {
	m := &fakeMailer{}
	assert.NoError(t, Handle(m, Event{Type: TypeLessonCreated}))
	assert.NoError(t, Handle(m, Event{Type: "course.viewed", Recipients: []string{"a@example.com"}}))
	assert.Empty(t, m.sent)
}

func TestInlinePublisherMails(t *testing.T) {
	m := &fakeMailer{}
	p := Inline{Mailer: m}
	require.NoError(t, p.Publish(context.Background(), Event{
		Type:       TypeEnrollmentCreated,
		CourseName: "Go 101",
		Recipients: []string{"a@example.com"},
	}))
	assert.Len(t, m.sent, 1)
}

type scriptedReader struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	calls  int
	closed bool
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if ctx.Err() != nil {
		return kafka.Message{}, ctx.Err()
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, errors.New("broker unreachable")
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *scriptedReader) reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestConsumerBacksOffOnReadErrors(t *testing.T) {
	reader := &scriptedReader{}
	c := &Consumer{reader: reader, mailer: &fakeMailer{}, backoff: 50 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
	assert.LessOrEqual(t, reader.reads(), 4)
	assert.True(t, reader.closed)
}

func TestConsumerMailsDecodedEvents(t *testing.T) {
	value, err := json.Marshal(Event{
		Type:       TypeCertificateIssued,
		CourseName: "Go in Practice",
		Reference:  "CERT-20260102-ABCD1234",
		Text:       "ABCD1234",
		Recipients: []string{"student@example.com"},
	})
	require.NoError(t, err)
	reader := &scriptedReader{msgs: []kafka.Message{{Value: []byte("not json")}, {Value: value}}}
	m := &fakeMailer{}
	c := &Consumer{reader: reader, mailer: m, backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return reader.reads() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].body, "ABCD1234")
}
