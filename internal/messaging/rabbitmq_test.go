package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.published = append(f.published, published{key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_ForwardsSubmittedOnly(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "assessment.completed", 3600, zerolog.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "assessment.completed" {
		t.Fatalf("declared = %v", ch.declared)
	}

	rec := model.HistoryRecord{ID: "rec-9", ModuleID: "mod-03", Module: "Verbal Drill", Score: 7, Total: 12}
	p.Publish(session.Event{Type: session.EventTick})
	p.Publish(session.Event{Type: session.EventSubmitted})
	p.Publish(session.Event{Type: session.EventSubmitted, Record: &rec})

	if len(ch.published) != 1 {
		t.Fatalf("published = %d, want 1", len(ch.published))
	}
	got := ch.published[0]
	if got.key != "assessment.completed" {
		t.Errorf("routing key = %q", got.key)
	}
	if got.msg.MessageId != "rec-9" || got.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("message = %+v", got.msg)
	}

	var body CompletedMessage
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatal(err)
	}
	if body.Record != rec || body.DurationSeconds != 3600 {
		t.Errorf("body = %+v", body)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !ch.closed {
		t.Error("channel not closed")
	}
}

func TestNewPublisher_DeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	if _, err := newPublisher(ch, "q", 60, zerolog.New(io.Discard)); err == nil {
		t.Fatal("expected error")
	}
}
