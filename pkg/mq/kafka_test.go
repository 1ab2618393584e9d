package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestSendMessage_EncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaProducer{writer: w}

	if err := p.SendMessage(context.Background(), "topic-a", "42", map[string]string{"status": "created"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "topic-a" || string(msg.Key) != "42" {
		t.Errorf("unexpected topic/key: %q/%q", msg.Topic, msg.Key)
	}
	var body map[string]string
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if body["status"] != "created" {
		t.Errorf("expected status created, got %q", body["status"])
	}
}

func TestSendMessage_PropagatesWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaProducer{writer: &recordingWriter{err: boom}}

	if err := p.SendMessage(context.Background(), "t", "k", 1); !errors.Is(err, boom) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	if _, err := NewProducer(KafkaConfig{}); err == nil {
		t.Fatal("expected error without brokers")
	}
}
