package mail

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	calls int
	err   error
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.calls++
	return n.err
}

func TestSimulatedNotifierAlwaysSucceeds(t *testing.T) {
	n := NewSimulatedNotifier()
	if err := n.Send(context.Background(), "user@example.com", "Sujet", "<p>corps</p>"); err != nil {
		t.Fatalf("expected simulated delivery to succeed, got %v", err)
	}
}

func TestFallbackNotifierUsesPrimaryOnSuccess(t *testing.T) {
	primary := &recordingNotifier{}
	fallback := &recordingNotifier{}
	n := WithFallback(primary, fallback)

	if err := n.Send(context.Background(), "user@example.com", "Sujet", "corps"); err != nil {
		t.Fatalf("expected delivery to succeed, got %v", err)
	}
	if primary.calls != 1 {
		t.Fatalf("expected one primary call, got %d", primary.calls)
	}
	if fallback.calls != 0 {
		t.Fatalf("expected no fallback call, got %d", fallback.calls)
	}
}

func TestFallbackNotifierDegradesOnPrimaryFailure(t *testing.T) {
	primary := &recordingNotifier{err: errors.New("relay unreachable")}
	fallback := &recordingNotifier{}
	n := WithFallback(primary, fallback)

	if err := n.Send(context.Background(), "user@example.com", "Sujet", "corps"); err != nil {
		t.Fatalf("expected fallback to swallow the failure, got %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected one fallback call, got %d", fallback.calls)
	}
}

func TestSMTPNotifierRejectsMissingConfiguration(t *testing.T) {
	n := NewSMTPNotifier("", "", "", "", "", 0)
	if err := n.Send(context.Background(), "user@example.com", "Sujet", "corps"); err == nil {
		t.Fatalf("expected error for missing configuration")
	}
}
