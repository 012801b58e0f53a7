package notifier

import (
	"context"
	"testing"
)

func TestNoopNotifier_NotifyNewItems(t *testing.T) {
	n := NewNoopNotifier()
	if err := n.NotifyNewItems(context.Background(), testFeed(), testItems(5)); err != nil {
		t.Fatalf("noop notifier must never fail, got %v", err)
	}
}
