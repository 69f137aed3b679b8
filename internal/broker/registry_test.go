package broker

import (
	"context"
	"testing"
	"time"
)

func TestRegistryPublishWithNoSubscribersIsNoSubscribers(t *testing.T) {
	r := NewRegistry(128)
	out := r.Publish("beta", mustFrame(t, 0xFF))
	if out.Status != NoSubscribers {
		t.Fatalf("expected NoSubscribers, got %v", out.Status)
	}
	if r.ActiveStreams() != 0 {
		t.Fatalf("expected 0 active streams, got %d", r.ActiveStreams())
	}
}

func TestRegistrySubscribeCreatesChannelLazily(t *testing.T) {
	r := NewRegistry(128)

	h, err := r.Subscribe("gamma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ActiveStreams() != 1 {
		t.Fatalf("expected 1 active stream, got %d", r.ActiveStreams())
	}

	out := r.Publish("gamma", mustFrame(t, 0xAA))
	if out.Status != Delivered || out.Count != 1 {
		t.Fatalf("expected Delivered(1), got status=%v count=%d", out.Status, out.Count)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	recv := h.Subscription().Recv(ctx)
	if recv.Status != RecvFrame || recv.Frame.Bytes()[0] != 0xAA {
		t.Fatalf("expected to receive 0xAA, got status=%v", recv.Status)
	}

	h.Release()
	if r.ActiveStreams() != 0 {
		t.Fatalf("expected stream to be reclaimed after last handle released, got %d active", r.ActiveStreams())
	}

	out = r.Publish("gamma", mustFrame(t, 0xBB))
	if out.Status != NoSubscribers {
		t.Fatalf("expected NoSubscribers after reclamation, got %v", out.Status)
	}
}

func TestRegistryFanOutAcrossThreeSubscribers(t *testing.T) {
	r := NewRegistry(128)

	handles := make([]*Handle, 3)
	for i := range handles {
		h, err := r.Subscribe("alpha")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		handles[i] = h
	}
	defer func() {
		for _, h := range handles {
			h.Release()
		}
	}()

	out := r.Publish("alpha", mustFrame(t, 0x07))
	if out.Status != Delivered || out.Count != 3 {
		t.Fatalf("expected Delivered(3), got status=%v count=%d", out.Status, out.Count)
	}
}

func TestRegistryActiveStreamsMatchesLiveHandles(t *testing.T) {
	r := NewRegistry(128)

	h1, _ := r.Subscribe("s1")
	h2, _ := r.Subscribe("s2")
	if r.ActiveStreams() != 2 {
		t.Fatalf("expected 2 active streams, got %d", r.ActiveStreams())
	}

	h1.Release()
	if r.ActiveStreams() != 1 {
		t.Fatalf("expected 1 active stream after release, got %d", r.ActiveStreams())
	}

	h2.Release()
	if r.ActiveStreams() != 0 {
		t.Fatalf("expected 0 active streams after all released, got %d", r.ActiveStreams())
	}
}

func TestRegistryCloseForcesEviction(t *testing.T) {
	r := NewRegistry(128)
	h, _ := r.Subscribe("delta")

	r.Close("delta")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out := h.Subscription().Recv(ctx)
	if out.Status != RecvClosed {
		t.Fatalf("expected RecvClosed after forced eviction, got %v", out.Status)
	}
	if r.ActiveStreams() != 0 {
		t.Fatalf("expected 0 active streams after Close, got %d", r.ActiveStreams())
	}

	// A fresh Subscribe after Close should get a brand new live channel.
	h2, err := r.Subscribe("delta")
	if err != nil {
		t.Fatalf("unexpected error resubscribing after close: %v", err)
	}
	defer h2.Release()
	if r.ActiveStreams() != 1 {
		t.Fatalf("expected 1 active stream after resubscribe, got %d", r.ActiveStreams())
	}
}

func TestRegistryTotalSubscribersAggregates(t *testing.T) {
	r := NewRegistry(128)
	h1, _ := r.Subscribe("x")
	h2, _ := r.Subscribe("x")
	h3, _ := r.Subscribe("y")
	defer h1.Release()
	defer h2.Release()
	defer h3.Release()

	if r.TotalSubscribers() != 3 {
		t.Fatalf("expected 3 total subscribers, got %d", r.TotalSubscribers())
	}
}
