package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

type stubAuditRepo struct {
	mu       sync.Mutex
	attempts []domain.AuthAttempt
	err      error
	block    chan struct{}
}

func (s *stubAuditRepo) InsertAttempt(_ context.Context, a domain.AuthAttempt) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, a)
	return s.err
}

func (s *stubAuditRepo) snapshot() []domain.AuthAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuthAttempt(nil), s.attempts...)
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	repo := &stubAuditRepo{}
	d := NewDispatcher(3, repo, zerolog.New(io.Discard))
	d.Start(context.Background())

	for _, login := range []string{"alice", "bob", "carol", "alice"} {
		d.Record(domain.AuthAttempt{Login: login, Outcome: domain.OutcomeSuccess})
	}
	d.Close()

	if got := len(repo.snapshot()); got != 4 {
		t.Fatalf("expected 4 persisted attempts, got %d", got)
	}
}

func TestDispatcher_PreservesOrderPerLogin(t *testing.T) {
	repo := &stubAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.New(io.Discard))
	d.Start(context.Background())

	outcomes := []domain.AuthOutcome{domain.OutcomeBadPassword, domain.OutcomeBadPassword, domain.OutcomeSuccess}
	for _, o := range outcomes {
		d.Record(domain.AuthAttempt{Login: "alice", Outcome: o})
	}
	d.Close()

	got := repo.snapshot()
	if len(got) != len(outcomes) {
		t.Fatalf("expected %d attempts, got %d", len(outcomes), len(got))
	}
	for i, o := range outcomes {
		if got[i].Outcome != o {
			t.Fatalf("attempt %d: expected %s, got %s", i, o, got[i].Outcome)
		}
	}
}

func TestDispatcher_RecordDoesNotBlockWhenFull(t *testing.T) {
	repo := &stubAuditRepo{block: make(chan struct{})}
	d := newDispatcher(1, 1, repo, zerolog.New(io.Discard))
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Record(domain.AuthAttempt{Login: "alice", Outcome: domain.OutcomeBadPassword})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(repo.block)
	d.Close()

	if got := len(repo.snapshot()); got >= 10 {
		t.Fatalf("expected some attempts to be dropped, got %d persisted", got)
	}
}

func TestDispatcher_RecordAfterCloseIsDropped(t *testing.T) {
	repo := &stubAuditRepo{}
	d := NewDispatcher(1, repo, zerolog.New(io.Discard))
	d.Start(context.Background())
	d.Close()
	d.Close()

	d.Record(domain.AuthAttempt{Login: "alice"})

	if got := len(repo.snapshot()); got != 0 {
		t.Fatalf("expected no attempts after close, got %d", got)
	}
}

func TestDispatcher_WriteErrorKeepsWorkerAlive(t *testing.T) {
	repo := &stubAuditRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.New(io.Discard))
	d.Start(context.Background())

	d.Record(domain.AuthAttempt{Login: "alice"})
	d.Record(domain.AuthAttempt{Login: "alice"})
	d.Close()

	if got := len(repo.snapshot()); got != 2 {
		t.Fatalf("expected worker to keep consuming after errors, got %d", got)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, &stubAuditRepo{}, zerolog.New(io.Discard))

	first := d.shardIndex("alice")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice") != first {
			t.Fatal("shard index changed between calls")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index %d out of range", first)
	}
}
