package harvest_test

import (
	"context"
	"testing"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/harvest"
	"github.com/nhle/mailcontacts/internal/permission"
	"github.com/nhle/mailcontacts/internal/source"
	"github.com/nhle/mailcontacts/tests/testutil"
)

func receive(t *testing.T, ch <-chan harvest.RunResult) harvest.RunResult {
	t.Helper()
	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatal("results channel closed early")
		}
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a harvest result")
	}
	return harvest.RunResult{}
}

func TestPollerRunsImmediatelyAndOnTrigger(t *testing.T) {
	s := testutil.NewTestStore(t)
	repo := contact.NewCachingContactRepository(nil, s, permission.Static(true))
	fetcher := &fakeFetcher{envelopes: []source.Envelope{
		{From: []*gomail.Address{addr("Dana", "dana@example.com")}},
	}}

	p := harvest.NewPoller(harvest.New(fetcher, repo, s), time.Hour, 24*time.Hour, 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	first := receive(t, p.Results())
	if first.Err != nil || len(first.Result.Added) != 1 {
		t.Fatalf("expected one contact added on the first run, got %+v", first)
	}
	if st := p.Status(); st.State != harvest.StateIdle || st.Added != 1 || st.LastRun.IsZero() {
		t.Errorf("unexpected status after first run %+v", st)
	}

	p.Trigger()
	second := receive(t, p.Results())
	if second.Err != nil || len(second.Result.Added) != 0 {
		t.Errorf("expected nothing new on the triggered run, got %+v", second)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	if _, ok := <-p.Results(); ok {
		t.Error("expected results channel to be closed")
	}
}

func TestPollerReportsAuthFailures(t *testing.T) {
	s := testutil.NewTestStore(t)
	repo := contact.NewCachingContactRepository(nil, s, permission.Static(true))
	fetcher := &fakeFetcher{err: &source.AuthError{Server: "imap.example.com:993", Message: "bad password"}}

	p := harvest.NewPoller(harvest.New(fetcher, repo, s), time.Hour, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	r := receive(t, p.Results())
	if r.Err == nil || !r.AuthFailed {
		t.Errorf("expected auth failure, got %+v", r)
	}
	if st := p.Status(); st.State != harvest.StateError || st.Error == nil {
		t.Errorf("expected error status, got %+v", st)
	}
}
