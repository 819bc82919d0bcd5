package orch

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/core"
)

func joinAsync(t *testing.T, o *Orchestrator, c *fakeConn, name string) {
	if out := o.Join(c, JoinPayload{Room: string(room), Name: name}); out.Err != nil {
		t.Errorf("join %q: %v", name, out.Err)
	}
}

func lastParticipants(c *fakeConn) []string {
	lists := c.participantLists()
	if len(lists) == 0 {
		return nil
	}
	return lists[len(lists)-1]
}

func TestParticipantsOrderSurvivesSlowJoinConfirm(t *testing.T) {
	o, _ := newTestOrchestrator()
	alice, bob := newFakeConn("alice"), newFakeConn("bob")

	started := make(chan struct{})
	alice.onSend = func(e core.EventName) {
		if e == EventJoinConfirmed {
			close(started)
			time.Sleep(20 * time.Millisecond)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		joinAsync(t, o, alice, "Alice")
	}()
	go func() {
		defer wg.Done()
		<-started
		joinAsync(t, o, bob, "Bob")
	}()
	wg.Wait()

	want := o.Registry.ParticipantsOf(room)
	for _, c := range []*fakeConn{alice, bob} {
		if got := lastParticipants(c); !slices.Equal(got, want) {
			t.Fatalf("%s last saw %v, registry has %v (all: %v)", c.id, got, want, c.participantLists())
		}
	}
}

func TestConcurrentJoinLeaveEndsConsistent(t *testing.T) {
	o, _ := newTestOrchestrator()
	const n = 32
	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = newFakeConn(fmt.Sprintf("c%02d", i))
	}

	var wg sync.WaitGroup
	for i, c := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			joinAsync(t, o, c, fmt.Sprintf("user-%02d", i))
			if i%2 == 1 {
				o.Leave(c, LeavePayload{})
			}
		}()
	}
	wg.Wait()
	if t.Failed() {
		return
	}

	want := o.Registry.ParticipantsOf(room)
	if len(want) != n/2 {
		t.Fatalf("expected %d members left, got %d", n/2, len(want))
	}
	for i, c := range conns {
		if i%2 == 1 {
			continue
		}
		if got := lastParticipants(c); !slices.Equal(got, want) {
			t.Fatalf("%s last saw %v, registry has %v", c.id, got, want)
		}
	}
}
