package swarm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandshakeBetweenTwoSwarms(t *testing.T) {
	key := testKey()

	a, err := New(1, "127.0.0.1", 0, key)
	require.NoError(t, err)
	defer a.Stop()

	b, err := New(2, "127.0.0.1", 0, key)
	require.NoError(t, err)
	defer b.Stop()

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	require.NoError(t, b.Start(ctx))

	bAddr := b.LocalAddr()
	require.NoError(t, b.AddPeer(a.LocalAddr(), 1))

	deadline := time.Now().Add(2 * time.Second)
	var event Event
	var got bool
	for time.Now().Before(deadline) {
		if e, ok := a.PollEvent(); ok {
			event = e
			got = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, got, "expected a hello event within 2s")
	require.Equal(t, EventHello, event.Kind)
	require.Equal(t, uint32(2), event.NodeID)

	found := false
	for _, p := range a.PeerList() {
		if p.NodeID == 2 {
			found = true
		}
	}
	require.True(t, found)
	_ = bAddr
}

func TestStopIsIdempotent(t *testing.T) {
	s, err := New(1, "127.0.0.1", 0, testKey())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestEventRingDropsOldestOnOverflow(t *testing.T) {
	ring := newEventRing()
	for i := 0; i < MaxEvents+10; i++ {
		ring.push(Event{Kind: EventHello, NodeID: uint32(i)})
	}

	first, ok := ring.pop()
	require.True(t, ok)
	require.Equal(t, uint32(10), first.NodeID)
}

func TestPeerTableEvictsExpired(t *testing.T) {
	table := newPeerTable()
	table.upsert(1, nil)
	table.evictExpired(0)
	require.Equal(t, 0, table.len())
}

func TestPeerTableEvictsOldestAtCapacity(t *testing.T) {
	table := newPeerTable()
	for i := 0; i < MaxPeers+5; i++ {
		table.upsert(uint32(i+1), nil)
	}
	require.Equal(t, MaxPeers, table.len())
}
