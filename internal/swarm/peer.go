package swarm

import (
	"net"
	"strconv"
	"sync"
	"time"
)

// MaxPeers bounds the peer table (§3 Swarm).
const MaxPeers = 32

// PeerTTL is the eviction age for a peer that hasn't been heard from.
const PeerTTL = 30 * time.Second

// Peer is one entry in the swarm's peer table.
type Peer struct {
	NodeID   uint32
	Addr     *net.UDPAddr
	LastSeen time.Time
	Failures int
}

// peerTable is a mutex-protected, capacity-bounded peer map, grounded on
// the pack's gossip-scorer peer-map-with-RWMutex shape
// (other_examples/6c2264d3_wyf-ACCEPT-eth2030__pkg-das-cell_gossip_scorer.go.go).
type peerTable struct {
	mu    sync.RWMutex
	byKey map[string]*Peer
	order []string // insertion order, for capacity-eviction of the oldest entry
}

func newPeerTable() *peerTable {
	return &peerTable{byKey: make(map[string]*Peer)}
}

func peerKey(nodeID uint32, addr *net.UDPAddr) string {
	if nodeID != 0 {
		return "id:" + strconv.FormatUint(uint64(nodeID), 10)
	}
	return "addr:" + addr.String()
}

// upsert inserts or refreshes a peer, evicting the oldest entry if the
// table is at capacity and the peer is new.
func (t *peerTable) upsert(nodeID uint32, addr *net.UDPAddr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := peerKey(nodeID, addr)
	if existing, ok := t.byKey[key]; ok {
		existing.LastSeen = time.Now()
		existing.Failures = 0
		existing.Addr = addr
		return
	}

	if len(t.byKey) >= MaxPeers {
		t.evictOldestLocked()
	}

	t.byKey[key] = &Peer{NodeID: nodeID, Addr: addr, LastSeen: time.Now()}
	t.order = append(t.order, key)
}

func (t *peerTable) evictOldestLocked() {
	if len(t.order) == 0 {
		return
	}
	oldest := t.order[0]
	t.order = t.order[1:]
	delete(t.byKey, oldest)
}

// evictExpired removes every peer whose LastSeen predates now-ttl.
func (t *peerTable) evictExpired(ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	kept := t.order[:0]
	for _, key := range t.order {
		p, ok := t.byKey[key]
		if !ok {
			continue
		}
		if p.LastSeen.Before(cutoff) {
			delete(t.byKey, key)
			continue
		}
		kept = append(kept, key)
	}
	t.order = kept
}

// list returns a snapshot of all current peers.
func (t *peerTable) list() []Peer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Peer, 0, len(t.byKey))
	for _, key := range t.order {
		if p, ok := t.byKey[key]; ok {
			out = append(out, *p)
		}
	}
	return out
}

func (t *peerTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKey)
}

// pick returns the peer at index (randomIndex mod n), or false if empty.
func (t *peerTable) pick(randomIndex uint64) (Peer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(t.order)
	if n == 0 {
		return Peer{}, false
	}
	key := t.order[randomIndex%uint64(n)]
	p, ok := t.byKey[key]
	if !ok {
		return Peer{}, false
	}
	return *p, true
}
