package swarm

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kolibri/core/internal/kerrors"
)

// HelloInterval is how often the background loop re-broadcasts a HELLO.
const HelloInterval = 5 * time.Second

// selectTimeout bounds how long the background loop blocks in one receive,
// so stop() never waits longer than this to notice cancellation.
const selectTimeout = 1 * time.Second

// Swarm is the UDP gossip mesh endpoint for one Kolibri node (C6).
type Swarm struct {
	selfID uint32
	port   uint16
	key    []byte

	conn *net.UDPConn

	peers  *peerTable
	events *eventRing

	running   atomic.Bool
	lastHello atomic.Int64 // unix nanos

	group  *errgroup.Group
	cancel context.CancelFunc

	mu sync.Mutex // guards conn/group/cancel lifecycle transitions
}

// New binds a UDP socket on bindAddr:port and returns an unstarted Swarm.
// key is copied; callers retain ownership of the original slice.
func New(selfID uint32, bindAddr string, port uint16, key []byte) (*Swarm, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(bindAddr), Port: int(port)}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, kerrors.New(kerrors.IO, "swarm.New", err)
	}
	if err := enableBroadcast(conn); err != nil {
		_ = conn.Close()
		return nil, kerrors.New(kerrors.IO, "swarm.New", err)
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	boundPort := uint16(conn.LocalAddr().(*net.UDPAddr).Port)

	return &Swarm{
		selfID: selfID,
		port:   boundPort,
		key:    keyCopy,
		conn:   conn,
		peers:  newPeerTable(),
		events: newEventRing(),
	}, nil
}

// enableBroadcast sets SO_BROADCAST on conn so writes to net.IPv4bcast
// succeed; a fresh UDP socket does not permit broadcast sends by default.
func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	}); err != nil {
		return err
	}
	return sockErr
}

// Start launches the background receive/hello/eviction loop. It returns an
// error if the swarm is already running.
func (s *Swarm) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return kerrors.New(kerrors.InvalidArgument, "swarm.Start", errAlreadyRunning)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(loopCtx)
	s.cancel = cancel
	s.group = g
	s.running.Store(true)

	g.Go(func() error {
		s.loop(gctx)
		return nil
	})

	return nil
}

// Stop idempotently halts the background loop, closes the socket, and
// zeroes the HMAC key.
func (s *Swarm) Stop() error {
	s.mu.Lock()
	wasRunning := s.running.Swap(false)
	cancel := s.cancel
	g := s.group
	conn := s.conn
	s.mu.Unlock()

	if !wasRunning {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if g != nil {
		_ = g.Wait()
	}

	for i := range s.key {
		s.key[i] = 0
	}
	return nil
}

func (s *Swarm) loop(ctx context.Context) {
	buf := make([]byte, MaxDatagram)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(selectTimeout))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.onTick()
				continue
			}
			return // socket closed by Stop()
		}

		s.handleDatagram(buf[:n], addr)
		s.onTick()
	}
}

func (s *Swarm) onTick() {
	last := s.lastHello.Load()
	if time.Since(time.Unix(0, last)) >= HelloInterval {
		s.lastHello.Store(time.Now().UnixNano())
		_ = s.ShareHello()
	}
	s.peers.evictExpired(PeerTTL)
}

func (s *Swarm) handleDatagram(raw []byte, addr *net.UDPAddr) {
	header, err := parseFrame(s.key, raw)
	if err != nil {
		return // malformed or unauthenticated: dropped silently, never surfaced
	}
	if header.senderID == s.selfID {
		return // loop suppression
	}

	peerAddr := &net.UDPAddr{IP: addr.IP, Port: int(header.port)}
	if header.port == 0 {
		peerAddr = addr
	}
	s.peers.upsert(header.senderID, peerAddr)

	switch header.typ {
	case frameHello:
		s.events.push(Event{Kind: EventHello, NodeID: header.senderID, Addr: peerAddr})
	case frameFormula:
		digits, fitness, err := decodeFormulaPayload(header.payload)
		if err != nil {
			return
		}
		s.events.push(Event{Kind: EventFormula, NodeID: header.senderID, Addr: peerAddr, GeneDigits: digits, Fitness: fitness})
	}
}

// ShareHello broadcasts an authenticated HELLO to the local broadcast
// address on the swarm's port.
func (s *Swarm) ShareHello() error {
	frame, err := buildFrame(s.key, frameHello, s.selfID, s.port, nil)
	if err != nil {
		return err
	}
	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: int(s.port)}
	_, err = s.conn.WriteToUDP(frame, dst)
	return err
}

// AddPeer upserts a known peer and unicasts a HELLO to it.
func (s *Swarm) AddPeer(addr *net.UDPAddr, nodeID uint32) error {
	s.peers.upsert(nodeID, addr)
	frame, err := buildFrame(s.key, frameHello, s.selfID, s.port, nil)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(frame, addr)
	return err
}

// SendToRandom unicasts a FORMULA frame to peers[randomIndex % n].
func (s *Swarm) SendToRandom(randomIndex uint64, geneDigits []byte, fitness float64) error {
	peer, ok := s.peers.pick(randomIndex)
	if !ok {
		return kerrors.New(kerrors.NotFound, "swarm.SendToRandom", errNoPeers)
	}
	payload := encodeFormulaPayload(geneDigits, fitness)
	frame, err := buildFrame(s.key, frameFormula, s.selfID, s.port, payload)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(frame, peer.Addr)
	return err
}

// BroadcastFormula broadcasts a FORMULA frame and additionally unicasts it
// to every known peer.
func (s *Swarm) BroadcastFormula(geneDigits []byte, fitness float64) error {
	payload := encodeFormulaPayload(geneDigits, fitness)
	frame, err := buildFrame(s.key, frameFormula, s.selfID, s.port, payload)
	if err != nil {
		return err
	}

	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: int(s.port)}
	if _, err := s.conn.WriteToUDP(frame, dst); err != nil {
		return err
	}

	for _, p := range s.peers.list() {
		_, _ = s.conn.WriteToUDP(frame, p.Addr)
	}
	return nil
}

// PollEvent returns the oldest queued event, or false if none are pending.
func (s *Swarm) PollEvent() (Event, bool) {
	return s.events.pop()
}

// PeerList returns a snapshot of the current peer table.
func (s *Swarm) PeerList() []Peer {
	return s.peers.list()
}

// LocalAddr returns the bound UDP address.
func (s *Swarm) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}
