package genome

import (
	"crypto/sha256"
	"io"
	"os"
	"time"

	"github.com/kolibri/core/internal/kerrors"
)

// state is the genome context's lifecycle state machine: Closed ->
// Open(nextIndex, hasLast) -> Closed.
type state int

const (
	stateClosed state = iota
	stateOpen
)

// Context owns an open ledger file handle, its HMAC key, and the chain
// tip needed to append the next block without re-reading the file.
// Lifecycle: created by Open, mutated only by Append, destroyed by Close,
// which zeroes the key.
type Context struct {
	file *os.File
	key  []byte

	state     state
	lastBlock [BlockSize]byte
	hasLast   bool
	nextIndex uint64
}

const maxHMACKeyBytes = 64

// Open opens path for read+write (creating it if missing), validates every
// existing block's chain invariants under key, and leaves the context
// ready to Append. Any chain inconsistency fails with a Corrupted error and
// the key is not retained.
func Open(path string, key []byte) (*Context, error) {
	const op = "genome.Open"

	if len(key) == 0 || len(key) > maxHMACKeyBytes {
		return nil, kerrors.New(kerrors.InvalidArgument, op, errKeyLength)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, kerrors.New(kerrors.IO, op, err)
	}

	ctx := &Context{file: f, key: append([]byte(nil), key...)}

	if err := ctx.replayAndVerify(); err != nil {
		f.Close()
		ctx.zeroKey()
		ctx.state = stateClosed
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		ctx.zeroKey()
		return nil, kerrors.New(kerrors.IO, op, err)
	}

	ctx.state = stateOpen
	return ctx, nil
}

// replayAndVerify walks every block from offset 0, validating the chain.
func (c *Context) replayAndVerify() error {
	const op = "genome.Open"

	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}

	info, err := c.file.Stat()
	if err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}
	size := info.Size()
	if size%BlockSize != 0 {
		return kerrors.New(kerrors.Corrupted, op, errTrailingPartialBlock)
	}
	blockCount := size / BlockSize

	var expectedIndex uint64
	var prevRaw [BlockSize]byte
	hasPrev := false

	for i := int64(0); i < blockCount; i++ {
		var raw [BlockSize]byte
		if _, err := io.ReadFull(c.file, raw[:]); err != nil {
			return kerrors.New(kerrors.Corrupted, op, err)
		}

		block, err := unmarshalBlock(raw)
		if err != nil {
			return err
		}

		if block.Index != expectedIndex {
			return kerrors.New(kerrors.Corrupted, op, errIndexMismatch)
		}

		var wantPrevHash [hashSize]byte
		if hasPrev {
			wantPrevHash = sha256.Sum256(prevRaw[:])
		}
		if block.PrevHash != wantPrevHash {
			return kerrors.New(kerrors.Corrupted, op, errPrevHashMismatch)
		}

		wantHMAC := computeHMAC(c.key, raw)
		if block.HMAC != wantHMAC {
			return kerrors.New(kerrors.Corrupted, op, errHMACMismatch)
		}

		prevRaw = raw
		hasPrev = true
		expectedIndex++
	}

	c.nextIndex = expectedIndex
	c.hasLast = hasPrev
	if hasPrev {
		c.lastBlock = prevRaw
	}
	return nil
}

// Append validates payload, builds the next block chained off the current
// tip, writes and flushes it, and advances the cached chain state.
func (c *Context) Append(eventType, payload string) error {
	const op = "genome.Append"

	if c.state != stateOpen {
		return kerrors.New(kerrors.IO, op, errNotOpen)
	}
	if len(eventType) >= eventTypeSize {
		return kerrors.New(kerrors.InvalidArgument, op, errEventTypeTooLong)
	}
	if len(payload) > PayloadSize-1 {
		return kerrors.New(kerrors.InvalidArgument, op, errPayloadTooLong)
	}
	if !isDecimalASCII(payload) {
		return kerrors.New(kerrors.InvalidArgument, op, errPayloadNotDecimal)
	}

	var prevHash [hashSize]byte
	if c.hasLast {
		prevHash = sha256.Sum256(c.lastBlock[:])
	}

	block := ReasonBlock{
		Index:       c.nextIndex,
		TimestampNs: uint64(time.Now().UnixNano()),
		PrevHash:    prevHash,
		EventType:   eventType,
		Payload:     payload,
	}

	raw, err := block.Marshal()
	if err != nil {
		return err
	}
	block.HMAC = computeHMAC(c.key, raw)
	raw, err = block.Marshal()
	if err != nil {
		return err
	}

	if _, err := c.file.Write(raw[:]); err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}
	if err := c.file.Sync(); err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}

	c.lastBlock = raw
	c.hasLast = true
	c.nextIndex++
	return nil
}

// NextIndex reports the index the next appended block will receive.
func (c *Context) NextIndex() uint64 { return c.nextIndex }

// ScanFromStart returns a read cursor positioned at offset 0, for
// replaying the ledger (e.g. the symbol table's load_from_genome). The
// reader shares c's file handle: ScanFromStart moves that file's offset to
// 0, and the caller must call Close on the returned BlockReader, which
// restores the offset, before the next Append.
func (c *Context) ScanFromStart() (*BlockReader, error) {
	if c.state != stateOpen {
		return nil, kerrors.New(kerrors.IO, "genome.ScanFromStart", errNotOpen)
	}
	saved, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, kerrors.New(kerrors.IO, "genome.ScanFromStart", err)
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return nil, kerrors.New(kerrors.IO, "genome.ScanFromStart", err)
	}
	return &BlockReader{ctx: c, restoreOffset: saved}, nil
}

// Close flushes, closes the file, and zeroes the HMAC key.
func (c *Context) Close() error {
	if c.state == stateClosed {
		return nil
	}
	c.zeroKey()
	c.state = stateClosed
	err := c.file.Close()
	if err != nil {
		return kerrors.New(kerrors.IO, "genome.Close", err)
	}
	return nil
}

func (c *Context) zeroKey() {
	for i := range c.key {
		c.key[i] = 0
	}
}

// VerifyFile is a stand-alone verification: it succeeds for a fully valid
// chain or for a file that does not exist (pre-creation health check), and
// reports Corrupted for any inconsistency. It never mutates the file.
func VerifyFile(path string, key []byte) error {
	const op = "genome.VerifyFile"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}
	defer f.Close()

	ctx := &Context{file: f, key: key}
	if err := ctx.replayAndVerify(); err != nil {
		return err
	}
	return nil
}

