package genome

import (
	"io"

	"github.com/kolibri/core/internal/kerrors"
)

// BlockReader iterates blocks of an open Context from offset 0, restoring
// the Context's append cursor when Close is called. It does not itself
// re-verify the chain — Open already did that.
type BlockReader struct {
	ctx           *Context
	restoreOffset int64
	done          bool
}

// Next returns the next block, or io.EOF once the reader is exhausted.
func (r *BlockReader) Next() (ReasonBlock, error) {
	var raw [BlockSize]byte
	n, err := io.ReadFull(r.ctx.file, raw[:])
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		return ReasonBlock{}, io.EOF
	}
	if err != nil {
		return ReasonBlock{}, kerrors.New(kerrors.IO, "genome.BlockReader.Next", err)
	}
	return unmarshalBlock(raw)
}

// Close restores the underlying Context's file offset to where it was
// before scanning began.
func (r *BlockReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	if _, err := r.ctx.file.Seek(r.restoreOffset, io.SeekStart); err != nil {
		return kerrors.New(kerrors.IO, "genome.BlockReader.Close", err)
	}
	return nil
}
