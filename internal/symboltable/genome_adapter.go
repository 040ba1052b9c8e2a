package symboltable

import (
	"io"

	"github.com/kolibri/core/internal/genome"
)

// GenomeAdapter wraps a *genome.Context so it satisfies EventAppender and
// BlockScanner without the genome package needing to know about
// symboltable — the dependency only runs one way.
type GenomeAdapter struct {
	Ctx *genome.Context
}

// Append forwards to the underlying genome context.
func (a GenomeAdapter) Append(eventType, payload string) error {
	return a.Ctx.Append(eventType, payload)
}

// ScanFromStart forwards to the underlying genome context.
func (a GenomeAdapter) ScanFromStart() (BlockIterator, error) {
	reader, err := a.Ctx.ScanFromStart()
	if err != nil {
		return nil, err
	}
	return &blockIteratorAdapter{reader: reader}, nil
}

type blockIteratorAdapter struct {
	reader *genome.BlockReader
}

func (b *blockIteratorAdapter) Next() (EventType, Payload, error) {
	block, err := b.reader.Next()
	if err != nil {
		if err == io.EOF {
			return "", "", io.EOF
		}
		return "", "", err
	}
	return block.EventType, block.Payload, nil
}

func (b *blockIteratorAdapter) Close() error {
	return b.reader.Close()
}
