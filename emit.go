// Completion: 100% - Utility module complete
package vise

import (
	"bytes"
	"fmt"
	"os"
)

// BufferWrapper collects emitted machine code bytes. The produced bytes
// are appended in emission order; buffer growth, alignment and relocation
// belong to the caller that owns the instruction buffer.
type BufferWrapper struct {
	buf *bytes.Buffer
}

func NewBufferWrapper() *BufferWrapper {
	return &BufferWrapper{buf: &bytes.Buffer{}}
}

func (bw *BufferWrapper) Write(b byte) int {
	bw.buf.WriteByte(b)
	if VerboseMode {
		fmt.Fprintf(os.Stderr, " %02x", b)
	}
	return 1
}

func (bw *BufferWrapper) WriteBytes(bs []byte) int {
	bw.buf.Write(bs)
	if VerboseMode {
		for _, b := range bs {
			fmt.Fprintf(os.Stderr, " %02x", b)
		}
	}
	return len(bs)
}

// Write4u writes one 32-bit instruction word, little-endian, as the
// fixed-width family lays out its stream.
func (bw *BufferWrapper) Write4u(v uint32) int {
	bw.WriteBytes([]byte{
		byte(v),
		byte(v >> 8),
		byte(v >> 16),
		byte(v >> 24),
	})
	return 4
}

func (bw *BufferWrapper) Bytes() []byte { return bw.buf.Bytes() }

func (bw *BufferWrapper) Len() int { return bw.buf.Len() }

// word assembles a little-endian 32-bit word into bytes.
func word(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
