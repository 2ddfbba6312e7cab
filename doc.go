// Completion: 100% - Package documentation complete
//
// Package vise selects and encodes vector instructions for logical
// widths of 128, 256 and 512 bits on top of two register files: the
// x86_64 AVX-512 predicate family and the MIPS64 MSA lane-vector
// family. Lower takes one portable operation and returns the encoded
// plan for it: a single native instruction where the profile has one,
// a per-slice composition where the logical width exceeds the file's
// physical width, and a scalar round-trip through scratch memory where
// the hardware has no usable form at all. Every plan names the
// registers it clobbers so the caller's allocator can keep them free.
package vise
