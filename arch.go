// Completion: 100% - Utility module complete
package vise

import "fmt"

// Arch identifies a target instruction set architecture.
//
// Two encoding families are covered:
//   - ArchX86_64: prefixed register file (EVEX/VEX prefixes, ModR/M,
//     SIB, displacement trailers)
//   - ArchMIPS64: fixed-width 32-bit instruction words (MSA vector
//     extension)
type Arch int

const (
	ArchX86_64 Arch = iota
	ArchMIPS64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchMIPS64:
		return "mips64"
	default:
		return "unknown"
	}
}

// NewArch resolves an architecture name as used on the command line.
func NewArch(name string) (Arch, error) {
	switch name {
	case "x86_64", "amd64":
		return ArchX86_64, nil
	case "mips64":
		return ArchMIPS64, nil
	default:
		return 0, fmt.Errorf("unsupported architecture: %s", name)
	}
}

// VerboseMode enables mnemonic and byte tracing on stderr while encoding.
// It is resolved once at startup (flag or VISE_VERBOSE) and never written
// by the library itself.
var VerboseMode bool
