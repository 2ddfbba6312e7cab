// Completion: 100% - Encoding plan complete
package vise

import (
	"fmt"
	"os"
	"strings"
)

// Strategy records which lowering path produced a plan.
type Strategy int

const (
	StrategyDirect Strategy = iota
	StrategyComposed
	StrategyEmulated
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyComposed:
		return "composed"
	case StrategyEmulated:
		return "emulated"
	default:
		return "unknown"
	}
}

// Inst is one emitted instruction: final bytes plus the mnemonic used for
// tracing and dumps.
type Inst struct {
	Mnemonic string
	Bytes    []byte
}

// Plan is the ordered instruction sequence one lowering produced, with
// the registers the sequence clobbers. Built once per (operation,
// profile) pair, deterministic, consumed into a byte stream and
// discarded.
type Plan struct {
	Op       VectorOp
	Strategy Strategy
	Insts    []Inst

	// Clobbers lists every register the sequence destroys beyond the
	// declared destination. Callers must not assume these are live
	// across the plan.
	Clobbers []Register
}

func (p *Plan) add(in Inst) {
	p.Insts = append(p.Insts, in)
}

func (p *Plan) clobber(regs ...Register) {
	for _, r := range regs {
		if r.Zero() {
			continue
		}
		seen := false
		for _, c := range p.Clobbers {
			if c.Name == r.Name {
				seen = true
				break
			}
		}
		if !seen {
			p.Clobbers = append(p.Clobbers, r)
		}
	}
}

// Bytes concatenates the plan into the final byte sequence.
func (p *Plan) Bytes() []byte {
	var out []byte
	for _, in := range p.Insts {
		out = append(out, in.Bytes...)
	}
	return out
}

// AppendTo writes the plan's bytes into an output buffer, tracing each
// instruction when VerboseMode is set.
func (p *Plan) AppendTo(bw *BufferWrapper) int {
	n := 0
	for _, in := range p.Insts {
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "%s:", in.Mnemonic)
		}
		n += bw.WriteBytes(in.Bytes)
		if VerboseMode {
			fmt.Fprintln(os.Stderr)
		}
	}
	return n
}

// Dump renders a human-readable listing of the plan.
func (p *Plan) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s, %d instructions)\n", p.Op, p.Strategy, len(p.Insts))
	for _, in := range p.Insts {
		fmt.Fprintf(&sb, "  %-40s", in.Mnemonic)
		for _, b := range in.Bytes {
			fmt.Fprintf(&sb, " %02x", b)
		}
		sb.WriteByte('\n')
	}
	if len(p.Clobbers) > 0 {
		names := make([]string, len(p.Clobbers))
		for i, r := range p.Clobbers {
			names[i] = r.Name
		}
		fmt.Fprintf(&sb, "  clobbers: %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}
