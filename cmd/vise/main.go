// Completion: 100% - CLI interface complete, all flags working
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/xyproto/vise"
	"github.com/xyproto/vise/internal/hostcpu"
)

// A small inspection tool: lower one vector operation under a profile
// and dump the resulting instruction plan as hex.
//
//	vise -profile avx512.2 add.f64.512 zmm1 zmm2 zmm3
//	vise -profile msa -imm 3 shl.i32.512 w4 w8
//	vise -profile avx512.1 -expect none -imm 64 maskred.i32.512 k1

const versionString = "vise 1.0.0"

func main() {
	profileName := flag.String("profile", env.Str("VISE_PROFILE"), "target profile (avx512.1, avx512.2, msa; empty: detect the host)")
	verbose := flag.Bool("verbose", env.Bool("VISE_VERBOSE"), "trace lowering decisions on stderr")
	showVersion := flag.Bool("version", false, "print the version and exit")
	maskName := flag.String("mask", "", "predicate register for masked forms")
	maskZero := flag.Bool("zero", false, "zero-masking instead of merge-masking")
	immStr := flag.String("imm", "", "immediate (shift amount or branch displacement)")
	roundStr := flag.String("round", "", "rounding mode (nearest, down, up, trunc)")
	expectStr := flag.String("expect", "all", "mask reduction expectation (all, none)")
	steps := flag.Int("steps", env.Int("VISE_REFINE_STEPS", 2), "refinement steps per reciprocal")
	accuracy := flag.Int("accuracy", env.Int("VISE_ACCURACY_BITS", 50), "mantissa bits the reciprocals must reach")
	scratchName := flag.String("scratch", "", "base register for the emulation scratch regions")
	flag.Parse()

	if *showVersion {
		fmt.Println(versionString)
		return
	}

	vise.VerboseMode = *verbose

	if err := run(*profileName, *maskName, *immStr, *roundStr, *expectStr, *scratchName, *maskZero, *steps, *accuracy, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "vise: %v\n", err)
		os.Exit(1)
	}
}

func run(profileName, maskName, immStr, roundStr, expectStr, scratchName string, maskZero bool, steps, accuracy int, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vise [flags] <op.elem.width> <dst> [src...]")
	}

	knobs := vise.Knobs{RefineSteps: steps, AccuracyBits: accuracy}
	prof, err := pickProfile(profileName, knobs)
	if err != nil {
		return err
	}

	op, err := parseOp(args[0], roundStr, expectStr)
	if err != nil {
		return err
	}

	var opArgs vise.Args
	operands := make([]vise.Operand, 0, 4)
	for _, a := range args[1:] {
		o, err := parseOperand(prof.Arch(), a)
		if err != nil {
			return err
		}
		operands = append(operands, o)
	}
	if op.Kind == vise.MaskReduceBranch {
		if len(operands) != 1 {
			return fmt.Errorf("mask reduction takes exactly one source operand")
		}
		opArgs.Src1 = operands[0]
	} else {
		fields := []*vise.Operand{&opArgs.Dst, &opArgs.Src1, &opArgs.Src2, &opArgs.Src3}
		if len(operands) > len(fields) {
			return fmt.Errorf("too many operands")
		}
		for i, o := range operands {
			*fields[i] = o
		}
	}

	if maskName != "" {
		m, ok := vise.GetRegister(prof.Arch(), maskName)
		if !ok {
			return fmt.Errorf("unknown register %q", maskName)
		}
		opArgs.Mask = m
	}
	opArgs.MaskZero = maskZero
	if immStr != "" {
		v, err := strconv.ParseInt(immStr, 0, 64)
		if err != nil {
			return fmt.Errorf("bad immediate %q: %v", immStr, err)
		}
		opArgs.Imm = &vise.Immediate{Value: v, Bits: 32}
	}

	var scratch *vise.ScratchPair
	if scratchName != "" {
		base, ok := vise.GetRegister(prof.Arch(), scratchName)
		if !ok {
			return fmt.Errorf("unknown register %q", scratchName)
		}
		scratch = &vise.ScratchPair{
			A: vise.ScratchRegion{Base: base, Size: 64},
			B: vise.ScratchRegion{Base: base, Off: 64, Size: 64},
		}
	}

	eng := vise.NewEngine(prof, scratch)
	plan, err := eng.Lower(op, opArgs)
	if err != nil {
		return err
	}
	fmt.Print(plan.Dump())
	return nil
}

func pickProfile(name string, knobs vise.Knobs) (*vise.Profile, error) {
	if name == "" {
		return hostcpu.Detect(knobs)
	}
	return vise.ProfileByName(name, knobs)
}

// parseOp splits "add.f64.512" into its catalog tuple.
func parseOp(s, roundStr, expectStr string) (vise.VectorOp, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return vise.VectorOp{}, fmt.Errorf("bad operation %q (want op.elem.width)", s)
	}
	k, ok := vise.KindByName(parts[0])
	if !ok {
		return vise.VectorOp{}, fmt.Errorf("unknown operation %q", parts[0])
	}
	e, ok := vise.ElemByName(parts[1])
	if !ok {
		return vise.VectorOp{}, fmt.Errorf("unknown element type %q", parts[1])
	}
	var w vise.Width
	if parts[2] == "vl" {
		w = vise.WidthVL
	} else {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return vise.VectorOp{}, fmt.Errorf("bad width %q", parts[2])
		}
		w = vise.Width(n)
	}

	op, err := vise.NewVectorOp(k, e, w)
	if err != nil {
		return op, err
	}
	switch roundStr {
	case "":
	case "nearest":
		op.Round = vise.RoundNearest
	case "down":
		op.Round = vise.RoundDown
	case "up":
		op.Round = vise.RoundUp
	case "trunc":
		op.Round = vise.RoundTrunc
	default:
		return op, fmt.Errorf("unknown rounding mode %q", roundStr)
	}
	switch expectStr {
	case "", "all":
		op.Expect = vise.AllLanesSet
	case "none":
		op.Expect = vise.NoLanesSet
	default:
		return op, fmt.Errorf("unknown expectation %q", expectStr)
	}
	return op, nil
}

// parseOperand accepts a register name or a "[base+disp]" address.
func parseOperand(arch vise.Arch, s string) (vise.Operand, error) {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		baseName := inner
		var disp int64
		if i := strings.IndexAny(inner, "+-"); i > 0 {
			baseName = inner[:i]
			v, err := strconv.ParseInt(inner[i:], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("bad displacement in %q: %v", s, err)
			}
			disp = v
		}
		base, ok := vise.GetRegister(arch, baseName)
		if !ok {
			return nil, fmt.Errorf("unknown base register %q", baseName)
		}
		return vise.Memory{Base: base, Disp: int32(disp)}, nil
	}
	r, ok := vise.GetRegister(arch, s)
	if !ok {
		return nil, fmt.Errorf("unknown register %q", s)
	}
	return r, nil
}
