package vise

import (
	"bytes"
	"errors"
	"testing"
)

func TestBracketRoundUpSequence(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width512)
	op.Round = RoundUp

	plan, err := e.Lower(op, Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Errorf("strategy: got %s, want emulated", plan.Strategy)
	}
	want := []string{"stmxcsr", "mov", "and", "or", "mov", "ldmxcsr", "vcvtps2dq", "ldmxcsr"}
	if len(plan.Insts) != len(want) {
		t.Fatalf("got %d instructions, want %d\n%s", len(plan.Insts), len(want), plan.Dump())
	}
	for i, mn := range want {
		if plan.Insts[i].Mnemonic != mn {
			t.Errorf("instruction %d: got %q, want %q", i, plan.Insts[i].Mnemonic, mn)
		}
	}
	// the conversion itself runs under the installed control word
	if !bytes.Equal(plan.Insts[6].Bytes, []byte{0x62, 0xF1, 0x7D, 0x48, 0x5B, 0xCA}) {
		t.Errorf("vcvtps2dq zmm1, zmm2: got %x", plan.Insts[6].Bytes)
	}
	if !hasClobber(plan, "rax") {
		t.Errorf("clobber set %v missing the control-word scratch", plan.Clobbers)
	}
}

func TestBracketNearestSkipsOr(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width512)
	op.Round = RoundNearest

	// nearest is field value zero, so no OR is needed after the clear
	plan, err := e.Lower(op, Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(plan.Insts) != 7 {
		t.Fatalf("got %d instructions, want 7\n%s", len(plan.Insts), plan.Dump())
	}
	for _, in := range plan.Insts {
		if in.Mnemonic == "or" {
			t.Error("explicit nearest must not set rounding-control bits")
		}
	}
}

func TestBracketNeedsScratch(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width512)
	op.Round = RoundUp

	_, err := e.Lower(op, Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")})
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("bracket without scratch: got %v, want UnsupportedShapeError", err)
	}
}

func TestBracketScratchTooSmall(t *testing.T) {
	scratch := &ScratchPair{
		A: ScratchRegion{Base: xReg(t, "rsi"), Size: 4},
		B: ScratchRegion{Base: xReg(t, "rsi"), Off: 4, Size: 4},
	}
	e := NewEngine(NewAVX512Profile(Rev2, Knobs{}), scratch)
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width512)
	op.Round = RoundDown

	_, err := e.Lower(op, Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")})
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("undersized scratch region: got %v, want UnsupportedShapeError", err)
	}
}

func TestBracketMSARoundDown(t *testing.T) {
	e := NewEngine(NewMSAProfile(Knobs{}), testScratch(t, ArchMIPS64))
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width128)
	op.Round = RoundDown

	plan, err := e.Lower(op, Args{Dst: mReg(t, "w1"), Src1: mReg(t, "w2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := []string{"cfcmsa", "addiu", "and", "ori", "ctcmsa", "ftint_s.w", "ctcmsa"}
	if len(plan.Insts) != len(want) {
		t.Fatalf("got %d instructions, want %d\n%s", len(plan.Insts), len(want), plan.Dump())
	}
	for i, mn := range want {
		if plan.Insts[i].Mnemonic != mn {
			t.Errorf("instruction %d: got %q, want %q", i, plan.Insts[i].Mnemonic, mn)
		}
	}
	// addiu t9, zero, -4 clears the two mode bits
	if !bytes.Equal(plan.Insts[1].Bytes, wordBytes(0x2419FFFC)) {
		t.Errorf("addiu t9, zero, -4: got %x", plan.Insts[1].Bytes)
	}
	// ori t9, t9, 3 selects round-toward-minus-infinity
	if !bytes.Equal(plan.Insts[3].Bytes, wordBytes(0x37390003)) {
		t.Errorf("ori t9, t9, 3: got %x", plan.Insts[3].Bytes)
	}
	if !hasClobber(plan, "t8") || !hasClobber(plan, "t9") {
		t.Errorf("clobber set %v missing the control-word scratch pair", plan.Clobbers)
	}
	if plan.Strategy != StrategyEmulated {
		t.Errorf("strategy: got %s, want emulated", plan.Strategy)
	}
}

func TestBracketMSANearestSkipsOri(t *testing.T) {
	e := NewEngine(NewMSAProfile(Knobs{}), testScratch(t, ArchMIPS64))
	op, _ := NewVectorOp(CvtFloatToInt, F32, Width128)
	op.Round = RoundNearest

	plan, err := e.Lower(op, Args{Dst: mReg(t, "w1"), Src1: mReg(t, "w2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(plan.Insts) != 6 {
		t.Fatalf("got %d instructions, want 6\n%s", len(plan.Insts), plan.Dump())
	}
}
