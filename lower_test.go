package vise

import (
	"bytes"
	"errors"
	"testing"
)

func testScratch(t *testing.T, arch Arch) *ScratchPair {
	t.Helper()
	var base Register
	if arch == ArchX86_64 {
		base = xReg(t, "rsi")
	} else {
		base = mReg(t, "s0")
	}
	return &ScratchPair{
		A: ScratchRegion{Base: base, Size: 64},
		B: ScratchRegion{Base: base, Off: 64, Size: 64},
	}
}

func TestLowerDeterministic(t *testing.T) {
	op, _ := NewVectorOp(Mul, I32, Width512)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))

	e := avx512Engine(t, Rev2)
	first, err := e.Lower(op, args)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	second, err := e.Lower(op, args)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("same request produced different bytes:\n%x\n%x", first.Bytes(), second.Bytes())
	}
}

func TestLowerDirectStrategy(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(Add, I32, Width512)

	plan, err := e.Lower(op, Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyDirect || len(plan.Insts) != 1 {
		t.Errorf("native-width add: got %s with %d insts, want direct with 1", plan.Strategy, len(plan.Insts))
	}
}

func TestLowerComposedRegisterStepping(t *testing.T) {
	e := msaEngine(t)
	op, _ := NewVectorOp(Add, F64, Width512)

	// a 512-bit logical operand spans w0..w3, w8..w11, w16..w19
	plan, err := e.Lower(op, Args3(mReg(t, "w0"), mReg(t, "w8"), mReg(t, "w16")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyComposed {
		t.Fatalf("strategy: got %s, want composed", plan.Strategy)
	}
	if len(plan.Insts) != 4 {
		t.Fatalf("got %d instructions, want 4\n%s", len(plan.Insts), plan.Dump())
	}
	for i := 0; i < 4; i++ {
		want := msaWord3RF(0x0, 1, uint32(16+i), uint32(8+i), uint32(i), msaMinFArith)
		if !bytes.Equal(plan.Insts[i].Bytes, wordBytes(want)) {
			t.Errorf("slice %d: got %x, want %x", i, plan.Insts[i].Bytes, wordBytes(want))
		}
	}
}

func TestLowerComposedMemoryStepping(t *testing.T) {
	e := msaEngine(t)
	op, _ := NewVectorOp(Move, I64, Width256)

	// slices advance the displacement by the 16-byte native width
	mem := Memory{Base: mReg(t, "t0"), Disp: 0}
	plan, err := e.Lower(op, Args{Dst: mReg(t, "w4"), Src1: mem})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(plan.Insts) != 2 {
		t.Fatalf("got %d instructions, want 2\n%s", len(plan.Insts), plan.Dump())
	}
	lo := msaWordMI10(0, 8, 4, msaMinMI10Ld, 3)
	hi := msaWordMI10(2, 8, 5, msaMinMI10Ld, 3)
	if !bytes.Equal(plan.Insts[0].Bytes, wordBytes(lo)) {
		t.Errorf("low slice: got %x, want %x", plan.Insts[0].Bytes, wordBytes(lo))
	}
	if !bytes.Equal(plan.Insts[1].Bytes, wordBytes(hi)) {
		t.Errorf("high slice: got %x, want %x", plan.Insts[1].Bytes, wordBytes(hi))
	}
}

func TestLowerComposedRegisterFileOverflow(t *testing.T) {
	e := msaEngine(t)
	op, _ := NewVectorOp(Add, I32, Width512)

	// w30 + 3 slices runs off the end of the register file
	_, err := e.Lower(op, Args3(mReg(t, "w0"), mReg(t, "w8"), mReg(t, "w30")))
	var overflow *FieldOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("slice past w31: got %v, want FieldOverflowError", err)
	}
}

func TestLowerComposedMaskedMerge(t *testing.T) {
	e := msaEngine(t)
	op, _ := NewVectorOp(MaskedMerge, I32, Width256)

	// the merge mask slices along with the operands
	args := Args3(mReg(t, "w4"), mReg(t, "w8"), mReg(t, "w12"))
	args.Mask = mReg(t, "w20")
	plan, err := e.Lower(op, args)
	if err != nil {
		t.Fatalf("sliced merge: %v", err)
	}
	if plan.Strategy != StrategyComposed {
		t.Errorf("sliced merge strategy: got %s, want composed", plan.Strategy)
	}
	if len(plan.Insts) != 4 {
		t.Errorf("got %d instructions, want or.v + bsel.v per slice\n%s", len(plan.Insts), plan.Dump())
	}
}

func TestLowerMaskedAddAtNativeWidth(t *testing.T) {
	op, _ := NewVectorOp(Add, I32, Width512)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))
	args.Mask = xReg(t, "k1")
	plan, err := avx512Engine(t, Rev2).Lower(op, args)
	if err != nil {
		t.Fatalf("masked add at native width: %v", err)
	}
	if plan.Strategy != StrategyDirect {
		t.Errorf("strategy: got %s, want direct", plan.Strategy)
	}
}

func TestLowerWidthVLPinsToProfile(t *testing.T) {
	op, _ := NewVectorOp(Add, I32, WidthVL)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))

	plan, err := avx512Engine(t, Rev2).Lower(op, args)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Op.Width != Width512 {
		t.Errorf("resolved width: got %d, want 512", plan.Op.Width)
	}
	if plan.Strategy != StrategyDirect {
		t.Errorf("strategy: got %s, want direct", plan.Strategy)
	}
}

func TestLowerCatalogRejectsBadTuple(t *testing.T) {
	e := avx512Engine(t, Rev2)

	// sqrt is float-only
	op := VectorOp{Kind: Sqrt, Elem: I32, Width: Width512}
	_, err := e.Lower(op, Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")})
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("sqrt.i32: got %v, want UnsupportedShapeError", err)
	}

	// width outside the catalog
	op = VectorOp{Kind: Add, Elem: I32, Width: Width(64)}
	_, err = e.Lower(op, Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3")))
	if !errors.As(err, &shape) {
		t.Fatalf("add at width 64: got %v, want UnsupportedShapeError", err)
	}
}

func TestLowerShiftCountRange(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(ShiftRightArith, I32, Width512)

	args := Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2"), Imm: &Immediate{Value: 32, Bits: 8}}
	_, err := e.Lower(op, args)
	var overflow *FieldOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("32-lane shift by 32: got %v, want FieldOverflowError", err)
	}

	args.Imm = &Immediate{Value: 31, Bits: 8}
	if _, err := e.Lower(op, args); err != nil {
		t.Fatalf("shift by 31 must encode: %v", err)
	}
}

func TestLowerEmulationNeedsScratch(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(Mul, I8, Width128)

	// byte multiply has no row on the prefixed family
	_, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("emulation without scratch: got %v, want UnsupportedShapeError", err)
	}

	scratch := testScratch(t, ArchX86_64)
	eng := NewEngine(NewAVX512Profile(Rev2, Knobs{}), scratch)
	plan, err := eng.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower with scratch: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Errorf("strategy: got %s, want emulated", plan.Strategy)
	}
}

func TestLowerRevisionSplitsSaturate(t *testing.T) {
	op, _ := NewVectorOp(SatAdd, I8, Width512)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))

	plan, err := avx512Engine(t, Rev2).Lower(op, args)
	if err != nil {
		t.Fatalf("rev2 satadd: %v", err)
	}
	if plan.Strategy != StrategyDirect || plan.Insts[0].Mnemonic != "vpaddsb" {
		t.Errorf("rev2: got %s/%q, want direct vpaddsb", plan.Strategy, plan.Insts[0].Mnemonic)
	}

	// the earlier revision has no saturating rows and no scratch here
	_, err = avx512Engine(t, Rev1).Lower(op, args)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("rev1 satadd without scratch: got %v, want UnsupportedShapeError", err)
	}
}

func TestLowerZeroMaskWithoutMask(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(Add, I32, Width512)

	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))
	args.MaskZero = true
	_, err := e.Lower(op, args)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("zero-masking without a mask: got %v, want UnsupportedShapeError", err)
	}
}

func TestLowerMaskMustBeMaskRegister(t *testing.T) {
	e := avx512Engine(t, Rev2)
	op, _ := NewVectorOp(Add, I32, Width512)

	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))
	args.Mask = xReg(t, "zmm7")
	_, err := e.Lower(op, args)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("vector register as mask: got %v, want UnsupportedShapeError", err)
	}
}

func TestLowerMaskedNarrowBitwiseRejected(t *testing.T) {
	e := avx512Engine(t, Rev2)

	// the bitwise rows carry dword granularity, so a byte-lane
	// predicate would suppress the wrong lanes
	op, _ := NewVectorOp(And, I8, Width512)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))
	args.Mask = xReg(t, "k1")
	_, err := e.Lower(op, args)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("masked byte-lane and: got %v, want UnsupportedShapeError", err)
	}

	op, _ = NewVectorOp(Xor, U16, Width512)
	if _, err := e.Lower(op, args); !errors.As(err, &shape) {
		t.Fatalf("masked word-lane xor: got %v, want UnsupportedShapeError", err)
	}

	// dword lanes match the encoding granularity and stay legal
	op, _ = NewVectorOp(And, I32, Width512)
	plan, err := e.Lower(op, args)
	if err != nil {
		t.Fatalf("masked dword-lane and: %v", err)
	}
	if plan.Insts[0].Bytes[3]&0x07 != 1 {
		t.Errorf("aaa field: got %#x, want k1", plan.Insts[0].Bytes[3]&0x07)
	}
}
