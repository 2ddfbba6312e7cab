package vise

import (
	"errors"
	"testing"
)

func hasClobber(p *Plan, name string) bool {
	for _, r := range p.Clobbers {
		if r.Name == name {
			return true
		}
	}
	return false
}

func emuledEngine(t *testing.T, rev Revision) *Engine {
	t.Helper()
	return NewEngine(NewAVX512Profile(rev, Knobs{}), testScratch(t, ArchX86_64))
}

func TestEmulateByteMulRoundTrip(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(Mul, I8, Width128)

	plan, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Fatalf("strategy: got %s, want emulated", plan.Strategy)
	}

	// both sources spill first, the result loads back last
	if plan.Insts[0].Mnemonic != "vmovdqu8" || plan.Insts[1].Mnemonic != "vmovdqu8" {
		t.Errorf("spill: got %q, %q, want two vmovdqu8 stores", plan.Insts[0].Mnemonic, plan.Insts[1].Mnemonic)
	}
	last := plan.Insts[len(plan.Insts)-1]
	if last.Mnemonic != "vmovdqu8" {
		t.Errorf("reload: got %q, want vmovdqu8", last.Mnemonic)
	}

	// 16 lanes, each load+load+imul+store
	if want := 2 + 16*4 + 1; len(plan.Insts) != want {
		t.Errorf("got %d instructions, want %d\n%s", len(plan.Insts), want, plan.Dump())
	}
	imuls := 0
	for _, in := range plan.Insts {
		if in.Mnemonic == "imul" {
			imuls++
		}
	}
	if imuls != 16 {
		t.Errorf("got %d imul, want one per lane", imuls)
	}
	for _, name := range []string{"rax", "rcx", "rdx"} {
		if !hasClobber(plan, name) {
			t.Errorf("missing %s in the clobber set", name)
		}
	}
}

func TestEmulateUnsignedDivZeroesRDX(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(Div, U32, Width128)

	plan, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var xors, divs, cqos int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "xor":
			xors++
		case "div":
			divs++
		case "cqo":
			cqos++
		}
	}
	if divs != 4 || xors != 4 {
		t.Errorf("got %d div / %d xor, want 4 of each", divs, xors)
	}
	if cqos != 0 {
		t.Error("unsigned division must not sign-extend")
	}
}

func TestEmulateSignedDivSignExtends(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(Div, I64, Width256)

	plan, err := e.Lower(op, Args3(xReg(t, "ymm1"), xReg(t, "ymm2"), xReg(t, "ymm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var idivs, cqos int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "idiv":
			idivs++
		case "cqo":
			cqos++
		}
	}
	if idivs != 4 || cqos != 4 {
		t.Errorf("got %d idiv / %d cqo, want 4 of each", idivs, cqos)
	}
}

func TestEmulateSatAddClampSequence(t *testing.T) {
	// rev1 has no saturating rows
	e := emuledEngine(t, Rev1)
	op, _ := NewVectorOp(SatAdd, I8, Width128)

	plan, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Fatalf("strategy: got %s, want emulated", plan.Strategy)
	}
	var cmovg, cmovl int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "cmovg":
			cmovg++
		case "cmovl":
			cmovl++
		}
	}
	// one upper and one lower clamp per lane
	if cmovg != 16 || cmovl != 16 {
		t.Errorf("got %d cmovg / %d cmovl, want 16 of each", cmovg, cmovl)
	}
}

func TestEmulateCompareBuildsMask(t *testing.T) {
	// rev1 lacks narrow compare rows
	e := emuledEngine(t, Rev1)
	op, _ := NewVectorOp(CmpLt, I8, Width128)

	plan, err := e.Lower(op, Args3(xReg(t, "k1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Fatalf("strategy: got %s, want emulated", plan.Strategy)
	}
	last := plan.Insts[len(plan.Insts)-1]
	if last.Mnemonic != "kmovw" {
		t.Errorf("final transfer: got %q, want kmovw", last.Mnemonic)
	}
	setl := 0
	for _, in := range plan.Insts {
		if in.Mnemonic == "setl" {
			setl++
		}
	}
	if setl != 16 {
		t.Errorf("got %d setl, want one per lane", setl)
	}
	if !hasClobber(plan, "r8") {
		t.Error("missing r8 in the clobber set")
	}
}

func TestEmulateCompareUnsignedCondition(t *testing.T) {
	e := emuledEngine(t, Rev1)
	op, _ := NewVectorOp(CmpLt, U8, Width128)

	plan, err := e.Lower(op, Args3(xReg(t, "k1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	for _, in := range plan.Insts {
		if in.Mnemonic == "setl" {
			t.Fatal("unsigned compare must use the below condition, found setl")
		}
	}
}

func TestEmulateWideMaskGate(t *testing.T) {
	e := emuledEngine(t, Rev1)
	op, _ := NewVectorOp(CmpEq, I8, Width512)

	// 64 lanes of mask need the wide transfer forms
	_, err := e.Lower(op, Args3(xReg(t, "k1"), xReg(t, "zmm2"), xReg(t, "zmm3")))
	var unimpl *UnimplementedOperationError
	if !errors.As(err, &unimpl) {
		t.Fatalf("64-lane emulated compare on rev1: got %v, want UnimplementedOperationError", err)
	}
}

func TestEmulateMergeBitTest(t *testing.T) {
	// rev1 lacks the byte blend row
	e := emuledEngine(t, Rev1)
	op, _ := NewVectorOp(MaskedMerge, I8, Width128)

	args := Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3"))
	args.Mask = xReg(t, "k2")
	plan, err := e.Lower(op, args)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var bt, cmovc int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "bt":
			bt++
		case "cmovc":
			cmovc++
		}
	}
	if bt != 16 || cmovc != 16 {
		t.Errorf("got %d bt / %d cmovc, want 16 of each", bt, cmovc)
	}
}

func TestEmulateRejectsMemorySources(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(Mul, I8, Width128)

	mem := Memory{Base: xReg(t, "rax")}
	_, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), mem))
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("memory source on an emulated operation: got %v, want UnsupportedShapeError", err)
	}
}

func TestEmulateScratchTooSmall(t *testing.T) {
	scratch := &ScratchPair{
		A: ScratchRegion{Base: xReg(t, "rsi"), Size: 8},
		B: ScratchRegion{Base: xReg(t, "rsi"), Off: 8, Size: 8},
	}
	e := NewEngine(NewAVX512Profile(Rev2, Knobs{}), scratch)
	op, _ := NewVectorOp(Mul, I8, Width128)

	_, err := e.Lower(op, Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3")))
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("16-byte operands in an 8-byte region: got %v, want UnsupportedShapeError", err)
	}
}

func TestEmulateMaskedArithmeticRejected(t *testing.T) {
	e := emuledEngine(t, Rev2)
	op, _ := NewVectorOp(Mul, I8, Width128)

	args := Args3(xReg(t, "xmm1"), xReg(t, "xmm2"), xReg(t, "xmm3"))
	args.Mask = xReg(t, "k1")
	_, err := e.Lower(op, args)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("masked emulated multiply: got %v, want UnsupportedShapeError", err)
	}
}

func TestMSAScalarReciprocal(t *testing.T) {
	e := NewEngine(NewMSAProfile(Knobs{}), testScratch(t, ArchMIPS64))
	op, _ := NewVectorOp(RcpApprox, F32, Width128)

	plan, err := e.Lower(op, Args{Dst: mReg(t, "w1"), Src1: mReg(t, "w2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if plan.Strategy != StrategyEmulated {
		t.Fatalf("strategy: got %s, want emulated", plan.Strategy)
	}
	var luis, divs, sqrts int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "lui":
			luis++
		case "div.s":
			divs++
		case "sqrt.s":
			sqrts++
		}
	}
	if luis != 1 {
		t.Errorf("got %d lui, want one constant materialization", luis)
	}
	if divs != 4 {
		t.Errorf("got %d div.s, want one per lane", divs)
	}
	if sqrts != 0 {
		t.Error("plain reciprocal must not take square roots")
	}
}

func TestMSAScalarRsqrtTakesRoots(t *testing.T) {
	e := NewEngine(NewMSAProfile(Knobs{}), testScratch(t, ArchMIPS64))
	op, _ := NewVectorOp(RsqrtApprox, F64, Width128)

	plan, err := e.Lower(op, Args{Dst: mReg(t, "w1"), Src1: mReg(t, "w2")})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var sqrts, dslls int
	for _, in := range plan.Insts {
		switch in.Mnemonic {
		case "sqrt.d":
			sqrts++
		case "dsll32":
			dslls++
		}
	}
	if sqrts != 2 {
		t.Errorf("got %d sqrt.d, want one per lane", sqrts)
	}
	if dslls != 1 {
		t.Errorf("got %d dsll32, want one for the 64-bit constant", dslls)
	}
}

func TestLaneSaturationReference(t *testing.T) {
	cases := []struct {
		a, b int64
		bits int
		want int64
	}{
		{127, 127, 8, 127},
		{100, 27, 8, 127},
		{-100, -100, 8, -128},
		{50, 20, 8, 70},
		{32767, 1, 16, 32767},
	}
	for _, c := range cases {
		if got := LaneSatAddSigned(c.a, c.b, c.bits); got != c.want {
			t.Errorf("LaneSatAddSigned(%d, %d, %d) = %d, want %d", c.a, c.b, c.bits, got, c.want)
		}
	}
	if got := LaneSatSubSigned(-100, 100, 8); got != -128 {
		t.Errorf("LaneSatSubSigned(-100, 100, 8) = %d, want -128", got)
	}
	if got := LaneSatAddUnsigned(200, 100, 8); got != 255 {
		t.Errorf("LaneSatAddUnsigned(200, 100, 8) = %d, want 255", got)
	}
	if got := LaneSatSubUnsigned(5, 10, 8); got != 0 {
		t.Errorf("LaneSatSubUnsigned(5, 10, 8) = %d, want 0", got)
	}
	if got := LaneSatSubUnsigned(10, 5, 8); got != 5 {
		t.Errorf("LaneSatSubUnsigned(10, 5, 8) = %d, want 5", got)
	}
}
