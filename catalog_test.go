package vise

import (
	"errors"
	"testing"
)

func TestCatalogMembership(t *testing.T) {
	cases := []struct {
		k    Kind
		e    ElemType
		w    Width
		want bool
	}{
		{Add, I32, Width512, true},
		{Add, F64, WidthVL, true},
		{Sqrt, F32, Width128, true},
		{Sqrt, I32, Width128, false},
		{SatAdd, I8, Width256, true},
		{SatAdd, I64, Width256, false},
		{SatAdd, F32, Width256, false},
		{ShiftLeft, F32, Width512, false},
		{RcpApprox, F64, Width512, true},
		{RcpApprox, U8, Width512, false},
		{Add, I32, Width(64), false},
		{Kind(999), I32, Width512, false},
	}
	for _, c := range cases {
		if got := Member(c.k, c.e, c.w); got != c.want {
			t.Errorf("Member(%s, %s, %d) = %v, want %v", c.k, c.e, c.w, got, c.want)
		}
	}
}

func TestNewVectorOpErrorKind(t *testing.T) {
	_, err := NewVectorOp(Sqrt, U16, Width512)
	var shape *UnsupportedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("got %v, want UnsupportedShapeError", err)
	}
}

func TestCanonicalizeArity(t *testing.T) {
	op, _ := NewVectorOp(Add, I32, Width512)
	zmm1 := xReg(t, "zmm1")
	zmm2 := xReg(t, "zmm2")
	zmm3 := xReg(t, "zmm3")

	if _, err := Canonicalize(op, Args3(zmm1, zmm2, zmm3)); err != nil {
		t.Errorf("three-operand add: %v", err)
	}

	// too few sources
	if _, err := Canonicalize(op, Args{Dst: zmm1, Src1: zmm2}); err == nil {
		t.Error("add with one source must be rejected")
	}

	// missing destination
	if _, err := Canonicalize(op, Args{Src1: zmm2, Src2: zmm3}); err == nil {
		t.Error("add without a destination must be rejected")
	}

	// stray immediate
	bad := Args3(zmm1, zmm2, zmm3)
	bad.Imm = &Immediate{Value: 1, Bits: 8}
	if _, err := Canonicalize(op, bad); err == nil {
		t.Error("add with an immediate must be rejected")
	}
}

func TestCanonicalizeTwoOperandAlias(t *testing.T) {
	op, _ := NewVectorOp(Add, I32, Width512)
	zmm1 := xReg(t, "zmm1")
	zmm2 := xReg(t, "zmm2")

	args, err := Canonicalize(op, Args2(zmm1, zmm2))
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if args.Src1 != Operand(zmm1) {
		t.Errorf("two-operand form: src1 = %v, want the destination %v", args.Src1, zmm1)
	}
}

func TestCanonicalizeShiftNeedsImmediate(t *testing.T) {
	op, _ := NewVectorOp(ShiftLeft, I32, Width512)
	args := Args{Dst: xReg(t, "zmm1"), Src1: xReg(t, "zmm2")}
	if _, err := Canonicalize(op, args); err == nil {
		t.Error("shift without a count must be rejected")
	}
	args.Imm = &Immediate{Value: 3, Bits: 8}
	if _, err := Canonicalize(op, args); err != nil {
		t.Errorf("shift with a count: %v", err)
	}
}

func TestCanonicalizeMaskRules(t *testing.T) {
	// refinement is not maskable
	op, _ := NewVectorOp(RcpRefine, F32, Width512)
	args := Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))
	args.Mask = xReg(t, "k1")
	if _, err := Canonicalize(op, args); err == nil {
		t.Error("masked refinement must be rejected")
	}

	// merge demands a mask
	op, _ = NewVectorOp(MaskedMerge, I32, Width512)
	if _, err := Canonicalize(op, Args3(xReg(t, "zmm1"), xReg(t, "zmm2"), xReg(t, "zmm3"))); err == nil {
		t.Error("merge without a mask must be rejected")
	}
}

func TestCanonicalizeMaskReduceBranch(t *testing.T) {
	op, _ := NewVectorOp(MaskReduceBranch, I32, Width512)

	// needs both the mask source and the branch displacement
	if _, err := Canonicalize(op, Args{Src1: xReg(t, "k1")}); err == nil {
		t.Error("reduction without a displacement must be rejected")
	}
	args := Args{Src1: xReg(t, "k1"), Imm: &Immediate{Value: 16, Bits: 32}}
	if _, err := Canonicalize(op, args); err != nil {
		t.Errorf("reduction with displacement: %v", err)
	}
}

func TestCanonicalizeImmediateDestination(t *testing.T) {
	op, _ := NewVectorOp(Add, I32, Width512)
	args := Args3(Immediate{Value: 1, Bits: 8}, xReg(t, "zmm1"), xReg(t, "zmm2"))
	if _, err := Canonicalize(op, args); err == nil {
		t.Error("immediate destination must be rejected")
	}
}

func TestKindNamesRoundTrip(t *testing.T) {
	for k := Move; k < numKinds; k++ {
		name := k.String()
		if name == "unknown" {
			t.Errorf("kind %d has no name", k)
			continue
		}
		back, ok := KindByName(name)
		if !ok || back != k {
			t.Errorf("KindByName(%q) = %v, %v", name, back, ok)
		}
	}
}

func TestElemTypeProperties(t *testing.T) {
	if I8.Bits() != 8 || U16.Bits() != 16 || F64.Bits() != 64 {
		t.Error("element widths off")
	}
	if !I8.IsSigned() || U32.IsSigned() || !F32.IsSigned() {
		t.Error("signedness off")
	}
	if !F32.IsFloat() || I64.IsFloat() {
		t.Error("float classification off")
	}
	e, ok := ElemByName("u16")
	if !ok || e != U16 {
		t.Errorf("ElemByName(u16) = %v, %v", e, ok)
	}
}

func TestVectorOpLanes(t *testing.T) {
	op, _ := NewVectorOp(Add, I8, Width512)
	if op.Lanes() != 64 {
		t.Errorf("i8x512 lanes: got %d, want 64", op.Lanes())
	}
	op, _ = NewVectorOp(Add, F64, Width128)
	if op.Lanes() != 2 {
		t.Errorf("f64x128 lanes: got %d, want 2", op.Lanes())
	}
}

func TestVectorOpString(t *testing.T) {
	op, _ := NewVectorOp(Mul, F32, Width256)
	if op.String() != "mul.f32.256" {
		t.Errorf("String: got %q, want mul.f32.256", op.String())
	}
	op, _ = NewVectorOp(Add, I16, WidthVL)
	if op.String() != "add.i16.vl" {
		t.Errorf("String: got %q, want add.i16.vl", op.String())
	}
}
