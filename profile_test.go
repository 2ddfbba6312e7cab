package vise

import "testing"

func TestProfileCapabilitySplit(t *testing.T) {
	rev1 := NewAVX512Profile(Rev1, Knobs{})
	rev2 := NewAVX512Profile(Rev2, Knobs{})
	msa := NewMSAProfile(Knobs{})

	if rev1.Has(CapNativeSaturate) {
		t.Error("rev1 must not carry native saturation")
	}
	if !rev2.Has(CapNativeSaturate) {
		t.Error("rev2 must carry native saturation")
	}
	if rev1.Has(CapWideMask) || !rev2.Has(CapWideMask) {
		t.Error("wide mask belongs to rev2 only")
	}
	if !rev1.Has(CapRcpApprox) || msa.Has(CapRcpApprox) {
		t.Error("reciprocal approximation belongs to the prefixed family")
	}
	if !msa.Has(CapNativeByteMul) || rev2.Has(CapNativeByteMul) {
		t.Error("byte multiply belongs to the fixed-width family")
	}
	if rev1.Has(CapFloatLogic) || !rev2.Has(CapFloatLogic) {
		t.Error("float logic encodings belong to rev2 only")
	}
}

func TestProfileByName(t *testing.T) {
	for _, name := range []string{"avx512.1", "avx512.2", "msa"} {
		p, err := ProfileByName(name, Knobs{})
		if err != nil {
			t.Errorf("ProfileByName(%q): %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("name round trip: got %q, want %q", p.Name(), name)
		}
	}
	if _, err := ProfileByName("sve", Knobs{}); err == nil {
		t.Error("unknown profile name must be rejected")
	}
}

func TestResolveWidth(t *testing.T) {
	avx := NewAVX512Profile(Rev2, Knobs{})
	msa := NewMSAProfile(Knobs{})

	if avx.ResolveWidth(WidthVL) != Width512 {
		t.Errorf("avx512 vl: got %d, want 512", avx.ResolveWidth(WidthVL))
	}
	if msa.ResolveWidth(WidthVL) != Width128 {
		t.Errorf("msa vl: got %d, want 128", msa.ResolveWidth(WidthVL))
	}
	if avx.ResolveWidth(Width128) != Width128 {
		t.Error("explicit widths must pass through")
	}
}

func TestNativeWidthRegisters(t *testing.T) {
	avx := NewAVX512Profile(Rev2, Knobs{})
	msa := NewMSAProfile(Knobs{})

	if n := avx.NativeWidthRegisters(Width512); n != 1 {
		t.Errorf("512 on a 512-bit file: got %d, want 1", n)
	}
	if n := avx.NativeWidthRegisters(Width128); n != 1 {
		t.Errorf("sub-native: got %d, want 1", n)
	}
	if n := msa.NativeWidthRegisters(Width512); n != 4 {
		t.Errorf("512 on a 128-bit file: got %d, want 4", n)
	}
	if n := msa.NativeWidthRegisters(Width256); n != 2 {
		t.Errorf("256 on a 128-bit file: got %d, want 2", n)
	}
}

func TestHasNativeMatrix(t *testing.T) {
	rev1 := NewAVX512Profile(Rev1, Knobs{})
	rev2 := NewAVX512Profile(Rev2, Knobs{})
	msa := NewMSAProfile(Knobs{})

	cases := []struct {
		p    *Profile
		k    Kind
		e    ElemType
		want bool
	}{
		{rev1, Add, I32, true},
		{rev2, Add, I32, true},
		{msa, Add, I32, true},

		// byte multiply: fixed-width family only
		{rev1, Mul, I8, false},
		{rev2, Mul, I8, false},
		{msa, Mul, I8, true},

		// integer division: fixed-width family only
		{rev2, Div, I32, false},
		{msa, Div, I32, true},

		// saturating arithmetic: rev2 and msa
		{rev1, SatAdd, I8, false},
		{rev2, SatAdd, I8, true},
		{msa, SatAdd, I8, true},

		// narrow compares need the later revision
		{rev1, CmpEq, I8, false},
		{rev2, CmpEq, I8, true},
		{rev1, CmpEq, I32, true},

		// reciprocal approximation: prefixed family only
		{rev1, RcpApprox, F32, true},
		{msa, RcpApprox, F32, false},

		// narrow variable shifts need the later revision
		{rev1, ShiftLeftVar, I16, false},
		{rev2, ShiftLeftVar, I16, true},
		{rev1, ShiftLeftVar, I32, true},
	}
	for _, c := range cases {
		if got := c.p.HasNative(c.k, c.e); got != c.want {
			t.Errorf("%s.HasNative(%s, %s) = %v, want %v", c.p.Name(), c.k, c.e, got, c.want)
		}
	}
}

func TestSchemeFor(t *testing.T) {
	rev1 := NewAVX512Profile(Rev1, Knobs{})
	rev2 := NewAVX512Profile(Rev2, Knobs{})

	if rev2.SchemeFor(And, F32) != SchemeFloatNative {
		t.Error("rev2 float logic must use the float-typed encodings")
	}
	if rev1.SchemeFor(And, F32) != SchemeIntBitwise {
		t.Error("rev1 float logic must use the integer encodings")
	}
	// the scheme only applies to float bitwise logic
	if rev2.SchemeFor(And, I32) != SchemeIntBitwise {
		t.Error("integer logic is never scheme-split")
	}
	if rev2.SchemeFor(Add, F32) != SchemeIntBitwise {
		t.Error("float arithmetic is never scheme-split")
	}
}

func TestKnobsNormalization(t *testing.T) {
	p := NewAVX512Profile(Rev1, Knobs{})
	if p.RefineSteps() != 2 || p.AccuracyBits() != 50 {
		t.Errorf("zero knobs must normalize to defaults, got %d/%d", p.RefineSteps(), p.AccuracyBits())
	}
	p = NewAVX512Profile(Rev1, Knobs{RefineSteps: 1, AccuracyBits: 14})
	if p.RefineSteps() != 1 || p.AccuracyBits() != 14 {
		t.Errorf("explicit knobs must pass through, got %d/%d", p.RefineSteps(), p.AccuracyBits())
	}
}
