// Completion: 100% - MIPS64 MSA encoding complete
package vise

import "fmt"

// msaEncoder builds the 32-bit instruction words of the fixed-width
// SIMD family. Multi-word rows (not-equal, and-not, fused subtract)
// come back as short sequences; the slice stepping above stays unaware
// of how many words one lane operation takes.
type msaEncoder struct {
	prof *Profile
}

const msaMajor = 0x1E

func msaWord3R(op, df, wt, ws, wd, minor uint32) uint32 {
	return msaMajor<<26 | op<<23 | df<<21 | wt<<16 | ws<<11 | wd<<6 | minor
}

func msaWord3RF(op, df, wt, ws, wd, minor uint32) uint32 {
	return msaMajor<<26 | op<<22 | df<<21 | wt<<16 | ws<<11 | wd<<6 | minor
}

func msaWordVEC(op, wt, ws, wd uint32) uint32 {
	return msaMajor<<26 | op<<21 | wt<<16 | ws<<11 | wd<<6 | msaMinVEC
}

func msaWordBIT(op, dfm, ws, wd uint32) uint32 {
	return msaMajor<<26 | op<<23 | dfm<<16 | ws<<11 | wd<<6 | msaMinBIT
}

func msaWordMI10(s10 int32, rs, wd, minor, df uint32) uint32 {
	return msaMajor<<26 | uint32(s10&0x3FF)<<16 | rs<<11 | wd<<6 | minor<<2 | df
}

func msaWord2R(op, df, ws, wd uint32) uint32 {
	return msaMajor<<26 | op<<18 | df<<16 | ws<<11 | wd<<6 | msaMin2R
}

// intDF maps an element width to the two-bit data format field.
func intDF(e ElemType) uint32 {
	switch e.Bits() {
	case 8:
		return 0
	case 16:
		return 1
	case 32:
		return 2
	default:
		return 3
	}
}

// floatDF is the one-bit 3RF format field.
func floatDF(e ElemType) uint32 {
	if e.Bits() == 64 {
		return 1
	}
	return 0
}

// bitDFM folds the element width and shift amount into the seven-bit
// immediate field: the leading bit pattern selects the width and the
// low bits carry the count.
func bitDFM(e ElemType, count int64) (uint32, error) {
	bits := int64(e.Bits())
	if count < 0 || count >= bits {
		return 0, &FieldOverflowError{Field: "shift amount", Value: count, Bits: e.Bits()}
	}
	switch bits {
	case 64:
		return uint32(count), nil // 0mmmmmm
	case 32:
		return 0x40 | uint32(count), nil // 10mmmmm
	case 16:
		return 0x60 | uint32(count), nil // 110mmmm
	default:
		return 0x70 | uint32(count), nil // 1110mmm
	}
}

func msaInst(mn string, words ...uint32) Inst {
	b := NewBufferWrapper()
	for _, w := range words {
		b.Write4u(w)
	}
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

func (m *msaEncoder) encode(rec *record) ([]Inst, error) {
	ent, ok := msaLookup(rec.op.Kind, rec.op.Elem)
	if !ok {
		panic("BUG: encode called without a table row for " + rec.op.String())
	}

	if rec.op.Kind == Move {
		return m.encodeMove(rec)
	}
	if rec.op.Kind == MaskedMerge {
		return m.encodeMerge(rec)
	}

	dst, ok := rec.dst.(Register)
	if !ok || dst.Class != RegVector {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "destination must be a vector register"}
	}
	s1, ok := rec.src1.(Register)
	if !ok || s1.Class != RegVector {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "sources must be vector registers"}
	}

	mnSuffix := "." + dfSuffix(rec.op.Elem, ent.fmt)

	switch rec.op.Kind {
	case AndNot:
		return m.encodeAndNot(rec, dst, s1)
	case Fma:
		return m.encodeFma(rec, dst, s1)
	case Fms:
		return m.encodeFms(rec, dst, s1)
	case ShiftLeft, ShiftRightArith, ShiftRightLogical:
		dfm, err := bitDFM(rec.op.Elem, rec.imm.Value)
		if err != nil {
			return nil, err
		}
		w := msaWordBIT(uint32(ent.op), dfm, uint32(s1.Encoding), uint32(dst.Encoding))
		return []Inst{msaInst(ent.mnemonic+mnSuffix, w)}, nil
	case CvtFloatToInt:
		if rec.op.Round == RoundTrunc {
			ent = msaTruncEntry()
		}
		w := msaWord3RF(uint32(ent.op), floatDF(rec.op.Elem), uint32(s1.Encoding), uint32(s1.Encoding), uint32(dst.Encoding), uint32(ent.minor))
		return []Inst{msaInst(ent.mnemonic+mnSuffix, w)}, nil
	case CvtIntToFloat, Sqrt, Not:
		// unary rows repeat the source
		rec.src2 = rec.src1
	}

	var s2 Register
	if rec.src2 != nil {
		s2, ok = rec.src2.(Register)
		if !ok || s2.Class != RegVector {
			return nil, &UnsupportedShapeError{Op: rec.op, Detail: "sources must be vector registers"}
		}
	} else if ent.unary {
		s2 = s1
	}

	a, b := s1, s2
	if ent.swap {
		a, b = s2, s1
	}

	var w uint32
	switch ent.fmt {
	case fmt3R:
		w = msaWord3R(uint32(ent.op), intDF(rec.op.Elem), uint32(b.Encoding), uint32(a.Encoding), uint32(dst.Encoding), uint32(ent.minor))
	case fmt3RF:
		w = msaWord3RF(uint32(ent.op), floatDF(rec.op.Elem), uint32(b.Encoding), uint32(a.Encoding), uint32(dst.Encoding), uint32(ent.minor))
	case fmtVEC:
		w = msaWordVEC(uint32(ent.op), uint32(b.Encoding), uint32(a.Encoding), uint32(dst.Encoding))
		mnSuffix = ""
	default:
		panic(fmt.Sprintf("BUG: unhandled format %d for %s", ent.fmt, rec.op))
	}

	insts := []Inst{msaInst(ent.mnemonic+mnSuffix, w)}
	if ent.negate {
		nor := msaWordVEC(0x02, uint32(dst.Encoding), uint32(dst.Encoding), uint32(dst.Encoding))
		insts = append(insts, msaInst("nor.v", nor))
	}
	return insts, nil
}

func dfSuffix(e ElemType, f msaFmt) string {
	if f == fmt3RF {
		if e.Bits() == 64 {
			return "d"
		}
		return "w"
	}
	switch e.Bits() {
	case 8:
		return "b"
	case 16:
		return "h"
	case 32:
		return "w"
	default:
		return "d"
	}
}

// encodeMove handles the three move shapes: register copy, load and
// store. Load and store offsets are scaled by the element size and
// must fit the ten-bit field.
func (m *msaEncoder) encodeMove(rec *record) ([]Inst, error) {
	e := rec.op.Elem
	df := intDF(e)
	sfx := "." + dfSuffix(e, fmt3R)

	switch d := rec.dst.(type) {
	case Register:
		switch s := rec.src1.(type) {
		case Register:
			w := msaWordVEC(0x01, uint32(s.Encoding), uint32(s.Encoding), uint32(d.Encoding))
			return []Inst{msaInst("or.v", w)}, nil
		case Memory:
			s10, err := scaledOffset(s, e)
			if err != nil {
				return nil, err
			}
			w := msaWordMI10(s10, uint32(s.Base.Encoding), uint32(d.Encoding), msaMinMI10Ld, df)
			return []Inst{msaInst("ld"+sfx, w)}, nil
		}
	case Memory:
		s, ok := rec.src1.(Register)
		if !ok {
			return nil, &UnsupportedShapeError{Op: rec.op, Detail: "memory-to-memory move"}
		}
		s10, err := scaledOffset(d, e)
		if err != nil {
			return nil, err
		}
		w := msaWordMI10(s10, uint32(d.Base.Encoding), uint32(s.Encoding), msaMinMI10St, df)
		return []Inst{msaInst("st"+sfx, w)}, nil
	}
	return nil, &UnsupportedShapeError{Op: rec.op, Detail: "move operands must be registers or addresses"}
}

func scaledOffset(mem Memory, e ElemType) (int32, error) {
	if mem.HasIndex {
		return 0, &UnsupportedShapeError{Detail: "scaled-index addressing is not available"}
	}
	n := int32(e.Bytes())
	if mem.Disp%n != 0 {
		return 0, &UnsupportedShapeError{Detail: fmt.Sprintf("offset %d not a multiple of the %d-byte element", mem.Disp, n)}
	}
	s10 := mem.Disp / n
	if s10 < -512 || s10 > 511 {
		return 0, &FieldOverflowError{Field: "offset10", Value: int64(s10), Bits: 10}
	}
	return s10, nil
}

// encodeAndNot builds nor.v then and.v. When the destination aliases
// the second source the complement detours through the top scratch
// register.
func (m *msaEncoder) encodeAndNot(rec *record, dst, s1 Register) ([]Inst, error) {
	s2, ok := rec.src2.(Register)
	if !ok || s2.Class != RegVector {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "sources must be vector registers"}
	}
	tmp := dst
	var insts []Inst
	if dst.Encoding == s2.Encoding {
		tmp = m.prof.scratchVec(0, 128)
	}
	insts = append(insts, msaInst("nor.v", msaWordVEC(0x02, uint32(s1.Encoding), uint32(s1.Encoding), uint32(tmp.Encoding))))
	insts = append(insts, msaInst("and.v", msaWordVEC(0x00, uint32(s2.Encoding), uint32(tmp.Encoding), uint32(dst.Encoding))))
	return insts, nil
}

// encodeFma emits the accumulating form, which demands that the
// destination aliases the addend.
func (m *msaEncoder) encodeFma(rec *record, dst, s1 Register) ([]Inst, error) {
	s2, _ := rec.src2.(Register)
	s3, ok := rec.src3.(Register)
	if !ok {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "fused operands must be registers"}
	}
	if dst.Encoding != s3.Encoding {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "fused add destination must alias the addend"}
	}
	df := floatDF(rec.op.Elem)
	w := msaWord3RF(0x7, df, uint32(s2.Encoding), uint32(s1.Encoding), uint32(dst.Encoding), msaMinFArith)
	return []Inst{msaInst("fmadd."+dfSuffix(rec.op.Elem, fmt3RF), w)}, nil
}

// encodeFms has no single-word form in the canonical product-minus-
// addend orientation; the product lands in scratch first.
func (m *msaEncoder) encodeFms(rec *record, dst, s1 Register) ([]Inst, error) {
	s2, _ := rec.src2.(Register)
	s3, ok := rec.src3.(Register)
	if !ok {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "fused operands must be registers"}
	}
	df := floatDF(rec.op.Elem)
	sfx := "." + dfSuffix(rec.op.Elem, fmt3RF)
	tmp := m.prof.scratchVec(0, 128)
	mul := msaWord3RF(0x2, df, uint32(s2.Encoding), uint32(s1.Encoding), uint32(tmp.Encoding), msaMinFArith)
	sub := msaWord3RF(0x1, df, uint32(s3.Encoding), uint32(tmp.Encoding), uint32(dst.Encoding), msaMinFArith)
	return []Inst{msaInst("fmul"+sfx, mul), msaInst("fsub"+sfx, sub)}, nil
}

// encodeMerge copies the mask into the destination, then bsel.v routes
// each lane from the first source (mask bit clear) or the second (mask
// bit set).
func (m *msaEncoder) encodeMerge(rec *record) ([]Inst, error) {
	dst, ok := rec.dst.(Register)
	if !ok {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "destination must be a vector register"}
	}
	s1, ok1 := rec.src1.(Register)
	s2, ok2 := rec.src2.(Register)
	if !ok1 || !ok2 {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "sources must be vector registers"}
	}
	if rec.mask.Class != RegVector {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "merge mask must be a vector register"}
	}
	if dst.Encoding == s1.Encoding || dst.Encoding == s2.Encoding {
		return nil, &UnsupportedShapeError{Op: rec.op, Detail: "merge destination must not alias a source"}
	}
	var insts []Inst
	if dst.Encoding != rec.mask.Encoding {
		insts = append(insts, msaInst("or.v", msaWordVEC(0x01, uint32(rec.mask.Encoding), uint32(rec.mask.Encoding), uint32(dst.Encoding))))
	}
	insts = append(insts, msaInst("bsel.v", msaWordVEC(0x06, uint32(s2.Encoding), uint32(s1.Encoding), uint32(dst.Encoding))))
	return insts, nil
}

// fill splats a general register across every lane.
func (m *msaEncoder) fill(dst Register, src Register, e ElemType) Inst {
	w := msaWord2R(0xC0, intDF(e), uint32(src.Encoding), uint32(dst.Encoding))
	return msaInst("fill."+dfSuffix(e, fmt3R), w)
}

// ---- vector branches ----

const mipsBranchMajor = 0x11

// msaBranchZero branches when every lane of wt is zero (df < 0 tests
// the whole register).
func msaBranchZero(wt Register, df int, disp int32) (Inst, error) {
	return msaBranch("bz", 0x0B, 0x18, wt, df, disp)
}

// msaBranchNotZero branches when no lane of wt is zero (df < 0 tests
// for any nonzero bit).
func msaBranchNotZero(wt Register, df int, disp int32) (Inst, error) {
	return msaBranch("bnz", 0x0F, 0x1C, wt, df, disp)
}

func msaBranch(mn string, wholeRT, dfRT uint32, wt Register, df int, disp int32) (Inst, error) {
	if disp%4 != 0 {
		return Inst{}, &FieldOverflowError{Field: "branch offset", Value: int64(disp), Bits: 18}
	}
	off := disp / 4
	if off < -0x8000 || off > 0x7FFF {
		return Inst{}, &FieldOverflowError{Field: "branch offset", Value: int64(disp), Bits: 18}
	}
	rt := wholeRT
	sfx := ".v"
	if df >= 0 {
		rt = dfRT | uint32(df)
		sfx = "." + []string{"b", "h", "w", "d"}[df]
	}
	w := mipsBranchMajor<<26 | rt<<21 | uint32(wt.Encoding)<<16 | uint32(uint16(off))
	return msaInst(mn+sfx, w), nil
}

// ---- scalar (non-vector) words used by the emulation sequencer ----

func mipsIWord(op, rs, rt uint32, imm int32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | uint32(uint16(imm))
}

func mipsRWord(rs, rt, rd, sa, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | sa<<6 | funct
}

func mipsFPWord(fmtField, ft, fs, fd, funct uint32) uint32 {
	return 0x11<<26 | fmtField<<21 | ft<<16 | fs<<11 | fd<<6 | funct
}

// scalar load/store major opcodes by lane width and signedness
func mipsLoadOp(e ElemType) (uint32, string) {
	switch e.Bits() {
	case 8:
		if e.IsSigned() {
			return 0x20, "lb"
		}
		return 0x24, "lbu"
	case 16:
		if e.IsSigned() {
			return 0x21, "lh"
		}
		return 0x25, "lhu"
	case 32:
		if e.IsSigned() {
			return 0x23, "lw"
		}
		return 0x27, "lwu"
	default:
		return 0x37, "ld"
	}
}

func mipsStoreOp(bits int) (uint32, string) {
	switch bits {
	case 8:
		return 0x28, "sb"
	case 16:
		return 0x29, "sh"
	case 32:
		return 0x2B, "sw"
	default:
		return 0x3F, "sd"
	}
}

func mipsLoadLane(dst Register, m Memory, e ElemType) Inst {
	op, mn := mipsLoadOp(e)
	return msaInst(mn, mipsIWord(op, uint32(m.Base.Encoding), uint32(dst.Encoding), m.Disp))
}

func mipsStoreLane(m Memory, src Register, bits int) Inst {
	op, mn := mipsStoreOp(bits)
	return msaInst(mn, mipsIWord(op, uint32(m.Base.Encoding), uint32(src.Encoding), m.Disp))
}

func mipsLUI(dst Register, imm int32) Inst {
	return msaInst("lui", mipsIWord(0x0F, 0, uint32(dst.Encoding), imm))
}

func mipsORI(dst, src Register, imm int32) Inst {
	return msaInst("ori", mipsIWord(0x0D, uint32(src.Encoding), uint32(dst.Encoding), imm))
}

func mipsADDIU(dst, src Register, imm int32) Inst {
	return msaInst("addiu", mipsIWord(0x09, uint32(src.Encoding), uint32(dst.Encoding), imm))
}

func mipsAND(rd, rs, rt Register) Inst {
	return msaInst("and", mipsRWord(uint32(rs.Encoding), uint32(rt.Encoding), uint32(rd.Encoding), 0, 0x24))
}

func mipsDSLL32(dst, src Register, sa uint32) Inst {
	return msaInst("dsll32", mipsRWord(0, uint32(src.Encoding), uint32(dst.Encoding), sa, 0x3C))
}

// floating-point scalar words; fmt 0x10 is single, 0x11 double
func fpFmt(e ElemType) uint32 {
	if e.Bits() == 64 {
		return 0x11
	}
	return 0x10
}

func mipsFPLoad(dst Register, m Memory, e ElemType) Inst {
	if e.Bits() == 64 {
		return msaInst("ldc1", mipsIWord(0x35, uint32(m.Base.Encoding), uint32(dst.Encoding), m.Disp))
	}
	return msaInst("lwc1", mipsIWord(0x31, uint32(m.Base.Encoding), uint32(dst.Encoding), m.Disp))
}

func mipsFPStore(m Memory, src Register, e ElemType) Inst {
	if e.Bits() == 64 {
		return msaInst("sdc1", mipsIWord(0x3D, uint32(m.Base.Encoding), uint32(src.Encoding), m.Disp))
	}
	return msaInst("swc1", mipsIWord(0x39, uint32(m.Base.Encoding), uint32(src.Encoding), m.Disp))
}

func mipsFPDiv(fd, fs, ft Register, e ElemType) Inst {
	mn := "div.s"
	if e.Bits() == 64 {
		mn = "div.d"
	}
	return msaInst(mn, mipsFPWord(fpFmt(e), uint32(ft.Encoding), uint32(fs.Encoding), uint32(fd.Encoding), 0x03))
}

func mipsFPSqrt(fd, fs Register, e ElemType) Inst {
	mn := "sqrt.s"
	if e.Bits() == 64 {
		mn = "sqrt.d"
	}
	return msaInst(mn, mipsFPWord(fpFmt(e), 0, uint32(fs.Encoding), uint32(fd.Encoding), 0x04))
}

// control-register moves for the rounding-mode bracket
func msaCFC(rd Register, cr uint32) Inst {
	return msaInst("cfcmsa", msaMajor<<26|0x7E<<16|cr<<11|uint32(rd.Encoding)<<6|0x19)
}

func msaCTC(cr uint32, rs Register) Inst {
	return msaInst("ctcmsa", msaMajor<<26|0x3E<<16|uint32(rs.Encoding)<<11|cr<<6|0x19)
}
