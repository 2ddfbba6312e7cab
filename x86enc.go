// Completion: 100% - x86_64 EVEX encoding complete
package vise

import "fmt"

// x86Encoder turns fully resolved instruction records into EVEX-encoded
// machine code. Field packing only lives here; which instruction to emit
// is the lowering engine's call.
type x86Encoder struct {
	prof *Profile
}

// record is one resolved native instruction: a table row with every
// operand pinned to a physical register or address. Composed lowerings
// produce one record per slice.
type record struct {
	op       VectorOp
	dst      Operand
	src1     Operand
	src2     Operand
	src3     Operand
	mask     Register
	maskZero bool
	imm      *Immediate
	physBits int
}

// rmOperand describes the ModRM.rm side of an instruction.
type rmOperand struct {
	isReg bool
	reg   uint8 // register encoding when isReg

	base     uint8
	hasIndex bool
	index    uint8
	scale    uint8
	disp     int32
}

func regRM(r Register) rmOperand {
	return rmOperand{isReg: true, reg: r.Encoding}
}

func memRM(m Memory) (rmOperand, error) {
	rm := rmOperand{base: m.Base.Encoding, disp: m.Disp}
	if m.HasIndex {
		if m.Index.Encoding == 4 {
			return rm, &UnsupportedShapeError{Detail: "rsp cannot serve as an index register"}
		}
		rm.hasIndex = true
		rm.index = m.Index.Encoding
		rm.scale = m.Scale
	}
	return rm, nil
}

// encode packs one record into its instruction bytes.
//
// Byte layout, in order: the four EVEX prefix bytes, the opcode, ModRM,
// an optional SIB byte, the displacement (none, compressed 8-bit, or
// 32-bit), and an optional trailing immediate.
func (x *x86Encoder) encode(rec *record) (Inst, error) {
	ent, ok := x86Lookup(rec.op.Kind, rec.op.Elem, x.prof.scheme)
	if !ok {
		panic("BUG: encode called without a table row for " + rec.op.String())
	}

	opc, pp := ent.opc, ent.pp
	imm8 := ent.imm8
	mn := ent.mnemonic
	if rec.op.Kind == CvtFloatToInt && rec.op.Round == RoundTrunc {
		if !ent.hasAlt {
			panic("BUG: truncating conversion without an alternative opcode")
		}
		opc, pp = ent.altOpc, ent.altPP
		mn = ent.altMn
	}

	var reg, vvvv uint8
	var rm rmOperand
	var err error

	switch {
	case rec.op.Kind == Move:
		// Load direction by default; a memory destination flips to the
		// store opcode with the source register in ModRM.reg.
		switch d := rec.dst.(type) {
		case Register:
			reg = d.Encoding
			vvvv = 0
			switch s := rec.src1.(type) {
			case Register:
				rm = regRM(s)
			case Memory:
				if rm, err = memRM(s); err != nil {
					return Inst{}, err
				}
			default:
				return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "move source must be a register or address"}
			}
		case Memory:
			src, ok := rec.src1.(Register)
			if !ok {
				return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "memory-to-memory move"}
			}
			opc = ent.storeOpc
			reg = src.Encoding
			vvvv = 0
			if rm, err = memRM(d); err != nil {
				return Inst{}, err
			}
		default:
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "move destination must be a register or address"}
		}

	case ent.group != 0xFF:
		// Group-encoded shift by immediate: ModRM.reg selects the
		// operation, the destination rides in EVEX.vvvv.
		dst, ok := rec.dst.(Register)
		if !ok {
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "shift destination must be a register"}
		}
		src, ok := rec.src1.(Register)
		if !ok {
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "shift source must be a register"}
		}
		reg = ent.group
		vvvv = dst.Encoding
		rm = regRM(src)

	case rec.src3 != nil:
		// Fused multiply-add, 213 form. dst has been validated to alias
		// src1 by the lowering engine.
		dst := rec.dst.(Register)
		s2, ok := rec.src2.(Register)
		if !ok {
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "fused multiplicand must be a register"}
		}
		reg = dst.Encoding
		vvvv = s2.Encoding
		switch s3 := rec.src3.(type) {
		case Register:
			rm = regRM(s3)
		case Memory:
			if rm, err = memRM(s3); err != nil {
				return Inst{}, err
			}
		}

	default:
		dst, ok := rec.dst.(Register)
		if !ok {
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "destination must be a register"}
		}
		if ent.kdst && dst.Class != RegMask {
			return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "compare destination must be a mask register"}
		}
		reg = dst.Encoding
		if rec.src2 == nil {
			// Unary form: the single source doubles as both inputs
			// (ternary-logic NOT, conversions take vvvv=0).
			switch rec.op.Kind {
			case Not:
				switch s := rec.src1.(type) {
				case Register:
					vvvv = s.Encoding
					rm = regRM(s)
				case Memory:
					// an address cannot mirror into vvvv, so it rides in
					// rm alone and the truth table switches to ~C
					vvvv = dst.Encoding
					imm8 = 0x55
					if rm, err = memRM(s); err != nil {
						return Inst{}, err
					}
				default:
					return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "source must be a register or address"}
				}
			default:
				vvvv = 0
				switch s := rec.src1.(type) {
				case Register:
					rm = regRM(s)
				case Memory:
					if rm, err = memRM(s); err != nil {
						return Inst{}, err
					}
				}
			}
		} else {
			s1, ok := rec.src1.(Register)
			if !ok {
				return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "first source must be a register"}
			}
			vvvv = s1.Encoding
			switch s2 := rec.src2.(type) {
			case Register:
				rm = regRM(s2)
			case Memory:
				if rm, err = memRM(s2); err != nil {
					return Inst{}, err
				}
			default:
				return Inst{}, &UnsupportedShapeError{Op: rec.op, Detail: "second source must be a register or address"}
			}
		}
	}

	b := NewBufferWrapper()
	x.evex(b, ent.mm, pp, ent.w, reg, vvvv, rm, rec.physBits, rec.mask, rec.maskZero)
	b.Write(opc)
	if err := x.modrm(b, reg, rm, rec.physBits); err != nil {
		return Inst{}, err
	}
	if imm8 >= 0 {
		b.Write(uint8(imm8))
	} else if rec.imm != nil {
		if !rec.imm.fits(8) {
			return Inst{}, &FieldOverflowError{Field: "imm8", Value: rec.imm.Value, Bits: 8}
		}
		b.Write(uint8(rec.imm.Value))
	}
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}, nil
}

// evex writes the four prefix bytes. All register-extension bits are
// stored inverted.
func (x *x86Encoder) evex(b *BufferWrapper, mm, pp, w, reg, vvvv uint8, rm rmOperand, physBits int, mask Register, z bool) {
	b.Write(0x62)

	p1 := mm & 0x3
	if reg&8 == 0 {
		p1 |= 0x80 // R
	}
	if reg&16 == 0 {
		p1 |= 0x10 // R'
	}
	if rm.isReg {
		if rm.reg&8 == 0 {
			p1 |= 0x20 // B
		}
		if rm.reg&16 == 0 {
			p1 |= 0x40 // X extends the rm register past 15
		}
	} else {
		if rm.base&8 == 0 {
			p1 |= 0x20
		}
		if !rm.hasIndex || rm.index&8 == 0 {
			p1 |= 0x40
		}
	}
	b.Write(p1)

	p2 := pp | 0x04 | (^vvvv&0xF)<<3
	if w == 1 {
		p2 |= 0x80
	}
	b.Write(p2)

	var p3 uint8
	switch physBits {
	case 128:
	case 256:
		p3 |= 0x20
	case 512:
		p3 |= 0x40
	default:
		panic(fmt.Sprintf("BUG: impossible physical width %d", physBits))
	}
	if vvvv&16 == 0 {
		p3 |= 0x08 // V'
	}
	p3 |= mask.Encoding & 0x7 // aaa; k0 means unmasked
	if z {
		p3 |= 0x80
	}
	b.Write(p3)
}

// modrm writes the ModRM byte plus SIB and displacement as the address
// shape demands. Memory displacements compress to a single byte when
// they are an exact multiple of the access width, otherwise they take
// the full 32-bit form.
func (x *x86Encoder) modrm(b *BufferWrapper, reg uint8, rm rmOperand, physBits int) error {
	regBits := (reg & 7) << 3

	if rm.isReg {
		b.Write(0xC0 | regBits | rm.reg&7)
		return nil
	}

	needSIB := rm.hasIndex || rm.base&7 == 4
	rmBits := rm.base & 7
	if needSIB {
		rmBits = 4
	}

	var mod uint8
	var disp8 int8
	n := int32(physBits / 8)
	switch {
	case rm.disp == 0 && rm.base&7 != 5:
		mod = 0x00
	case rm.disp%n == 0 && rm.disp/n >= -128 && rm.disp/n <= 127:
		mod = 0x40
		disp8 = int8(rm.disp / n)
	default:
		mod = 0x80
	}

	b.Write(mod | regBits | rmBits)

	if needSIB {
		var ss uint8
		idx := uint8(4) // no index
		if rm.hasIndex {
			switch rm.scale {
			case 1:
				ss = 0
			case 2:
				ss = 1
			case 4:
				ss = 2
			case 8:
				ss = 3
			default:
				return &FieldOverflowError{Field: "scale", Value: int64(rm.scale), Bits: 2}
			}
			idx = rm.index & 7
		}
		b.Write(ss<<6 | idx<<3 | rm.base&7)
	}

	switch mod {
	case 0x40:
		b.Write(uint8(disp8))
	case 0x80:
		d := uint32(rm.disp)
		b.WriteBytes([]byte{byte(d), byte(d >> 8), byte(d >> 16), byte(d >> 24)})
	}
	return nil
}
