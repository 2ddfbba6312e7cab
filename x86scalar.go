// Completion: 100% - x86_64 scalar helper encodings complete
package vise

import "fmt"

// Scalar (non-vector) encodings used by the emulation sequencer, the
// rounding-mode bracket and the mask reduction synthesizer. These use
// the legacy one-byte-REX form, not the vector prefix.

// condition codes
const (
	ccC  = 0x2 // carry
	ccNC = 0x3
	ccZ  = 0x4 // zero
	ccNZ = 0x5
	ccB  = 0x2 // below (unsigned)
	ccA  = 0x7 // above (unsigned)
	ccAE = 0x3
	ccBE = 0x6
	ccL  = 0xC // less (signed)
	ccGE = 0xD
	ccLE = 0xE
	ccG  = 0xF
	ccE  = 0x4
	ccNE = 0x5
)

func rexByte(w bool, reg, rm uint8) (uint8, bool) {
	var rex uint8 = 0x40
	if w {
		rex |= 0x08
	}
	if reg&8 != 0 {
		rex |= 0x04
	}
	if rm&8 != 0 {
		rex |= 0x01
	}
	return rex, rex != 0x40
}

// scalarMem writes ModRM (plus SIB for an rsp-class base) and the
// displacement for base+disp addressing. The scalar paths never use
// scaled indexes.
func scalarMem(b *BufferWrapper, reg uint8, m Memory) {
	if m.HasIndex {
		panic("BUG: scalar addressing never carries an index")
	}
	base := m.Base.Encoding
	regBits := (reg & 7) << 3
	rmBits := base & 7
	needSIB := rmBits == 4

	var mod uint8
	switch {
	case m.Disp == 0 && rmBits != 5:
		mod = 0x00
	case m.Disp >= -128 && m.Disp <= 127:
		mod = 0x40
	default:
		mod = 0x80
	}
	if needSIB {
		b.Write(mod | regBits | 4)
		b.Write(0x00<<6 | 4<<3 | rmBits)
	} else {
		b.Write(mod | regBits | rmBits)
	}
	switch mod {
	case 0x40:
		b.Write(uint8(int8(m.Disp)))
	case 0x80:
		d := uint32(m.Disp)
		b.WriteBytes([]byte{byte(d), byte(d >> 8), byte(d >> 16), byte(d >> 24)})
	}
}

// loadLane sign- or zero-extends one lane from memory into a 64-bit
// scratch register.
func x86LoadLane(dst Register, m Memory, e ElemType) Inst {
	b := NewBufferWrapper()
	mn := "movzx"
	if e.IsFloat() {
		panic("BUG: float lanes load through the FPU helpers")
	}
	signed := e.IsSigned()
	if signed {
		mn = "movsx"
	}
	rex, _ := rexByte(true, dst.Encoding, m.Base.Encoding)
	switch e.Bits() {
	case 8:
		b.Write(rex)
		b.Write(0x0F)
		if signed {
			b.Write(0xBE)
		} else {
			b.Write(0xB6)
		}
	case 16:
		b.Write(rex)
		b.Write(0x0F)
		if signed {
			b.Write(0xBF)
		} else {
			b.Write(0xB7)
		}
	case 32:
		if signed {
			b.Write(rex)
			b.Write(0x63) // movsxd
			mn = "movsxd"
		} else {
			// 32-bit loads zero the upper half on their own
			if r, need := rexByte(false, dst.Encoding, m.Base.Encoding); need {
				b.Write(r)
			}
			b.Write(0x8B)
			mn = "mov"
		}
	case 64:
		b.Write(rex)
		b.Write(0x8B)
		mn = "mov"
	}
	scalarMem(b, dst.Encoding, m)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// storeLane writes the low lane-sized part of a scratch register back
// to memory.
func x86StoreLane(m Memory, src Register, bits int) Inst {
	b := NewBufferWrapper()
	switch bits {
	case 8:
		if r, need := rexByte(false, src.Encoding, m.Base.Encoding); need {
			b.Write(r)
		}
		b.Write(0x88)
	case 16:
		b.Write(0x66)
		if r, need := rexByte(false, src.Encoding, m.Base.Encoding); need {
			b.Write(r)
		}
		b.Write(0x89)
	case 32:
		if r, need := rexByte(false, src.Encoding, m.Base.Encoding); need {
			b.Write(r)
		}
		b.Write(0x89)
	case 64:
		r, _ := rexByte(true, src.Encoding, m.Base.Encoding)
		b.Write(r)
		b.Write(0x89)
	default:
		panic(fmt.Sprintf("BUG: impossible lane store width %d", bits))
	}
	scalarMem(b, src.Encoding, m)
	return Inst{Mnemonic: "mov", Bytes: b.Bytes()}
}

// x86ALU emits a 64-bit reg-reg ALU operation of the 0x03-class
// (reg = reg OP rm) encodings.
func x86ALU(mn string, opc uint8, dst, src Register) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, dst.Encoding, src.Encoding)
	b.Write(r)
	b.Write(opc)
	b.Write(0xC0 | (dst.Encoding&7)<<3 | src.Encoding&7)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

func x86Add(dst, src Register) Inst { return x86ALU("add", 0x03, dst, src) }
func x86Sub(dst, src Register) Inst { return x86ALU("sub", 0x2B, dst, src) }
func x86And(dst, src Register) Inst { return x86ALU("and", 0x23, dst, src) }
func x86Or(dst, src Register) Inst  { return x86ALU("or", 0x0B, dst, src) }
func x86Xor(dst, src Register) Inst { return x86ALU("xor", 0x33, dst, src) }
func x86Cmp(dst, src Register) Inst { return x86ALU("cmp", 0x3B, dst, src) }

func x86IMul(dst, src Register) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, dst.Encoding, src.Encoding)
	b.Write(r)
	b.Write(0x0F)
	b.Write(0xAF)
	b.Write(0xC0 | (dst.Encoding&7)<<3 | src.Encoding&7)
	return Inst{Mnemonic: "imul", Bytes: b.Bytes()}
}

// x86MovImm64 materializes a full 64-bit constant.
func x86MovImm64(dst Register, v int64) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, 0, dst.Encoding)
	b.Write(r)
	b.Write(0xB8 + dst.Encoding&7)
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b.Write(byte(u >> (8 * i)))
	}
	return Inst{Mnemonic: "mov", Bytes: b.Bytes()}
}

func x86CMov(mn string, cc uint8, dst, src Register) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, dst.Encoding, src.Encoding)
	b.Write(r)
	b.Write(0x0F)
	b.Write(0x40 | cc)
	b.Write(0xC0 | (dst.Encoding&7)<<3 | src.Encoding&7)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

func x86SetCC(mn string, cc uint8, dst Register) Inst {
	b := NewBufferWrapper()
	if r, need := rexByte(false, 0, dst.Encoding); need {
		b.Write(r)
	}
	b.Write(0x0F)
	b.Write(0x90 | cc)
	b.Write(0xC0 | dst.Encoding&7)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// x86ShiftCL shifts a 64-bit register by CL. group: 4 = shl, 5 = shr,
// 7 = sar.
func x86ShiftCL(mn string, group uint8, dst Register) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, 0, dst.Encoding)
	b.Write(r)
	b.Write(0xD3)
	b.Write(0xC0 | group<<3 | dst.Encoding&7)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// x86ShiftImm shifts a 64-bit register by a fixed count.
func x86ShiftImm(mn string, group uint8, dst Register, count uint8) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, 0, dst.Encoding)
	b.Write(r)
	b.Write(0xC1)
	b.Write(0xC0 | group<<3 | dst.Encoding&7)
	b.Write(count)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// x86ALUImm32 applies a sign-extended 32-bit immediate ALU operation.
// group: 0 = add, 1 = or, 4 = and, 5 = sub, 7 = cmp.
func x86ALUImm32(mn string, group uint8, dst Register, imm int32, wide bool) Inst {
	b := NewBufferWrapper()
	if r, need := rexByte(wide, 0, dst.Encoding); need {
		b.Write(r)
	}
	b.Write(0x81)
	b.Write(0xC0 | group<<3 | dst.Encoding&7)
	u := uint32(imm)
	b.WriteBytes([]byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)})
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

func x86CQO() Inst {
	return Inst{Mnemonic: "cqo", Bytes: []byte{0x48, 0x99}}
}

// x86Div divides RDX:RAX by rm; quotient lands in RAX. group 7 is the
// signed form, 6 unsigned.
func x86Div(mn string, group uint8, rm Register) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, 0, rm.Encoding)
	b.Write(r)
	b.Write(0xF7)
	b.Write(0xC0 | group<<3 | rm.Encoding&7)
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// x86BTImm tests one bit of a 64-bit register into the carry flag.
func x86BTImm(src Register, bit uint8) Inst {
	b := NewBufferWrapper()
	r, _ := rexByte(true, 0, src.Encoding)
	b.Write(r)
	b.Write(0x0F)
	b.Write(0xBA)
	b.Write(0xC0 | 4<<3 | src.Encoding&7)
	b.Write(bit)
	return Inst{Mnemonic: "bt", Bytes: b.Bytes()}
}

// vex3 writes the three-byte vector prefix used by the mask-register
// instructions.
func vex3(b *BufferWrapper, mm, w, vvvv, l, pp uint8) {
	b.Write(0xC4)
	b.Write(0xE0 | mm) // R, X, B inverted and clear of extensions
	b.Write(w<<7 | (^vvvv&0xF)<<3 | l<<2 | pp)
}

// maskWidthBits picks the mask instruction width covering the lane
// count. 8 and 16 are the base forms; 32 and 64 need CapWideMask.
func maskWidthBits(lanes int) int {
	switch {
	case lanes <= 8:
		return 8
	case lanes <= 16:
		return 16
	case lanes <= 32:
		return 32
	default:
		return 64
	}
}

func maskFormWPP(bits int) (w, pp uint8, suffix string) {
	switch bits {
	case 8:
		return 0, 1, "b"
	case 16:
		return 0, 0, "w"
	case 32:
		return 1, 1, "d"
	default:
		return 1, 0, "q"
	}
}

// x86KOrTest ORs two mask registers and sets ZF (all-zero) and CF
// (all-ones) for the following branch.
func x86KOrTest(k1, k2 Register, bits int) Inst {
	w, pp, sfx := maskFormWPP(bits)
	b := NewBufferWrapper()
	vex3(b, 1, w, 0, 0, pp)
	b.Write(0x98)
	b.Write(0xC0 | (k1.Encoding&7)<<3 | k2.Encoding&7)
	return Inst{Mnemonic: "kortest" + sfx, Bytes: b.Bytes()}
}

// x86KMovFromGPR moves a scalar bitmask into a mask register.
func x86KMovFromGPR(k, src Register, bits int) Inst {
	w, pp, sfx := maskFormWPP(bits)
	// the 64-bit GPR form uses pp=F2 with W selecting 32/64
	if bits == 32 {
		w, pp = 0, 3
	} else if bits == 64 {
		w, pp = 1, 3
	}
	b := NewBufferWrapper()
	vex3(b, 1, w, 0, 0, pp)
	b.Write(0x92)
	b.Write(0xC0 | (k.Encoding&7)<<3 | src.Encoding&7)
	return Inst{Mnemonic: "kmov" + sfx, Bytes: b.Bytes()}
}

// x86KMovToGPR moves a mask register out to a scalar bitmask.
func x86KMovToGPR(dst, k Register, bits int) Inst {
	w, pp, sfx := maskFormWPP(bits)
	if bits == 32 {
		w, pp = 0, 3
	} else if bits == 64 {
		w, pp = 1, 3
	}
	b := NewBufferWrapper()
	vex3(b, 1, w, 0, 0, pp)
	b.Write(0x93)
	b.Write(0xC0 | (dst.Encoding&7)<<3 | k.Encoding&7)
	return Inst{Mnemonic: "kmov" + sfx, Bytes: b.Bytes()}
}

// x86Jcc emits a near conditional branch with a 32-bit displacement.
func x86Jcc(mn string, cc uint8, disp int32) Inst {
	b := NewBufferWrapper()
	b.Write(0x0F)
	b.Write(0x80 | cc)
	u := uint32(disp)
	b.WriteBytes([]byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)})
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}

// x86StMXCSR / x86LdMXCSR save and restore the floating-point control
// word around a bracketed conversion.
func x86StMXCSR(m Memory) Inst {
	b := NewBufferWrapper()
	b.Write(0x0F)
	b.Write(0xAE)
	scalarMem(b, 3, m)
	return Inst{Mnemonic: "stmxcsr", Bytes: b.Bytes()}
}

func x86LdMXCSR(m Memory) Inst {
	b := NewBufferWrapper()
	b.Write(0x0F)
	b.Write(0xAE)
	scalarMem(b, 2, m)
	return Inst{Mnemonic: "ldmxcsr", Bytes: b.Bytes()}
}

// x86Broadcast splats a general register across every lane of a vector
// register. Element width follows the operation's lane type.
func (x *x86Encoder) broadcast(dst Register, src Register, e ElemType, physBits int) Inst {
	var w uint8
	if e.Bits() == 64 {
		w = 1
	}
	b := NewBufferWrapper()
	x.evex(b, mm0F38, pp66, w, dst.Encoding, 0, regRM(src), physBits, Register{}, false)
	b.Write(0x7C)
	b.Write(0xC0 | (dst.Encoding&7)<<3 | src.Encoding&7)
	mn := "vpbroadcastd"
	if w == 1 {
		mn = "vpbroadcastq"
	}
	return Inst{Mnemonic: mn, Bytes: b.Bytes()}
}
