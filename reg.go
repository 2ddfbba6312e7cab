// Completion: 100% - Utility module complete
package vise

import "fmt"

// Register definitions for the supported architectures

// x86_64 registers
var x86_64Registers = map[string]Register{
	// 64-bit general purpose registers
	"rax": {Name: "rax", Size: 64, Encoding: 0, Class: RegGPR},
	"rcx": {Name: "rcx", Size: 64, Encoding: 1, Class: RegGPR},
	"rdx": {Name: "rdx", Size: 64, Encoding: 2, Class: RegGPR},
	"rbx": {Name: "rbx", Size: 64, Encoding: 3, Class: RegGPR},
	"rsp": {Name: "rsp", Size: 64, Encoding: 4, Class: RegGPR},
	"rbp": {Name: "rbp", Size: 64, Encoding: 5, Class: RegGPR},
	"rsi": {Name: "rsi", Size: 64, Encoding: 6, Class: RegGPR},
	"rdi": {Name: "rdi", Size: 64, Encoding: 7, Class: RegGPR},
	"r8":  {Name: "r8", Size: 64, Encoding: 8, Class: RegGPR},
	"r9":  {Name: "r9", Size: 64, Encoding: 9, Class: RegGPR},
	"r10": {Name: "r10", Size: 64, Encoding: 10, Class: RegGPR},
	"r11": {Name: "r11", Size: 64, Encoding: 11, Class: RegGPR},
	"r12": {Name: "r12", Size: 64, Encoding: 12, Class: RegGPR},
	"r13": {Name: "r13", Size: 64, Encoding: 13, Class: RegGPR},
	"r14": {Name: "r14", Size: 64, Encoding: 14, Class: RegGPR},
	"r15": {Name: "r15", Size: 64, Encoding: 15, Class: RegGPR},

	// AVX-512 mask registers (k0 is the all-ones no-op predicate)
	"k0": {Name: "k0", Size: 64, Encoding: 0, Class: RegMask},
	"k1": {Name: "k1", Size: 64, Encoding: 1, Class: RegMask},
	"k2": {Name: "k2", Size: 64, Encoding: 2, Class: RegMask},
	"k3": {Name: "k3", Size: 64, Encoding: 3, Class: RegMask},
	"k4": {Name: "k4", Size: 64, Encoding: 4, Class: RegMask},
	"k5": {Name: "k5", Size: 64, Encoding: 5, Class: RegMask},
	"k6": {Name: "k6", Size: 64, Encoding: 6, Class: RegMask},
	"k7": {Name: "k7", Size: 64, Encoding: 7, Class: RegMask},
}

// mips64 registers (o64 ABI names plus the MSA vector file)
var mips64Registers = map[string]Register{
	"zero": {Name: "zero", Size: 64, Encoding: 0, Class: RegGPR},
	"at":   {Name: "at", Size: 64, Encoding: 1, Class: RegGPR},
	"v0":   {Name: "v0", Size: 64, Encoding: 2, Class: RegGPR},
	"v1":   {Name: "v1", Size: 64, Encoding: 3, Class: RegGPR},
	"a0":   {Name: "a0", Size: 64, Encoding: 4, Class: RegGPR},
	"a1":   {Name: "a1", Size: 64, Encoding: 5, Class: RegGPR},
	"a2":   {Name: "a2", Size: 64, Encoding: 6, Class: RegGPR},
	"a3":   {Name: "a3", Size: 64, Encoding: 7, Class: RegGPR},
	"t0":   {Name: "t0", Size: 64, Encoding: 8, Class: RegGPR},
	"t1":   {Name: "t1", Size: 64, Encoding: 9, Class: RegGPR},
	"t2":   {Name: "t2", Size: 64, Encoding: 10, Class: RegGPR},
	"t3":   {Name: "t3", Size: 64, Encoding: 11, Class: RegGPR},
	"t4":   {Name: "t4", Size: 64, Encoding: 12, Class: RegGPR},
	"t5":   {Name: "t5", Size: 64, Encoding: 13, Class: RegGPR},
	"t6":   {Name: "t6", Size: 64, Encoding: 14, Class: RegGPR},
	"t7":   {Name: "t7", Size: 64, Encoding: 15, Class: RegGPR},
	"s0":   {Name: "s0", Size: 64, Encoding: 16, Class: RegGPR},
	"s1":   {Name: "s1", Size: 64, Encoding: 17, Class: RegGPR},
	"s2":   {Name: "s2", Size: 64, Encoding: 18, Class: RegGPR},
	"s3":   {Name: "s3", Size: 64, Encoding: 19, Class: RegGPR},
	"s4":   {Name: "s4", Size: 64, Encoding: 20, Class: RegGPR},
	"s5":   {Name: "s5", Size: 64, Encoding: 21, Class: RegGPR},
	"s6":   {Name: "s6", Size: 64, Encoding: 22, Class: RegGPR},
	"s7":   {Name: "s7", Size: 64, Encoding: 23, Class: RegGPR},
	"t8":   {Name: "t8", Size: 64, Encoding: 24, Class: RegGPR},
	"t9":   {Name: "t9", Size: 64, Encoding: 25, Class: RegGPR},
	"gp":   {Name: "gp", Size: 64, Encoding: 28, Class: RegGPR},
	"sp":   {Name: "sp", Size: 64, Encoding: 29, Class: RegGPR},
	"fp":   {Name: "fp", Size: 64, Encoding: 30, Class: RegGPR},
	"ra":   {Name: "ra", Size: 64, Encoding: 31, Class: RegGPR},
}

func init() {
	// AVX-512 ZMM registers (512-bit), YMM (256-bit), XMM (128-bit).
	// All three views share encodings 0-31; the operand width selects
	// the EVEX vector length bits.
	for i := 0; i < 32; i++ {
		x86_64Registers[fmt.Sprintf("zmm%d", i)] = Register{Name: fmt.Sprintf("zmm%d", i), Size: 512, Encoding: uint8(i), Class: RegVector}
		x86_64Registers[fmt.Sprintf("ymm%d", i)] = Register{Name: fmt.Sprintf("ymm%d", i), Size: 256, Encoding: uint8(i), Class: RegVector}
		x86_64Registers[fmt.Sprintf("xmm%d", i)] = Register{Name: fmt.Sprintf("xmm%d", i), Size: 128, Encoding: uint8(i), Class: RegVector}
	}

	// MSA vector registers (128-bit w0-w31, aliasing the FPU file)
	// and the scalar FPU registers used by emulated float lanes.
	for i := 0; i < 32; i++ {
		mips64Registers[fmt.Sprintf("w%d", i)] = Register{Name: fmt.Sprintf("w%d", i), Size: 128, Encoding: uint8(i), Class: RegVector}
		mips64Registers[fmt.Sprintf("f%d", i)] = Register{Name: fmt.Sprintf("f%d", i), Size: 64, Encoding: uint8(i), Class: RegFloat}
	}
}

// GetRegister returns register info for the given architecture and name
func GetRegister(arch Arch, regName string) (Register, bool) {
	switch arch {
	case ArchX86_64:
		reg, ok := x86_64Registers[regName]
		return reg, ok
	case ArchMIPS64:
		reg, ok := mips64Registers[regName]
		return reg, ok
	default:
		return Register{}, false
	}
}

// IsRegister checks if a string is a valid register name for the architecture
func IsRegister(arch Arch, name string) bool {
	_, ok := GetRegister(arch, name)
	return ok
}

// VectorRegister returns the n-th vector register at the given width.
// On x86_64 the width picks the zmm/ymm/xmm view of the same encoding;
// on mips64 only the 128-bit w view exists.
func VectorRegister(arch Arch, n int, widthBits int) (Register, bool) {
	switch arch {
	case ArchX86_64:
		var prefix string
		switch widthBits {
		case 512:
			prefix = "zmm"
		case 256:
			prefix = "ymm"
		case 128:
			prefix = "xmm"
		default:
			return Register{}, false
		}
		return GetRegister(arch, fmt.Sprintf("%s%d", prefix, n))
	case ArchMIPS64:
		if widthBits != 128 {
			return Register{}, false
		}
		return GetRegister(arch, fmt.Sprintf("w%d", n))
	default:
		return Register{}, false
	}
}

// sliceRegister returns the physical register holding slice i of a wide
// logical vector operand. Wide logical operands span consecutive encodings
// starting at the named register, low slice first.
func sliceRegister(arch Arch, base Register, i int, widthBits int) (Register, error) {
	if i == 0 && base.Size == widthBits {
		return base, nil
	}
	n := int(base.Encoding) + i
	if n > 31 {
		return Register{}, &FieldOverflowError{Field: "register", Value: int64(n), Bits: 5}
	}
	r, ok := VectorRegister(arch, n, widthBits)
	if !ok {
		return Register{}, &FieldOverflowError{Field: "register", Value: int64(n), Bits: 5}
	}
	return r, nil
}
