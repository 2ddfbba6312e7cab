// Completion: 100% - Rounding-mode bracketing complete
package vise

// Explicit rounding modes on float-to-int conversion. Truncation has a
// dedicated instruction on both families and never reaches this file;
// the other modes bracket the conversion between a save and a restore
// of the floating-point control register.

// mxcsrRC is the two-bit rounding control field (bits 13-14).
func mxcsrRC(m RoundMode) int32 {
	switch m {
	case RoundDown:
		return 1
	case RoundUp:
		return 2
	case RoundTrunc:
		return 3
	default:
		return 0 // nearest
	}
}

// msacsrRM is the two-bit rounding mode field (bits 0-1).
func msacsrRM(m RoundMode) int32 {
	switch m {
	case RoundTrunc:
		return 1
	case RoundUp:
		return 2
	case RoundDown:
		return 3
	default:
		return 0 // nearest
	}
}

func (e *Engine) lowerBracketed(op VectorOp, args Args) (*Plan, error) {
	if e.scratch == nil {
		return nil, &UnsupportedShapeError{Op: op, Detail: "rounding bracket requires a scratch region"}
	}

	inner := op
	inner.Round = RoundDefault
	plan := &Plan{Op: op}

	switch e.prof.arch {
	case ArchX86_64:
		if e.scratch.A.Size < 8 {
			return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region A too small for the control word"}
		}
		rax := e.prof.scratchGPR()
		saved := e.scratch.A.Mem(0)
		updated := e.scratch.A.Mem(4)

		plan.add(x86StMXCSR(saved))
		plan.add(x86LoadLane(rax, saved, U32))
		plan.add(x86ALUImm32("and", 4, rax, ^int32(3<<13), false))
		if rc := mxcsrRC(op.Round); rc != 0 {
			plan.add(x86ALUImm32("or", 1, rax, rc<<13, false))
		}
		plan.add(x86StoreLane(updated, rax, 32))
		plan.add(x86LdMXCSR(updated))

		if err := e.lowerNative(plan, inner, args); err != nil {
			return nil, err
		}

		plan.add(x86LdMXCSR(saved))
		plan.clobber(rax)

	case ArchMIPS64:
		t8 := e.prof.scratchGPR()
		t9 := e.prof.scratchGPR2()
		zero, _ := GetRegister(ArchMIPS64, "zero")

		plan.add(msaCFC(t8, 1))
		plan.add(mipsADDIU(t9, zero, -4))
		plan.add(mipsAND(t9, t8, t9))
		if rm := msacsrRM(op.Round); rm != 0 {
			plan.add(mipsORI(t9, t9, rm))
		}
		plan.add(msaCTC(1, t9))

		if err := e.lowerNative(plan, inner, args); err != nil {
			return nil, err
		}

		plan.add(msaCTC(1, t8))
		plan.clobber(t8, t9)
	}

	plan.Strategy = StrategyEmulated
	return plan, nil
}
