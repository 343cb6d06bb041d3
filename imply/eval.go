package imply

import "github.com/go-satpg/satpg/gate"

// evalForward computes kind's ternary output given in, the three-valued
// extension of gate.Eval: a controlling input forces the output even if
// other inputs are X; otherwise any X input makes the output X.
func evalForward(kind gate.Kind, in []Value) Value {
	switch kind {
	case gate.PrimaryInput:
		return in[0]
	case gate.Buf, gate.PrimaryOutput:
		return in[0]
	case gate.Not:
		return in[0].not()
	case gate.And:
		return assocForward(in, Zero, Zero)
	case gate.Nand:
		return assocForward(in, Zero, One)
	case gate.Or:
		return assocForward(in, One, One)
	case gate.Nor:
		return assocForward(in, One, Zero)
	case gate.Xor, gate.Xnor:
		return xorForward(in, kind == gate.Xnor)
	default:
		return X
	}
}

// assocForward evaluates a controlling-value gate: ctrl is the input
// value that alone determines the output (0 for AND/NAND, 1 for OR/NOR);
// ctrlOut is the output when any input equals ctrl (0 for AND, 1 for
// NAND and OR, 0 for NOR), and its complement is the output once every
// input is known and non-controlling.
func assocForward(in []Value, ctrl, ctrlOut Value) Value {
	sawX := false
	for _, v := range in {
		if v == ctrl {
			return ctrlOut
		}
		if v == X {
			sawX = true
		}
	}
	if sawX {
		return X
	}
	return ctrlOut.not()
}

func xorForward(in []Value, negate bool) Value {
	acc := Zero
	for _, v := range in {
		if v == X {
			return X
		}
		if v == One {
			acc = acc.not()
		}
	}
	if negate {
		return acc.not()
	}
	return acc
}

// backwardInput computes the forced value for fanin at index idx given
// the gate's already-known output and the other (possibly X) fanin
// values, or X if the output does not uniquely determine that input.
func backwardInput(kind gate.Kind, out Value, in []Value, idx int) Value {
	if !out.Known() {
		return X
	}
	switch kind {
	case gate.Buf, gate.PrimaryOutput:
		return out
	case gate.Not:
		return out.not()
	case gate.And, gate.Nand, gate.Or, gate.Nor:
		ctrl, _ := kind.ControllingValue()
		ctrlVal := FromBit(ctrl)
		wantOut := out
		if kind == gate.Nand || kind == gate.Nor {
			wantOut = out.not()
		}
		if wantOut == ctrlVal.not() {
			// output is non-controlling: every input must equal the
			// non-controlling value.
			return ctrlVal.not()
		}
		// output equals the controlling value: forced only if every
		// other input is already known non-controlling, leaving idx as
		// the sole remaining unknown that must carry ctrl.
		others := 0
		for i, v := range in {
			if i == idx {
				continue
			}
			if v == ctrlVal {
				// another input already supplies the controlling value;
				// idx is unconstrained.
				return X
			}
			if v != ctrlVal.not() {
				others++
			}
		}
		if others == 0 {
			return ctrlVal
		}
		return X
	default:
		// Xor/Xnor: an input is forced only when every other input is
		// known; it is then the value that gives the output its parity.
		known := 0
		acc := Zero
		for i, v := range in {
			if i == idx {
				continue
			}
			if !v.Known() {
				return X
			}
			known++
			if v == One {
				acc = acc.not()
			}
		}
		want := out
		if kind == gate.Xnor {
			want = out.not()
		}
		if want == One {
			return acc.not()
		}
		return acc
	}
}
