package cnf

import (
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/sat"
)

// emitGateClauses clauses out <-> kind(ins) onto s, one gate's full truth
// table (spec §4.D "make_node_cnf"/"make_fault_cnf" share this encoder;
// the only difference between the two calls is which plane's variables
// the caller passed as ins/out).
func emitGateClauses(s clauseSink, kind gate.Kind, out sat.Literal, ins []sat.Literal) error {
	switch kind {
	case gate.Buf, gate.PrimaryOutput:
		return emitBuf(s, out, ins[0])
	case gate.Not:
		return emitNot(s, out, ins[0])
	case gate.And:
		return emitAndOr(s, out, ins, true, false)
	case gate.Nand:
		return emitAndOr(s, out, ins, true, true)
	case gate.Or:
		return emitAndOr(s, out, ins, false, false)
	case gate.Nor:
		return emitAndOr(s, out, ins, false, true)
	case gate.Xor:
		return emitXorChain(s, out, ins, false)
	case gate.Xnor:
		return emitXorChain(s, out, ins, true)
	default:
		return ErrUnsupportedArity
	}
}

// emitBuf clauses out <-> in: (-out, in), (out, -in).
func emitBuf(s clauseSink, out, in sat.Literal) error {
	if err := s.AddClause(out.Negate(), in); err != nil {
		return err
	}
	return s.AddClause(out, in.Negate())
}

// emitNot clauses out <-> -in: (-out, -in), (out, in).
func emitNot(s clauseSink, out, in sat.Literal) error {
	if err := s.AddClause(out.Negate(), in.Negate()); err != nil {
		return err
	}
	return s.AddClause(out, in)
}

// emitAndOr clauses out <-> AND(ins) or out <-> OR(ins), optionally
// negating out's defining equation to get NAND/NOR (nand is true for
// either Nand or Nor, meaning "negate the base gate's output polarity").
//
// AND: for each i, (-out, in_i); plus (out, -in_1, ..., -in_n).
// OR:  for each i, (out, -in_i); plus (-out, in_1, ..., in_n).
// NAND/NOR swap out's two clause shapes (invert the role of out/-out).
func emitAndOr(s clauseSink, out sat.Literal, ins []sat.Literal, isAnd, nand bool) error {
	o := out
	if nand {
		o = out.Negate()
	}
	if isAnd {
		for _, in := range ins {
			if err := s.AddClause(o.Negate(), in); err != nil {
				return err
			}
		}
		wide := make([]sat.Literal, 0, len(ins)+1)
		wide = append(wide, o)
		for _, in := range ins {
			wide = append(wide, in.Negate())
		}
		return s.AddClause(wide...)
	}
	for _, in := range ins {
		if err := s.AddClause(o, in.Negate()); err != nil {
			return err
		}
	}
	wide := make([]sat.Literal, 0, len(ins)+1)
	wide = append(wide, o.Negate())
	wide = append(wide, ins...)
	return s.AddClause(wide...)
}

// emitXor2 clauses out <-> (a XOR b), the base case emitXorChain folds
// over for n > 2 inputs and makeDChainCNF reuses directly for d = good
// XOR faulty.
func emitXor2(s clauseSink, out, a, b sat.Literal) error {
	if err := s.AddClause(out.Negate(), a.Negate(), b.Negate()); err != nil {
		return err
	}
	if err := s.AddClause(out.Negate(), a, b); err != nil {
		return err
	}
	if err := s.AddClause(out, a.Negate(), b); err != nil {
		return err
	}
	return s.AddClause(out, a, b.Negate())
}

// emitXorChain clauses out <-> XOR(ins) (or its negation for XNOR) by
// folding emitXor2 left to right through fresh auxiliary variables for
// arity > 2.
func emitXorChain(s clauseSink, out sat.Literal, ins []sat.Literal, negate bool) error {
	if len(ins) == 2 {
		if !negate {
			return emitXor2(s, out, ins[0], ins[1])
		}
		aux := freshAux(s)
		if err := emitXor2(s, aux, ins[0], ins[1]); err != nil {
			return err
		}
		return emitNot(s, out, aux)
	}
	acc := ins[0]
	for i := 1; i < len(ins)-1; i++ {
		aux := freshAux(s)
		if err := emitXor2(s, aux, acc, ins[i]); err != nil {
			return err
		}
		acc = aux
	}
	last := ins[len(ins)-1]
	if !negate {
		return emitXor2(s, out, acc, last)
	}
	aux := freshAux(s)
	if err := emitXor2(s, aux, acc, last); err != nil {
		return err
	}
	return emitNot(s, out, aux)
}

func freshAux(s clauseSink) sat.Literal {
	return sat.Lit(s.NewVar(), true)
}
