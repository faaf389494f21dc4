package flow

import (
	"strings"

	"github.com/ladderflow/ladderflow/pkg/instr"
)

// Expr is a boolean expression over contact states, built from the ladder
// topology: series contacts combine with AND, parallel branches with OR.
// The tree keeps the real grouping; rendering never flattens mixed
// operators without parentheses.
type Expr interface {
	render(insideAnd bool) string
}

// ContactExpr is a single contact test
type ContactExpr struct {
	Ref     instr.DeviceRef
	Negated bool
}

func (c ContactExpr) render(bool) string {
	if c.Negated {
		return "NOT " + c.Ref.Address()
	}
	return c.Ref.Address()
}

// AndExpr is a series combination
type AndExpr struct {
	Terms []Expr
}

func (a AndExpr) render(bool) string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.render(true)
	}
	return strings.Join(parts, " AND ")
}

// OrExpr is a parallel combination
type OrExpr struct {
	Terms []Expr
}

func (o OrExpr) render(insideAnd bool) string {
	parts := make([]string, len(o.Terms))
	for i, t := range o.Terms {
		parts[i] = t.render(false)
	}
	joined := strings.Join(parts, " OR ")
	if insideAnd {
		return "(" + joined + ")"
	}
	return joined
}

// Render returns the expression summary text
func Render(e Expr) string {
	if e == nil {
		return ""
	}
	return e.render(false)
}

func and(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if left, ok := a.(AndExpr); ok {
		return AndExpr{Terms: append(append([]Expr{}, left.Terms...), b)}
	}
	return AndExpr{Terms: []Expr{a, b}}
}

func or(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if left, ok := a.(OrExpr); ok {
		return OrExpr{Terms: append(append([]Expr{}, left.Terms...), b)}
	}
	return OrExpr{Terms: []Expr{a, b}}
}

// condStack replays the ladder logic stack machine to recover the
// condition feeding a flow instruction. LD/LDI push a new block, AND/ANI
// and OR/ORI fold into the top block, ANB/ORB merge the two top blocks,
// MPS/MRD/MPP manage branch points.
type condStack struct {
	blocks []Expr
	branch []Expr
}

func (s *condStack) push(e Expr) {
	s.blocks = append(s.blocks, e)
}

func (s *condStack) pop() Expr {
	if len(s.blocks) == 0 {
		return nil
	}
	top := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]
	return top
}

func (s *condStack) top() Expr {
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[len(s.blocks)-1]
}

func (s *condStack) setTop(e Expr) {
	if len(s.blocks) == 0 {
		s.blocks = append(s.blocks, e)
		return
	}
	s.blocks[len(s.blocks)-1] = e
}

// apply feeds one instruction into the stack machine. Non-logic
// instructions are ignored.
func (s *condStack) apply(in instr.Instruction) {
	op := in.Opcode
	switch {
	case op.IsContact():
		devs := in.Devices()
		if len(devs) == 0 {
			return
		}
		contact := ContactExpr{Ref: devs[0], Negated: op == instr.OpLDI || op == instr.OpANI || op == instr.OpORI}
		switch op {
		case instr.OpLD, instr.OpLDI:
			s.push(contact)
		case instr.OpAND, instr.OpANI:
			s.setTop(and(s.top(), contact))
		case instr.OpOR, instr.OpORI:
			s.setTop(or(s.top(), contact))
		}
	case op == instr.OpANB:
		b, a := s.pop(), s.pop()
		s.push(and(a, b))
	case op == instr.OpORB:
		b, a := s.pop(), s.pop()
		s.push(or(a, b))
	case op == instr.OpMPS:
		s.branch = append(s.branch, s.top())
	case op == instr.OpMRD:
		if len(s.branch) > 0 {
			s.setTop(s.branch[len(s.branch)-1])
		}
	case op == instr.OpMPP:
		if len(s.branch) > 0 {
			s.setTop(s.branch[len(s.branch)-1])
			s.branch = s.branch[:len(s.branch)-1]
		}
	}
}

// conditionOf recovers the condition expression left on the logic stack
// just before the final instruction of a segment
func conditionOf(instructions []instr.Instruction) Expr {
	s := &condStack{}
	for _, in := range instructions[:len(instructions)-1] {
		s.apply(in)
	}
	return s.top()
}
