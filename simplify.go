package gosimplify

// ============================================================
// Simplify — one pass of local rewrite rules
// ============================================================

// Simplify returns a simplified copy of e. The input is never modified and
// the result shares no nodes with it.
//
// Each variant applies its own rule. Most rules simplify their operands
// first; Mul, Div and Pow inspect their raw operands, and Exp leaves its
// argument untouched. Simplify is not idempotent: a second call may fold
// what the first one produced (x*x^2 becomes x^(2 + 1), then x^3). Use
// Normalize to iterate to a fixed point.
func Simplify(e Expr) Expr { return Clone(e).Simplify() }

func (c *Const) Simplify() Expr { return c }
func (v *Var) Simplify() Expr   { return v }
func (l *Ln) Simplify() Expr    { return l }
func (s *Sin) Simplify() Expr   { return s }
func (c *Cos) Simplify() Expr   { return c }

func (n *Neg) Simplify() Expr { return NegOf(n.arg.Simplify()) }

// exp(ln(a)) cancels to a as given.
func (e *Exp) Simplify() Expr {
	if ln, ok := e.arg.(*Ln); ok {
		return ln.arg
	}
	return ExpOf(e.arg)
}

func (a *Add) Simplify() Expr {
	left := a.left.Simplify()
	right := a.right.Simplify()

	lc, lok := left.(*Const)
	rc, rok := right.(*Const)
	switch {
	case lok && rok:
		return Num(lc.val.Add(rc.val))
	case lok:
		if lc.val.IsZero() {
			return right.Simplify()
		}
		return AddOf(lc, right.Simplify())
	case rok:
		if rc.val.IsZero() {
			return left.Simplify()
		}
		return AddOf(rc, left.Simplify())
	}

	if lp, ok := left.(*Pow); ok {
		if rp, ok := right.(*Pow); ok {
			return pythagorean(lp, rp)
		}
	}
	return AddOf(left, right)
}

// pythagorean folds cos(a)^2 + sin(a)^2 in either order to 1. Anything
// else is rebuilt from the same bases and exponents.
func pythagorean(l, r *Pow) Expr {
	two := C(2)
	if l.right.Equal(two) && r.right.Equal(two) {
		if c, ok := l.left.(*Cos); ok {
			if s, ok := r.left.(*Sin); ok && c.arg.Equal(s.arg) {
				return One()
			}
		}
		if s, ok := l.left.(*Sin); ok {
			if c, ok := r.left.(*Cos); ok && s.arg.Equal(c.arg) {
				return One()
			}
		}
	}
	return AddOf(PowOf(l.left, l.right), PowOf(r.left, r.right))
}

func (s *Sub) Simplify() Expr {
	left := s.left.Simplify()
	right := s.right.Simplify()

	lc, lok := left.(*Const)
	rc, rok := right.(*Const)
	switch {
	case lok && rok:
		return Num(lc.val.Sub(rc.val))
	case lok:
		if lc.val.IsZero() {
			return NegOf(right.Simplify())
		}
		return SubOf(lc, right.Simplify())
	case rok:
		if rc.val.IsZero() {
			return left.Simplify()
		}
		return SubOf(left.Simplify(), rc)
	}

	// a - (-x) = a + x
	if n, ok := right.(*Neg); ok {
		return AddOf(left.Simplify(), n.arg.Simplify()).Simplify()
	}
	return SubOf(left.Simplify(), right.Simplify())
}

// Mul matches on its operands as given; only the branches that rebuild
// around a single operand simplify it.
func (m *Mul) Simplify() Expr {
	left, right := m.left, m.right

	lc, lok := left.(*Const)
	rc, rok := right.(*Const)
	switch {
	case lok && rok:
		return Num(lc.val.Mul(rc.val))
	case lok:
		return scale(lc, right)
	case rok:
		return scale(rc, left)
	}

	if n, ok := right.(*Neg); ok {
		if left.Equal(n.arg) {
			return NegOf(PowF(left, 2))
		}
		return MulOf(left, right)
	}
	if n, ok := left.(*Neg); ok {
		if n.arg.Equal(right) {
			return NegOf(PowF(n.arg, 2))
		}
		return MulOf(left, right)
	}

	if lv, ok := left.(*Var); ok {
		if rv, ok := right.(*Var); ok {
			if lv.name == rv.name {
				return PowF(lv, 2)
			}
			return MulOf(lv, rv)
		}
	}

	// x * x^p = x^(p + 1)
	if p, ok := right.(*Pow); ok {
		if left.Equal(p.left) {
			return PowOf(left, AddOf(p.right, One()))
		}
		return MulOf(left, PowOf(p.left, p.right))
	}
	if p, ok := left.(*Pow); ok {
		if p.left.Equal(right) {
			return PowOf(right, AddOf(p.right, One()))
		}
		return MulOf(right, PowOf(p.left, p.right))
	}

	if left.Equal(right) {
		return PowF(left, 2)
	}
	return MulOf(left.Simplify(), right.Simplify())
}

// scale applies c * b with the constant already isolated.
func scale(c *Const, b Expr) Expr {
	switch {
	case c.val.IsZero():
		return Zero()
	case c.val.RealEq(1):
		return b.Simplify()
	case c.val.RealEq(-1):
		return NegOf(b.Simplify())
	}
	return MulOf(c, b.Simplify())
}

// Division by the constant zero yields a NaN constant.
func (d *Div) Simplify() Expr {
	if c, ok := d.right.(*Const); ok {
		switch {
		case c.val.RealEq(1):
			return d.left.Simplify()
		case c.val.RealEq(0):
			return NaNConst()
		}
		return DivOf(d.left.Simplify(), c)
	}
	return DivOf(d.left.Simplify(), d.right.Simplify())
}

func (p *Pow) Simplify() Expr {
	bc, bok := p.left.(*Const)
	ec, eok := p.right.(*Const)
	switch {
	case bok && eok:
		return Num(bc.val.Pow(ec.val))
	case eok:
		if ec.val.RealEq(1) {
			return p.left.Simplify()
		}
		return PowOf(p.left.Simplify(), ec)
	}
	return PowOf(p.left.Simplify(), p.right.Simplify())
}
