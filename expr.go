// Package gosimplify is a term-rewriting engine that reduces symbolic
// arithmetic expressions to a simplified form.
//
// Expressions are immutable trees built with the constructors in this
// package (C, V, AddOf, MulOf, PowOf, ExpOf, ...). The constructors never
// simplify; Simplify applies the local rewrite rules once, and Normalize
// repeats a bottom-up pass until the tree stops changing.
//
//	e := gosimplify.AddOf(gosimplify.PowF(gosimplify.CosOf(x), 2), gosimplify.PowF(gosimplify.SinOf(x), 2))
//	gosimplify.Simplify(e) // 1
package gosimplify

// ============================================================
// Core Interface
// ============================================================

// Kind identifies an expression variant.
type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindNeg
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
	KindExp
	KindLn
	KindSin
	KindCos
)

var kindNames = [...]string{
	KindConst: "const",
	KindVar:   "var",
	KindNeg:   "neg",
	KindAdd:   "add",
	KindSub:   "sub",
	KindMul:   "mul",
	KindDiv:   "div",
	KindPow:   "pow",
	KindExp:   "exp",
	KindLn:    "ln",
	KindSin:   "sin",
	KindCos:   "cos",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Expr is a node of an expression tree. The set of implementations is
// closed; every node exclusively owns its operands and is never mutated.
type Expr interface {
	Kind() Kind
	// Children returns a fresh slice of the node's operands, left to right.
	Children() []Expr
	// Simplify applies the rewrite rule for this node. Unlike the package
	// function Simplify, the result may share immutable subtrees with the
	// receiver.
	Simplify() Expr
	String() string
	Equal(other Expr) bool

	rebuild(children []Expr) Expr
	precedence() int
}

const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

// ============================================================
// Leaves
// ============================================================

// Const is a numeric literal.
type Const struct{ val Number }

func (c *Const) Kind() Kind            { return KindConst }
func (c *Const) Children() []Expr      { return nil }
func (c *Const) Equal(other Expr) bool { return Equal(c, other) }
func (c *Const) String() string        { return c.val.String() }
func (c *Const) Value() Number         { return c.val }
func (c *Const) rebuild([]Expr) Expr   { return &Const{val: c.val} }

func (c *Const) precedence() int {
	if c.val.IsReal() && c.val.re < 0 {
		return precNeg
	}
	return precAtom
}

// Var is a free variable named by a single character.
type Var struct{ name rune }

func (v *Var) Kind() Kind            { return KindVar }
func (v *Var) Children() []Expr      { return nil }
func (v *Var) Equal(other Expr) bool { return Equal(v, other) }
func (v *Var) String() string        { return string(v.name) }
func (v *Var) Name() rune            { return v.name }
func (v *Var) rebuild([]Expr) Expr   { return &Var{name: v.name} }
func (v *Var) precedence() int       { return precAtom }

// ============================================================
// Unary nodes
// ============================================================

type unary struct{ arg Expr }

// Arg returns the operand.
func (u unary) Arg() Expr        { return u.arg }
func (u unary) Children() []Expr { return []Expr{u.arg} }
func (u unary) precedence() int  { return precAtom }
func (u unary) call(name string) string {
	return name + "(" + u.arg.String() + ")"
}

// Neg is unary negation.
type Neg struct{ unary }

// Exp is the natural exponential e^x.
type Exp struct{ unary }

// Ln is the natural logarithm.
type Ln struct{ unary }

// Sin is the sine function.
type Sin struct{ unary }

// Cos is the cosine function.
type Cos struct{ unary }

func (n *Neg) Kind() Kind { return KindNeg }
func (e *Exp) Kind() Kind { return KindExp }
func (l *Ln) Kind() Kind  { return KindLn }
func (s *Sin) Kind() Kind { return KindSin }
func (c *Cos) Kind() Kind { return KindCos }

func (n *Neg) Equal(other Expr) bool { return Equal(n, other) }
func (e *Exp) Equal(other Expr) bool { return Equal(e, other) }
func (l *Ln) Equal(other Expr) bool  { return Equal(l, other) }
func (s *Sin) Equal(other Expr) bool { return Equal(s, other) }
func (c *Cos) Equal(other Expr) bool { return Equal(c, other) }

func (n *Neg) rebuild(ch []Expr) Expr { return NegOf(ch[0]) }
func (e *Exp) rebuild(ch []Expr) Expr { return ExpOf(ch[0]) }
func (l *Ln) rebuild(ch []Expr) Expr  { return LnOf(ch[0]) }
func (s *Sin) rebuild(ch []Expr) Expr { return SinOf(ch[0]) }
func (c *Cos) rebuild(ch []Expr) Expr { return CosOf(ch[0]) }

func (n *Neg) String() string { return "-" + wrap(n.arg, precNeg, true) }
func (e *Exp) String() string { return e.call("exp") }
func (l *Ln) String() string  { return l.call("ln") }
func (s *Sin) String() string { return s.call("sin") }
func (c *Cos) String() string { return c.call("cos") }

func (n *Neg) precedence() int { return precNeg }

// ============================================================
// Binary nodes
// ============================================================

type binary struct{ left, right Expr }

func (b binary) Left() Expr       { return b.left }
func (b binary) Right() Expr      { return b.right }
func (b binary) Children() []Expr { return []Expr{b.left, b.right} }
func (b binary) infix(op string, prec int) string {
	return wrap(b.left, prec, false) + op + wrap(b.right, prec, true)
}

// Add is l + r.
type Add struct{ binary }

// Sub is l - r.
type Sub struct{ binary }

// Mul is l * r.
type Mul struct{ binary }

// Div is l / r.
type Div struct{ binary }

// Pow is base^exponent.
type Pow struct{ binary }

func (p *Pow) Base() Expr     { return p.left }
func (p *Pow) Exponent() Expr { return p.right }

func (a *Add) Kind() Kind { return KindAdd }
func (s *Sub) Kind() Kind { return KindSub }
func (m *Mul) Kind() Kind { return KindMul }
func (d *Div) Kind() Kind { return KindDiv }
func (p *Pow) Kind() Kind { return KindPow }

func (a *Add) Equal(other Expr) bool { return Equal(a, other) }
func (s *Sub) Equal(other Expr) bool { return Equal(s, other) }
func (m *Mul) Equal(other Expr) bool { return Equal(m, other) }
func (d *Div) Equal(other Expr) bool { return Equal(d, other) }
func (p *Pow) Equal(other Expr) bool { return Equal(p, other) }

func (a *Add) rebuild(ch []Expr) Expr { return AddOf(ch[0], ch[1]) }
func (s *Sub) rebuild(ch []Expr) Expr { return SubOf(ch[0], ch[1]) }
func (m *Mul) rebuild(ch []Expr) Expr { return MulOf(ch[0], ch[1]) }
func (d *Div) rebuild(ch []Expr) Expr { return DivOf(ch[0], ch[1]) }
func (p *Pow) rebuild(ch []Expr) Expr { return PowOf(ch[0], ch[1]) }

func (a *Add) String() string { return a.infix(" + ", precAdd) }
func (s *Sub) String() string { return s.infix(" - ", precAdd) }
func (m *Mul) String() string { return m.infix("*", precMul) }
func (d *Div) String() string { return d.infix("/", precMul) }

// Pow associates to the right, so the base is the side that needs
// parentheses at equal precedence.
func (p *Pow) String() string {
	base := p.left.String()
	if p.left.precedence() <= precPow {
		base = "(" + base + ")"
	}
	exp := p.right.String()
	if p.right.precedence() < precPow {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (a *Add) precedence() int { return precAdd }
func (s *Sub) precedence() int { return precAdd }
func (m *Mul) precedence() int { return precMul }
func (d *Div) precedence() int { return precMul }
func (p *Pow) precedence() int { return precPow }

// wrap parenthesizes child when it binds looser than its parent. The right
// operand of a left-associative operator is also wrapped at equal
// precedence.
func wrap(child Expr, parent int, right bool) string {
	s := child.String()
	p := child.precedence()
	if p < parent || (right && p == parent) {
		return "(" + s + ")"
	}
	return s
}

// ============================================================
// Constructors
// ============================================================

// Constructors build nodes without simplifying them. Operands must be
// non-nil.

func C(x float64) Expr     { return &Const{val: Real(x)} }
func Num(n Number) Expr    { return &Const{val: n} }
func V(name rune) Expr     { return &Var{name: name} }
func Zero() Expr           { return C(0) }
func One() Expr            { return C(1) }
func NaNConst() Expr       { return &Const{val: NaN()} }
func NegOf(arg Expr) Expr  { return &Neg{unary{arg}} }
func ExpOf(arg Expr) Expr  { return &Exp{unary{arg}} }
func LnOf(arg Expr) Expr   { return &Ln{unary{arg}} }
func SinOf(arg Expr) Expr  { return &Sin{unary{arg}} }
func CosOf(arg Expr) Expr  { return &Cos{unary{arg}} }
func AddOf(l, r Expr) Expr { return &Add{binary{l, r}} }
func SubOf(l, r Expr) Expr { return &Sub{binary{l, r}} }
func MulOf(l, r Expr) Expr { return &Mul{binary{l, r}} }
func DivOf(l, r Expr) Expr { return &Div{binary{l, r}} }
func PowOf(b, e Expr) Expr { return &Pow{binary{b, e}} }

// PowF is shorthand for PowOf(base, C(k)).
func PowF(base Expr, k float64) Expr { return PowOf(base, C(k)) }

// ============================================================
// Structural equality
// ============================================================

// Equal reports whether a and b are syntactically identical: same variants,
// same leaf payloads, equal children in order. Constants compare with
// Number.Equal, so NaN constants are equal to each other.
func Equal(a, b Expr) bool {
	type pair struct{ a, b Expr }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Kind() != p.b.Kind() {
			return false
		}
		switch x := p.a.(type) {
		case *Const:
			if !x.val.Equal(p.b.(*Const).val) {
				return false
			}
		case *Var:
			if x.name != p.b.(*Var).name {
				return false
			}
		default:
			ca, cb := p.a.Children(), p.b.Children()
			for i := range ca {
				stack = append(stack, pair{ca[i], cb[i]})
			}
		}
	}
	return true
}

// String renders e in infix notation.
func String(e Expr) string { return e.String() }
