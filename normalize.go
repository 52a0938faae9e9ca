package gosimplify

// ============================================================
// Normalize — bottom-up simplification to a fixed point
// ============================================================

// DefaultMaxPasses bounds Normalize.
const DefaultMaxPasses = 16

// Normalize simplifies every node after its operands, including the
// operands Simplify leaves alone (Mul, Div, Pow and Exp arguments), and
// repeats until the tree stops changing.
func Normalize(e Expr) Expr {
	out, _ := NormalizePasses(e, DefaultMaxPasses)
	return out
}

// NormalizePasses is Normalize with an explicit pass limit. It returns the
// result and the number of passes run; the last pass is the one that
// observed no change unless the limit was hit first. maxPasses < 1 means
// DefaultMaxPasses.
func NormalizePasses(e Expr, maxPasses int) (Expr, int) {
	if maxPasses < 1 {
		maxPasses = DefaultMaxPasses
	}
	cur := Clone(e)
	for pass := 1; pass <= maxPasses; pass++ {
		next := normalizeOnce(cur)
		if Equal(next, cur) {
			return next, pass
		}
		cur = next
	}
	return cur, maxPasses
}

func normalizeOnce(e Expr) Expr {
	return PostOrder(e, func(node Expr, children []Expr) Expr {
		return node.rebuild(children).Simplify()
	})
}
