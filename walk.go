package gosimplify

// ============================================================
// Traversal
// ============================================================

// The helpers below use explicit stacks so that arbitrarily deep trees do
// not grow the goroutine stack.

// Walk visits e and its descendants in pre-order. If fn returns false the
// node's children are skipped.
func Walk(e Expr, fn func(node Expr, depth int) bool) {
	type item struct {
		node  Expr
		depth int
	}
	stack := []item{{e, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		ch := it.node.Children()
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, item{ch[i], it.depth + 1})
		}
	}
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func Depth(e Expr) int {
	deepest := 0
	Walk(e, func(_ Expr, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// Size returns the number of nodes in e.
func Size(e Expr) int {
	n := 0
	Walk(e, func(Expr, int) bool {
		n++
		return true
	})
	return n
}

// Clone returns a deep copy of e.
func Clone(e Expr) Expr {
	return PostOrder(e, func(node Expr, children []Expr) Expr {
		return node.rebuild(children)
	})
}

// PostOrder rebuilds e bottom-up. fn receives each original node together
// with the already transformed children and returns its replacement.
func PostOrder(e Expr, fn func(node Expr, children []Expr) Expr) Expr {
	type frame struct {
		node Expr
		kids []Expr
		out  []Expr
	}
	stack := []*frame{{node: e, kids: e.Children()}}
	var result Expr
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if len(top.out) < len(top.kids) {
			child := top.kids[len(top.out)]
			stack = append(stack, &frame{node: child, kids: child.Children()})
			continue
		}
		stack = stack[:len(stack)-1]
		result = fn(top.node, top.out)
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.out = append(parent.out, result)
		}
	}
	return result
}
