package script

import (
	"fmt"
	"math/big"
	"math/bits"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// The step counter does not see work done inside builtins and operators, so
// fragments are checked before they run. In an admitted fragment every value
// has a size bounded by a constant or grows by a constant per step:
// containers hold plain values only, strings are built from literals and
// formatted ints, ints are at most maxIntBits wide or accumulate values that
// are.

const (
	// maxRepeat bounds the length of a sequence built with *.
	maxRepeat = 256
	// maxIntBits bounds the width of ints that may be multiplied or shifted.
	maxIntBits = 256
	// maxConvertedBits bounds the result of int().
	maxConvertedBits = 64
	// unbounded is the width of an int with no static bound.
	unbounded = maxIntBits + 1
)

var allowedBuiltins = map[string]bool{
	"None": true, "True": true, "False": true,
	"abs": true, "bool": true, "fail": true, "int": true, "len": true,
	"print": true, "range": true, "str": true, "type": true,
}

var allowedMethods = map[string]bool{
	"append": true, "clear": true, "endswith": true, "get": true,
	"index": true, "insert": true, "keys": true, "lower": true,
	"pop": true, "remove": true, "startswith": true, "strip": true,
	"upper": true, "values": true,
}

// kind is what is statically known about the value of an expression.
type kind int

const (
	kindOther kind = iota
	// kindPlain is a str, bytes, bool, None, float or int.
	kindPlain
	kindInt
)

func minKind(a, b kind) kind {
	if a < b {
		return a
	}
	return b
}

// binding is one assignment to a name. expr is nil if nothing is known about
// the value. A loop binding takes the elements of expr.
type binding struct {
	expr syntax.Expr
	loop bool
}

type budgetChecker struct {
	isPredeclared func(string) bool
	bindings      map[string][]binding
	kinds         map[string]kind
	widths        map[string]int
	err           error
}

// checkBudget rejects fragments that could do work or allocate memory out of
// proportion to the steps they take.
func checkBudget(f *syntax.File, isPredeclared func(string) bool) error {
	c := &budgetChecker{
		isPredeclared: isPredeclared,
		bindings:      make(map[string][]binding),
	}
	for _, stmt := range f.Stmts {
		syntax.Walk(stmt, c.collect)
	}
	if c.err != nil {
		return c.err
	}
	c.solve()
	for _, stmt := range f.Stmts {
		syntax.Walk(stmt, c.check)
	}
	return c.err
}

func (c *budgetChecker) fail(n syntax.Node, format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	start, _ := n.Span()
	c.err = fmt.Errorf("%w: %s: %s", ErrComputeBudgetExceeded, start, fmt.Sprintf(format, args...))
}

func (c *budgetChecker) collect(n syntax.Node) bool {
	switch n := n.(type) {
	case *syntax.AssignStmt:
		c.bind(n.LHS, assignedValue(n), false)
	case *syntax.ForStmt:
		c.bind(n.Vars, n.X, true)
	case *syntax.ForClause:
		c.bind(n.Vars, n.X, true)
	case *syntax.DefStmt:
		c.bind(n.Name, nil, false)
		c.params(n.Params)
	case *syntax.LambdaExpr:
		c.params(n.Params)
	case *syntax.LoadStmt:
		for _, to := range n.To {
			c.bind(to, nil, false)
		}
	}
	return c.err == nil
}

func (c *budgetChecker) bind(lhs, rhs syntax.Expr, loop bool) {
	switch lhs := lhs.(type) {
	case *syntax.Ident:
		if starlark.Universe.Has(lhs.Name) || c.isPredeclared(lhs.Name) {
			c.fail(lhs, "%s cannot be rebound", lhs.Name)
			return
		}
		c.bindings[lhs.Name] = append(c.bindings[lhs.Name], binding{expr: rhs, loop: loop})
	case *syntax.ParenExpr:
		c.bind(lhs.X, rhs, loop)
	case *syntax.TupleExpr:
		for _, x := range lhs.List {
			c.bind(x, nil, false)
		}
	case *syntax.ListExpr:
		for _, x := range lhs.List {
			c.bind(x, nil, false)
		}
	}
}

func (c *budgetChecker) params(params []syntax.Expr) {
	for _, p := range params {
		switch p := p.(type) {
		case *syntax.Ident:
			c.bind(p, nil, false)
		case *syntax.BinaryExpr:
			c.bind(p.X, nil, false)
		default:
			c.fail(p, "variadic parameters are not available")
		}
	}
}

// solve computes the greatest fixpoint of name kinds over all bindings.
// Kinds only decrease, so it terminates.
func (c *budgetChecker) solve() {
	c.kinds = make(map[string]kind, len(c.bindings))
	for name := range c.bindings {
		c.kinds[name] = kindInt
	}
	for changed := true; changed; {
		changed = false
		for name, bs := range c.bindings {
			k := kindInt
			for _, b := range bs {
				k = minKind(k, c.bindingKind(b))
			}
			if k != c.kinds[name] {
				c.kinds[name] = k
				changed = true
			}
		}
	}

	// Widths are solved from the top as well: a name assigned from itself,
	// like an accumulator, stays unbounded.
	c.widths = make(map[string]int, len(c.bindings))
	for name := range c.bindings {
		c.widths[name] = unbounded
	}
	for changed := true; changed; {
		changed = false
		for name, bs := range c.bindings {
			if c.kinds[name] != kindInt {
				continue
			}
			w := 0
			for _, b := range bs {
				w = maxWidth(w, c.bindingWidth(b))
			}
			if w != c.widths[name] {
				c.widths[name] = w
				changed = true
			}
		}
	}
}

func (c *budgetChecker) bindingKind(b binding) kind {
	switch {
	case b.expr == nil:
		return kindOther
	case b.loop && isCall(b.expr, "range"):
		return kindInt
	case b.loop:
		// Containers only ever hold plain values.
		return kindPlain
	default:
		return c.exprKind(b.expr)
	}
}

func (c *budgetChecker) bindingWidth(b binding) int {
	switch {
	case b.expr == nil:
		return unbounded
	case b.loop && isCall(b.expr, "range"):
		return 64
	case b.loop:
		return unbounded
	default:
		return c.width(b.expr)
	}
}

func maxWidth(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func addWidth(a, b int) int {
	if a+b > maxIntBits {
		return unbounded
	}
	return a + b
}

// width returns the number of bits an int expression needs at most, or
// unbounded.
func (c *budgetChecker) width(e syntax.Expr) int {
	if c.exprKind(e) != kindInt {
		return unbounded
	}
	switch e := e.(type) {
	case *syntax.Literal:
		switch v := e.Value.(type) {
		case int64:
			return bits.Len64(uint64(v))
		case *big.Int:
			return addWidth(v.BitLen(), 0)
		}
	case *syntax.Ident:
		if w, ok := c.widths[e.Name]; ok {
			return w
		}
	case *syntax.ParenExpr:
		return c.width(e.X)
	case *syntax.UnaryExpr:
		if e.Op == syntax.TILDE {
			return addWidth(c.width(e.X), 1)
		}
		return c.width(e.X)
	case *syntax.BinaryExpr:
		wx, wy := c.width(e.X), c.width(e.Y)
		switch e.Op {
		case syntax.PLUS, syntax.MINUS, syntax.PIPE, syntax.CIRCUMFLEX:
			return addWidth(maxWidth(wx, wy), 1)
		case syntax.STAR:
			return addWidth(wx, wy)
		case syntax.LTLT:
			if n, ok := intValue(e.Y); ok && n <= maxIntBits {
				return addWidth(wx, int(n))
			}
		case syntax.SLASHSLASH, syntax.GTGT:
			return wx
		case syntax.PERCENT:
			return wy
		case syntax.AMP, syntax.AND, syntax.OR:
			return maxWidth(wx, wy)
		}
	case *syntax.CondExpr:
		return maxWidth(c.width(e.True), c.width(e.False))
	case *syntax.CallExpr:
		switch fn := e.Fn.(type) {
		case *syntax.Ident:
			switch fn.Name {
			case "round", "mover", "winner":
				return 32
			case "len":
				return 64
			case "int":
				return maxConvertedBits
			case "abs":
				return c.width(e.Args[0])
			}
		case *syntax.DotExpr:
			return 64
		}
	case *syntax.IndexExpr:
		// round_seed()[i]
		return 64
	}
	return unbounded
}

func (c *budgetChecker) exprKind(e syntax.Expr) kind {
	switch e := e.(type) {
	case *syntax.Literal:
		if e.Token == syntax.INT {
			return kindInt
		}
		return kindPlain
	case *syntax.Ident:
		switch e.Name {
		case "True", "False", "None":
			return kindPlain
		}
		if k, ok := c.kinds[e.Name]; ok {
			return k
		}
		return kindOther
	case *syntax.ParenExpr:
		return c.exprKind(e.X)
	case *syntax.UnaryExpr:
		if e.Op == syntax.NOT {
			return kindPlain
		}
		if e.X != nil && c.exprKind(e.X) == kindInt {
			return kindInt
		}
	case *syntax.BinaryExpr:
		kx, ky := c.exprKind(e.X), c.exprKind(e.Y)
		switch e.Op {
		case syntax.EQL, syntax.NEQ, syntax.LT, syntax.GT, syntax.LE, syntax.GE, syntax.IN, syntax.NOT_IN:
			return kindPlain
		case syntax.AND, syntax.OR:
			return minKind(kx, ky)
		case syntax.SLASH:
			return minKind(minKind(kx, ky), kindPlain)
		case syntax.PERCENT:
			if isString(e.X) {
				return kindPlain
			}
		}
		if kx == kindInt && ky == kindInt {
			return kindInt
		}
	case *syntax.CondExpr:
		return minKind(c.exprKind(e.True), c.exprKind(e.False))
	case *syntax.CallExpr:
		return c.callKind(e)
	case *syntax.IndexExpr:
		if isCall(e.X, "round_seed") {
			return kindInt
		}
		return kindPlain
	case *syntax.SliceExpr:
		return minKind(c.exprKind(e.X), kindPlain)
	}
	return kindOther
}

func (c *budgetChecker) callKind(e *syntax.CallExpr) kind {
	switch fn := e.Fn.(type) {
	case *syntax.Ident:
		switch fn.Name {
		case "len", "int", "round", "mover", "winner":
			return kindInt
		case "abs":
			if len(e.Args) == 1 && c.exprKind(e.Args[0]) == kindInt {
				return kindInt
			}
		case "str", "type", "bool":
			return kindPlain
		}
	case *syntax.DotExpr:
		switch fn.Name.Name {
		case "index":
			return kindInt
		case "startswith", "endswith", "lower", "upper", "strip":
			return kindPlain
		}
	}
	return kindOther
}

func (c *budgetChecker) check(n syntax.Node) bool {
	if c.err != nil {
		return false
	}
	switch n := n.(type) {
	case *syntax.Ident:
		if starlark.Universe.Has(n.Name) && !allowedBuiltins[n.Name] {
			c.fail(n, "%s is not available", n.Name)
		}
	case *syntax.DotExpr:
		if !allowedMethods[n.Name.Name] {
			c.fail(n.Name, "method %s is not available", n.Name.Name)
		}
		syntax.Walk(n.X, c.check)
		return false
	case *syntax.LoadStmt:
		return false
	case *syntax.AssignStmt:
		if n.Op != syntax.EQ {
			c.checkOp(n, augmentedOp(n.Op), n.LHS, n.RHS)
		}
		if _, ok := n.LHS.(*syntax.IndexExpr); ok {
			c.requirePlain(assignedValue(n))
		}
		c.checkTarget(n.LHS)
		syntax.Walk(n.RHS, c.check)
		return false
	case *syntax.ForStmt:
		c.checkTarget(n.Vars)
		syntax.Walk(n.X, c.check)
		for _, stmt := range n.Body {
			syntax.Walk(stmt, c.check)
		}
		return false
	case *syntax.ForClause:
		c.checkTarget(n.Vars)
		syntax.Walk(n.X, c.check)
		return false
	case *syntax.CallExpr:
		c.checkCall(n)
		syntax.Walk(n.Fn, c.check)
		for _, arg := range n.Args {
			syntax.Walk(argValue(arg), c.check)
		}
		return false
	case *syntax.BinaryExpr:
		c.checkOp(n, n.Op, n.X, n.Y)
	case *syntax.ListExpr:
		for _, x := range n.List {
			c.requirePlain(x)
		}
	case *syntax.TupleExpr:
		for _, x := range n.List {
			c.requirePlain(x)
		}
	case *syntax.DictEntry:
		c.requirePlain(n.Key)
		c.requirePlain(n.Value)
	case *syntax.Comprehension:
		if _, ok := n.Body.(*syntax.DictEntry); !ok {
			c.requirePlain(n.Body)
		}
	}
	return c.err == nil
}

// checkTarget checks the expressions inside an assignment target without
// treating the target itself as a value.
func (c *budgetChecker) checkTarget(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.Ident:
	case *syntax.ParenExpr:
		c.checkTarget(e.X)
	case *syntax.TupleExpr:
		for _, x := range e.List {
			c.checkTarget(x)
		}
	case *syntax.ListExpr:
		for _, x := range e.List {
			c.checkTarget(x)
		}
	case *syntax.IndexExpr:
		syntax.Walk(e.X, c.check)
		syntax.Walk(e.Y, c.check)
	default:
		syntax.Walk(e, c.check)
	}
}

func (c *budgetChecker) checkCall(n *syntax.CallExpr) {
	switch fn := n.Fn.(type) {
	case *syntax.Ident:
		switch fn.Name {
		case "str", "print", "fail", "debug":
			for _, arg := range n.Args {
				c.requirePlain(argValue(arg))
			}
		}
	case *syntax.DotExpr:
		switch fn.Name.Name {
		case "append":
			for _, arg := range n.Args {
				c.requirePlain(argValue(arg))
			}
		case "insert":
			if len(n.Args) > 0 {
				c.requirePlain(argValue(n.Args[len(n.Args)-1]))
			}
		}
	}
}

func (c *budgetChecker) checkOp(n syntax.Node, op syntax.Token, x, y syntax.Expr) {
	bothInt := c.exprKind(x) == kindInt && c.exprKind(y) == kindInt
	wx, wy := c.width(x), c.width(y)
	switch op {
	case syntax.STAR:
		if bothInt && addWidth(wx, wy) < unbounded {
			return
		}
		if repeatable(x, y) || repeatable(y, x) {
			return
		}
		c.fail(n, "* needs ints of at most %d bits together or a constant sequence and a literal count", maxIntBits)
	case syntax.PLUS, syntax.MINUS, syntax.PIPE, syntax.CIRCUMFLEX:
		if bothInt && (wx < unbounded || wy < unbounded) {
			return
		}
		if !bothInt && isConstant(x) && isConstant(y) {
			return
		}
		c.fail(n, "%s needs an operand of at most %d bits or two constants", op, maxIntBits)
	case syntax.LTLT:
		if bothInt && c.width(&syntax.BinaryExpr{X: x, Op: op, Y: y}) < unbounded {
			return
		}
		c.fail(n, "<< needs a literal count and a result of at most %d bits", maxIntBits)
	case syntax.PERCENT:
		if bothInt {
			return
		}
		if isString(x) && c.isIntOrIntTuple(y) {
			return
		}
		c.fail(n, "%% formats ints into a string literal only")
	}
}

func (c *budgetChecker) isIntOrIntTuple(e syntax.Expr) bool {
	t, ok := unparen(e).(*syntax.TupleExpr)
	if !ok {
		return c.exprKind(e) == kindInt
	}
	for _, x := range t.List {
		if c.exprKind(x) != kindInt {
			return false
		}
	}
	return true
}

func (c *budgetChecker) requirePlain(e syntax.Expr) {
	if c.exprKind(e) < kindPlain {
		c.fail(e, "only ints, strings, bytes, bools and None can be stored or printed")
	}
}

// assignedValue returns the value an assignment stores, spelling out
// augmented assignments.
func assignedValue(n *syntax.AssignStmt) syntax.Expr {
	if n.Op == syntax.EQ {
		return n.RHS
	}
	return &syntax.BinaryExpr{X: n.LHS, OpPos: n.OpPos, Op: augmentedOp(n.Op), Y: n.RHS}
}

// augmentedOp maps += to + and so on.
func augmentedOp(op syntax.Token) syntax.Token {
	return op - syntax.PLUS_EQ + syntax.PLUS
}

func argValue(arg syntax.Expr) syntax.Expr {
	if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
		return kw.Y
	}
	return arg
}

func unparen(e syntax.Expr) syntax.Expr {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

func isCall(e syntax.Expr, name string) bool {
	call, ok := unparen(e).(*syntax.CallExpr)
	if !ok {
		return false
	}
	fn, ok := call.Fn.(*syntax.Ident)
	return ok && fn.Name == name
}

func isString(e syntax.Expr) bool {
	lit, ok := unparen(e).(*syntax.Literal)
	return ok && lit.Token == syntax.STRING
}

func intValue(e syntax.Expr) (int64, bool) {
	lit, ok := unparen(e).(*syntax.Literal)
	if !ok {
		return 0, false
	}
	v, ok := lit.Value.(int64)
	return v, ok
}

// isConstant reports whether e is a literal or a flat list or tuple of
// literals.
func isConstant(e syntax.Expr) bool {
	_, ok := constantLen(e)
	return ok
}

// constantLen returns the length of a constant sequence. Scalars have
// length 1.
func constantLen(e syntax.Expr) (int, bool) {
	switch e := unparen(e).(type) {
	case *syntax.Literal:
		if s, ok := e.Value.(string); ok {
			return len(s), true
		}
		return 1, true
	case *syntax.Ident:
		switch e.Name {
		case "True", "False", "None":
			return 1, true
		}
	case *syntax.ListExpr:
		return literalsLen(e.List)
	case *syntax.TupleExpr:
		return literalsLen(e.List)
	}
	return 0, false
}

func literalsLen(list []syntax.Expr) (int, bool) {
	for _, x := range list {
		switch x := unparen(x).(type) {
		case *syntax.Literal:
		case *syntax.Ident:
			if x.Name != "True" && x.Name != "False" && x.Name != "None" {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return len(list), true
}

// repeatable reports whether seq * count builds at most maxRepeat elements.
func repeatable(seq, count syntax.Expr) bool {
	k, ok := intValue(count)
	if !ok || k > maxRepeat {
		return false
	}
	switch s := unparen(seq).(type) {
	case *syntax.Literal:
		if s.Token != syntax.STRING && s.Token != syntax.BYTES {
			return false
		}
	case *syntax.ListExpr, *syntax.TupleExpr:
	default:
		return false
	}
	n, ok := constantLen(seq)
	return ok && int64(n)*k <= maxRepeat
}
