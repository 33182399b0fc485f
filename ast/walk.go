package ast

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}

	// Statements
	case *Print:
		Walk(v, n.Value)
	case *Var:
		Walk(v, n.Name)
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Assign:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *ExprStmt:
		Walk(v, n.X)
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *ClassDecl:
		Walk(v, n.Name)
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *FunDecl:
		Walk(v, n.Name)
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	// Expressions
	case *Binary:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *Unary:
		Walk(v, n.X)
	case *Grouping:
		Walk(v, n.X)
	}

	v.Visit(nil)
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}
