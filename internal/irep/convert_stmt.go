package irep

import (
	"gotoc/internal/ice"
	"gotoc/internal/ir"
)

// Stmt converts a statement: a code node tagged with its statement kind,
// followed by the statement's location.
func (c *Converter) Stmt(s ir.Stmt) *Irep {
	return c.withLocation(c.stmtBody(s.Body()), s.Location())
}

func (c *Converter) codeNode(kind ID, ops ...*Irep) *Irep {
	return c.arena.New(Code, ops, N(Statement, c.arena.Just(kind)))
}

func (c *Converter) codeBlock(ops []*Irep) *Irep {
	return c.arena.NewWithChildren(Code, ops, N(Statement, c.arena.Just(Block)))
}

func (c *Converter) optExpr(e *ir.Expr) *Irep {
	if e == nil {
		return c.arena.Nil()
	}
	return c.Expr(*e)
}

func (c *Converter) optStmt(s *ir.Stmt) *Irep {
	if s == nil {
		return c.arena.Nil()
	}
	return c.Stmt(*s)
}

func (c *Converter) stmtBody(body ir.StmtBody) *Irep {
	a := c.arena
	switch v := body.(type) {
	case ir.AssignStmt:
		return c.codeNode(Assign, c.Expr(v.Lhs), c.Expr(v.Rhs))
	case ir.AssertStmt:
		return c.codeNode(Assert, c.Expr(v.Cond))
	case ir.AssumeStmt:
		return c.codeNode(Assume, c.Expr(v.Cond))
	case ir.AtomicBlockStmt:
		ops := a.Children(len(v.Stmts) + 2)
		ops[0] = c.codeNode(AtomicBegin)
		for i, s := range v.Stmts {
			ops[i+1] = c.Stmt(s)
		}
		ops[len(ops)-1] = c.codeNode(AtomicEnd)
		return c.codeBlock(ops)
	case ir.BlockStmt:
		ops := a.Children(len(v.Stmts))
		for i, s := range v.Stmts {
			ops[i] = c.Stmt(s)
		}
		return c.codeBlock(ops)
	case ir.BreakStmt:
		return c.codeNode(Break)
	case ir.ContinueStmt:
		return c.codeNode(Continue)
	case ir.DeadStmt:
		return c.codeNode(Dead, c.Expr(v.X))
	case ir.DeclStmt:
		if v.Value == nil {
			return c.codeNode(Decl, c.Expr(v.Lhs))
		}
		return c.codeNode(Decl, c.Expr(v.Lhs), c.Expr(*v.Value))
	case ir.DeinitStmt:
		// The verifier has no poison value; havoc the place instead.
		n := c.codeNode(Assign, c.Expr(v.X), c.Expr(ir.Nondet(v.X.Type())))
		return n.WithComment(a, "deinit")
	case ir.ExprStmt:
		return c.codeNode(Expression, c.Expr(v.X))
	case ir.ForStmt:
		return c.codeNode(For, c.Stmt(v.Init), c.Expr(v.Cond), c.Stmt(v.Update), c.Stmt(v.Body))
	case ir.FunctionCallStmt:
		args := a.NewWithChildren(Arguments, c.exprs(v.Args))
		return c.codeNode(FunctionCall, c.optExpr(v.Lhs), c.Expr(v.Function), args)
	case ir.GotoStmt:
		n := c.codeNode(Goto).WithNamedSub(a, Destination, a.JustString(v.Dest))
		if v.LoopInvariants != nil {
			n = n.WithNamedSub(a, CSpecLoopInvariant, c.Expr(*v.LoopInvariants))
		}
		return n
	case ir.IfThenElseStmt:
		return c.codeNode(Ifthenelse, c.Expr(v.Cond), c.Stmt(v.Then), c.optStmt(v.Else))
	case ir.LabelStmt:
		return c.codeNode(Label, c.Stmt(v.Body)).WithNamedSub(a, Label, a.JustString(v.Label))
	case ir.ReturnStmt:
		return c.codeNode(Return, c.optExpr(v.Value))
	case ir.SkipStmt:
		return c.codeNode(Skip)
	case ir.SwitchStmt:
		return c.codeNode(Switch, c.Expr(v.Control), c.switchArms(v))
	case ir.WhileStmt:
		return c.codeNode(While, c.Expr(v.Cond), c.Stmt(v.Body))
	default:
		ice.Failf("irep: unhandled statement %T", body)
		return nil
	}
}

// switchArms is the block of cases, with the default arm last. Each arm is
// located at its body.
func (c *Converter) switchArms(v ir.SwitchStmt) *Irep {
	a := c.arena
	n := len(v.Cases)
	if v.Default != nil {
		n++
	}
	arms := a.Children(n)
	for i, sc := range v.Cases {
		arm := c.codeNode(SwitchCase, c.Expr(sc.Case), c.Stmt(sc.Body))
		arms[i] = c.withLocation(arm, sc.Body.Location())
	}
	if v.Default != nil {
		arm := c.codeNode(SwitchCase, a.Nil(), c.Stmt(*v.Default)).WithNamedSub(a, Default, a.One())
		arms[n-1] = c.withLocation(arm, v.Default.Location())
	}
	return c.codeBlock(arms)
}
