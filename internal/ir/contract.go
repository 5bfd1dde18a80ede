package ir

import (
	"slices"

	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// Lambda is a function object without an environment. The verifier types
// it as a mathematical function; its body must be free of side effects.
type Lambda struct {
	Arguments []types.Parameter
	Body      Expr
}

// ContractLambda builds a contract clause for a function of type fnType.
// The clause binds the return value first, named returnVar, followed by the
// function's parameters.
func ContractLambda(fnType types.Type, returnVar string, body Expr) Lambda {
	code, ok := fnType.(types.Code)
	ice.Assertf(ok, "contract lambda for non-code type %v", fnType)
	args := make([]types.Parameter, 0, len(code.Params())+1)
	args = append(args, types.MakeParameter(code.Return(), "", returnVar))
	args = append(args, code.Params()...)
	return Lambda{Arguments: args, Body: body}
}

// FunctionContract is the contract of a function. Only assigns clauses are
// supported: each lambda yields the targets the function may write.
type FunctionContract struct {
	Assigns []Lambda
}

// AttachContract adds c to a function symbol. Clauses are appended to an
// existing contract.
func (s *Symbol) AttachContract(c FunctionContract) *Symbol {
	ice.Assertf(types.IsCode(s.Type), "contract on non-function %s", s.Name)
	if s.Contract == nil {
		s.Contract = &FunctionContract{Assigns: slices.Clone(c.Assigns)}
		return s
	}
	// Clones share the contract pointer, so build a new one.
	s.Contract = &FunctionContract{Assigns: append(slices.Clip(s.Contract.Assigns), c.Assigns...)}
	return s
}

// AttachContract adds c to the function registered as name.
func (st *SymbolTable) AttachContract(name string, c FunctionContract) {
	s, ok := st.symbols[name]
	ice.Assertf(ok, "contract for unknown function %s", name)
	s.AttachContract(c)
}
