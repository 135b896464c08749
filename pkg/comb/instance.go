package comb

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/eval"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/simerr"
)

// stepInstances recursively evaluates every child instance whose port
// bindings are fully bound, binding the child's
// outputs back into the parent env. Resolution and recursion go through
// pkg/module so ROM primitives and nested hierarchies work uniformly.
func stepInstances(pending []ast.Instance, env map[string]bitvec.Value, mod *ast.Module, cache *module.Cache, dir string, progressed bool) ([]ast.Instance, bool, error) {
	var remaining []ast.Instance
	for _, inst := range pending {
		child, err := cache.Resolve(inst.ModuleName, dir)
		if err != nil {
			return nil, false, err
		}

		bindings, err := resolvePositional(inst, child.AST)
		if err != nil {
			return nil, false, err
		}

		ready := true
		childInputs := map[string]bitvec.Value{}
		for _, p := range child.AST.InputPorts() {
			exprForPort, ok := bindings[p.Name]
			if !ok {
				return nil, false, simerr.New(simerr.PortWidthMismatch, simerr.Location{Module: mod.Name},
					"instance %q: no binding for input %q", inst.Label, p.Name)
			}
			idents := eval.FreeIdents(exprForPort)
			if !allIdentsBound(idents, env) {
				ready = false
				break
			}
			v, err := eval.Eval(exprForPort, eval.Env{Signals: env, Module: mod.Name, Signed: eval.SignedNames(mod)})
			if err != nil {
				return nil, false, err
			}
			if v.Width != p.Width {
				v = bitvec.New(p.Width, v.Bits)
			}
			childInputs[p.Name] = v
		}
		if !ready {
			remaining = append(remaining, inst)
			continue
		}

		result, err := EvaluateEntry(child, childInputs, cache, nil, nil)
		if err != nil {
			return nil, false, err
		}

		for _, p := range child.AST.OutputPorts() {
			outExpr, ok := bindings[p.Name]
			if !ok {
				continue // child output not wired to anything in the parent
			}
			outIdent, ok := outExpr.(*ast.Ident)
			if !ok {
				return nil, false, simerr.New(simerr.WidthMismatch, simerr.Location{Module: mod.Name},
					"instance %q: output port %q must bind to a plain identifier", inst.Label, p.Name)
			}
			env[outIdent.Name] = widenToDeclared(outIdent.Name, result.Outputs[p.Name], mod)
		}
		progressed = true
	}
	return remaining, progressed, nil
}

// resolvePositional maps an instance's bindings (named or positional) to
// a map keyed by the submodule's formal port names, resolving positional
// order against childAST.Ports.
func resolvePositional(inst ast.Instance, childAST *ast.Module) (map[string]ast.Expr, error) {
	if len(inst.Positional) == 0 {
		return inst.PortBindings, nil
	}
	if len(inst.Positional) != len(childAST.Ports) {
		return nil, simerr.New(simerr.PortWidthMismatch, simerr.Location{Module: childAST.Name},
			"instance %q: %d positional arguments, module %q has %d ports",
			inst.Label, len(inst.Positional), childAST.Name, len(childAST.Ports))
	}
	bindings := map[string]ast.Expr{}
	for i, p := range childAST.Ports {
		bindings[p.Name] = inst.Positional[i]
	}
	return bindings, nil
}
