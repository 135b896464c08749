package eval

import "github.com/jwd83/svsim/pkg/ast"

// FreeIdents collects every identifier an expression reads, used by the
// combinational fixpoint (pkg/comb) to test "all identifiers bound" before
// attempting to evaluate an assignment. Duplicate
// names are not removed; callers only test membership.
func FreeIdents(expr ast.Expr) []string {
	var out []string
	walk(expr, &out)
	return out
}

func walk(expr ast.Expr, out *[]string) {
	switch x := expr.(type) {
	case *ast.Ident:
		*out = append(*out, x.Name)
	case *ast.LitExpr:
		// no identifiers
	case *ast.BitSelect:
		if ident, ok := x.X.(*ast.Ident); ok {
			*out = append(*out, ident.Name)
		} else {
			walk(x.X, out)
		}
		walk(x.Idx, out)
	case *ast.RangeSelect:
		walk(x.X, out)
		walk(x.Hi, out)
		walk(x.Lo, out)
	case *ast.Concat:
		for _, p := range x.Parts {
			walk(p, out)
		}
	case *ast.Replicate:
		walk(x.Count, out)
		walk(x.Value, out)
	case *ast.Unary:
		walk(x.X, out)
	case *ast.Binary:
		walk(x.L, out)
		walk(x.R, out)
	case *ast.Ternary:
		walk(x.Sel, out)
		walk(x.A, out)
		walk(x.B, out)
	}
}
