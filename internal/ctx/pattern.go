package ctx

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/types"
)

// PatternVars extracts the set of variable names a pattern introduces.
// Underscore and literal patterns introduce none (spec.md §4.6).
func PatternVars(p ast.Pattern) []string {
	var out []string
	collectPatternVars(p, &out)
	return out
}

func collectPatternVars(p ast.Pattern, out *[]string) {
	switch pt := p.(type) {
	case *ast.Var:
		*out = append(*out, pt.Name)
	case *ast.Wildcard, *ast.Literal:
		// introduce nothing
	case *ast.List:
		for _, e := range pt.Elems {
			if sub, ok := e.(ast.Pattern); ok {
				collectPatternVars(sub, out)
			}
		}
	case *ast.Tuple:
		for _, e := range pt.Elems {
			if sub, ok := e.(ast.Pattern); ok {
				collectPatternVars(sub, out)
			}
		}
	case *ast.MapLit:
		for _, entry := range pt.Entries {
			if sub, ok := entry.Val.(ast.Pattern); ok {
				collectPatternVars(sub, out)
			}
		}
	case *ast.StructLiteral:
		for _, f := range pt.Fields {
			if sub, ok := f.Value.(ast.Pattern); ok {
				collectPatternVars(sub, out)
			}
		}
	}
}

// Skeleton builds a partial type skeleton from a pattern's structural shape
// (tuple/list/map/struct), with a fresh variable standing in for each
// variable/wildcard leaf — used to constrain the scrutinee before
// unification (spec.md §4.6).
func Skeleton(p ast.Pattern, fresh *Fresh) types.Type {
	switch pt := p.(type) {
	case *ast.Var:
		return fresh.TypeVar()
	case *ast.Wildcard:
		return fresh.TypeVar()
	case *ast.Literal:
		return literalType(pt)
	case *ast.Tuple:
		elems := make([]types.Type, len(pt.Elems))
		for i, e := range pt.Elems {
			elems[i] = skeletonOfExpr(e, fresh)
		}
		return &types.Tuple{Elems: elems}
	case *ast.List:
		elem := fresh.TypeVar()
		var t types.Type = elem
		if len(pt.Elems) > 0 {
			t = skeletonOfExpr(pt.Elems[0], fresh)
		}
		return &types.List{Elem: t}
	case *ast.MapLit:
		k, v := fresh.TypeVar(), fresh.TypeVar()
		return &types.Map{Key: k, Val: v}
	case *ast.StructLiteral:
		fields := make(map[string]types.Type, len(pt.Fields))
		for _, f := range pt.Fields {
			fields[f.Name] = skeletonOfExpr(f.Value, fresh)
		}
		return &types.Struct{Module: pt.Module, Fields: fields}
	default:
		return fresh.TypeVar()
	}
}

func skeletonOfExpr(e ast.Expr, fresh *Fresh) types.Type {
	if p, ok := e.(ast.Pattern); ok {
		return Skeleton(p, fresh)
	}
	return fresh.TypeVar()
}

func literalType(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.IntLit:
		return types.TInt
	case ast.FloatLit:
		return types.TFloat
	case ast.AtomLit:
		return types.TAtom
	case ast.StringLit:
		return types.TString
	case ast.BoolLit:
		return types.TBool
	case ast.NilLit:
		return types.TUnit
	default:
		return types.TAny
	}
}
