// Copyright © 2024 The Qanun authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// AnalyzerUndefinedGlobal reports references to globals that neither the
// file nor the configured globals declare.  Such a reference raises a
// runtime error when it is evaluated.
var AnalyzerUndefinedGlobal = &Analyzer{
	Name:     "undefined-global",
	Severity: SeverityWarning,
	Doc:      "Report references to globals that are never declared.\n\nNames bound by importing a built-in module are known.  When the file imports another source file, or imports a computed path, the check is skipped since the import may declare any name.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		imported, open := importedNames(pass.Stmts, pass.Modules)
		if open {
			return nil
		}
		for _, ref := range pass.Semantics.Unresolved {
			if imported[ref.Name] {
				continue
			}
			var tok *token.Token
			switch n := ref.Node.(type) {
			case *ast.Variable:
				tok = n.Name
			case *ast.Assign:
				tok = n.Name
			}
			pass.ReportTokenf(tok, "undefined: %s", ref.Name)
		}
		return nil
	},
}

// AnalyzerUnusedVariable reports local bindings that are never read or
// assigned after their declaration.
var AnalyzerUnusedVariable = &Analyzer{
	Name:     "unused-variable",
	Severity: SeverityWarning,
	Doc:      "Report local variables, constants and functions that are never used.\n\nGlobals are exempt because another file may import them.  Names starting with an underscore are exempt.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, sym := range pass.Semantics.Symbols {
			if sym.External || sym.References > 0 || strings.HasPrefix(sym.Name, "_") {
				continue
			}
			if sym.Scope == nil || sym.Scope.Kind == analysis.ScopeGlobal {
				continue
			}
			switch sym.Kind {
			case analysis.SymVariable, analysis.SymConstant, analysis.SymFunction:
			default:
				continue
			}
			tok := declName(sym.Node)
			if tok == nil {
				continue
			}
			pass.ReportTokenf(tok, "%s %s declared and not used", sym.Kind, sym.Name)
		}
		return nil
	},
}

// AnalyzerCallArity checks the argument count of calls to functions,
// natives and classes whose declaration is known.
var AnalyzerCallArity = &Analyzer{
	Name:     "call-arity",
	Severity: SeverityError,
	Doc:      "Check the number of arguments passed to known functions.\n\nCalls to a named function, native or class are compared against its declared parameters.  A name that is ever reassigned is skipped.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		refs := make(map[ast.Expr]*analysis.Symbol, len(pass.Semantics.References))
		assigned := make(map[*analysis.Symbol]bool)
		for _, ref := range pass.Semantics.References {
			refs[ref.Node] = ref.Symbol
			if _, ok := ref.Node.(*ast.Assign); ok {
				assigned[ref.Symbol] = true
			}
		}
		WalkCalls(pass.Stmts, func(call *ast.Call) {
			callee, ok := call.Callee.(*ast.Variable)
			if !ok {
				return
			}
			sym := refs[callee]
			if sym == nil || sym.Signature == nil || assigned[sym] {
				return
			}
			switch sym.Kind {
			case analysis.SymFunction, analysis.SymBuiltin, analysis.SymClass:
			default:
				return
			}
			want := sym.Signature.Arity()
			if len(call.Args) == want {
				return
			}
			pass.ReportTokenf(callee.Name, "%s expects %s but got %d",
				sym.Name, plural(want, "argument"), len(call.Args))
		})
		return nil
	},
}

// AnalyzerUnreachableCode reports statements that follow a return, break or
// continue in the same statement list.
var AnalyzerUnreachableCode = &Analyzer{
	Name:     "unreachable-code",
	Severity: SeverityWarning,
	Doc:      "Report statements that can never run.\n\nA statement following a return, break or continue in the same block is dead.",
	Run: func(pass *Pass) error {
		WalkStmtLists(pass.Stmts, func(list []ast.Stmt) {
			for i, stmt := range list {
				var kw string
				switch stmt.(type) {
				case *ast.Return:
					kw = "return"
				case *ast.Break:
					kw = "break"
				case *ast.Continue:
					kw = "continue"
				default:
					continue
				}
				if i+1 < len(list) {
					pass.Reportf(list[i+1].Pos(), "unreachable code after %s", kw)
				}
				return
			}
		})
		return nil
	},
}

// AnalyzerSelfAssign reports assignments of a variable to itself.
var AnalyzerSelfAssign = &Analyzer{
	Name:     "self-assign",
	Severity: SeverityWarning,
	Doc:      "Report assignments of a variable to itself.\n\nAn assignment such as `x = x` has no effect and usually hides a typo.",
	Run: func(pass *Pass) error {
		WalkAssigns(pass.Stmts, func(a *ast.Assign) {
			if a.Op == nil || a.Op.Type != token.EQUAL {
				return
			}
			if v, ok := a.Value.(*ast.Variable); ok && v.Name.Text == a.Name.Text {
				pass.ReportTokenf(a.Name, "self-assignment of %s", a.Name.Text)
			}
		})
		return nil
	},
}

func declName(node ast.Node) *token.Token {
	switch n := node.(type) {
	case *ast.Var:
		return n.Name
	case *ast.Val:
		return n.Name
	case *ast.Function:
		return n.Name
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
