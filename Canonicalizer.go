package main

import (
	"strings"

	"lotusCalc/contracts"
)

// Canonical formula rendering. Structural edits rewrite formulas by
// adjusting the parsed tree and printing it back, so stored formula
// text converges to one spelling: upper-case references, ":" range
// separators, no redundant whitespace.

const (
	precComparison = iota + 1
	precConcat
	precAdditive
	precMultiplicative
	precPower
	precUnary
	precPrimary
)

// FormatFormula renders an expression tree as stored cell content,
// formula marker included.
func FormatFormula(expr Expr) string {
	return "=" + FormatExpr(expr)
}

func FormatExpr(expr Expr) string {
	return formatAt(expr, precComparison)
}

func formatAt(expr Expr, parent int) string {
	switch node := expr.(type) {
	case *LiteralExpr:
		if node.Value.Kind == contracts.KindText {
			return "\"" + strings.ReplaceAll(node.Value.Str, "\"", "\"\"") + "\""
		}
		return node.Value.Display()

	case *CellRefExpr:
		return node.Ref.String()

	case *RangeRefExpr:
		return node.Range.String()

	case *NameRefExpr:
		return node.Name

	case *UnaryExpr:
		return parenthesize(node.Op+formatAt(node.Operand, precUnary), precUnary, parent)

	case *BinaryExpr:
		prec := operatorPrecedence(node.Op)
		leftPrec, rightPrec := prec, prec+1
		if node.Op == "^" {
			// right-associative, so the nesting side flips
			leftPrec, rightPrec = prec+1, prec
		}
		text := formatAt(node.Left, leftPrec) + node.Op + formatAt(node.Right, rightPrec)
		return parenthesize(text, prec, parent)

	case *CallExpr:
		args := make([]string, len(node.Args))
		for i, arg := range node.Args {
			args[i] = formatAt(arg, precComparison)
		}
		return node.Name + "(" + strings.Join(args, ",") + ")"
	}
	return ""
}

func operatorPrecedence(op string) int {
	switch op {
	case "&":
		return precConcat
	case "+", "-":
		return precAdditive
	case "*", "/":
		return precMultiplicative
	case "^":
		return precPower
	}
	return precComparison
}

func parenthesize(text string, prec, parent int) string {
	if prec < parent {
		return "(" + text + ")"
	}
	return text
}
