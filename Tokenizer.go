package main

import (
	"errors"
	"fmt"
	"lotusCalc/contracts"
	"strconv"
	"strings"
)

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenCell
	TokenIdentifier
	TokenFunction
	TokenOperator
	TokenComparison
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenColon
	TokenError
)

// Token carries the source text and position so parse errors can point
// at the offending spot.
type Token struct {
	Type   TokenType
	Text   string
	Number float64
	Pos    int
}

var LexError = errors.New("lexical error")

var UnterminatedStringError = fmt.Errorf("%w: unterminated string literal", LexError)

// Tokenize scans a formula body (leading "=" already stripped) into a
// flat token stream. Single left-to-right pass, longest match per token.
// A leading "@" and "@" before function names are Lotus-style no-ops.
func Tokenize(formula string) ([]Token, error) {
	tokens := make([]Token, 0, 16)
	i := 0

	for i < len(formula) {
		ch := formula[i]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		// doubled quote is a literal quote, no other escapes
		if ch == '"' {
			var sb strings.Builder
			j := i + 1
			for {
				if j >= len(formula) {
					return nil, fmt.Errorf("%w at %d", UnterminatedStringError, i)
				}
				if formula[j] == '"' {
					if j+1 < len(formula) && formula[j+1] == '"' {
						sb.WriteByte('"')
						j += 2
						continue
					}
					break
				}
				sb.WriteByte(formula[j])
				j++
			}
			tokens = append(tokens, Token{Type: TokenString, Text: sb.String(), Pos: i})
			i = j + 1
			continue
		}

		if i+1 < len(formula) {
			two := formula[i : i+2]
			if two == "<>" || two == "<=" || two == ">=" {
				tokens = append(tokens, Token{Type: TokenComparison, Text: two, Pos: i})
				i += 2
				continue
			}
			// Lotus-style range separator
			if two == ".." {
				tokens = append(tokens, Token{Type: TokenColon, Text: ":", Pos: i})
				i += 2
				continue
			}
		}

		switch ch {
		case '<', '>', '=':
			tokens = append(tokens, Token{Type: TokenComparison, Text: string(ch), Pos: i})
			i++
			continue
		case '+', '-', '*', '/', '^', '&':
			tokens = append(tokens, Token{Type: TokenOperator, Text: string(ch), Pos: i})
			i++
			continue
		case '(':
			tokens = append(tokens, Token{Type: TokenLeftParen, Text: "(", Pos: i})
			i++
			continue
		case ')':
			tokens = append(tokens, Token{Type: TokenRightParen, Text: ")", Pos: i})
			i++
			continue
		case ',':
			tokens = append(tokens, Token{Type: TokenComma, Text: ",", Pos: i})
			i++
			continue
		case ':':
			tokens = append(tokens, Token{Type: TokenColon, Text: ":", Pos: i})
			i++
			continue
		case '@':
			i++
			continue
		}

		// error codes survive structural rewrites inside formula text
		if ch == '#' {
			code, ok := matchErrorCode(formula[i:])
			if !ok {
				return nil, fmt.Errorf("%w: unknown error code at %d", LexError, i)
			}
			tokens = append(tokens, Token{Type: TokenError, Text: code, Pos: i})
			i += len(code)
			continue
		}

		if isDigit(ch) || (ch == '.' && i+1 < len(formula) && isDigit(formula[i+1])) {
			j := scanNumber(formula, i)
			text := formula[i:j]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", LexError, text, i)
			}
			tokens = append(tokens, Token{Type: TokenNumber, Text: text, Number: n, Pos: i})
			i = j
			continue
		}

		if isIdentStart(ch) {
			j := i
			for j < len(formula) && isIdentChar(formula[j]) {
				// ".." after an identifier is a range separator (A1..B2)
				if formula[j] == '.' && j+1 < len(formula) && formula[j+1] == '.' {
					break
				}
				j++
			}
			name := formula[i:j]

			k := j
			for k < len(formula) && (formula[k] == ' ' || formula[k] == '\t') {
				k++
			}
			if k < len(formula) && formula[k] == '(' {
				tokens = append(tokens, Token{Type: TokenFunction, Text: strings.ToUpper(name), Pos: i})
			} else if _, err := contracts.ParseReference(name); err == nil {
				tokens = append(tokens, Token{Type: TokenCell, Text: strings.ToUpper(name), Pos: i})
			} else {
				tokens = append(tokens, Token{Type: TokenIdentifier, Text: name, Pos: i})
			}
			i = j
			continue
		}

		return nil, fmt.Errorf("%w: unexpected character %q at %d", LexError, string(ch), i)
	}

	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(formula)})
	return tokens, nil
}

func scanNumber(s string, start int) int {
	i := start
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		// ".." is a range separator, not part of the number
		if s[i] == '.' && i+1 < len(s) && s[i+1] == '.' {
			break
		}
		i++
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

var errorCodeTexts = []string{"#DIV/0!", "#VALUE!", "#NAME?", "#N/A", "#REF!", "#NUM!", "#NULL!"}

func matchErrorCode(s string) (string, bool) {
	for _, code := range errorCodeTexts {
		if strings.HasPrefix(s, code) {
			return code, true
		}
	}
	return "", false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_' || b == '$'
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '.'
}
