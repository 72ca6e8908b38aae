// Package asmtext is a minimal line-oriented reader for MIPS assembly
// text: it recognizes labels, assembler directives, glabel function/
// jump-table markers, and instruction lines, the way
// original_source/src/parse_file.py does, and hands each instruction's
// raw operand text to a small operand parser so the rest of this module
// has real asmast records to work with. It is not a general-purpose
// assembler frontend -- just enough to drive the translation core
// end to end from a real .s file.
package asmtext

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/cfg"
)

// jumpTableLabel matches the convention real MIPS compilers use for
// jump-table entry labels, as opposed to ordinary function-local ones.
var jumpTableLabel = regexp.MustCompile(`^L[0-9A-F]{8}`)

var commentBlock = regexp.MustCompile(`/\*.*?\*/`)

// File is a parsed assembly source file: a filename and the functions
// found in it, in declaration order.
type File struct {
	Filename  string
	Functions []*cfg.Function
}

// Parse reads every line of r, classifying it as a label, a directive, a
// glabel (function or jump-table) marker, or an instruction, and
// accumulates the result into one File.
func Parse(r io.Reader, filename string) (*File, error) {
	file := &File{Filename: filename}
	var current *cfg.Function

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = commentBlock.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ".") && strings.HasSuffix(line, ":"):
			name := strings.Trim(line, ".:")
			if current == nil {
				return nil, fmt.Errorf("asmtext:%d: label %q outside of any function", lineNo, name)
			}
			current.Body = append(current.Body, cfg.LabelItem{Label: asmast.Label{Name: name}})
		case strings.HasPrefix(line, "."):
			// Assembler directive; not meaningful to the translation core.
			continue
		case strings.HasPrefix(line, "glabel"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("asmtext:%d: glabel with no name", lineNo)
			}
			name := fields[1]
			if jumpTableLabel.MatchString(name) {
				if current == nil {
					return nil, fmt.Errorf("asmtext:%d: jump table label %q outside of any function", lineNo, name)
				}
				current.Body = append(current.Body, cfg.LabelItem{Label: asmast.Label{Name: name, IsJumpTable: true}})
			} else {
				current = &cfg.Function{Name: name}
				file.Functions = append(file.Functions, current)
			}
		default:
			if current == nil {
				return nil, fmt.Errorf("asmtext:%d: instruction outside of any function: %q", lineNo, line)
			}
			instr, err := parseInstruction(line)
			if err != nil {
				return nil, fmt.Errorf("asmtext:%d: %w", lineNo, err)
			}
			current.Body = append(current.Body, cfg.InstructionItem{Instruction: instr})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("asmtext: reading %s: %w", filename, err)
	}
	return file, nil
}

// parseInstruction splits one instruction line into a mnemonic and its
// parsed operands.
func parseInstruction(line string) (asmast.Instruction, error) {
	mnemonic, rest, _ := strings.Cut(line, " ")
	mnemonic = strings.TrimSpace(mnemonic)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return asmast.Instruction{Mnemonic: mnemonic}, nil
	}

	operandStrs := splitOperands(rest)
	args := make([]asmast.Argument, 0, len(operandStrs))
	for _, op := range operandStrs {
		arg, err := parseArgument(strings.TrimSpace(op))
		if err != nil {
			return asmast.Instruction{}, fmt.Errorf("operand %q: %w", op, err)
		}
		args = append(args, arg)
	}
	return asmast.Instruction{Mnemonic: mnemonic, Args: args}, nil
}

// splitOperands splits s on commas that are not nested inside parentheses.
func splitOperands(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseArgument(s string) (asmast.Argument, error) {
	if strings.HasPrefix(s, "$") {
		return asmast.NewRegister(s), nil
	}

	// A trailing parenthesized group can be a %hi/%lo macro's own argument
	// list, an address mode's "(reg)" base, or a bare literal expression
	// -- and a %lo(...) macro can itself sit inside an address mode, e.g.
	// "%lo(some_sym)($at)", so the matching paren has to be found from the
	// end rather than assumed to be the first "(" in the string.
	if strings.HasSuffix(s, ")") {
		if openIdx := matchingOpenParen(s); openIdx >= 0 {
			before := strings.TrimSpace(s[:openIdx])
			inner := strings.TrimSpace(s[openIdx+1 : len(s)-1])
			switch before {
			case "%hi", "%lo":
				arg, err := parseArgument(inner)
				if err != nil {
					return nil, err
				}
				return asmast.Macro{Name: strings.TrimPrefix(before, "%"), Argument: arg}, nil
			}
			if strings.HasPrefix(inner, "$") {
				base := asmast.NewRegister(inner)
				var offset asmast.Argument
				if before != "" {
					parsed, err := parseArgument(before)
					if err != nil {
						return nil, err
					}
					offset = parsed
				}
				return asmast.AddressMode{Offset: offset, Base: base}, nil
			}
			if before == "" {
				// A bare parenthesized expression, e.g. "(var_x & 0xffff)": a
				// literal compile-time binary op, not an address mode.
				return parseArgument(inner)
			}
		}
	}

	if left, op, right, ok := splitTopLevelBinOp(s); ok {
		l, err := parseArgument(left)
		if err != nil {
			return nil, err
		}
		r, err := parseArgument(right)
		if err != nil {
			return nil, err
		}
		return asmast.BinOp{Left: l, Op: op, Right: r}, nil
	}

	if lit, err := strconv.ParseInt(s, 0, 64); err == nil {
		return asmast.Literal{Value: lit}, nil
	}

	if s == "" {
		return nil, fmt.Errorf("empty operand")
	}
	return asmast.GlobalSymbol{Name: s}, nil
}

// matchingOpenParen returns the index of the "(" that closes s's final
// ")", or -1 if s doesn't end in a balanced parenthesized group.
func matchingOpenParen(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevelBinOp splits s at the first "&" that isn't nested inside
// parentheses, or failing that the first such "|", or failing that "^".
// Other operators (+, -, shifts) are not recognized, so an operand using
// only those is not split.
func splitTopLevelBinOp(s string) (left, op, right string, ok bool) {
	depth := 0
	for _, candidate := range []string{"&", "|", "^"} {
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 && i+len(candidate) <= len(s) && s[i:i+len(candidate)] == candidate {
				return strings.TrimSpace(s[:i]), candidate, strings.TrimSpace(s[i+len(candidate):]), true
			}
		}
		depth = 0
	}
	return "", "", "", false
}
