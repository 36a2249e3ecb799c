// Package asm implements an assembler which turns Intcode assembly source and
// the files it includes into a program, ready for use on a CPU.
//
// A source file holds one instruction, label, constant or directive per line:
//
//	; Echo input until a zero is read.
//	const ZERO = 0
//	:loop
//	    in   [value]
//	    jez  [value], $done
//	    out  [value]
//	    jnz  $1, $loop
//	:done
//	    halt
//	:value
//	    data ZERO
//
// Operands are written as $expr (immediate), [expr] (position) or
// [rb+expr] (relative). The data directive emits its operands as raw words.
package asm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexaflex/intcode/asm/parser"
	"github.com/hexaflex/intcode/program"
)

// Build builds a program from the given source file and its includes.
// Included files are searched for in the including file's directory and
// the given search paths.
func Build(file string, includeSearchPaths []string) (program.Program, error) {
	ast, err := BuildAST(file, includeSearchPaths)
	if err != nil {
		return nil, err
	}

	return newAssembler().assemble(ast)
}

// Assemble builds a program from source read from r.
// Included files are searched for in the given search paths.
func Assemble(r io.Reader, includeSearchPaths []string) (program.Program, error) {
	ast := parser.NewAST()
	if err := ast.Parse(r, ""); err != nil {
		return nil, err
	}

	if err := testAndBuildIncludes(ast.Nodes(), includeSearchPaths, nil); err != nil {
		return nil, err
	}

	return newAssembler().assemble(ast)
}

// BuildAST builds the full AST for the given file and its dependencies.
func BuildAST(file string, includeSearchPaths []string) (*parser.AST, error) {
	ast := parser.NewAST()
	return ast, buildAST(ast, file, includeSearchPaths, nil)
}

// buildAST reads the given source file and its dependencies into the specified AST.
// It ensures the file and its dependencies do not contain any circular include references.
func buildAST(ast *parser.AST, file string, includeSearchPaths, dependencyChain []string) error {
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}

	if containsString(dependencyChain, file) {
		return fmt.Errorf("circular reference to file %q detected", file)
	}

	dependencyChain = append(dependencyChain, file)

	if err := ast.ParseFile(file); err != nil {
		return err
	}

	dir, _ := filepath.Split(file)
	return testAndBuildIncludes(ast.Nodes(), append([]string{dir}, includeSearchPaths...), dependencyChain)
}

// testAndBuildIncludes finds all include statements in the given AST and checks them recursively.
// If valid, parses them into the AST.
func testAndBuildIncludes(nodes *parser.List, includeSearchPaths, dependencyChain []string) error {
	for i := 0; i < nodes.Len(); i++ {
		node := nodes.At(i)
		if node.Type() != parser.Instruction {
			continue
		}

		instr := node.(*parser.List)
		name := instr.At(0).(*parser.Value).Value
		if !strings.EqualFold(name, "include") {
			continue
		}

		if instr.Len() != 2 {
			return parser.NewError(instr.Position(), "invalid include statement; expected `include <path>`")
		}

		expr := instr.At(1).(*parser.List)
		if expr.Len() != 1 || expr.At(0).Type() != parser.String {
			return parser.NewError(expr.Position(), "invalid include path; expected string")
		}

		// Parse source file into its own AST.
		path := findSourceFile(expr.At(0).(*parser.Value).Value, includeSearchPaths)
		ast := parser.NewAST()

		if err := buildAST(ast, path, includeSearchPaths, dependencyChain); err != nil {
			if _, ok := err.(*parser.Error); ok {
				return err
			}
			return parser.NewError(instr.Position(), "%v", err)
		}

		// Replace include node with contents of the new AST.
		set := ast.Nodes().Slice()
		if len(set) == 0 {
			nodes.Remove(i)
			i--
			continue
		}

		nodes.ReplaceAt(i, set...)
		i += len(set) - 1
	}
	return nil
}

// findSourceFile returns the first match for file in the given include
// search paths. Returns file as-is if it is absolute or can not be found.
func findSourceFile(file string, includeSearchPaths []string) string {
	if filepath.IsAbs(file) {
		return file
	}

	for _, inc := range includeSearchPaths {
		path := filepath.Join(inc, file)
		if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
			return path
		}
	}

	return file
}

// containsString returns true if set contains v.
func containsString(set []string, v string) bool {
	for _, sv := range set {
		if sv == v {
			return true
		}
	}
	return false
}
