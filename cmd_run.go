package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"lina/compiler"
	"lina/lexer"
	"lina/parser"
	"lina/vm"
)

// runCmd compiles a source file and executes it against stdin/stdout.
type runCmd struct {
	disasm bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and run a Lina source file" }
func (*runCmd) Usage() string {
	return `run [-d] <file>:
  Compile and execute a Lina source file. Input is read from stdin,
  output written to stdout.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.disasm, "d", false, "disassemble instead of executing")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Erro: caminho do arquivo não fornecido")
		return subcommands.ExitUsageError
	}

	bc, status := compileFile(args[0])
	if status != subcommands.ExitSuccess {
		return status
	}

	if r.disasm {
		return disassembleAndPrint(bc)
	}

	m := vm.New(os.Stdin, os.Stdout)
	m.Start(bc)
	if err := m.RunToHalt(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// compileFile runs the lex/parse/compile pipeline against the named file,
// printing any error to stderr: a LexicalError or SyntaxError as its
// message followed by a file:row:col line, a CodeError in its own format.
func compileFile(path string) (compiler.Bytecode, subcommands.ExitStatus) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: falha ao ler arquivo: %v\n", err)
		return compiler.Bytecode{}, subcommands.ExitFailure
	}

	toks, err := lexer.New(string(data)).Scan()
	if err != nil {
		if le, ok := err.(lexer.LexicalError); ok {
			fmt.Fprintf(os.Stderr, "Erro Léxico: %s\n%s:%s\n", le.Msg, path, le.Pos)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return compiler.Bytecode{}, subcommands.ExitFailure
	}

	prog, err := parser.Make(toks).Parse()
	if err != nil {
		if se, ok := err.(parser.SyntaxError); ok {
			fmt.Fprintf(os.Stderr, "Erro Sintático: %s\n%s:%s\n", se.Msg, path, se.Pos)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return compiler.Bytecode{}, subcommands.ExitFailure
	}

	bc, err := compiler.Compile(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return compiler.Bytecode{}, subcommands.ExitFailure
	}

	return bc, subcommands.ExitSuccess
}
