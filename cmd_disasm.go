package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"lina/compiler"
)

// disasmCmd compiles a source file and prints its bytecode disassembly
// to stdout instead of executing it.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "compile a Lina source file and print its disassembly" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile a Lina source file and print a textual dump of its bytecode.
`
}

func (*disasmCmd) SetFlags(f *flag.FlagSet) {}

func (*disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Erro: caminho do arquivo não fornecido")
		return subcommands.ExitUsageError
	}

	bc, status := compileFile(args[0])
	if status != subcommands.ExitSuccess {
		return status
	}
	return disassembleAndPrint(bc)
}

func disassembleAndPrint(bc compiler.Bytecode) subcommands.ExitStatus {
	text, err := compiler.Disassemble(bc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(text)
	return subcommands.ExitSuccess
}
