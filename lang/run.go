package lang

import (
	"fmt"
	"io"
)

// RunScript runs source through the full lex/compile/execute pipeline
// against vm, writing tracebacks to vm's configured stderr as it goes.
// Lex and compile errors are reported directly (they have nothing to do
// with the VM's frame stack); a nil return means the script ran to
// completion without a pipeline-stopping error.
func RunScript(vm *VM, fileName string, source string) *JaplError {
	fn, compileErr := CompileSource(fileName, source, vm.stderr)
	if compileErr != nil {
		return compileErr
	}
	return vm.Interpret(fn, source, fileName)
}

// CompileSource lexes and compiles source into a top-level Function,
// printing any lex/parse tracebacks to errOut. It stops at the first stage
// that reports an error: a script with lex errors is never handed to the
// compiler, matching spec.md §4.3's "compilation is suppressed if any error
// was raised".
func CompileSource(fileName, source string, errOut io.Writer) (*FunctionVal, *JaplError) {
	lexer := NewLexer(fileName, []byte(source))
	tokens := lexer.Tokenize()
	if lexer.Errored() {
		for _, e := range lexer.Errors() {
			fmt.Fprintln(errOut, e.Traceback(source))
		}
		return nil, lexer.Errors()[0]
	}

	compiler := NewCompiler(fileName, tokens)
	fn, ok := compiler.Compile()
	if !ok {
		for _, e := range compiler.Errors() {
			fmt.Fprintln(errOut, e.Traceback(source))
		}
		return nil, compiler.Errors()[0]
	}
	return fn, nil
}

// DisassembleAndShow compiles source without running it and returns the
// chunk listing, grounded on the teacher's DissassembleAndShow debug helper
// (pyle/utils.go) but adapted to print rather than execute.
func DisassembleAndShow(fileName, source string, errOut io.Writer) (string, *JaplError) {
	fn, err := CompileSource(fileName, source, errOut)
	if err != nil {
		return "", err
	}
	return fn.Chunk.Disassemble(fileName), nil
}
