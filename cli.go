package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	promptMain  = "tacc> "
	promptCont  = "  ... "
	historyFile = ".tacc_history"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `tacc - compiles a small block-structured language to three-address code

Usage:
    tacc <command> [arguments]

Commands:
    run <file>      Compile a program and execute it on the virtual machine
    build <file>    Compile a program and print its three-address code
    eval <code>     Evaluate an inline program or expression
    check <file>    Parse and check a program without running it
    tokens <file>   Print the token stream of a program
    repl            Start an interactive session
    help            Show this help message

Examples:
    tacc run examples/sum.tac
    tacc build -o sum.ir examples/sum.tac
    tacc eval '{ int x; x = 6 * 7; }'
    tacc eval '1 + 2 * 3'

Use "tacc <command> -h" for more information about a command.
`)
}

// optionFlags registers the compiler options on fs and returns a function
// that reads them back after fs.Parse.
func optionFlags(fs *flag.FlagSet) func() Options {
	defaults := DefaultOptions()
	innermost := fs.Bool("innermost-scope", false, "Resolve names in the innermost block only")
	noStack := fs.Bool("no-stack-adjust", false, "Do not emit stack pointer adjustments around blocks")
	maxSteps := fs.Int("max-steps", defaults.MaxSteps, "Maximum number of instructions to execute (0 for no limit)")
	return func() Options {
		return Options{
			InnermostScopeOnly: *innermost,
			StackAdjust:        !*noStack,
			MaxSteps:           *maxSteps,
		}
	}
}

func newFlagSet(name, args, desc string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tacc %s %s\n", name, args)
		fmt.Fprintf(os.Stderr, "%s\n\n", desc)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// parseFileArgs parses the flags and returns the single positional argument.
func parseFileArgs(fs *flag.FlagSet, args []string, what string) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s argument\n", what)
		fs.Usage()
		return "", false
	}
	return fs.Arg(0), true
}

func readSource(filename string) (string, bool) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		return "", false
	}
	return string(source), true
}

func runCommand(args []string) int {
	fs := newFlagSet("run", "[-v] [flags] <file>", "Compile a program and execute it on the virtual machine")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	opts := optionFlags(fs)

	filename, ok := parseFileArgs(fs, args, "file")
	if !ok {
		return 1
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}
	src, ok := readSource(filename)
	if !ok {
		return 1
	}
	return executeSource(os.Stdout, os.Stderr, src, opts(), *verbose)
}

func buildCommand(args []string) int {
	fs := newFlagSet("build", "[-o output] [-v] [flags] <file>", "Compile a program and print its three-address code")
	output := fs.String("o", "", "Output file path (default: standard output)")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	opts := optionFlags(fs)

	filename, ok := parseFileArgs(fs, args, "file")
	if !ok {
		return 1
	}
	src, ok := readSource(filename)
	if !ok {
		return 1
	}

	c, err := compileSource(os.Stderr, src, opts(), *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		return 1
	}

	if *output == "" {
		fmt.Print(c.IR.String())
		return 0
	}
	if err := os.WriteFile(*output, []byte(c.IR.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing IR file %s: %v\n", *output, err)
		return 1
	}
	fmt.Printf("Generated %s (%d instructions)\n", *output, c.IR.Len())
	return 0
}

func evalCommand(args []string) int {
	fs := newFlagSet("eval", "[-v] [flags] <code>", "Evaluate an inline program or expression")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	opts := optionFlags(fs)

	code, ok := parseFileArgs(fs, args, "code")
	if !ok {
		return 1
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Evaluating: %s\n", code)
	}
	return executeSource(os.Stdout, os.Stderr, wrapExpression(code), opts(), *verbose)
}

func checkCommand(args []string) int {
	fs := newFlagSet("check", "[-v] [flags] <file>", "Parse and check a program without running it")
	verbose := fs.Bool("v", false, "Show verbose checking details")
	opts := optionFlags(fs)

	filename, ok := parseFileArgs(fs, args, "file")
	if !ok {
		return 1
	}
	src, ok := readSource(filename)
	if !ok {
		return 1
	}

	if _, err := compileSource(os.Stderr, src, opts(), *verbose); err != nil {
		fmt.Printf("Errors in %s:\n%v\n", filename, err)
		return 1
	}
	fmt.Printf("%s: no errors found\n", filename)
	return 0
}

func tokensCommand(args []string) int {
	fs := newFlagSet("tokens", "<file>", "Print the token stream of a program")

	filename, ok := parseFileArgs(fs, args, "file")
	if !ok {
		return 1
	}
	src, ok := readSource(filename)
	if !ok {
		return 1
	}

	tokens, err := Lex(src)
	writeTokens(os.Stdout, tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, src))
		return 1
	}
	return 0
}

func writeTokens(w io.Writer, tokens []Token) {
	for _, tok := range tokens {
		if tok.Tag == EOF {
			fmt.Fprintf(w, "%s\tEOF\n", tok.Pos)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", tok.Pos, tok.Tag, tok)
	}
}

// compileSource compiles src, rendering positioned errors with a source
// snippet. With verbose set the AST, the variable layout and the IR size are
// written to log.
func compileSource(log io.Writer, src string, opts Options, verbose bool) (*Compilation, error) {
	c, err := Compile(src, opts)
	if err != nil {
		return nil, WrapErrorWithSource(err, src)
	}
	if verbose {
		fmt.Fprintf(log, "AST: %s\n", ToSExpr(c.Program))
		for _, sym := range c.Symbols {
			fmt.Fprintf(log, "  %-10s %-14s %-8s depth %d\n", sym.Name, sym.Type, sym.Addr, sym.Depth)
		}
		fmt.Fprintf(log, "Generated %d instructions, %d bytes of stack\n", c.IR.Len(), c.StackSize)
	}
	return c, nil
}

func executeSource(out, log io.Writer, src string, opts Options, verbose bool) int {
	c, err := compileSource(log, src, opts, verbose)
	if err != nil {
		fmt.Fprintf(log, "Compilation failed: %v\n", err)
		return 1
	}
	vm, err := Execute(c, opts)
	if err != nil {
		fmt.Fprintf(log, "Execution failed: %v\n", err)
		return 1
	}
	if verbose {
		fmt.Fprintf(log, "Executed %d instructions\n", vm.Steps())
	}
	writeVariables(out, c, vm)
	return 0
}

// resultName is the variable that holds the value of a bare expression.
const resultName = "result"

// wrapExpression turns input that is not a block into a program assigning
// the expression to a single variable.
func wrapExpression(code string) string {
	if strings.HasPrefix(strings.TrimSpace(code), "{") {
		return code
	}
	return fmt.Sprintf("{ int %s; %s = %s; }", resultName, resultName, code)
}

// writeVariables prints the final value of every variable of the outermost
// block in declaration order.
func writeVariables(w io.Writer, c *Compilation, vm *VM) {
	for _, sym := range c.Symbols {
		if sym.Depth != 1 {
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", sym.Name, formatValue(vm, sym.Type, sym.Addr.Place, 0))
	}
}

func formatValue(vm *VM, typ Type, off int32, dim int) string {
	if dim == len(typ.Extents) {
		v, err := vm.Word(off)
		if err != nil {
			return "?"
		}
		return fmt.Sprint(v)
	}
	parts := make([]string, typ.Extents[dim])
	for i := range parts {
		parts[i] = formatValue(vm, typ, off+int32(i)*int32(typ.Strides[dim]), dim+1)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func replCommand(args []string) int {
	fs := newFlagSet("repl", "[flags]", "Start an interactive session")
	showIR := fs.Bool("ir", false, "Print the three-address code of every input")
	opts := optionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	fmt.Println("tacc interactive session. Enter a block or an expression; :ir toggles IR output, :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit", ":q":
				return 0
			case ":ir":
				*showIR = !*showIR
				fmt.Printf("IR output %s\n", map[bool]string{true: "on", false: "off"}[*showIR])
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		src := wrapExpression(code)
		c, err := Compile(src, opts())
		if err != nil {
			fmt.Fprintln(os.Stderr, red(WrapErrorWithSource(err, src).Error()))
			continue
		}
		if *showIR {
			fmt.Print(c.IR.String())
		}
		vm, err := Execute(c, opts())
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		writeVariables(os.Stdout, c, vm)
	}
}

// readByParseProbe keeps reading lines while the accumulated input fails to
// parse only because it ended too early.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if needsMoreInput(b.String()) {
			continue
		}
		return b.String(), true
	}
}

// needsMoreInput reports whether src is a prefix of a valid block or
// expression that ends before it is complete.
func needsMoreInput(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") {
		return false
	}
	var err error
	if strings.HasPrefix(trimmed, "{") {
		_, err = ParseSource(src)
	} else {
		_, err = ParseExpression(src)
	}
	return IsIncomplete(err)
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var code int
	switch command {
	case "run":
		code = runCommand(args)
	case "build":
		code = buildCommand(args)
	case "eval":
		code = evalCommand(args)
	case "check":
		code = checkCommand(args)
	case "tokens":
		code = tokensCommand(args)
	case "repl":
		code = replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		code = 1
	}
	os.Exit(code)
}
