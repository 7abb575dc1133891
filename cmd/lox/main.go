package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"loxvm/lox"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

func main() {
	configPath := flag.String("config", "", "Path to lox.toml (default: nearest lox.toml above the working directory)")
	trace := flag.Bool("trace", false, "Trace the stack and every instruction while running")
	dis := flag.Bool("dis", false, "Print the disassembled chunk instead of running it")
	tokens := flag.Bool("tokens", false, "Scan FILE as Lox source and print its tokens")
	emit := flag.String("emit", "", "Write the chunk image to this path instead of running it")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lox [options] FILE\n\n")
		fmt.Fprintf(os.Stderr, "Assembles FILE (or loads it when it ends in %s) and runs the chunk.\n\n", lox.ImageExt)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lox examples/arith.loxasm              # Run an assembly file\n")
		fmt.Fprintf(os.Stderr, "  lox -dis examples/arith.loxasm         # Disassemble it\n")
		fmt.Fprintf(os.Stderr, "  lox -emit arith.loxc arith.loxasm      # Save the chunk image\n")
		fmt.Fprintf(os.Stderr, "  lox -tokens script.lox                 # Dump scanner tokens\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}
	srcName := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOErr)
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	log := commonlog.GetLogger("lox")
	if cfg.Path != "" {
		log.Infof("using config %s", cfg.Path)
	}

	if *tokens {
		os.Exit(dumpTokens(srcName))
	}

	chunk, source, err := lox.LoadChunk(srcName)
	if err != nil {
		os.Exit(report(err, source))
	}

	switch {
	case *dis:
		lox.DisassembleChunk(os.Stdout, chunk, srcName)
	case *emit != "":
		if err := lox.WriteChunkFile(*emit, chunk); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitIOErr)
		}
		log.Infof("wrote %s (%d bytes of code)", *emit, chunk.Len())
	default:
		opts := []lox.Option{}
		if *trace {
			opts = append(opts, lox.WithTrace(os.Stderr))
		}
		vm := lox.NewVMFromConfig(cfg.VM, opts...)
		if result := vm.Interpret(chunk); result.IsErr() {
			os.Exit(report(result.Err, source))
		}
	}
}

func loadConfig(path string) (*lox.Config, error) {
	if path != "" {
		return lox.LoadConfig(path)
	}
	cfg, err := lox.FindConfig(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = lox.DefaultConfig()
	}
	return cfg, nil
}

func dumpTokens(srcName string) int {
	source, err := os.ReadFile(srcName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %s\n", err)
		return exitIOErr
	}
	status := 0
	line := -1
	for tok := range lox.NewFileScanner(srcName, string(source)).All() {
		if tok.Loc.Line != line {
			fmt.Printf("%4d ", tok.Loc.Line)
			line = tok.Loc.Line
		} else {
			fmt.Print("   | ")
		}
		fmt.Printf("%-18s '%s'\n", tok.Kind, tok.Lexeme)
		if tok.Kind == lox.TokenError {
			fmt.Fprintln(os.Stderr, lox.NewLexerError(tok.Lexeme, tok.Loc).ShowSource(string(source)))
			status = exitDataErr
		}
	}
	return status
}

// report prints err and maps it to an exit status.
func report(err error, source string) int {
	var lerr *lox.LoxError
	if !errors.As(err, &lerr) {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitIOErr
	}
	if source != "" {
		fmt.Fprintln(os.Stderr, lerr.ShowSource(source))
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	switch lerr.Type {
	case lox.ErrorBadChunk:
		return exitSoftware
	default:
		return exitDataErr
	}
}
