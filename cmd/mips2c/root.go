package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/asmtext"
	"github.com/mewbak/mips-to-c/internal/logging"
	"github.com/mewbak/mips-to-c/internal/translate"
)

func newRootCmd() *cobra.Command {
	var debug bool
	var stopOnError bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "mips2c <file.s>",
		Short: "Translate a MIPS32 assembly function into C-like pseudocode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debug)
			if err != nil {
				return fmt.Errorf("mips2c: setting up logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			out := io.Writer(os.Stdout)
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("mips2c: opening %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}

			return run(args[0], translate.Options{Debug: debug, StopOnError: stopOnError}, logger, out)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "print verbose per-node translation tracing")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "abort on the first per-block translation failure instead of recovering it into a comment")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (default: stdout)")

	return cmd
}

func run(path string, options translate.Options, logger logger, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("mips2c: %w", err)
	}
	defer f.Close()

	parsed, err := asmtext.Parse(f, path)
	if err != nil {
		return fmt.Errorf("mips2c: parsing %s: %w", path, err)
	}
	if len(parsed.Functions) == 0 {
		return fmt.Errorf("mips2c: %s defines no functions", path)
	}

	for _, fn := range parsed.Functions {
		logger.Debugf("translating function %s", fn.Name)
		info, err := translate.TranslateToAST(fn, options)
		if err != nil {
			var blockErr *translate.BlockError
			if errors.As(err, &blockErr) {
				logger.Warnw("per-block translation failure", "function", fn.Name, "error", blockErr.Err)
			}
			return fmt.Errorf("mips2c: translating %s: %w", fn.Name, err)
		}
		fmt.Fprintf(out, "// %s\n", fn.Name)
		for _, node := range info.Graph.Nodes {
			bi, ok := node.BlockInfo.(*translate.BlockInfo)
			if !ok {
				continue
			}
			for _, stmt := range bi.ToWrite {
				if stmt.ShouldWrite() {
					fmt.Fprintln(out, stmt.String())
				}
			}
			if bi.BranchCondition != nil {
				cond := ast.SimplifyCondition(bi.BranchCondition)
				fmt.Fprintf(out, "if (%s) goto ...;\n", cond)
			}
			if bi.ReturnValue != nil {
				fmt.Fprintf(out, "return %s;\n", bi.ReturnValue)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

// logger is the subset of *zap.SugaredLogger this package calls, kept
// narrow so the driver's control flow doesn't depend on zap's full API.
type logger interface {
	Debugf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}
