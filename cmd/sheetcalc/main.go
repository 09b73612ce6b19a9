// Command sheetcalc evaluates spreadsheet formulas and sheet scripts, and
// keeps named sheets in a local database.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vogtb/sheetcalc/packages/lexer"
	"github.com/vogtb/sheetcalc/packages/script"
	"github.com/vogtb/sheetcalc/packages/spreadsheet"
	"github.com/vogtb/sheetcalc/packages/store"
)

const dbEnv = "SHEETCALC_DB"

type config struct {
	db        string
	sheet     string
	precision int
	excel     bool
	verbose   bool
	save      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "sheetcalc: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cfg := &config{}

	root := &cobra.Command{
		Use:           "sheetcalc",
		Short:         "Evaluate spreadsheet formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.db, "db", os.Getenv(dbEnv), "sheet database file (default $"+dbEnv+")")
	flags.StringVar(&cfg.sheet, "sheet", "default", "name of the saved sheet")
	flags.IntVar(&cfg.precision, "precision", spreadsheet.DefaultPrecision, "decimal places to display")
	flags.BoolVar(&cfg.excel, "excel", false, "tokenize formulas with the Excel grammar")
	flags.BoolVar(&cfg.verbose, "verbose", false, "log calculation details")

	root.AddCommand(
		newEvalCommand(cfg),
		newRunCommand(cfg),
		newShowCommand(cfg),
		newListCommand(cfg),
		newDeleteCommand(cfg),
	)
	return root
}

func newEvalCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FORMULA",
		Short: "Evaluate one formula against the saved sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := loadSheet(cmd, cfg)
			if err != nil {
				return err
			}
			if err := sheet.Calculate(); err != nil {
				return err
			}
			result := sheet.Evaluate(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), spreadsheet.FormatResult(result, cfg.precision))
			return nil
		},
	}
}

func newRunCommand(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Apply a sheet script and print every cell",
		Long:  "Apply a sheet script (one LABEL = formula per line, - for stdin) on top of the saved sheet and print every cell.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readScript(cmd, args[0])
			if err != nil {
				return err
			}
			entries, err := script.Parse(args[0], source)
			if err != nil {
				return err
			}

			sheet, err := loadSheet(cmd, cfg)
			if err != nil {
				return err
			}
			if err := script.Apply(sheet, entries); err != nil {
				return err
			}
			if err := sheet.Calculate(); err != nil {
				return err
			}

			if cfg.save {
				if err := saveSheet(cfg, sheet); err != nil {
					return err
				}
			}
			return printSheet(cmd.OutOrStdout(), sheet, false)
		},
	}
	cmd.Flags().BoolVar(&cfg.save, "save", false, "save the result to --db under --sheet")
	return cmd
}

func newShowCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print a saved sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.db == "" {
				return errors.New("show needs --db or $" + dbEnv)
			}
			sheet, err := loadSheet(cmd, cfg)
			if err != nil {
				return err
			}
			if err := sheet.Calculate(); err != nil {
				return err
			}
			return printSheet(cmd.OutOrStdout(), sheet, true)
		},
	}
}

func newListCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				info, err := s.Stat(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", info.Name, info.Cells, info.SavedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newDeleteCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(args[0])
		},
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newSheet(cmd *cobra.Command, cfg *config) *spreadsheet.Spreadsheet {
	opts := spreadsheet.DefaultOptions()
	opts.Precision = cfg.precision
	opts.Logger = newLogger(cmd.ErrOrStderr(), cfg.verbose)
	if cfg.excel {
		opts.Tokenizer = lexer.FromExcel
	}
	return spreadsheet.NewSpreadsheetWithOptions(opts)
}

// loadSheet returns the saved sheet, or an empty one when there is no
// database or nothing saved under the name yet
func loadSheet(cmd *cobra.Command, cfg *config) (*spreadsheet.Spreadsheet, error) {
	sheet := newSheet(cmd, cfg)
	if cfg.db == "" {
		return sheet, nil
	}

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cells, err := s.Load(cfg.sheet)
	if errors.Cause(err) == store.ErrNotFound {
		return sheet, nil
	}
	if err != nil {
		return nil, err
	}
	if err := sheet.Load(cells); err != nil {
		return nil, errors.Wrapf(err, "load sheet %q", cfg.sheet)
	}
	return sheet, nil
}

func saveSheet(cfg *config, sheet *spreadsheet.Spreadsheet) error {
	if cfg.db == "" {
		return errors.New("--save needs --db or $" + dbEnv)
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(cfg.sheet, sheet.Snapshot())
}

func openStore(cfg *config) (*store.Store, error) {
	if cfg.db == "" {
		return nil, errors.New("no database: set --db or $" + dbEnv)
	}
	return store.Open(cfg.db, store.DefaultOptions())
}

func readScript(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), errors.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	return string(b), nil
}

func printSheet(w io.Writer, sheet *spreadsheet.Spreadsheet, withInput bool) error {
	for _, label := range sheet.Labels() {
		shown, err := sheet.Display(label)
		if err != nil {
			return err
		}
		if withInput {
			input, err := sheet.Input(label)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", label, input, shown)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", label, shown)
	}
	return nil
}
