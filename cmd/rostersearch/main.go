// Package main provides the CLI entry point for rostersearch.
package main

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/islomar/rostersearch/internal/cli"
	"github.com/islomar/rostersearch/internal/config"
	"github.com/islomar/rostersearch/internal/criteria"
	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/internal/pipeline"
	"github.com/islomar/rostersearch/internal/runtime"
	"github.com/islomar/rostersearch/internal/sample"
	"github.com/islomar/rostersearch/internal/transform"
	"github.com/islomar/rostersearch/pkg/roster"
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const defaultSampleSize = 20

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		cli.PrintError(stderr, err, a.verbose)
	}
	return cli.ExitCode(err)
}

// app holds global flags and output streams shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	verbose   bool
	quiet     bool
	logFormat string
	asOf      string

	now time.Time
}

// clock returns the reference date: --as-of when given, otherwise the start
// time of the command.
func (a *app) clock() time.Time {
	return a.now
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rostersearch",
		Short: "rostersearch - Search a roster of people by named criteria",
		Long: `rostersearch filters a roster of people by a named criterion,
maps each match to a field and prints it.

Criteria come from the built-in registry (adult-driver, draft-eligible,
pilot-eligible) or from a criteria file (JSON/YAML) declaring expr or
JavaScript tests.

Examples:
  # Search a generated roster
  rostersearch search pilot-eligible --seed 42

  # Search a roster file and print emails
  rostersearch search draft-eligible --roster people.yaml --map email

  # Add criteria from a file
  rostersearch search senior --criteria criteria.yaml --roster people.json`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.configure()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "json", "Log format: json or human")
	root.PersistentFlags().StringVar(&a.asOf, "as-of", "", "Reference date for ages (YYYY-MM-DD, default today)")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(a.searchCmd(), a.criteriaCmd(), a.validateCmd(), a.generateCmd(), a.versionCmd())
	return root
}

// configure applies the global flags to the logger and reference date.
func (a *app) configure() error {
	format, err := logger.ParseFormat(a.logFormat)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	} else if a.quiet {
		level = slog.LevelError
	}
	logger.SetOutput(a.stderr)
	logger.SetLevelAndFormat(level, format)

	a.now = time.Now().UTC()
	if a.asOf != "" {
		asOf, err := roster.ParseDate(a.asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		a.now = asOf
	}
	return nil
}

// registry builds the criteria registry, adding criteriaPath's criteria when set.
func (a *app) registry(criteriaPath string) (*criteria.Registry, error) {
	reg := criteria.New(criteria.WithClock(a.clock))
	if criteriaPath == "" {
		return reg, nil
	}

	file, err := config.LoadCriteriaFile(criteriaPath)
	if err != nil {
		return nil, err
	}
	if err := reg.Load(file.Criteria); err != nil {
		return nil, fmt.Errorf("%s: %w", criteriaPath, err)
	}
	logger.Debug("criteria loaded",
		slog.String("file", criteriaPath),
		slog.Int("count", len(file.Criteria)),
	)
	return reg, nil
}

type searchFlags struct {
	roster   string
	criteria string
	mapper   string
	template string
	eastern  bool
	count    int
	seed     uint64
}

func (a *app) searchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search <criterion>",
		Short: "Print the people matching a criterion",
		Long: `Print every person of the roster matching the named criterion,
one result per line, in roster order. The summary goes to stderr.

Without --roster a sample roster of --count people is generated;
--seed makes it reproducible.

Each match is printed with --map (default western-name), or with
--template whose {{field}} placeholders name person fields: name,
givenName, familyName, email, phone, gender, age, birthDate.

Exit codes:
  0 - Search completed
  1 - Invalid roster entry or criterion definition
  2 - Parse errors in a roster or criteria file
  3 - Runtime errors
  4 - Unknown criterion or mapper`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.roster, "roster", "r", "", "Roster file (JSON/YAML)")
	cmd.Flags().StringVarP(&f.criteria, "criteria", "c", "", "Criteria file (JSON/YAML) adding to the built-in criteria")
	cmd.Flags().StringVarP(&f.mapper, "map", "m", transform.WesternName, "Mapper applied to each match")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", `Template applied to each match, e.g. "{{givenName}} <{{email}}>"`)
	cmd.Flags().BoolVar(&f.eastern, "eastern", false, "Shorthand for --map "+transform.EasternName)
	cmd.Flags().IntVarP(&f.count, "count", "n", defaultSampleSize, "Sample roster size when --roster is not set")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for the sample roster")
	cmd.MarkFlagsMutuallyExclusive("map", "eastern", "template")
	cmd.MarkFlagsMutuallyExclusive("roster", "count")
	cmd.MarkFlagsMutuallyExclusive("roster", "seed")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, criterion string, f searchFlags) error {
	reg, err := a.registry(f.criteria)
	if err != nil {
		return err
	}

	people, source, err := a.people(cmd, f)
	if err != nil {
		return err
	}

	mapper := f.mapper
	if f.eastern {
		mapper = transform.EasternName
	}

	sink, printed := pipeline.PrintTo[string](a.stdout)
	executor := runtime.NewExecutor(reg, transform.New(a.clock))
	result, err := executor.Execute(runtime.Request{
		Criterion: criterion,
		Mapper:    mapper,
		Template:  f.template,
		Source:    source,
		People:    people,
	}, sink)
	if err != nil {
		return err
	}
	if err := printed.Err(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	cli.PrintSearchSummary(a.stderr, result, cli.OutputOptions{Verbose: a.verbose, Quiet: a.quiet})
	return nil
}

// people returns the roster to search and a description of its origin.
func (a *app) people(cmd *cobra.Command, f searchFlags) (iter.Seq[roster.Person], string, error) {
	if f.roster != "" {
		list, err := config.LoadRosterFile(f.roster, a.clock())
		if err != nil {
			return nil, "", err
		}
		return slices.Values(list), f.roster, nil
	}

	if f.count < 0 {
		return nil, "", fmt.Errorf("invalid --count %d: must not be negative", f.count)
	}
	opts := []sample.Option{}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, sample.WithSeed(f.seed))
	}
	return sample.New(a.clock(), opts...).Seq(f.count), "sample", nil
}

func (a *app) criteriaCmd() *cobra.Command {
	var criteriaPath string

	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List the registered criteria",
		Long: `List the built-in criteria and, with --criteria, the ones declared
in a criteria file. With --verbose the available mappers are listed too.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := a.registry(criteriaPath)
			if err != nil {
				return err
			}
			if err := cli.PrintCriteria(a.stdout, reg.Entries()); err != nil {
				return err
			}
			if a.verbose {
				fmt.Fprintln(a.stdout)
				cli.PrintMappers(a.stdout, transform.New(a.clock).Names())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&criteriaPath, "criteria", "c", "", "Criteria file (JSON/YAML)")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a criteria or roster file",
		Long: `Validate a criteria or roster file against its schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content; the kind
from the top-level key (criteria or people).

Criteria are also compiled, and roster entries checked for future
birth dates and malformed emails.

Exit codes:
  0 - File is valid
  1 - Validation errors
  2 - Parse errors (invalid JSON/YAML syntax)`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runValidate(args[0])
		},
	}
}

func (a *app) runValidate(path string) error {
	if !a.quiet {
		fmt.Fprintf(a.stdout, "Validating: %s\n", path)
	}

	result := config.ParseConfig(path)
	if !result.IsValid() {
		return &config.ResultError{Result: result}
	}

	switch result.Kind {
	case config.KindCriteria:
		if _, err := a.registry(path); err != nil {
			return err
		}
	case config.KindRoster:
		if _, err := config.LoadRosterFile(path, a.clock()); err != nil {
			return err
		}
	}

	if !a.quiet {
		cli.PrintValidResult(a.stdout, result, a.verbose)
	}
	return nil
}

type generateFlags struct {
	count  int
	seed   uint64
	format string
	minAge int
	maxAge int
	domain string
}

func (a *app) generateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a sample roster file",
		Long: `Print a randomly generated roster document that search --roster
and validate accept.

Examples:
  rostersearch generate --count 100 --seed 7 --format yaml > people.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.count < 0 {
				return fmt.Errorf("invalid --count %d: must not be negative", f.count)
			}
			opts := []sample.Option{
				sample.WithAgeRange(f.minAge, f.maxAge),
				sample.WithDomain(f.domain),
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, sample.WithSeed(f.seed))
			}
			people := sample.New(a.clock(), opts...).Roster(f.count)
			return cli.WriteRoster(a.stdout, people, f.format)
		},
	}

	cmd.Flags().IntVarP(&f.count, "count", "n", defaultSampleSize, "Number of people")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for reproducible output")
	cmd.Flags().StringVarP(&f.format, "format", "f", config.FormatJSON, "Output format: json or yaml")
	cmd.Flags().IntVar(&f.minAge, "min-age", sample.DefaultMinAge, "Minimum age")
	cmd.Flags().IntVar(&f.maxAge, "max-age", sample.DefaultMaxAge, "Maximum age")
	cmd.Flags().StringVar(&f.domain, "domain", "", "Email domain (default example.com)")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "Version: %s\n", version)
			fmt.Fprintf(a.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "Build Date: %s\n", buildDate)
		},
	}
}
