package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/geninst/internal/config"
	"github.com/funvibe/geninst/pkg/geninst"
)

var (
	configPath    string
	universeFiles []string
	maxDepth      int
	seed          uint64
	verbose       int
	tries         int
	bindings      []string

	rootCmd = &cobra.Command{
		Use:           "geninst",
		Short:         "Instantiate generic Java-like types with concrete type arguments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	instantiateCmd = &cobra.Command{
		Use:   "instantiate <type>...",
		Short: "Replace every type variable and wildcard with a fitting class",
		Example: `  geninst instantiate "<T extends Comparable<T>> java.util.List<T>"
  geninst instantiate --bind T=Integer "<T extends Number> Map<String, T>"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstantiate,
	}

	checkCmd = &cobra.Command{
		Use:   "check <candidate> <bound>",
		Short: "Check a candidate against a type variable or wildcard",
		Example: `  geninst check Integer "<T extends Number> T"
  geninst check Object "? super Integer"`,
		Args: cobra.ExactArgs(2),
		RunE: runCheck,
	}

	batchCmd = &cobra.Command{
		Use:   "batch <file>",
		Short: "Instantiate one type per line of a file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	classesCmd = &cobra.Command{
		Use:   "classes",
		Short: "List the classes of the universe",
		Args:  cobra.NoArgs,
		RunE:  runClasses,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "settings file (default ./"+config.SettingsFileName+" if present)")
	pf.StringArrayVarP(&universeFiles, "universe", "u", nil, "additional class universe file (repeatable)")
	pf.IntVar(&maxDepth, "max-depth", config.MaxGenericDepth, "recursion budget for nested candidates (overrides the settings file)")
	pf.Uint64Var(&seed, "seed", 0, "seed for candidate selection (0 is random)")
	pf.CountVarP(&verbose, "verbose", "v", "log more (-v info, -vv debug)")

	for _, c := range []*cobra.Command{instantiateCmd, batchCmd} {
		c.Flags().IntVar(&tries, "tries", config.DefaultTries, "attempts per type before giving up (overrides the settings file)")
		c.Flags().StringArrayVarP(&bindings, "bind", "b", nil, "fix a candidate, e.g. T=Integer or '? super Integer=Number'")
	}

	rootCmd.AddCommand(instantiateCmd, checkCmd, batchCmd, classesCmd)
}

// newEngine builds the engine from the settings file and flags; flags win.
func newEngine(cmd *cobra.Command) (*geninst.Engine, error) {
	settings := config.DefaultSettings()
	path := configPath
	if path == "" {
		if _, err := os.Stat(config.SettingsFileName); err == nil {
			path = config.SettingsFileName
		}
	}
	if path != "" {
		s, err := config.LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = s
	}

	level := settings.Level()
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []geninst.Option{
		geninst.WithSettings(settings),
		geninst.WithUniverseFiles(universeFiles...),
		geninst.WithLogger(logger),
	}
	if cmd.Flags().Changed("max-depth") {
		opts = append(opts, geninst.WithMaxDepth(maxDepth))
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, geninst.WithSeed(seed))
	}
	if cmd.Flags().Changed("tries") {
		opts = append(opts, geninst.WithTries(tries))
	}
	for _, b := range bindings {
		key, text, ok := strings.Cut(b, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid binding %q, want KEY=TYPE", b)
		}
		opts = append(opts, geninst.WithBinding(strings.TrimSpace(key), strings.TrimSpace(text)))
	}
	return geninst.New(opts...)
}

func runInstantiate(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, text := range args {
		inst, err := e.InstantiateText(text)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", paint(colorRed, "FAIL"), text, err)
			continue
		}
		fmt.Fprintln(out, paint(colorGreen, inst.Name()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d types could not be instantiated", failed, len(args))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	cand, err := e.Parse(args[0])
	if err != nil {
		return err
	}
	bound, err := e.Parse(args[1])
	if err != nil {
		return err
	}
	if e.SatisfiesBounds(cand, bound.Type) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s fits %s\n", paint(colorGreen, "OK"), cand.Name(), bound.Name())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s does not fit %s\n", paint(colorRed, "NO"), cand.Name(), bound.Name())
	return errors.New("bound not satisfied")
}

// runBatch reads one type per line; blank lines and lines starting with #
// are skipped.
func runBatch(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	results, err := e.InstantiateAll(cmd.Context(), texts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "%s\t%s\t%s %v\n", r.ID, r.Input, paint(colorRed, "FAIL"), r.Err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", r.ID, r.Input, paint(colorGreen, r.Output.Name()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d types could not be instantiated", failed, len(results))
	}
	return nil
}

func runClasses(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}
	for _, name := range e.Classes() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
