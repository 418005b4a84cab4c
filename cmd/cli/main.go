package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"bootstat/adapters/excel"
	"bootstat/adapters/postgres"
	"bootstat/adapters/rng"
	"bootstat/adapters/stats"
	"bootstat/app"
	"bootstat/domain/bootstrap"
	"bootstat/internal/config"
	"bootstat/ports"
)

func main() {
	// Flag defaults come from the environment, so a .env file can pin
	// project-wide replication counts and seeds.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	appConfig, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "bootstat",
		Short: "Bootstrap confidence intervals and significance for correlations",
	}

	rootCmd.AddCommand(
		newCorrCmd(appConfig),
		newDiffCmd(appConfig),
		newMethodsCmd(),
		newColumnsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analysisFlags are the knobs shared by the corr and diff commands
type analysisFlags struct {
	samples   int
	alpha     float64
	seed      int64
	method    string
	workers   int
	estimates bool
	hist      bool
}

func bindAnalysisFlags(cmd *cobra.Command, flags *analysisFlags, appConfig *config.Config) {
	cmd.Flags().IntVar(&flags.samples, "samples", appConfig.Bootstrap.Replications, "Number of bootstrap replications")
	cmd.Flags().Float64Var(&flags.alpha, "alpha", appConfig.Bootstrap.Alpha, "Two-sided significance level in (0, 1)")
	cmd.Flags().Int64Var(&flags.seed, "seed", appConfig.Bootstrap.Seed, "Random seed for deterministic resampling")
	cmd.Flags().StringVar(&flags.method, "method", appConfig.Bootstrap.Method, "Correlation statistic: pearson|spearman")
	cmd.Flags().IntVar(&flags.workers, "workers", appConfig.Bootstrap.Workers, "Concurrent statistic evaluations")
	cmd.Flags().BoolVar(&flags.estimates, "estimates", false, "Print the raw estimate vector, one value per line")
	cmd.Flags().BoolVar(&flags.hist, "hist", false, "Render a text histogram of the bootstrap distribution")
}

func newCorrCmd(appConfig *config.Config) *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "corr [data-file] [col-x] [col-y]",
		Short: "Bootstrap a correlation coefficient with CI and empirical p-value",
		Long: `Bootstrap the sampling distribution of a correlation between two columns
of an xlsx or csv file. Both columns are resampled jointly, preserving row
pairing within every draw.

Example: bootstat corr sales.xlsx ad_spend revenue --method pearson --samples 5000 --seed 42 --hist`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorr(cmd.Context(), appConfig, args[0], args[1], args[2], flags)
		},
	}

	bindAnalysisFlags(cmd, &flags, appConfig)
	return cmd
}

func newDiffCmd(appConfig *config.Config) *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "diff [data-file] [col-a] [col-b] [col-c]",
		Short: "Bootstrap the difference corr(a, b) - corr(a, c)",
		Long: `Test whether column a correlates more strongly with column b than with
column c. All three columns share index vectors within each draw, and both
correlations are computed from the same draws, so their per-draw difference
is a valid paired comparison. The empirical p-value tests the difference
against zero.

Example: bootstat diff survey.csv wellbeing income education --samples 10000`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), appConfig, args[0], args[1], args[2], args[3], flags)
		},
	}

	bindAnalysisFlags(cmd, &flags, appConfig)
	return cmd
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the registered correlation statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := stats.NewRegistry()
			fmt.Println("Available statistics:")
			for _, name := range registry.Names() {
				statistic, err := registry.ByName(name)
				if err != nil {
					continue
				}
				marker := " "
				if name == stats.DefaultMethod {
					marker = "*"
				}
				fmt.Printf("%s %-10s %s\n", marker, name, statistic.Description())
			}
			fmt.Println("\n* default method")
			return nil
		},
	}
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns [data-file]",
		Short: "List the column headers of an xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := excel.NewDataReader(args[0])
			columns, err := reader.ListColumns()
			if err != nil {
				return err
			}
			for _, column := range columns {
				fmt.Println(column)
			}
			return nil
		},
	}
}

// buildService wires the bootstrap service, attaching the run registry when
// DATABASE_URL is configured. A registry outage downgrades to a warning:
// the CLI's job is computing, history is best-effort.
func buildService(appConfig *config.Config, workers int) (*app.BootstrapService, func()) {
	var runRepo ports.RunRepository
	cleanup := func() {}

	if appConfig.Database.URL != "" {
		db, err := sqlx.Connect("postgres", appConfig.Database.URL)
		if err != nil {
			log.Printf("[CLI] Run registry unavailable: %v", err)
		} else if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Printf("[CLI] Run registry schema check failed: %v", err)
			db.Close()
		} else {
			runRepo = postgres.NewRunRepository(db)
			cleanup = func() { db.Close() }
		}
	}

	return app.NewBootstrapService(stats.NewRegistry(), rng.NewAdapter(), runRepo, workers), cleanup
}

func runCorr(ctx context.Context, appConfig *config.Config, file, colX, colY string, flags analysisFlags) error {
	reader := excel.NewDataReader(file)
	series, err := reader.ReadSeries(colX, colY)
	if err != nil {
		return err
	}

	service, cleanup := buildService(appConfig, flags.workers)
	defer cleanup()

	result, err := service.RunCorrelation(ctx, app.CorrelationRequest{
		XName:           colX,
		YName:           colY,
		X:               series[colX],
		Y:               series[colY],
		Method:          flags.method,
		Replications:    flags.samples,
		Alpha:           flags.alpha,
		Seed:            flags.seed,
		ReturnEstimates: flags.estimates || flags.hist,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 BOOTSTRAP CORRELATION\n")
	fmt.Printf("Method: %s\n", result.Method)
	fmt.Printf("Series: %s vs %s (n=%d)\n", colX, colY, result.SampleSize)
	fmt.Printf("Replications: %d (seed %d, alpha %g)\n\n", result.Replications, result.Seed, result.Alpha)

	fmt.Printf("Observed: %.4f (analytic p = %.4f)\n", result.Observed.Estimate, result.Observed.PValue)
	printDistribution(result.CI, result.Significance, result.Summary)

	if flags.hist {
		printHistogram(result.Estimates, result.Summary, result.CI)
	}
	if flags.estimates {
		printEstimates(result.Estimates)
	}

	fmt.Printf("\nRun %s completed in %dms\n", result.RunID, result.RuntimeMs)
	return nil
}

func runDiff(ctx context.Context, appConfig *config.Config, file, colA, colB, colC string, flags analysisFlags) error {
	reader := excel.NewDataReader(file)
	series, err := reader.ReadSeries(colA, colB, colC)
	if err != nil {
		return err
	}

	service, cleanup := buildService(appConfig, flags.workers)
	defer cleanup()

	result, err := service.RunDifference(ctx, app.DifferenceRequest{
		AName:           colA,
		BName:           colB,
		CName:           colC,
		A:               series[colA],
		B:               series[colB],
		C:               series[colC],
		Method:          flags.method,
		Replications:    flags.samples,
		Alpha:           flags.alpha,
		Seed:            flags.seed,
		ReturnEstimates: flags.estimates || flags.hist,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 BOOTSTRAP CORRELATION DIFFERENCE\n")
	fmt.Printf("Method: %s\n", result.Method)
	fmt.Printf("Comparing: corr(%s, %s) against corr(%s, %s) (n=%d)\n",
		colA, colB, colA, colC, result.SampleSize)
	fmt.Printf("Replications: %d (seed %d, alpha %g)\n\n", result.Replications, result.Seed, result.Alpha)

	fmt.Printf("corr(%s, %s) = %.4f (analytic p = %.4f)\n", colA, colB, result.ObservedAB.Estimate, result.ObservedAB.PValue)
	fmt.Printf("corr(%s, %s) = %.4f (analytic p = %.4f)\n", colA, colC, result.ObservedAC.Estimate, result.ObservedAC.PValue)
	fmt.Printf("corr(%s, %s) = %.4f (analytic p = %.4f)\n", colB, colC, result.ObservedBC.Estimate, result.ObservedBC.PValue)
	fmt.Printf("\nObserved difference: %.4f\n", result.ObservedDiff)
	printDistribution(result.CI, result.Significance, result.Summary)

	verdict := "no evidence the correlations differ"
	if result.CI.Excludes(0) {
		verdict = "the correlations differ at this alpha"
	}
	fmt.Printf("Verdict: %s\n", verdict)

	if flags.hist {
		printHistogram(result.Estimates, result.Summary, result.CI)
	}
	if flags.estimates {
		printEstimates(result.Estimates)
	}

	fmt.Printf("\nRun %s completed in %dms\n", result.RunID, result.RuntimeMs)
	return nil
}

func printDistribution(ci bootstrap.ConfidenceInterval, sig bootstrap.Significance, summary bootstrap.DistributionSummary) {
	fmt.Printf("Bootstrap %.0f%% CI: [%.4f, %.4f]\n", (1-ci.Alpha)*100, ci.Lower, ci.Upper)
	fmt.Printf("Empirical p (vs %g): %.4f (below=%.3f, above=%.3f)\n",
		sig.Reference, sig.PValue, sig.PropBelow, sig.PropAbove)
	fmt.Printf("Distribution: mean=%.4f sd=%.4f median=%.4f range=[%.4f, %.4f]\n",
		summary.Mean, summary.StdDev, summary.Median, summary.Min, summary.Max)
}

// printHistogram renders the bootstrap distribution as a text histogram,
// marking the bins holding the distribution mean and the interval bounds
// the way the plotted version draws vertical lines.
func printHistogram(estimates []float64, summary bootstrap.DistributionSummary, ci bootstrap.ConfidenceInterval) {
	bins, err := bootstrap.Histogram(estimates, 20)
	if err != nil || len(bins) == 0 {
		return
	}

	maxCount := 0
	for _, bin := range bins {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}

	const barWidth = 40
	fmt.Printf("\n📈 BOOTSTRAP DISTRIBUTION (%d estimates, %d bins)\n", len(estimates), len(bins))
	for i, bin := range bins {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("#", bin.Count*barWidth/maxCount)
		}
		fmt.Printf("%10.4f .. %10.4f  %-*s %5d%s\n",
			bin.Lower, bin.Upper, barWidth, bar, bin.Count,
			binMarkers(bin, i == len(bins)-1, summary.Mean, ci))
	}
}

// binMarkers labels a bin with the reference values falling inside it.
// Bins are half-open except the last, which also owns its upper edge.
func binMarkers(bin bootstrap.HistogramBin, last bool, mean float64, ci bootstrap.ConfidenceInterval) string {
	contains := func(v float64) bool {
		if last {
			return v >= bin.Lower && v <= bin.Upper
		}
		return v >= bin.Lower && v < bin.Upper
	}

	var labels []string
	if contains(ci.Lower) {
		labels = append(labels, "ci lower")
	}
	if contains(mean) {
		labels = append(labels, "mean")
	}
	if contains(ci.Upper) {
		labels = append(labels, "ci upper")
	}
	if len(labels) == 0 {
		return ""
	}
	return "  <- " + strings.Join(labels, ", ")
}

func printEstimates(estimates []float64) {
	fmt.Printf("\nEstimates (%d draws):\n", len(estimates))
	for _, estimate := range estimates {
		fmt.Printf("%g\n", estimate)
	}
}
