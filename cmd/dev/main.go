package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bootstat/adapters/stats"
	"bootstat/app"
	"bootstat/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bootstat-dev",
		Short: "Development tools for the bootstrap pipeline",
	}

	rootCmd.AddCommand(
		newDemoCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var samples int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run both analyses end to end on synthetic correlated data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), seed, samples)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic resampling")
	cmd.Flags().IntVar(&samples, "samples", 2000, "Number of bootstrap replications")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke tests against the full pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Verify that a fixed seed reproduces identical results across worker counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), seed)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed to replay")
	return cmd
}

func newService(workers int) *app.BootstrapService {
	kit := testkit.NewTestKit()
	return app.NewBootstrapService(stats.NewRegistry(), kit.RNGAdapter(), nil, workers)
}

func runDemo(ctx context.Context, seed int64, samples int) error {
	kit := testkit.NewTestKitWithSeed(seed)
	service := newService(2)

	fmt.Println("Generating synthetic data: x, y with population correlation 0.6...")
	x, y := kit.CorrelatedPair(200, 0.6)

	corr, err := service.RunCorrelation(ctx, app.CorrelationRequest{
		XName: "x", YName: "y", X: x, Y: y,
		Method: "pearson", Replications: samples, Seed: seed,
	})
	if err != nil {
		return fmt.Errorf("correlation demo failed: %w", err)
	}

	fmt.Printf("\n📊 CORRELATION\n")
	fmt.Printf("Observed r = %.4f (analytic p = %.4f)\n", corr.Observed.Estimate, corr.Observed.PValue)
	fmt.Printf("Bootstrap %.0f%% CI: [%.4f, %.4f], empirical p = %.4f\n",
		(1-corr.Alpha)*100, corr.CI.Lower, corr.CI.Upper, corr.Significance.PValue)

	fmt.Println("\nGenerating a, b, c where corr(a, b) and corr(a, c) are equal by construction...")
	a, b, c := kit.EquallyCorrelatedTriple(200, 0.6)

	diff, err := service.RunDifference(ctx, app.DifferenceRequest{
		AName: "a", BName: "b", CName: "c", A: a, B: b, C: c,
		Method: "pearson", Replications: samples, Seed: seed,
	})
	if err != nil {
		return fmt.Errorf("difference demo failed: %w", err)
	}

	fmt.Printf("\n📊 DIFFERENCE\n")
	fmt.Printf("corr(a, b) = %.4f, corr(a, c) = %.4f, observed diff = %.4f\n",
		diff.ObservedAB.Estimate, diff.ObservedAC.Estimate, diff.ObservedDiff)
	fmt.Printf("Bootstrap %.0f%% CI: [%.4f, %.4f], empirical p = %.4f\n",
		(1-diff.Alpha)*100, diff.CI.Lower, diff.CI.Upper, diff.Significance.PValue)
	fmt.Println("\nWith equal true correlations the difference interval should cover zero.")

	return nil
}

func runSmokeTests(ctx context.Context) error {
	fmt.Println("Running smoke tests...")

	kit := testkit.NewTestKit()
	service := newService(2)

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"perfect_correlation", func(ctx context.Context) error {
			x := kit.LinearSeries(10)
			result, err := service.RunCorrelation(ctx, app.CorrelationRequest{
				X: x, Y: x, Method: "pearson", Replications: 200, Seed: 1,
			})
			if err != nil {
				return err
			}
			if result.Observed.Estimate != 1.0 {
				return fmt.Errorf("expected observed r = 1.0, got %v", result.Observed.Estimate)
			}
			if result.CI.Lower != 1.0 || result.CI.Upper != 1.0 {
				return fmt.Errorf("expected degenerate interval at 1.0, got [%v, %v]", result.CI.Lower, result.CI.Upper)
			}
			return nil
		}},
		{"zero_difference", func(ctx context.Context) error {
			a, b := kit.CorrelatedPair(50, 0.5)
			result, err := service.RunDifference(ctx, app.DifferenceRequest{
				A: a, B: b, C: b, Replications: 200, Seed: 1,
			})
			if err != nil {
				return err
			}
			if result.ObservedDiff != 0 {
				return fmt.Errorf("b == c must give a zero observed difference, got %v", result.ObservedDiff)
			}
			return nil
		}},
		{"method_listing", func(ctx context.Context) error {
			methods := service.Methods()
			for _, name := range []string{"pearson", "spearman"} {
				if _, ok := methods[name]; !ok {
					return fmt.Errorf("method %q missing from registry", name)
				}
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}

	return nil
}

func testDeterminism(ctx context.Context, seed int64) error {
	fmt.Printf("Testing determinism for seed %d...\n", seed)

	kit := testkit.NewTestKitWithSeed(seed)
	x, y := kit.CorrelatedPair(100, 0.5)

	request := app.CorrelationRequest{
		X: x, Y: y, Replications: 1000, Seed: seed, ReturnEstimates: true,
	}

	fmt.Println("Running sequentially...")
	sequential, err := newService(1).RunCorrelation(ctx, request)
	if err != nil {
		return fmt.Errorf("sequential run failed: %w", err)
	}

	fmt.Println("Re-running with 8 workers...")
	parallel, err := newService(8).RunCorrelation(ctx, request)
	if err != nil {
		return fmt.Errorf("parallel run failed: %w", err)
	}

	if err := compareRuns(sequential, parallel); err != nil {
		return fmt.Errorf("determinism test failed: %w", err)
	}

	fmt.Println("✓ Determinism test passed - results identical")
	return nil
}

func compareRuns(original, replay *app.CorrelationResult) error {
	if original.Fingerprint != replay.Fingerprint {
		return fmt.Errorf("fingerprints differ")
	}
	if len(original.Estimates) != len(replay.Estimates) {
		return fmt.Errorf("estimate counts differ: %d vs %d",
			len(original.Estimates), len(replay.Estimates))
	}
	for i := range original.Estimates {
		if original.Estimates[i] != replay.Estimates[i] {
			return fmt.Errorf("estimates diverge at draw %d: %v vs %v",
				i, original.Estimates[i], replay.Estimates[i])
		}
	}
	if original.CI != replay.CI {
		return fmt.Errorf("intervals differ: %+v vs %+v", original.CI, replay.CI)
	}
	if original.Significance.PValue != replay.Significance.PValue {
		return fmt.Errorf("p-values differ: %v vs %v",
			original.Significance.PValue, replay.Significance.PValue)
	}
	return nil
}
