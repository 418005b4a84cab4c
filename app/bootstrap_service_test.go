package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"bootstat/adapters/stats"
	"bootstat/domain/core"
	"bootstat/internal/testkit"
	"bootstat/models"
	"bootstat/ports"
)

func newService(repo ports.RunRepository, workers int) *BootstrapService {
	kit := testkit.NewTestKit()
	return NewBootstrapService(stats.NewRegistry(), kit.RNGAdapter(), repo, workers)
}

// fakeRunRepo records saved runs in memory
type fakeRunRepo struct {
	saved   []*models.RunRecord
	saveErr error
}

func (f *fakeRunRepo) SaveRun(ctx context.Context, record *models.RunRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeRunRepo) GetRun(ctx context.Context, runID uuid.UUID) (*models.RunRecord, error) {
	for _, record := range f.saved {
		if record.ID == runID {
			return record, nil
		}
	}
	return nil, core.ErrRunNotFound
}

func (f *fakeRunRepo) ListRecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	return f.saved, nil
}

func TestRunCorrelationPerfectRelationship(t *testing.T) {
	kit := testkit.NewTestKit()
	x := kit.LinearSeries(10)
	y := append([]float64(nil), x...)

	result, err := newService(nil, 1).RunCorrelation(context.Background(), CorrelationRequest{
		X:            x,
		Y:            y,
		Method:       "pearson",
		Replications: 500,
		Alpha:        0.05,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("RunCorrelation: %v", err)
	}

	if result.Observed.Estimate != 1.0 {
		t.Fatalf("identical series must give observed r = 1.0, got %v", result.Observed.Estimate)
	}
	if result.CI.Lower != 1.0 || result.CI.Upper != 1.0 {
		t.Fatalf("expected degenerate interval at 1.0, got [%v, %v]", result.CI.Lower, result.CI.Upper)
	}
	if result.Significance.PValue != 0 {
		t.Fatalf("every estimate sits above zero, expected p = 0, got %v", result.Significance.PValue)
	}
	if result.Summary.Median != 1.0 {
		t.Fatalf("expected estimate median 1.0, got %v", result.Summary.Median)
	}
	if result.SampleSize != 10 || result.Replications != 500 {
		t.Fatalf("unexpected run dimensions: %+v", result)
	}
	if result.Estimates != nil {
		t.Fatal("estimates must be omitted unless requested")
	}
}

func TestRunCorrelationDeterminism(t *testing.T) {
	kit := testkit.NewTestKit()
	x, y := kit.CorrelatedPair(80, 0.5)

	request := CorrelationRequest{
		X:               x,
		Y:               y,
		Replications:    400,
		Seed:            7,
		ReturnEstimates: true,
	}

	first, err := newService(nil, 1).RunCorrelation(context.Background(), request)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := newService(nil, 4).RunCorrelation(context.Background(), request)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// Same seed, different worker counts: byte-for-byte identical output.
	if len(first.Estimates) != 400 || len(second.Estimates) != 400 {
		t.Fatalf("expected 400 estimates, got %d and %d", len(first.Estimates), len(second.Estimates))
	}
	for i := range first.Estimates {
		if first.Estimates[i] != second.Estimates[i] {
			t.Fatalf("draw %d: %v != %v across worker counts", i, first.Estimates[i], second.Estimates[i])
		}
	}
	if first.CI != second.CI {
		t.Fatalf("intervals diverged: %+v vs %+v", first.CI, second.CI)
	}
	if first.Significance.PValue != second.Significance.PValue {
		t.Fatalf("p-values diverged: %v vs %v", first.Significance.PValue, second.Significance.PValue)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatalf("fingerprints diverged: %v vs %v", first.Fingerprint, second.Fingerprint)
	}

	request.Seed = 8
	reseeded, err := newService(nil, 1).RunCorrelation(context.Background(), request)
	if err != nil {
		t.Fatalf("reseeded run: %v", err)
	}
	same := true
	for i := range first.Estimates {
		if first.Estimates[i] != reseeded.Estimates[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical estimate vectors")
	}
	if first.Fingerprint == reseeded.Fingerprint {
		t.Fatal("different seeds must produce different fingerprints")
	}
}

func TestRunDifferenceIdenticalSeries(t *testing.T) {
	// When B and C hold the same values, both correlations are computed
	// from the same resampled rows, so every paired difference is exactly
	// zero. Ties at the reference leave both tails empty.
	kit := testkit.NewTestKit()
	a, b := kit.CorrelatedPair(60, 0.5)
	c := append([]float64(nil), b...)

	result, err := newService(nil, 2).RunDifference(context.Background(), DifferenceRequest{
		A:               a,
		B:               b,
		C:               c,
		Replications:    300,
		Seed:            42,
		ReturnEstimates: true,
	})
	if err != nil {
		t.Fatalf("RunDifference: %v", err)
	}

	if result.ObservedDiff != 0 {
		t.Fatalf("expected observed difference 0, got %v", result.ObservedDiff)
	}
	for i, d := range result.Estimates {
		if d != 0 {
			t.Fatalf("draw %d: expected exact zero difference, got %v", i, d)
		}
	}
	if result.CI.Lower != 0 || result.CI.Upper != 0 {
		t.Fatalf("expected degenerate interval at 0, got [%v, %v]", result.CI.Lower, result.CI.Upper)
	}
	if result.Significance.PropBelow != 0 || result.Significance.PropAbove != 0 {
		t.Fatalf("ties must count toward neither tail, got below=%v above=%v",
			result.Significance.PropBelow, result.Significance.PropAbove)
	}
	if result.ObservedAB.Estimate != result.ObservedAC.Estimate {
		t.Fatalf("observed correlations must match: %v vs %v",
			result.ObservedAB.Estimate, result.ObservedAC.Estimate)
	}
}

func TestRunDifferenceEquallyCorrelatedTriple(t *testing.T) {
	kit := testkit.NewTestKit()
	a, b, c := kit.EquallyCorrelatedTriple(300, 0.6)

	result, err := newService(nil, 2).RunDifference(context.Background(), DifferenceRequest{
		A:            a,
		B:            b,
		C:            c,
		Replications: 1000,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("RunDifference: %v", err)
	}

	// True difference is zero; the observed one only carries sampling noise.
	if result.ObservedDiff > 0.15 || result.ObservedDiff < -0.15 {
		t.Fatalf("expected near-zero observed difference, got %v", result.ObservedDiff)
	}
	if result.Summary.Mean > 0.2 || result.Summary.Mean < -0.2 {
		t.Fatalf("expected difference distribution centered near zero, got mean %v", result.Summary.Mean)
	}
	if result.CI.Lower > 0.2 || result.CI.Upper < -0.2 {
		t.Fatalf("interval [%v, %v] sits implausibly far from zero", result.CI.Lower, result.CI.Upper)
	}
	if result.Significance.PValue < 0 || result.Significance.PValue > 1 {
		t.Fatalf("p-value out of range: %v", result.Significance.PValue)
	}
	if result.ObservedBC.Estimate <= 0 {
		t.Fatalf("b and c share a base series, expected positive corr(b, c), got %v", result.ObservedBC.Estimate)
	}
	if result.Method != stats.DefaultMethod {
		t.Fatalf("expected default method %q, got %q", stats.DefaultMethod, result.Method)
	}
}

func TestRunCorrelationValidation(t *testing.T) {
	service := newService(nil, 1)
	ctx := context.Background()
	x := []float64{1, 2, 3, 4}

	_, err := service.RunCorrelation(ctx, CorrelationRequest{X: x, Y: x, Method: "kendall", Seed: 1})
	if !errors.Is(err, core.ErrUnknownMethod) {
		t.Fatalf("unknown method: expected %v, got %v", core.ErrUnknownMethod, err)
	}

	_, err = service.RunCorrelation(ctx, CorrelationRequest{X: x, Y: x, Alpha: 1.5, Seed: 1})
	if !errors.Is(err, core.ErrInvalidAlpha) {
		t.Fatalf("invalid alpha: expected %v, got %v", core.ErrInvalidAlpha, err)
	}

	_, err = service.RunCorrelation(ctx, CorrelationRequest{X: x, Y: x[:2], Seed: 1})
	if !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("mismatched lengths: expected %v, got %v", core.ErrShapeMismatch, err)
	}

	_, err = service.RunCorrelation(ctx, CorrelationRequest{X: x, Y: x, Replications: -1, Seed: 1})
	if !errors.Is(err, core.ErrInvalidDrawCount) {
		t.Fatalf("negative replications: expected %v, got %v", core.ErrInvalidDrawCount, err)
	}
}

func TestRunCorrelationPersistsRecord(t *testing.T) {
	repo := &fakeRunRepo{}
	kit := testkit.NewTestKit()
	x, y := kit.CorrelatedPair(50, 0.4)

	result, err := newService(repo, 1).RunCorrelation(context.Background(), CorrelationRequest{
		XName:        "price",
		YName:        "volume",
		X:            x,
		Y:            y,
		Replications: 200,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("RunCorrelation: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(repo.saved))
	}
	record := repo.saved[0]
	if record.Kind != models.AnalysisCorrelation {
		t.Fatalf("expected correlation kind, got %q", record.Kind)
	}
	if record.SeriesA != "price" || record.SeriesB != "volume" {
		t.Fatalf("unexpected series labels: %q, %q", record.SeriesA, record.SeriesB)
	}
	if record.ID.String() != string(result.RunID) {
		t.Fatalf("record ID %s does not match run ID %s", record.ID, result.RunID)
	}
	if record.CILower != result.CI.Lower || record.CIUpper != result.CI.Upper {
		t.Fatalf("persisted interval [%v, %v] does not match result [%v, %v]",
			record.CILower, record.CIUpper, result.CI.Lower, result.CI.Upper)
	}
	if record.Fingerprint != result.Fingerprint.String() {
		t.Fatalf("persisted fingerprint mismatch")
	}
	if record.Observed != result.Observed.Estimate {
		t.Fatalf("persisted observed %v does not match result %v", record.Observed, result.Observed.Estimate)
	}
}

func TestPersistenceFailureDoesNotFailRun(t *testing.T) {
	repo := &fakeRunRepo{saveErr: fmt.Errorf("registry down")}
	kit := testkit.NewTestKit()
	x, y := kit.CorrelatedPair(40, 0.3)

	result, err := newService(repo, 1).RunCorrelation(context.Background(), CorrelationRequest{
		X: x, Y: y, Replications: 100, Seed: 1,
	})
	if err != nil {
		t.Fatalf("run must survive a registry outage, got %v", err)
	}
	if result == nil || result.Replications != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMethodsListing(t *testing.T) {
	methods := newService(nil, 1).Methods()
	for _, name := range []string{"pearson", "spearman"} {
		description, ok := methods[name]
		if !ok || description == "" {
			t.Fatalf("expected a described %q method, got %v", name, methods)
		}
	}
}

func TestListRecentRunsWithoutRepo(t *testing.T) {
	records, err := newService(nil, 1).ListRecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history without a repository, got %d", len(records))
	}
}

func TestGetRunRoundTrip(t *testing.T) {
	repo := &fakeRunRepo{}
	service := newService(repo, 1)
	ctx := context.Background()

	kit := testkit.NewTestKit()
	x, y := kit.CorrelatedPair(40, 0.4)
	result, err := service.RunCorrelation(ctx, CorrelationRequest{
		X: x, Y: y, Replications: 100, Seed: 5,
	})
	if err != nil {
		t.Fatalf("RunCorrelation: %v", err)
	}

	record, err := service.GetRun(ctx, string(result.RunID))
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if record.ID.String() != string(result.RunID) {
		t.Fatalf("retrieved record %s, expected %s", record.ID, result.RunID)
	}

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		if _, err := service.GetRun(ctx, id); !core.IsNotFoundError(err) {
			t.Fatalf("id %q: expected a not-found error, got %v", id, err)
		}
	}

	if _, err := newService(nil, 1).GetRun(ctx, uuid.NewString()); !core.IsNotFoundError(err) {
		t.Fatalf("without a repository every lookup must miss, got %v", err)
	}
}

func TestReturnEstimatesLength(t *testing.T) {
	kit := testkit.NewTestKit()
	x, y := kit.CorrelatedPair(30, 0.5)

	result, err := newService(nil, 1).RunCorrelation(context.Background(), CorrelationRequest{
		X: x, Y: y, Replications: 250, Seed: 3, ReturnEstimates: true,
	})
	if err != nil {
		t.Fatalf("RunCorrelation: %v", err)
	}
	if len(result.Estimates) != 250 {
		t.Fatalf("expected 250 estimates, got %d", len(result.Estimates))
	}
}
