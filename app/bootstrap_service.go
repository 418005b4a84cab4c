package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bootstat/adapters/stats"
	"bootstat/domain/bootstrap"
	"bootstat/domain/core"
	"bootstat/models"
	"bootstat/ports"
)

// Default analysis parameters, applied when a request leaves them unset
const (
	DefaultReplications = 5000
	DefaultAlpha        = 0.05
	DefaultSeed         = 42
)

// BootstrapService orchestrates resampling analyses end to end: statistic
// lookup, deterministic joint resampling, estimation, percentile intervals,
// empirical significance, and optional registry persistence.
type BootstrapService struct {
	registry *stats.Registry
	rngPort  ports.RNGPort
	runRepo  ports.RunRepository // optional; nil disables persistence
	workers  int
}

// NewBootstrapService creates a bootstrap service. runRepo may be nil when
// no registry is configured.
func NewBootstrapService(registry *stats.Registry, rngPort ports.RNGPort, runRepo ports.RunRepository, workers int) *BootstrapService {
	return &BootstrapService{
		registry: registry,
		rngPort:  rngPort,
		runRepo:  runRepo,
		workers:  workers,
	}
}

// CorrelationRequest defines the inputs for a bootstrap correlation analysis
type CorrelationRequest struct {
	XName           string // optional labels for reporting
	YName           string
	X               []float64
	Y               []float64
	Method          string  // statistic name; empty uses the registry default
	Replications    int     // 0 uses DefaultReplications
	Alpha           float64 // 0 uses DefaultAlpha
	Seed            int64
	ReturnEstimates bool
}

// CorrelationResult contains the complete output of a correlation analysis
type CorrelationResult struct {
	RunID        core.RunID                    `json:"run_id"`
	Method       string                        `json:"method"`
	XName        string                        `json:"x_name,omitempty"`
	YName        string                        `json:"y_name,omitempty"`
	SampleSize   int                           `json:"sample_size"`
	Replications int                           `json:"replications"`
	Alpha        float64                       `json:"alpha"`
	Seed         int64                         `json:"seed"`
	Observed     bootstrap.StatValue           `json:"observed"`
	CI           bootstrap.ConfidenceInterval  `json:"ci"`
	Significance bootstrap.Significance        `json:"significance"`
	Summary      bootstrap.DistributionSummary `json:"summary"`
	Estimates    []float64                     `json:"estimates,omitempty"`
	Fingerprint  core.Hash                     `json:"fingerprint"`
	RuntimeMs    int64                         `json:"runtime_ms"`
}

// DifferenceRequest defines the inputs for a difference-of-correlations
// analysis: corr(A, B) versus corr(A, C) over shared resampling draws.
type DifferenceRequest struct {
	AName           string
	BName           string
	CName           string
	A               []float64
	B               []float64
	C               []float64
	Method          string
	Replications    int
	Alpha           float64
	Seed            int64
	ReturnEstimates bool
}

// DifferenceResult contains the complete output of a difference analysis
type DifferenceResult struct {
	RunID        core.RunID                    `json:"run_id"`
	Method       string                        `json:"method"`
	AName        string                        `json:"a_name,omitempty"`
	BName        string                        `json:"b_name,omitempty"`
	CName        string                        `json:"c_name,omitempty"`
	SampleSize   int                           `json:"sample_size"`
	Replications int                           `json:"replications"`
	Alpha        float64                       `json:"alpha"`
	Seed         int64                         `json:"seed"`
	ObservedAB   bootstrap.StatValue           `json:"observed_ab"`
	ObservedAC   bootstrap.StatValue           `json:"observed_ac"`
	ObservedBC   bootstrap.StatValue           `json:"observed_bc"`
	ObservedDiff float64                       `json:"observed_diff"`
	CI           bootstrap.ConfidenceInterval  `json:"ci"`
	Significance bootstrap.Significance        `json:"significance"`
	Summary      bootstrap.DistributionSummary `json:"summary"`
	Estimates    []float64                     `json:"estimates,omitempty"`
	Fingerprint  core.Hash                     `json:"fingerprint"`
	RuntimeMs    int64                         `json:"runtime_ms"`
}

// normalizeParams applies defaults for unset knobs and validates alpha up
// front, before any resampling work starts.
func normalizeParams(replications int, alpha float64) (int, float64, error) {
	if replications == 0 {
		replications = DefaultReplications
	}
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, 0, core.NewAlphaError(alpha)
	}
	return replications, alpha, nil
}

// RunCorrelation bootstraps the sampling distribution of a correlation
// statistic over jointly resampled pairs and reports its percentile
// interval and empirical significance against zero.
func (s *BootstrapService) RunCorrelation(ctx context.Context, req CorrelationRequest) (*CorrelationResult, error) {
	startTime := time.Now()

	replications, alpha, err := normalizeParams(req.Replications, req.Alpha)
	if err != nil {
		return nil, err
	}

	statistic, err := s.registry.ByName(req.Method)
	if err != nil {
		return nil, err
	}

	// Computing the observed statistic first validates the input pair
	// before any draws are generated.
	observed, err := statistic.Compute(req.X, req.Y)
	if err != nil {
		return nil, fmt.Errorf("observed statistic: %w", err)
	}

	runID := core.NewRunID()
	log.Printf("[BootstrapService] Run %s: %s correlation, n=%d, replications=%d, seed=%d",
		runID, statistic.Name(), len(req.X), replications, req.Seed)

	// The stream is keyed by analysis kind only, so identical seeds
	// reproduce identical draws regardless of run ID or series labels.
	stream, err := s.rngPort.Stream(ctx, "", "correlation", "", req.Seed)
	if err != nil {
		return nil, fmt.Errorf("rng stream: %w", err)
	}

	matrices, err := bootstrap.SampleBootstrap(stream, replications, req.X, req.Y)
	if err != nil {
		return nil, err
	}

	estimator := bootstrap.Estimator{Workers: s.workers}
	estimates, err := estimator.ComputeEstimates(ctx, statistic.Compute, matrices[0], matrices[1])
	if err != nil {
		return nil, err
	}

	ci, err := bootstrap.ComputeCIs(estimates, alpha)
	if err != nil {
		return nil, err
	}
	significance, err := bootstrap.ComputePValue(estimates, 0)
	if err != nil {
		return nil, err
	}
	summary, err := bootstrap.Summarize(estimates)
	if err != nil {
		return nil, err
	}

	result := &CorrelationResult{
		RunID:        runID,
		Method:       statistic.Name(),
		XName:        req.XName,
		YName:        req.YName,
		SampleSize:   len(req.X),
		Replications: replications,
		Alpha:        alpha,
		Seed:         req.Seed,
		Observed:     observed,
		CI:           ci,
		Significance: significance,
		Summary:      summary,
		Fingerprint:  core.ComputeRunFingerprint("correlation", statistic.Name(), replications, alpha, req.Seed, len(req.X)),
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}
	if req.ReturnEstimates {
		result.Estimates = estimates
	}

	s.persistRun(ctx, &models.RunRecord{
		ID:           parseRecordID(runID),
		Kind:         models.AnalysisCorrelation,
		Method:       result.Method,
		SeriesA:      req.XName,
		SeriesB:      req.YName,
		SampleSize:   result.SampleSize,
		Replications: replications,
		Alpha:        alpha,
		Seed:         req.Seed,
		Observed:     observed.Estimate,
		CILower:      ci.Lower,
		CIUpper:      ci.Upper,
		PValue:       significance.PValue,
		Fingerprint:  result.Fingerprint.String(),
		RuntimeMs:    result.RuntimeMs,
		CreatedAt:    time.Now().UTC(),
	})

	log.Printf("[BootstrapService] Run %s completed in %dms (r=%.4f, ci=[%.4f, %.4f], p=%.4f)",
		runID, result.RuntimeMs, observed.Estimate, ci.Lower, ci.Upper, significance.PValue)

	return result, nil
}

// RunDifference bootstraps the difference corr(A, B) - corr(A, C). All
// three series are resampled with shared index vectors, and both
// per-draw correlations come from the same draw, so their difference is a
// valid paired comparison.
func (s *BootstrapService) RunDifference(ctx context.Context, req DifferenceRequest) (*DifferenceResult, error) {
	startTime := time.Now()

	replications, alpha, err := normalizeParams(req.Replications, req.Alpha)
	if err != nil {
		return nil, err
	}

	statistic, err := s.registry.ByName(req.Method)
	if err != nil {
		return nil, err
	}

	observedAB, err := statistic.Compute(req.A, req.B)
	if err != nil {
		return nil, fmt.Errorf("observed corr(a, b): %w", err)
	}
	observedAC, err := statistic.Compute(req.A, req.C)
	if err != nil {
		return nil, fmt.Errorf("observed corr(a, c): %w", err)
	}
	observedBC, err := statistic.Compute(req.B, req.C)
	if err != nil {
		return nil, fmt.Errorf("observed corr(b, c): %w", err)
	}

	runID := core.NewRunID()
	log.Printf("[BootstrapService] Run %s: %s difference, n=%d, replications=%d, seed=%d",
		runID, statistic.Name(), len(req.A), replications, req.Seed)

	stream, err := s.rngPort.Stream(ctx, "", "difference", "", req.Seed)
	if err != nil {
		return nil, fmt.Errorf("rng stream: %w", err)
	}

	matrices, err := bootstrap.SampleBootstrap(stream, replications, req.A, req.B, req.C)
	if err != nil {
		return nil, err
	}

	estimator := bootstrap.Estimator{Workers: s.workers}
	estimatesAB, err := estimator.ComputeEstimates(ctx, statistic.Compute, matrices[0], matrices[1])
	if err != nil {
		return nil, err
	}
	estimatesAC, err := estimator.ComputeEstimates(ctx, statistic.Compute, matrices[0], matrices[2])
	if err != nil {
		return nil, err
	}

	// Draw order is preserved by the estimator, so differencing by index
	// pairs estimates from the same draw.
	diffs := make([]float64, len(estimatesAB))
	for i := range diffs {
		diffs[i] = estimatesAB[i] - estimatesAC[i]
	}

	ci, err := bootstrap.ComputeCIs(diffs, alpha)
	if err != nil {
		return nil, err
	}
	significance, err := bootstrap.ComputePValue(diffs, 0)
	if err != nil {
		return nil, err
	}
	summary, err := bootstrap.Summarize(diffs)
	if err != nil {
		return nil, err
	}

	result := &DifferenceResult{
		RunID:        runID,
		Method:       statistic.Name(),
		AName:        req.AName,
		BName:        req.BName,
		CName:        req.CName,
		SampleSize:   len(req.A),
		Replications: replications,
		Alpha:        alpha,
		Seed:         req.Seed,
		ObservedAB:   observedAB,
		ObservedAC:   observedAC,
		ObservedBC:   observedBC,
		ObservedDiff: observedAB.Estimate - observedAC.Estimate,
		CI:           ci,
		Significance: significance,
		Summary:      summary,
		Fingerprint:  core.ComputeRunFingerprint("difference", statistic.Name(), replications, alpha, req.Seed, len(req.A)),
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}
	if req.ReturnEstimates {
		result.Estimates = diffs
	}

	s.persistRun(ctx, &models.RunRecord{
		ID:           parseRecordID(runID),
		Kind:         models.AnalysisDifference,
		Method:       result.Method,
		SeriesA:      req.AName,
		SeriesB:      req.BName,
		SeriesC:      req.CName,
		SampleSize:   result.SampleSize,
		Replications: replications,
		Alpha:        alpha,
		Seed:         req.Seed,
		Observed:     result.ObservedDiff,
		CILower:      ci.Lower,
		CIUpper:      ci.Upper,
		PValue:       significance.PValue,
		Fingerprint:  result.Fingerprint.String(),
		RuntimeMs:    result.RuntimeMs,
		CreatedAt:    time.Now().UTC(),
	})

	log.Printf("[BootstrapService] Run %s completed in %dms (diff=%.4f, ci=[%.4f, %.4f], p=%.4f)",
		runID, result.RuntimeMs, result.ObservedDiff, ci.Lower, ci.Upper, significance.PValue)

	return result, nil
}

// Methods lists the registered statistics with their descriptions
func (s *BootstrapService) Methods() map[string]string {
	methods := make(map[string]string)
	for _, name := range s.registry.Names() {
		statistic, err := s.registry.ByName(name)
		if err != nil {
			continue
		}
		methods[name] = statistic.Description()
	}
	return methods
}

// ListRecentRuns exposes the registry to transport layers. Without a
// configured repository it returns an empty list.
func (s *BootstrapService) ListRecentRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if s.runRepo == nil {
		return []*models.RunRecord{}, nil
	}
	return s.runRepo.ListRecentRuns(ctx, limit)
}

// GetRun retrieves one persisted run summary. The registry keys runs by
// UUID, so any ID that does not parse as one cannot exist in it.
func (s *BootstrapService) GetRun(ctx context.Context, id string) (*models.RunRecord, error) {
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", core.ErrRunNotFound, id)
	}
	if s.runRepo == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	recordID, err := uuid.Parse(runID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	return s.runRepo.GetRun(ctx, recordID)
}

// persistRun saves the registry record on a best-effort basis. The run's
// results are already computed, so a registry outage only costs history.
func (s *BootstrapService) persistRun(ctx context.Context, record *models.RunRecord) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.SaveRun(ctx, record); err != nil {
		log.Printf("[BootstrapService] Failed to persist run %s: %v", record.ID, err)
	}
}

func parseRecordID(runID core.RunID) uuid.UUID {
	id, err := uuid.Parse(string(runID))
	if err != nil {
		return uuid.New()
	}
	return id
}
