package graph

import "math"

// ScoreBreakdown shows the sub-scores of the schema score formula.
type ScoreBreakdown struct {
	Connectivity float64 `json:"connectivity"`
	Cohesion     float64 `json:"cohesion"`
	Sprawl       float64 `json:"sprawl"`
	Fragility    float64 `json:"fragility"`
}

// AuditReport is the full schema audit result.
type AuditReport struct {
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Stats     *StatsReport   `json:"stats"`
	Cuts      *CutReport     `json:"cuts"`
}

// AuditConfig holds audit parameters.
type AuditConfig struct {
	HubThreshold int
	TopN         int
}

// DefaultAuditConfig returns the defaults used by the CLI.
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{HubThreshold: 8, TopN: 10}
}

// Audit runs the structural analyses and composes a single schema score.
// Orphan roots hurt connectivity, reference-web splits hurt cohesion, heavy
// customization reads as sprawl, articulation tables as fragility.
func Audit(g *GraphData, cfg *AuditConfig) *AuditReport {
	if cfg == nil {
		cfg = DefaultAuditConfig()
	}
	stats := ComputeStats(g, &StatsConfig{HubThreshold: cfg.HubThreshold, TopN: cfg.TopN})
	cuts := ComputeCuts(g)

	total := float64(stats.TotalTables)
	var connectivity, cohesion, sprawl, fragility float64
	if total > 0 {
		connectivity = clamp(1.0-math.Min(float64(stats.ExtraRootCount)/total, 0.2)*5.0, 0, 1)
		sprawl = clamp(1.0-math.Min(stats.CustomRatio, 0.4)*2.5, 0, 1)
		fragility = clamp(1.0-math.Min(float64(cuts.CutCount)/total, 0.05)*20.0, 0, 1)
	}
	if stats.NumComponents > 0 {
		cohesion = clamp(1.0/float64(stats.NumComponents), 0, 1)
	}

	score := 0.30*connectivity + 0.25*cohesion + 0.25*sprawl + 0.20*fragility

	return &AuditReport{
		Score: score,
		Breakdown: ScoreBreakdown{
			Connectivity: connectivity,
			Cohesion:     cohesion,
			Sprawl:       sprawl,
			Fragility:    fragility,
		},
		Stats: stats,
		Cuts:  cuts,
	}
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
