package schema

import "fmt"

// Diagnostic codes. Normalization and hierarchy construction never abort on a
// bad record; they recover and report one of these.
const (
	DiagMissingID        = "missing_id"
	DiagDuplicateID      = "duplicate_id"
	DiagSelfParent       = "self_parent"
	DiagUnresolvedParent = "unresolved_parent"
	DiagCycle            = "cycle"
	DiagDepthCeiling     = "depth_ceiling"
)

// Diagnostic records one recovered anomaly in the input data.
type Diagnostic struct {
	Code   string `json:"code"`
	Table  string `json:"table,omitempty"`
	Detail string `json:"detail"`
}

func (d Diagnostic) String() string {
	if d.Table != "" {
		return fmt.Sprintf("%s (%s): %s", d.Code, d.Table, d.Detail)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Detail)
}
