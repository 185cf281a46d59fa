package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/jointscan/pkg/geom"
)

// ValidationTolerance bounds the numeric checks in Validate.
const ValidationTolerance = 1e-6

// ValidationSeverity indicates whether a finding makes an assembly unusable
// or is merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // component cannot be scanned sensibly
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ComponentID int // zero for assembly-level findings
	Index       int // position in Assembly.Components
	Message     string
	Severity    ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] component %d (#%d): %s", e.Severity, e.ComponentID, e.Index, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	ComponentID int
	Index       int
	Message     string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("component %d (#%d): %s", w.ComponentID, w.Index, w.Message)
}

// ValidationResult splits findings into errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no errors. Warnings do not count.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate checks the assumptions detection makes about its input: unique
// ids, at least three vertices, a usable unit normal, vertices on the plane,
// and Inverse undoing Transform. Detection never calls it; it is read-only.
func Validate(a *Assembly) ValidationResult {
	var findings []ValidationError
	findings = append(findings, validateIDs(a)...)
	for i, c := range a.Components {
		findings = append(findings, validateComponent(i, c)...)
	}

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				ComponentID: f.ComponentID,
				Index:       f.Index,
				Message:     f.Message,
			})
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// validateIDs reports every component whose id was already used by an
// earlier one.
func validateIDs(a *Assembly) []ValidationError {
	var errs []ValidationError
	first := make(map[int]int)
	for i, c := range a.Components {
		if c == nil {
			continue
		}
		if j, dup := first[c.ID]; dup {
			errs = append(errs, ValidationError{
				ComponentID: c.ID,
				Index:       i,
				Message:     fmt.Sprintf("duplicate id %d (first used at #%d)", c.ID, j),
				Severity:    SeverityError,
			})
			continue
		}
		first[c.ID] = i
	}
	return errs
}

func validateComponent(i int, c *Component) []ValidationError {
	if c == nil {
		return []ValidationError{{Index: i, Message: "nil component", Severity: SeverityError}}
	}
	finding := func(sev ValidationSeverity, format string, args ...any) ValidationError {
		return ValidationError{ComponentID: c.ID, Index: i, Message: fmt.Sprintf(format, args...), Severity: sev}
	}

	var errs []ValidationError
	if len(c.Vertices) < 3 {
		errs = append(errs, finding(SeverityError, "%d vertices, need at least 3", len(c.Vertices)))
	}

	mag := r3.Norm(c.Normal)
	switch {
	case mag < geom.Epsilon:
		errs = append(errs, finding(SeverityError, "normal is zero"))
	case math.Abs(mag-1) > ValidationTolerance:
		errs = append(errs, finding(SeverityWarning, "normal has length %.6f, expected 1", mag))
	}

	if mag >= geom.Epsilon && len(c.Vertices) > 0 {
		n := r3.Scale(1/mag, c.Normal)
		worst, at := 0.0, -1
		for k, v := range c.Vertices[1:] {
			if d := math.Abs(r3.Dot(n, r3.Sub(v, c.Vertices[0]))); d > worst {
				worst, at = d, k+1
			}
		}
		if worst > ValidationTolerance {
			errs = append(errs, finding(SeverityWarning, "vertex %d is %.6g off the component plane", at, worst))
		}
	}

	if !inverseMatches(c) {
		errs = append(errs, finding(SeverityWarning, "inverse transform does not undo transform"))
	}
	return errs
}

// inverseMatches round-trips the origin and the unit axes through Transform
// then Inverse.
func inverseMatches(c *Component) bool {
	probes := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	for _, p := range probes {
		back := geom.TransformPoint(c.Inverse, geom.TransformPoint(c.Transform, p))
		if !geom.EqualWithin(back, p, ValidationTolerance) {
			return false
		}
	}
	return true
}
