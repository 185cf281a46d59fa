package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/chazu/jointscan/pkg/detect"
	"github.com/chazu/jointscan/pkg/engine"
	"github.com/chazu/jointscan/pkg/mesh"
	"github.com/chazu/jointscan/pkg/model"
)

// App ties the loader to the detector.
type App struct {
	engine *engine.Engine
	opts   detect.Options
	log    *slog.Logger
}

// ComponentResult is the joint listing for one component.
type ComponentResult struct {
	ID      int           `json:"id"`
	Name    string        `json:"name,omitempty"`
	Fingers []model.Joint `json:"fingers"`
	Holes   []model.Joint `json:"holes"`
	Slots   []model.Joint `json:"slots"`
}

// Message is a located error or warning.
type Message struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Result is everything one run produced. Slices are never nil so the JSON
// form always has arrays.
type Result struct {
	Assembly   string            `json:"assembly,omitempty"`
	Components []ComponentResult `json:"components"`
	Report     *detect.Report    `json:"report,omitempty"`
	Errors     []Message         `json:"errors"`
	Warnings   []Message         `json:"warnings"`

	asm *model.Assembly
}

// Failed reports whether the run hit an error.
func (r Result) Failed() bool { return len(r.Errors) > 0 }

// NewApp returns an App that detects with opts.
func NewApp(opts detect.Options, log *slog.Logger) *App {
	if log == nil {
		log = detect.Logger()
	}
	return &App{engine: engine.NewEngine(), opts: opts, log: log}
}

// Run loads source, validates it and runs detection. Validation errors stop
// the run before detection; warnings are passed through.
func (a *App) Run(ctx context.Context, source string) Result {
	result := Result{
		Components: []ComponentResult{},
		Errors:     []Message{},
		Warnings:   []Message{},
	}

	loaded, err := a.engine.Load(source)
	if err != nil {
		a.log.Error("evaluation failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	for _, e := range loaded.Errors {
		result.Errors = append(result.Errors, Message{Line: e.Line, Message: e.Message})
	}
	if len(result.Errors) > 0 {
		return result
	}

	asm := loaded.Assembly
	result.Assembly = asm.Name
	for _, w := range loaded.Validation.Warnings {
		result.Warnings = append(result.Warnings, Message{Message: w.String()})
	}
	for _, e := range loaded.Validation.Errors {
		result.Errors = append(result.Errors, Message{Message: e.Error()})
	}
	if len(result.Errors) > 0 {
		return result
	}

	rep, err := detect.New(a.opts).Detect(ctx, asm)
	if err != nil {
		a.log.Error("detection failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	result.Report = rep
	result.asm = asm

	for _, c := range asm.Components {
		result.Components = append(result.Components, ComponentResult{
			ID:      c.ID,
			Name:    c.Name,
			Fingers: nonNil(c.Fingers),
			Holes:   nonNil(c.Holes),
			Slots:   nonNil(c.Slots),
		})
	}
	return result
}

func nonNil(js []model.Joint) []model.Joint {
	if js == nil {
		return []model.Joint{}
	}
	return js
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteMeshes writes a preview mesh of every panel as a JSON array. It is an
// error to call it on a run that did not reach detection.
func WriteMeshes(w io.Writer, r Result, opts mesh.Options) error {
	if r.asm == nil {
		return fmt.Errorf("no assembly to mesh")
	}
	meshes, err := mesh.Assembly(r.asm, opts)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(meshes)
}

// WriteTable writes a per-component summary, every joint, and any coplanar
// groups or anomalies.
func WriteTable(w io.Writer, r Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, m := range r.Warnings {
		fmt.Fprintf(tw, "warning: %s\n", m.Message)
	}
	for _, m := range r.Errors {
		if m.Line > 0 {
			fmt.Fprintf(tw, "error: line %d: %s\n", m.Line, m.Message)
		} else {
			fmt.Fprintf(tw, "error: %s\n", m.Message)
		}
	}
	if r.Report == nil {
		return tw.Flush()
	}

	fmt.Fprintln(tw, "ID\tNAME\tFINGERS\tHOLES\tSLOTS")
	for _, c := range r.Components {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", c.ID, c.Name, len(c.Fingers), len(c.Holes), len(c.Slots))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tTYPE\tPARTNER\tSEGMENT (local)")
	for _, c := range r.Components {
		for _, js := range [][]model.Joint{c.Fingers, c.Holes, c.Slots} {
			for _, j := range js {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, j.Type, j.Partner, j.Segment)
			}
		}
	}

	rep := r.Report
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "pairs: %d\tintersecting: %d\tcoplanar: %d\tdegenerate: %d\n",
		rep.Pairs, rep.Relations[detect.RelationIntersecting],
		rep.Relations[detect.RelationCoplanar], rep.Relations[detect.RelationDegenerate])
	for _, g := range rep.CoplanarGroups {
		fmt.Fprintf(tw, "coplanar group: %v\n", g)
	}
	for _, an := range rep.Anomalies {
		fmt.Fprintf(tw, "anomaly: C%d/C%d clipped into %d and %d spans, %d unmatched\n",
			an.A, an.B, an.SegmentsA, an.SegmentsB, an.Unmatched)
	}
	return tw.Flush()
}
