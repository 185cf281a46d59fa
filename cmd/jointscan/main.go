// Command jointscan loads a panel assembly description, finds where the
// panels meet and prints the finger, hole and slot joints on each one.
//
// Usage:
//
//	jointscan [-json] [-workers n] [-tol eps] [-mesh out.json] [-thickness t] [-v] file.lisp
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/jointscan/pkg/detect"
	"github.com/chazu/jointscan/pkg/geom"
	"github.com/chazu/jointscan/pkg/mesh"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("jointscan", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the result as JSON")
	workers := fs.Int("workers", 1, "goroutines classifying pairs")
	tol := fs.Float64("tol", geom.Epsilon, "geometric tolerance")
	meshPath := fs.String("mesh", "", "write panel preview meshes as JSON to this file")
	thickness := fs.Float64("thickness", 12, "panel thickness for -mesh")
	verbose := fs.Bool("v", false, "log every pair at debug level")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: jointscan [-json] [-workers n] [-tol eps] [-mesh out.json] [-thickness t] [-v] file.lisp")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	detect.SetLogger(logger)

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		logger.Error("read assembly", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := NewApp(detect.Options{Tolerance: *tol, Workers: *workers}, logger)
	result := app.Run(ctx, string(source))

	write := WriteTable
	if *asJSON {
		write = WriteJSON
	}
	if err := write(os.Stdout, result); err != nil {
		logger.Error("write result", "err", err)
		return 1
	}
	if result.Failed() {
		return 1
	}
	if *meshPath != "" {
		if err := writeMeshFile(*meshPath, result, mesh.Options{Thickness: *thickness}); err != nil {
			logger.Error("write meshes", "path", *meshPath, "err", err)
			return 1
		}
	}
	return 0
}

func writeMeshFile(path string, r Result, opts mesh.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMeshes(f, r, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
