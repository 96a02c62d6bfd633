// Command edgeset runs an edit script against an empty edge set and
// reports the result.
//
//	edgeset [-gc] [-validate] [-keep-isolated] [-near x,y,z] script.es
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/plan-systems/klog"
)

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	var cfg config
	flag.BoolVar(&cfg.collect, "gc", false, "collect garbage after the script")
	flag.BoolVar(&cfg.validate, "validate", false, "check connectivity invariants")
	flag.BoolVar(&cfg.keepIsolated, "keep-isolated", false, "keep vertices stranded by edge deletion")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "script evaluation limit")
	flag.IntVar(&cfg.cells, "cells", 0, "marching cubes resolution for wireframe")
	near := flag.String("near", "", "report the vertex nearest to x,y,z")
	verbosity := flag.String("v", "0", "log level")
	flag.Parse()
	fset.Set("v", *verbosity)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: edgeset [flags] script")
		flag.PrintDefaults()
		os.Exit(2)
	}

	code := 0
	defer func() {
		klog.Flush()
		os.Exit(code)
	}()

	if *near != "" {
		p, err := parsePoint(*near)
		if err != nil {
			klog.Errorf("-near: %v", err)
			code = 2
			return
		}
		cfg.near = &p
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		klog.Errorf("%v", err)
		code = 1
		return
	}

	rep, err := run(cfg, string(source))
	if err != nil {
		klog.Errorf("%v", err)
		code = 1
		return
	}
	rep.print(os.Stdout)
	if !rep.ok() {
		code = 1
	}
}
