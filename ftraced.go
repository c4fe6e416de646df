// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LOS-M8916/android-external-perfetto/ftrace"
	"github.com/LOS-M8916/android-external-perfetto/profiles"
	"github.com/LOS-M8916/android-external-perfetto/traceprocessor"
)

var (
	tracefsPath  string
	profilesPath string
	recordReads  string
	cpus         int
	debug        bool
)

func init() {
	pflag.StringVar(&tracefsPath, "tracefs", "", "tracefs mount point (auto-detected if empty)")
	pflag.StringVar(&profilesPath, "profiles", "", "YAML file of named FtraceConfig profiles")
	pflag.StringVar(&recordReads, "record", "", "record tracefs reads to this file for replay testing")
	pflag.IntVar(&cpus, "cpus", 0, "number of CPUs to capture raw pages from on CAPTURE")
	pflag.BoolVar(&debug, "debug", false, "enable debug-level logging")
}

// doMain wires the real tracefs-backed capabilities together and runs a
// line-oriented control loop: REQUEST <profile>, REMOVE <id>, CAPTURE
// <seconds>, QUIT. Each line is one fully-serialized call into the muxer,
// matching the single cooperative-owner model the package documents.
func doMain() error {
	pflag.Parse()

	logger, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	fp, err := ftrace.NewLocalProcfs(tracefsPath)
	if err != nil {
		return err
	}
	if recordReads != "" {
		rfp := ftrace.NewRecordingProcfs(fp)
		fp = rfp
		defer func() {
			if err := rfp.Dump(recordReads); err != nil {
				log.Errorw("failed to dump recorded reads", "err", err)
			}
		}()
	}

	control := ftrace.NewTracefsControlSurface(fp, log)
	catalog, err := ftrace.NewTableCatalog(fp)
	if err != nil {
		return err
	}
	atrace := ftrace.NewAtraceRunner(log)
	muxer := ftrace.NewFtraceConfigMuxer(control, catalog, atrace, log)

	presets := map[string]profiles.Profile{}
	if profilesPath != "" {
		presets, err = profiles.Load(profilesPath)
		if err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return runControlLoop(ctx, os.Stdin, os.Stdout, muxer, presets, fp, log)
	})

	return group.Wait()
}

func runControlLoop(
	ctx context.Context,
	in *os.File, out *os.File,
	muxer *ftrace.FtraceConfigMuxer,
	presets map[string]profiles.Profile,
	fp ftrace.Procfs,
	log *zap.SugaredLogger,
) error {
	scanner := bufio.NewScanner(in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if handleLine(line, out, muxer, presets, fp, log) {
				return nil
			}
		}
	}
}

// handleLine processes one control-loop command, returning true if the
// loop should stop (QUIT). End of input is handled by runControlLoop.
func handleLine(line string, out *os.File, muxer *ftrace.FtraceConfigMuxer, presets map[string]profiles.Profile, fp ftrace.Procfs, log *zap.SugaredLogger) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToUpper(fields[0]) {
	case "QUIT":
		return true

	case "REQUEST":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: REQUEST <profile-name>")
			return false
		}
		preset, ok := presets[fields[1]]
		if !ok {
			fmt.Fprintf(out, "unknown profile %q\n", fields[1])
			return false
		}
		id, reason := muxer.RequestConfig(preset.ToFtraceConfig())
		if id == 0 {
			fmt.Fprintf(out, "rejected: %s\n", reason)
			return false
		}
		fmt.Fprintf(out, "accepted: id=%d\n", id)

	case "REMOVE":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: REMOVE <id>")
			return false
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(out, "bad id %q\n", fields[1])
			return false
		}
		ok := muxer.RemoveConfig(ftrace.FtraceConfigId(n))
		fmt.Fprintf(out, "removed: %v\n", ok)

	case "CAPTURE":
		seconds := 1
		if len(fields) >= 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				seconds = n
			}
		}
		bytesParsed, pagesParsed := captureFor(fp, cpus, time.Duration(seconds)*time.Second, log)
		fmt.Fprintf(out, "captured: bytes=%d pages=%d\n", bytesParsed, pagesParsed)

	default:
		fmt.Fprintf(out, "unknown command %q\n", fields[0])
	}
	return false
}

// captureFor runs the raw capture pipeline against the trace-processor
// façade's minimal ingestion path for the given duration.
func captureFor(fp ftrace.Procfs, cpus int, d time.Duration, log *zap.SugaredLogger) (bytesParsed, pagesParsed int64) {
	if cpus <= 0 {
		cpus = 1
	}

	processor := traceprocessor.NewByteCounting()
	pipeline := ftrace.NewCapturePipeline(fp, log)

	doneCh := make(chan bool)
	if err := pipeline.Prepare(cpus, doneCh); err != nil {
		log.Errorw("failed to prepare capture", "err", err)
		return 0, 0
	}

	go func() {
		time.Sleep(d)
		close(doneCh)
	}()

	pipeline.Capture(func(cpu int, page []byte) {
		processor.Parse(page)
	})
	processor.NotifyEndOfFile()

	return processor.Stats()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := doMain(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
