package main

import (
	"bufio"
	stdcontext "context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domcontext "github.com/dominium/dominium/context"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/log"
	"github.com/dominium/dominium/metrics"
	"github.com/dominium/dominium/tick"
	"github.com/dominium/dominium/verb"
)

func runCmd() *cobra.Command {
	var watchPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a verb stream from stdin against a fresh session",
		Long: `run reads verb lines from stdin, one per line, dispatches each
against a session's active world, and writes the resulting status and
events to stdout. Typing "new-world seed=<n> template=<name>" starts the
session; every other verb requires one already active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.OutOrStdout(), cmd.InOrStdin(), watchPath, logLevel)
		},
	}
	cmd.Flags().StringVar(&watchPath, "watch", "", "scenario injection file to reload on change")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func runSession(out io.Writer, in io.Reader, watchPath, logLevel string) error {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger, err := log.New(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := domcontext.WithWorldContext(stdcontext.Background(), &domcontext.WorldContext{
		Log:     logger,
		Metrics: metrics.New(prometheus.NewRegistry()),
	})
	session := verb.NewSession(ctx)

	if watchPath != "" {
		stop := make(chan struct{})
		defer close(stop)
		go watchScenarioFile(logger, watchPath, session, stop)
	}

	scanner := bufio.NewScanner(in)
	exitCode := ExitOK
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		res := session.Dispatch(line)
		fmt.Fprintln(out, string(res.Status))
		for _, e := range res.Events {
			fmt.Fprintln(out, verb.FormatEvent(e))
		}
		exitCode = statusExitCode(res.Status)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if exitCode != ExitOK {
		os.Exit(exitCode)
	}
	return nil
}

func statusExitCode(s verb.Status) int {
	switch s {
	case verb.StatusOK:
		return ExitOK
	case verb.StatusUsage:
		return ExitUsage
	case verb.StatusUnavailable:
		return ExitUnavailable
	default:
		return ExitFailure
	}
}

// watchScenarioFile reloads path's contents into the session's active
// world's tick queue whenever the file is written, so an operator can
// drive playtest perturbations without restarting the REPL.
func watchScenarioFile(logger log.Logger, path string, session *verb.Session, stop <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("scenario watch failed to start", errField(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Error("scenario watch failed to add directory", errField(err))
		return
	}

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			applyScenarioFile(logger, path, session)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("scenario watch error", errField(err))
		}
	}
}

func applyScenarioFile(logger log.Logger, path string, session *verb.Session) {
	if session.World == nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("scenario reload failed to read file", errField(err))
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		inj, ok := parseInjectionLine(line)
		if !ok {
			continue
		}
		session.World.Tick.Queue = append(session.World.Tick.Queue, inj)
	}
}

func errField(err error) zap.Field { return zap.Error(err) }

// parseInjectionLine parses one "layer=<u32> x=<i32> y=<i32> z=<i32>
// value=<raw i64>" scenario line into a tick.Injection. A line missing
// "layer" is not a scenario record and is skipped.
func parseInjectionLine(line string) (tick.Injection, bool) {
	args := make(map[string]string)
	for _, tok := range strings.Fields(line) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		args[k] = v
	}
	layerStr, ok := args["layer"]
	if !ok {
		return tick.Injection{}, false
	}
	layer, err := strconv.ParseUint(layerStr, 10, 32)
	if err != nil {
		return tick.Injection{}, false
	}
	x, _ := strconv.ParseInt(args["x"], 10, 32)
	y, _ := strconv.ParseInt(args["y"], 10, 32)
	z, _ := strconv.ParseInt(args["z"], 10, 32)
	value, _ := strconv.ParseInt(args["value"], 10, 64)

	return tick.Injection{
		Layer:    uint32(layer),
		X:        int32(x),
		Y:        int32(y),
		Z:        int32(z),
		ValueQ16: fixedpoint.Q16FromRaw(value),
	}, true
}
