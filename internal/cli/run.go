package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
	"github.com/billysbar/tlmerge/internal/extract"
	"github.com/billysbar/tlmerge/internal/orchestrator"
	"github.com/billysbar/tlmerge/internal/scan"
	"github.com/billysbar/tlmerge/internal/store"
	"github.com/billysbar/tlmerge/internal/thumbnail"
)

// Run parses args, bootstraps a config.Manager from CLI/env/YAML, and
// dispatches to the requested mode. It returns the process exit code;
// callers pass it straight to os.Exit.
func Run(args []string, stdout, stderr io.Writer) int {
	mode, rest, err := splitMode(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	opt, err := parseFlags(mode, rest, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	project := resolveProject(opt)
	root, err := config.NewRootConfig(project)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	mgr := config.NewManager(root)

	configPath := resolveConfigPath(opt, root.Project())

	if opt.MakeConfig {
		if err := config.WriteDefaultConfig(configPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote default config to %s\n", configPath)
		return 0
	}

	if _, err := config.LoadRoot(mgr, configPath); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if _, err := config.LoadAll(mgr); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := applyOptions(mgr, opt); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := initLogging(root); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	var runErr error
	switch mode {
	case "scan":
		runErr = runScan(ctx, mgr, stdout)
	case "preprocess":
		runErr = runPreprocess(ctx, mgr, stdout)
	case "thumb":
		runErr = runThumb(ctx, mgr, stdout)
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("run failed")
		fmt.Fprintln(stderr, runErr)
		return 1
	}
	return 0
}

func resolveProject(opt *Options) string {
	if opt.wasSet("project") {
		return opt.Project
	}
	if v, ok := os.LookupEnv(envName("project")); ok {
		return v
	}
	if opt.Project != "" {
		return opt.Project
	}
	return "."
}

func resolveConfigPath(opt *Options, project string) string {
	if v, ok := resolveString(opt, "config", opt.ConfigFile); ok && v != "" {
		return v
	}
	return filepath.Join(project, config.DefaultConfigFile)
}

// runScan walks the project tree applying every filter and reports what
// it finds, without touching the database: a dry run for checking filters
// and sampling before committing to preprocess.
func runScan(ctx context.Context, mgr *config.Manager, stdout io.Writer) error {
	scanner := scan.New(mgr, nil)
	n := 0
	for photo := range scanner.Stream(ctx) {
		fmt.Fprintf(stdout, "%s/%s/%s\n", photo.Date, photo.Group, filepath.Base(photo.Path))
		n++
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d photos matched\n", n)
	return nil
}

// runPreprocess extracts metadata for every matched photo and applies it to
// the identity store. The RAW decoder and EXIF reader factory are both
// documented extension points (see extract.UnimplementedDecoder) until a
// production adapter is wired in.
func runPreprocess(ctx context.Context, mgr *config.Manager, stdout io.Writer) error {
	root := mgr.Root()
	st, err := store.Open(root.Database())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	scanner := scan.New(mgr, nil)
	extractor := extract.New(extract.UnimplementedDecoder{})
	orch := orchestrator.New(mgr, scanner, extractor, extract.UnimplementedExifReaderFactory, st)

	summary, err := orch.Run(ctx)
	fmt.Fprintln(stdout, summary.String())
	return err
}

// runThumb renders a thumbnail for every matched photo. The image source is
// a documented extension point (see thumbnail.UnimplementedSource) until a
// production RAW-to-raster pipeline is wired in.
func runThumb(ctx context.Context, mgr *config.Manager, stdout io.Writer) error {
	scanner := scan.New(mgr, nil)
	renderer := thumbnail.New(mgr, thumbnail.UnimplementedSource{})

	rendered, failed := 0, 0
	for photo := range scanner.Stream(ctx) {
		dest, err := renderer.Render(photo)
		if err != nil {
			failed++
			log.Error().Str("photo", photo.Path).Err(err).Msg("thumbnail failed")
			continue
		}
		rendered++
		fmt.Fprintf(stdout, "%s -> %s\n", photo.Path, dest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "rendered=%d failed=%d\n", rendered, failed)
	return nil
}
