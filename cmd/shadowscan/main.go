// Command shadowscan runs a single scan from a JSON request and prints the
// report. It needs no database, cache or broker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shadowcleaner/internal/config"
	"shadowcleaner/internal/domain/models"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/internal/domain/services/darkweb"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "shadowscan: %v\n", err)
		os.Exit(1)
	}
}

// offlineExposures reports every identifier as unchecked.
type offlineExposures struct{}

func (offlineExposures) CheckEmail(context.Context, string) (*models.ExposureReport, error) {
	return nil, nil
}

func (offlineExposures) CheckPhone(context.Context, string) (*models.ExposureReport, error) {
	return nil, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("shadowscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "-", "scan request JSON file, - for stdin")
	format := fs.String("format", "text", "output format: json, text or markdown")
	configPath := fs.String("config", "", "config file (optional)")
	offline := fs.Bool("offline", false, "skip breach lookups")
	historyPath := fs.String("history", "", "SQLite file that keeps scans between runs (optional)")
	verbose := fs.Bool("v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *format {
	case "json", "text", "markdown":
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Format: "console", Output: stderr})

	req, err := readRequest(*in, stdin)
	if err != nil {
		return err
	}

	var exposures scan.ExposureChecker = offlineExposures{}
	var opts []scan.Option
	if !*offline {
		provider := exposure.NewPacedProvider(newProvider(cfg, log), cfg.Breach.RequestInterval)
		exposures = exposure.NewScanner(provider, log)
		if cfg.DarkWeb.Enabled {
			opts = append(opts, scan.WithDarkWeb(darkweb.NewChecker(provider, log)))
		}
	}

	var backend history.Backend = history.NewMemoryBackend()
	if *historyPath != "" {
		db, err := history.OpenSQLiteBackend(ctx, *historyPath)
		if err != nil {
			return err
		}
		defer db.Close()
		backend = db
	}
	store := history.NewStore(backend, cfg.History.MaxEntries, log)
	opts = append(opts, scan.WithHistory(store))

	svc := scan.NewService(exposures, classifier.New(log), log, opts...)
	resp, err := svc.Scan(ctx, req)
	if err != nil {
		return err
	}

	entry, err := store.Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scan back: %w", err)
	}

	cmp, err := store.Compare(ctx, entry)
	if err != nil {
		return err
	}
	if cmp.Previous != nil {
		fmt.Fprintf(stderr, "since %s: score %+d, %d new threats, %d resolved, %d new exposures\n",
			cmp.Previous.SavedAt.Format("2006-01-02 15:04"), cmp.ScoreDelta, cmp.NewThreats, cmp.ResolvedThreats, cmp.NewExposures)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "markdown":
		return history.ExportMarkdown(stdout, entry)
	default:
		_, err := io.WriteString(stdout, history.ExportText(entry))
		return err
	}
}

func readRequest(path string, stdin io.Reader) (models.ScanRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return models.ScanRequest{}, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req models.ScanRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, models.ErrEmptyScanRequest
		}
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

func newProvider(cfg *config.Config, log *logger.Logger) exposure.BreachProvider {
	if cfg.Breach.Provider == "hibp" {
		return exposure.NewHIBPProvider(exposure.HIBPConfig{
			APIKey:    cfg.Breach.HIBPAPIKey,
			BaseURL:   cfg.Breach.HIBPBaseURL,
			UserAgent: cfg.Breach.UserAgent,
			Timeout:   cfg.Breach.Timeout,
		}, log)
	}
	return exposure.NewBreachDirectoryProvider(exposure.BreachDirectoryConfig{
		APIKey:    cfg.Breach.RapidAPIKey,
		Host:      cfg.Breach.RapidAPIHost,
		BaseURL:   cfg.Breach.BaseURL,
		UserAgent: cfg.Breach.UserAgent,
		Timeout:   cfg.Breach.Timeout,
	}, log)
}
