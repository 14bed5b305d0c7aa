// Command reportctl runs a CRM report against the configured database and
// prints it as JSON or writes it as an export document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/internal/bootstrap"
	"github.com/fastygo/crm-reports/internal/config"
	"github.com/fastygo/crm-reports/pkg/logger"
	exportUC "github.com/fastygo/crm-reports/usecase/export"
	reportUC "github.com/fastygo/crm-reports/usecase/report"
)

// filterFlags collects repeated -filter key=value pairs.
type filterFlags map[string]string

func (f filterFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f filterFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("filter %q must be key=value", value)
	}
	f[key] = strings.TrimSpace(val)
	return nil
}

type options struct {
	report     string
	filters    filterFlags
	format     string
	out        string
	driver     string
	dsn        string
	initSchema bool
	list       bool
	timeout    time.Duration
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{filters: filterFlags{}}
	fs := flag.NewFlagSet("reportctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.report, "report", "", "Report name or alias")
	fs.Var(opts.filters, "filter", "Filter as key=value; repeatable")
	fs.StringVar(&opts.format, "format", "", "Export format (csv, excel, powerpoint, pdf, json); empty prints the report")
	fs.StringVar(&opts.out, "out", "", "Output path for exports; defaults to the generated filename")
	fs.StringVar(&opts.driver, "driver", "", "Database driver (postgres, sqlite); overrides DB_DRIVER")
	fs.StringVar(&opts.dsn, "dsn", "", "Postgres URL or sqlite path; overrides the configured database")
	fs.BoolVar(&opts.initSchema, "init-schema", false, "Create the sqlite tables if missing")
	fs.BoolVar(&opts.list, "list", false, "List available reports and exit")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for the report run")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !opts.list && opts.report == "" {
		return nil, errors.New("-report is required")
	}
	return opts, nil
}

// applyDatabase overlays the command line on the configured database.
func applyDatabase(cfg config.DatabaseConfig, opts *options) config.DatabaseConfig {
	if opts.driver != "" {
		cfg.Driver = strings.ToLower(opts.driver)
	}
	if opts.dsn != "" {
		if cfg.Driver == config.DriverSQLite {
			cfg.SQLitePath = opts.dsn
		} else {
			cfg.URL = opts.dsn
		}
	}
	return cfg
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "reportctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
		Output:   "stderr",
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer zapLogger.Sync()

	if opts.list {
		return listReports(stdout, reportUC.DefaultCatalog())
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, applyDatabase(cfg.Database, opts),
		bootstrap.OpenStoreOptions{InitSchema: opts.initSchema}, zapLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	rules, err := bootstrap.ReportRules(cfg.Reports)
	if err != nil {
		return err
	}
	reports := reportUC.New(store.Snapshots, rules, zapLogger)
	// The command line runs with management visibility.
	viewer := domain.Viewer{RoleLevel: reportUC.ManagementRoleLevel}

	rep, err := reports.Run(ctx, opts.report, opts.filters, viewer)
	if err != nil {
		return err
	}

	if opts.format == "" {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}

	doc, err := exportUC.New(nil, zapLogger).Export(ctx, rep, opts.format)
	if err != nil {
		return err
	}
	path := opts.out
	if path == "" {
		path = doc.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
		return err
	}
	zapLogger.Info("report exported",
		zap.String("report", rep.Name),
		zap.String("format", opts.format),
		zap.String("path", path),
		zap.Int("bytes", len(doc.Content)),
	)
	return nil
}

func listReports(w io.Writer, catalog *reportUC.Catalog) error {
	for _, def := range catalog.Definitions() {
		restricted := ""
		if def.MaxRoleLevel > 0 {
			restricted = " [restricted]"
		}
		if _, err := fmt.Fprintf(w, "%-28s %s%s\n    filters: %s\n", def.Name, def.Title, restricted,
			strings.Join(def.Filters, ", ")); err != nil {
			return err
		}
	}
	return nil
}
