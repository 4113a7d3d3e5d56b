package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/INIS2/DeepLook/deeplook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type cliOptions struct {
	configPath string
	verbose    bool
	guidance   string
	resultDir  string
	encoding   string
	topN       int

	jsonOut  bool
	textfile string

	status string
	search string
	detail string

	outputPath string
	outputDir  string
	format     string
}

type cli struct {
	opts   cliOptions
	out    io.Writer
	logger *zap.Logger
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "deeplook-cli",
		Short: "Summarize security audit results against a checklist",
		Long: `deeplook-cli joins security audit result files to a reference checklist by
item code and reports status distribution, weakness ranking and per-project
breakdowns.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.opts.configPath, "config", "c", "", "Path to deeplook.yaml (default: ./deeplook.yaml)")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&c.opts.guidance, "guidance", "", "Checklist CSV overriding guidancePath")
	flags.StringVar(&c.opts.resultDir, "result-dir", "", "Directory of result files overriding resultPaths/resultDir")
	flags.StringVar(&c.opts.encoding, "encoding", "", "Source encoding: auto or a label such as utf-8, euc-kr")
	flags.IntVar(&c.opts.topN, "top", 0, "Number of ranked weaknesses")

	root.AddCommand(c.initCmd(), c.summaryCmd(), c.itemsCmd(), c.exportCmd(), c.watchCmd())
	return root
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default deeplook.yaml unless one exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile(c.opts.configPath)
			created, err := deeplook.EnsureConfig(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(c.out, "created %s\n", path)
			} else {
				fmt.Fprintf(c.out, "%s already exists\n", path)
			}
			return nil
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [result files...]",
		Short: "Print the dashboard for a batch of result files",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			d := svc.Dashboard()
			if err := c.writeMetrics(svc, d); err != nil {
				return err
			}
			if c.opts.jsonOut {
				return deeplook.WriteDashboardJSON(c.out, d)
			}
			fmt.Fprint(c.out, renderDashboard(d))
			return nil
		},
	}
	cmd.Flags().BoolVar(&c.opts.jsonOut, "json", false, "Print the dashboard as JSON")
	cmd.Flags().StringVar(&c.opts.textfile, "textfile", "", "Write Prometheus gauges to this file (overrides metrics.textfile)")
	return cmd
}

func (c *cli) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items PROJECT [result files...]",
		Short: "List or inspect the items of one project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.load(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			p, ok := svc.Project(args[0])
			if !ok {
				return fmt.Errorf("project %q not found", args[0])
			}
			if c.opts.detail != "" {
				it, ok := p.FindItem(c.opts.detail)
				if !ok {
					return fmt.Errorf("item %q not found in %s", c.opts.detail, p.Label)
				}
				fmt.Fprint(c.out, renderDetail(deeplook.Detail(it)))
				return nil
			}
			res := deeplook.FilterItems(p, deeplook.ItemFilter{Status: c.opts.status, Query: c.opts.search})
			fmt.Fprint(c.out, renderItems(p, res))
			return nil
		},
	}
	cmd.Flags().StringVar(&c.opts.status, "status", deeplook.StatusAll, "Status literal to keep, or all")
	cmd.Flags().StringVar(&c.opts.search, "search", "", "Text matched against title, code and subcategory")
	cmd.Flags().StringVar(&c.opts.detail, "detail", "", "Show the resolved detail of one item code")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [result files...]",
		Short: "Write the joined items as CSV or the dashboard as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(c.opts.format))
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown export format %q", c.opts.format)
			}
			svc, err := c.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			path, err := resolveOutputPath(c.opts.outputPath, c.opts.outputDir, format, time.Now())
			if err != nil {
				return err
			}
			if err := writeExport(path, format, svc); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&c.opts.outputPath, "output", "o", "", "File to write (default uses --output-dir/result_*.csv)")
	cmd.Flags().StringVar(&c.opts.outputDir, "output-dir", "csv", "Directory used when --output is omitted")
	cmd.Flags().StringVar(&c.opts.format, "format", "csv", "Export format: csv or json")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the result directory on change and reprint the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.ResultDir == "" {
				return errors.New("watch needs --result-dir or resultDir in the config")
			}
			svc, err := c.service(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.watch(ctx, svc, cfg.ResultDir)
		},
	}
	cmd.Flags().StringVar(&c.opts.textfile, "textfile", "", "Rewrite Prometheus gauges to this file after every reload")
	return cmd
}

func (c *cli) watch(ctx context.Context, svc *deeplook.Service, dir string) error {
	var mu sync.Mutex
	report := func(b *deeplook.Batch, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(c.out, "reload failed: %v\n", err)
			return
		}
		d := svc.Dashboard()
		if err := c.writeMetrics(svc, d); err != nil {
			c.logger.Warn("metrics export failed", zap.Error(err))
		}
		fmt.Fprintf(c.out, "batch %s (%s)\n", b.ID, b.LoadedAt.Format(time.DateTime))
		fmt.Fprint(c.out, renderDashboard(d))
	}

	w, err := deeplook.NewWatcher(svc, dir, report)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	report(w.Reload(ctx))
	<-ctx.Done()
	return nil
}

// config loads the config file and applies the flag overrides.
func (c *cli) config() (deeplook.Config, error) {
	cfg, err := deeplook.LoadConfig(configFile(c.opts.configPath))
	if err != nil {
		return deeplook.Config{}, fmt.Errorf("load config: %w", err)
	}
	if c.opts.guidance != "" {
		cfg.GuidancePath = c.opts.guidance
	}
	if c.opts.resultDir != "" {
		cfg.ResultDir = c.opts.resultDir
		cfg.ResultPaths = nil
	}
	if c.opts.encoding != "" {
		cfg.Encoding = c.opts.encoding
	}
	if c.opts.topN > 0 {
		cfg.TopN = c.opts.topN
	}
	if c.opts.textfile != "" {
		cfg.Metrics.Textfile = c.opts.textfile
	}
	return cfg, nil
}

func (c *cli) service(ctx context.Context, cfg deeplook.Config) (*deeplook.Service, error) {
	svc, err := deeplook.NewService(cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("init service: %w", err)
	}
	if cfg.GuidancePath != "" {
		if err := svc.LoadGuidance(ctx, cfg.GuidancePath); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// load builds a service and loads the batch named by args or the config.
func (c *cli) load(ctx context.Context, args []string) (*deeplook.Service, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	paths, err := deeplook.ResolveResultPaths(args, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := svc.LoadResults(ctx, paths); err != nil {
		return nil, err
	}
	return svc, nil
}

func (c *cli) writeMetrics(svc *deeplook.Service, d deeplook.Dashboard) error {
	path := svc.Config().Metrics.Textfile
	if path == "" {
		return nil
	}
	m := deeplook.NewMetrics()
	m.Observe(svc.Projects(), d)
	if err := m.WriteTextfile(path); err != nil {
		return err
	}
	c.logger.Debug("metrics written", zap.String("path", path))
	return nil
}

func configFile(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return deeplook.DefaultConfigFile
	}
	return path
}

func resolveOutputPath(path, dir, ext string, now time.Time) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.%s", now.Format("20060102150405"), ext)
	return filepath.Join(absDir, filename), nil
}

func writeExport(path, format string, svc *deeplook.Service) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	if format == "json" {
		return deeplook.WriteDashboardJSON(f, svc.Dashboard())
	}
	return deeplook.WriteItemsCSV(f, svc.Projects())
}
