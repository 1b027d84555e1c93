package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"scan_bot/internal/helper"
	"scan_bot/internal/models"
	analyzer "scan_bot/internal/modules/analyzer/service"
	"scan_bot/internal/modules/config"
	market "scan_bot/internal/modules/market/service"
	universe "scan_bot/internal/modules/universe/service"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/db"
	"scan_bot/pkg/logger"
	"scan_bot/pkg/metrics"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type options struct {
	configPath string
	format     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "scan",
		Short:         "Run BIST signal scans without the Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default configs/$CONFIG_FILE)")
	root.PersistentFlags().StringVarP(&opts.format, "output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		topCmd(opts),
		horizonCmd(opts),
		analyzeCmd(opts),
		universeCmd(opts),
	)
	return root
}

// stack is the scan pipeline wired by hand, the same graph the bot builds with fx.
type stack struct {
	cfg      *config.Config
	service  *scanner.Service
	analyzer *analyzer.Service
	tx       *db.PgTxManager
	closers  []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.NewConfig()
	}
	if err != nil {
		return nil, err
	}

	if !opts.verbose {
		logger.UseNop()
		return cfg, nil
	}
	logger.SetServiceName(cfg.Service.Name)
	if err := logger.Init(cfg.Logging.Level, "console"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newStack(ctx context.Context, opts *options) (*stack, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	st := &stack{cfg: cfg}

	var cache *market.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		cache = market.NewCache(rdb, cfg.Redis.Prefix, cfg.Redis.TTL)
		st.closers = append(st.closers, func() { _ = cache.Close() })
	}

	var store universe.Store
	if cfg.DB != "" {
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB, MaxConns: 4})
		if err != nil {
			st.Close()
			return nil, errors.Wrap(err, "connect postgres")
		}
		st.tx = db.NewPgTxManager(pool)
		st.closers = append(st.closers, st.tx.Close)
		store = universe.NewPgStore(st.tx, cfg.Market.UniverseTable)
	}

	st.analyzer = analyzer.New(market.NewClient(cfg.Market, cache), cfg.Scanner.MinCandles).WithSuffix(cfg.Market.SymbolSuffix)
	sc := scanner.New(
		st.analyzer,
		scanner.NewPool(cfg.Scanner.MaxInFlight, cfg.Scanner.TaskTimeout),
		metrics.New(prometheus.NewRegistry()),
	)
	st.service = scanner.NewService(sc, universe.New(store, cfg.Market.UniverseFallback), cfg.Scanner.TopN)
	return st, nil
}

func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "json":
		out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml", "yml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// topView is the machine-readable form of a top list.
type topView struct {
	Title   string               `json:"title" yaml:"title"`
	Presets []string             `json:"presets" yaml:"presets"`
	Top     []models.RankedEntry `json:"top" yaml:"top"`
	Cutoff  float64              `json:"cutoff" yaml:"cutoff"`
	Scanned int                  `json:"scanned" yaml:"scanned"`
	Skipped []string             `json:"skipped" yaml:"skipped"`
	Elapsed string               `json:"elapsed" yaml:"elapsed"`
}

func newTopView(res scanner.TopResult) topView {
	presets := make([]string, 0, len(res.Presets))
	for _, p := range res.Presets {
		presets = append(presets, p.String())
	}
	return topView{
		Title:   res.Title,
		Presets: presets,
		Top:     res.Top,
		Cutoff:  res.Cutoff,
		Scanned: res.Scanned,
		Skipped: res.Skipped,
		Elapsed: res.Elapsed.Round(time.Millisecond).String(),
	}
}

func printTop(w io.Writer, v topView) error {
	fmt.Fprintf(w, "%s (%s)\n\n", v.Title, strings.Join(v.Presets, " + "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTICKER\tSCORE\tBIAS\tPRICE\tSTOP\tT1\tT2\tETA")
	for i, e := range v.Top {
		s := e.Summary
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%s\t%s\t%s (%s)\t%s (%s)\t%s\n",
			i+1, e.Ticker, e.Score, s.BiasText,
			helper.FormatPrice(s.Price), helper.FormatPrice(s.Stop),
			helper.FormatPrice(s.T1), helper.PctStr(s.Price, s.T1),
			helper.FormatPrice(s.T2), helper.PctStr(s.Price, s.T2),
			s.ETA,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\ncutoff %.1f | scanned %d | skipped %d | %s\n", v.Cutoff, v.Scanned, len(v.Skipped), v.Elapsed)
	return nil
}
