package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"scan_bot/internal/helper"
	"scan_bot/internal/models"
	market "scan_bot/internal/modules/market/service"
	universe "scan_bot/internal/modules/universe/service"
	"scan_bot/internal/scanner"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func topCmd(opts *options) *cobra.Command {
	var (
		interval string
		period   string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Scan the universe once and print the ranked top list",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval = helper.NormTF(interval)
			if err := market.CheckRange(interval, period); err != nil {
				return err
			}
			st, err := newStack(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.service.Top(cmd.Context(), interval, period, limit)
			if err != nil && !errors.Is(err, scanner.ErrNoResults) {
				return err
			}
			v := newTopView(res)
			return render(cmd.OutOrStdout(), opts.format, v, func(w io.Writer) error { return printTop(w, v) })
		},
	}
	cmd.Flags().StringVarP(&interval, "interval", "i", "60m", "bar interval")
	cmd.Flags().StringVarP(&period, "period", "p", "60d", "lookback period")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "scan only the first N tickers (0 = all)")
	return cmd
}

func horizonCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "horizon kisa|orta|uzun",
		Short:     "Aggregate the presets of a horizon and print the averaged top list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"kisa", "orta", "uzun", "short", "medium", "long"},
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := models.ParseHorizon(args[0])
			if err != nil {
				return err
			}
			st, err := newStack(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.service.TopHorizon(cmd.Context(), h)
			if err != nil && !errors.Is(err, scanner.ErrNoResults) {
				return err
			}
			v := newTopView(res)
			return render(cmd.OutOrStdout(), opts.format, v, func(w io.Writer) error { return printTop(w, v) })
		},
	}
}

func analyzeCmd(opts *options) *cobra.Command {
	var (
		interval string
		period   string
	)
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Analyze one ticker and print its normalized summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interval = helper.NormTF(interval)
			if err := market.CheckRange(interval, period); err != nil {
				return err
			}
			st, err := newStack(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := st.service.Analyze(cmd.Context(), args[0], interval, period)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.format, s, func(w io.Writer) error {
				_, err := fmt.Fprintf(w,
					"%s %s/%s\nprice %s  atr %.2f\n%s  score %.0f/100\n%s\nbuy %s  stop %s\nT1 %s (%s)  T2 %s (%s)  ETA %s\n",
					s.Ticker, interval, period,
					helper.FormatPrice(s.Price), s.ATR,
					s.BiasText, s.Score,
					s.PatternText,
					s.BuyZone, helper.FormatPrice(s.Stop),
					helper.FormatPrice(s.T1), helper.PctStr(s.Price, s.T1),
					helper.FormatPrice(s.T2), helper.PctStr(s.Price, s.T2),
					s.ETA,
				)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&interval, "interval", "i", "60m", "bar interval")
	cmd.Flags().StringVarP(&period, "period", "p", "60d", "lookback period")
	return cmd
}

func universeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Inspect or replace the scanned ticker list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the tickers a top scan would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStack(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer st.Close()

			u := universe.New(storeOf(st), st.cfg.Market.UniverseFallback)
			tickers, err := u.Tickers(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.format, tickers, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strings.Join(tickers, "\n"))
				return err
			})
		},
	}

	var file string
	sync := &cobra.Command{
		Use:   "sync [CODE...]",
		Short: "Replace the stored universe with codes from args, --file or the built-in list",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := syncCodes(args, file)
			if err != nil {
				return err
			}
			st, err := newStack(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer st.Close()
			if st.tx == nil {
				return errors.New("universe sync needs db_dsn")
			}

			store := universe.NewPgStore(st.tx, st.cfg.Market.UniverseTable)
			if err := store.Replace(cmd.Context(), codes); err != nil {
				return errors.Wrap(err, "replace universe")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %d codes in %s\n", len(codes), st.cfg.Market.UniverseTable)
			return err
		},
	}
	sync.Flags().StringVarP(&file, "file", "f", "", "file with one code per line")

	cmd.AddCommand(list, sync)
	return cmd
}

func storeOf(st *stack) universe.Store {
	if st.tx == nil {
		return nil
	}
	return universe.NewPgStore(st.tx, st.cfg.Market.UniverseTable)
}

// syncCodes picks the sync source: explicit args, then a file, then the built-in list.
func syncCodes(args []string, file string) ([]string, error) {
	raw := args
	if len(raw) == 0 && file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	if len(raw) == 0 {
		raw = universe.BuiltIn()
	}

	seen := make(map[string]struct{}, len(raw))
	codes := make([]string, 0, len(raw))
	for _, r := range raw {
		c := universe.Code(universe.NormalizeBIST(r))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}
	if len(codes) == 0 {
		return nil, errors.New("no codes to store")
	}
	return codes, nil
}
