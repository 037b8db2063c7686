package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/app"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/config"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		limit        int
		minLiquidity float64
		asJSON       bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score freshly listed Solana tokens once and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load() // optional .env in the working directory

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			logger.SetLevel(logrus.WarnLevel)
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.DefaultTokensLimit
			}
			if !cmd.Flags().Changed("min-liquidity") {
				minLiquidity = cfg.DefaultMinLiquidity
			}
			if limit < 1 || limit > cfg.MaxTokensLimit {
				return fmt.Errorf("--limit must be in [1,%d]", cfg.MaxTokensLimit)
			}
			if minLiquidity < 0 {
				return fmt.Errorf("--min-liquidity must be >= 0")
			}

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			res, err := a.Detector.Detect(cmd.Context(), limit, minLiquidity)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Tokens)
			}
			return printTable(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of tokens to return")
	cmd.Flags().Float64Var(&minLiquidity, "min-liquidity", 1000, "minimum pair liquidity in USD")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	cmd.SilenceUsage = true

	return cmd
}

func printTable(w io.Writer, res *pipeline.Result) error {
	if len(res.Tokens) == 0 {
		_, err := fmt.Fprintln(w, "No new meme coins found matching criteria")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tRISK\tSYMBOL\tAGE(h)\tLIQUIDITY\tTOP10%\tLP%\tMINT\tFREEZE\tADDRESS")
	for _, t := range res.Tokens {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t$%.0f\t%.2f\t%.2f\t%t\t%t\t%s\n",
			t.TrustScore,
			t.RiskTier,
			t.Symbol,
			t.Factors.AgeHours,
			t.LiquidityUSD,
			t.Factors.Top10HolderPercent,
			t.Factors.LPLockedPercent,
			t.Factors.MintAuthorityActive,
			t.Factors.FreezeAuthorityActive,
			t.ContractAddress,
		)
	}
	if res.Cached && res.CacheAgeSeconds != nil {
		fmt.Fprintf(tw, "\n(market data cached %ds ago)\n", *res.CacheAgeSeconds)
	}
	return tw.Flush()
}
