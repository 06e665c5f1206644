package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/scat/pkg/chain"
	"github.com/ja7ad/scat/pkg/probe"
	"github.com/ja7ad/scat/pkg/timer"
	"github.com/ja7ad/scat/pkg/types"
)

func newBenchCmd() *cobra.Command {
	var (
		buffer  string
		rounds  int
		minSets int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeatedly build eviction sets and report duration and failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := types.ParseBytes(buffer)
			if err != nil {
				return err
			}

			ch := chain.New()
			defer ch.Drain()

			failures := 0
			for round := 0; round < rounds; round++ {
				cache, err := probe.NewCache(size)
				if err != nil {
					return err
				}

				evicter, err := probe.NewEvicter(cache, timer.Default(), ch)
				if err != nil {
					if !errors.Is(err, probe.ErrUncalibrated) {
						_ = cache.Close()
						return err
					}
					slog.Warn("round failed", "round", round, "err", err)
					failures++
					_ = cache.Close()
					continue
				}

				start := time.Now()
				sets := probe.NewBuilder().Build(evicter, cache, ch)
				elapsed := time.Since(start)

				slog.Info("round finished",
					"round", round, "sets", len(sets), "elapsed", elapsed)
				if len(sets) < minSets {
					failures++
				}
				_ = cache.Close()
			}

			slog.Info("bench complete", "rounds", rounds, "failures", failures)
			return nil
		},
	}

	cmd.Flags().StringVar(&buffer, "buffer", "16MiB", "probe buffer size")
	cmd.Flags().IntVar(&rounds, "rounds", 10, "number of build rounds")
	cmd.Flags().IntVar(&minSets, "min-sets", 8000, "sets below this count a round as failed")
	return cmd
}
