package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ja7ad/scat/pkg/signal"
)

func main() {
	root := &cobra.Command{
		Use:   "scat",
		Short: "Prime+Probe last-level-cache covert-channel receiver",
		Long: `scat recovers a digital signal from a co-resident transmitter by
continuously probing last-level-cache eviction sets. It discovers the
congruent address groups at startup, samples them on a fixed timeslot
cadence, and decodes the per-channel streams against a known preamble.

Pin the process to one CPU (e.g. taskset -c 2) for usable streams.

Examples:
  scat receive --bits 20
  scat transmit
  scat bench --rounds 10
  scat watch --channels 16`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newReceiveCmd(),
		newTransmitCmd(),
		newBenchCmd(),
		newWatchCmd(),
	)

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// preamble is the bit pattern the demo transmitter repeats before its
// payload.
func preamble() []signal.Sample {
	return []signal.Sample{1, 0, 1, 0, 1, 1, 1, 0, 0, 0}
}
