package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ja7ad/scat/pkg/signal"
	"github.com/ja7ad/scat/pkg/types"
)

var errNoPreamble = errors.New("no preamble found")

func newReceiveCmd() *cobra.Command {
	var (
		buffer  string
		bits    int
		repeats int
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Lock onto the transmitter preamble and decode bits",
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := types.ParseBytes(buffer)
			if err != nil {
				return err
			}

			group, err := signal.CreateOptions(signal.Options{BufferSize: size})
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer group.Close()

			slog.Info("channels ready", "channels", len(group.Channels()))

			known := signal.Repeat(preamble(), repeats)
			sig := signal.FindFirst(known, group)
			if sig == nil {
				return errNoPreamble
			}
			slog.Info("preamble locked",
				"start", sig.Start,
				"one_timestep", sig.OneTimestep,
				"zero_timestep", sig.ZeroTimestep)

			decoded := signal.DecodeBinary(sig, bits)
			for _, bit := range decoded {
				if bit {
					fmt.Print("1")
				} else {
					fmt.Print("0")
				}
			}
			fmt.Println()

			if len(decoded) < bits {
				fmt.Fprintf(os.Stderr, "stream ended after %d of %d bits\n", len(decoded), bits)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&buffer, "buffer", "16MiB", "probe buffer size")
	cmd.Flags().IntVarP(&bits, "bits", "b", 20, "bits to decode after the preamble")
	cmd.Flags().IntVar(&repeats, "repeats", 3, "preamble repetitions to match")
	return cmd
}
