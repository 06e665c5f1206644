package main

import (
	"github.com/spf13/cobra"
)

// transmitBuffer lives at package scope so the modulating writes cannot be
// optimized away.
var transmitBuffer [4096]byte

func newTransmitCmd() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:   "transmit",
		Short: "Modulate two cache lines with the demo bit pattern (runs forever)",
		Run: func(cmd *cobra.Command, args []string) {
			pattern := []int{
				1, 0, 1, 0, 1, 1, 1, 0, 0, 0,
				1, 0, 1, 0, 1, 1, 1, 0, 0, 0,
				1, 0, 1, 0, 1, 1, 1, 0, 0, 0,

				1, 0,
				1, 0, 0,
				1, 0, 0, 0,
				1, 0, 0, 0, 0,
				1, 0, 0, 0, 0, 0,
			}

			// Symbols become addresses in the middle of the buffer so the
			// two lines do not share a cache line with anything else in
			// the program.
			offsets := make([]int, len(pattern))
			for i, bit := range pattern {
				if bit == 0 {
					offsets[i] = 800
				} else {
					offsets[i] = 1800
				}
			}

			for {
				for _, address := range offsets {
					for i := 0; i < step; i++ {
						transmitBuffer[address]++
					}
				}
			}
		},
	}

	cmd.Flags().IntVar(&step, "step", 15000, "writes per symbol")
	return cmd
}
