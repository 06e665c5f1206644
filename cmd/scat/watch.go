package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ja7ad/scat/pkg/probe"
	"github.com/ja7ad/scat/pkg/signal"
	"github.com/ja7ad/scat/pkg/system/util"
	"github.com/ja7ad/scat/pkg/types"
)

const barWidth = 32

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func newWatchCmd() *cobra.Command {
	var (
		buffer   string
		channels int
		samples  int
		alpha    float64
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live per-channel eviction activity",
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

			// Short batches keep the UI live.
			group.Reader().SampleCount = samples

			watched := group.Channels()
			if len(watched) == 0 {
				return errors.New("no channels discovered")
			}
			if len(watched) > channels {
				watched = watched[:channels]
			}

			m := watchModel{
				group:    group,
				channels: watched,
				rates:    make([]float64, len(watched)),
				ema:      make([]*util.EMA, len(watched)),
				stats:    make([]*signal.Stats, len(watched)),
			}
			for i := range watched {
				m.ema[i] = util.NewEMA(alpha)
				m.stats[i] = &signal.Stats{}
			}

			_, err = tea.NewProgram(m).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&buffer, "buffer", "16MiB", "probe buffer size")
	cmd.Flags().IntVar(&channels, "channels", 16, "channels to display")
	cmd.Flags().IntVar(&samples, "samples", 500, "samples per refresh")
	cmd.Flags().Float64Var(&alpha, "ema", 0.4, "EMA alpha for rate smoothing [0..1]")
	return cmd
}

type watchModel struct {
	group    *signal.Group
	channels []probe.Channel
	rates    []float64
	ema      []*util.EMA
	stats    []*signal.Stats
	quitting bool
}

type batchMsg []float64

func (m watchModel) sample() tea.Msg {
	rates := make([]float64, len(m.channels))
	for i, channel := range m.channels {
		batch := m.group.ReadChannel(channel)
		m.stats[i].Add(batch)
		rates[i] = m.ema[i].Next(batchMean(batch))
	}
	return batchMsg(rates)
}

func batchMean(batch []signal.Sample) float64 {
	var sum, completed int
	for _, v := range batch {
		if v == probe.MissedTimeslot {
			continue
		}
		sum += int(v)
		completed++
	}
	if completed == 0 {
		return 0
	}
	return float64(sum) / float64(completed)
}

func (m watchModel) Init() tea.Cmd { return m.sample }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case batchMsg:
		m.rates = msg
		return m, m.sample
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("scat watch") + "\n\n")

	for i, channel := range m.channels {
		frac := util.Clamp01(m.rates[i] / probe.EvictionSetSize)
		filled := int(frac * barWidth)
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barWidth-filled))

		summary := m.stats[i].Summary()
		fmt.Fprintf(&b, "ch %4d %s %5.2f  missed %4.1f%%\n",
			channel, bar, m.rates[i], summary.MissedRatio*100)
	}

	b.WriteString(dimStyle.Render("\nq to quit"))
	return b.String()
}
