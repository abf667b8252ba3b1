package hvsr

import (
	"fmt"
	"math"
	"time"
)

// Channel identifies one of the three seismometer components.
type Channel int

const (
	// ChannelZ is the vertical component.
	ChannelZ Channel = iota
	// ChannelN is the north horizontal component.
	ChannelN
	// ChannelE is the east horizontal component.
	ChannelE
	numChannels
)

func (c Channel) String() string {
	switch c {
	case ChannelZ:
		return "Z"
	case ChannelN:
		return "N"
	case ChannelE:
		return "E"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Channels lists the components in Z, N, E order.
func Channels() []Channel {
	return []Channel{ChannelZ, ChannelN, ChannelE}
}

// ChannelPSD holds the power spectral densities of one channel, one row per
// time window.
type ChannelPSD struct {
	// PeriodBinCenters is strictly increasing, in seconds.
	PeriodBinCenters []float64
	// Values holds dB values indexed [window][bin].
	Values [][]float64
	// Times holds the start time of each window.
	Times []time.Time
	// Delta is the sample interval in seconds.
	Delta float64
	// Len is the window length in samples.
	Len int
}

// WindowSeconds returns the window length in seconds.
func (c ChannelPSD) WindowSeconds() float64 {
	return float64(c.Len) * c.Delta
}

// WindowCount returns the number of windows.
func (c ChannelPSD) WindowCount() int {
	return len(c.Values)
}

// Validate checks the internal consistency of c.
func (c ChannelPSD) Validate() error {
	if len(c.PeriodBinCenters) < 2 {
		return fmt.Errorf("%w: need at least 2 period bins, got %d", ErrDataShape, len(c.PeriodBinCenters))
	}

	for i, p := range c.PeriodBinCenters {
		if !(p > 0) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: period bin %d must be positive and finite: %f", ErrDataShape, i, p)
		}

		if i > 0 && !(p > c.PeriodBinCenters[i-1]) {
			return fmt.Errorf("%w: period bins must be strictly increasing at %d", ErrDataShape, i)
		}
	}

	if len(c.Values) == 0 {
		return fmt.Errorf("%w: no windows", ErrDataShape)
	}

	for i, row := range c.Values {
		if len(row) != len(c.PeriodBinCenters) {
			return fmt.Errorf("%w: window %d has %d bins, want %d",
				ErrDataShape, i, len(row), len(c.PeriodBinCenters))
		}
	}

	if len(c.Times) != len(c.Values) {
		return fmt.Errorf("%w: %d timestamps for %d windows", ErrDataShape, len(c.Times), len(c.Values))
	}

	if !(c.Delta > 0) || c.Len <= 0 {
		return fmt.Errorf("%w: window metadata must be positive: delta=%f len=%d", ErrDataShape, c.Delta, c.Len)
	}

	return nil
}

// DeleteWindows returns a copy of c without the windows at the given
// sorted, unique indices. The receiver is not modified.
func (c ChannelPSD) DeleteWindows(indices []int) ChannelPSD {
	out := c
	out.Values = deleteRows(c.Values, indices)
	out.Times = deleteRows(c.Times, indices)

	return out
}

// Components holds the three channel spectra indexed by [Channel].
type Components [numChannels]ChannelPSD

// Validate checks each channel and that all channels agree in window count.
func (c Components) Validate() error {
	for _, ch := range Channels() {
		if err := c[ch].Validate(); err != nil {
			return fmt.Errorf("channel %s: %w", ch, err)
		}
	}

	return c.checkWindowCounts()
}

// WindowCount returns the window count of the vertical channel.
func (c Components) WindowCount() int {
	return c[ChannelZ].WindowCount()
}

// DeleteWindows removes the same windows from every channel.
func (c Components) DeleteWindows(indices []int) Components {
	var out Components
	for _, ch := range Channels() {
		out[ch] = c[ch].DeleteWindows(indices)
	}

	return out
}

func (c Components) checkWindowCounts() error {
	n := c[ChannelZ].WindowCount()
	for _, ch := range Channels()[1:] {
		if c[ch].WindowCount() != n || len(c[ch].Times) != n {
			return fmt.Errorf("%w: channel %s has %d windows, channel Z has %d",
				ErrDataShape, ch, c[ch].WindowCount(), n)
		}
	}

	return nil
}

// deleteRows drops the elements at sorted, unique indices in one pass.
func deleteRows[T any](rows []T, indices []int) []T {
	out := make([]T, 0, len(rows))

	k := 0
	for i, r := range rows {
		if k < len(indices) && indices[k] == i {
			k++
			continue
		}

		out = append(out, r)
	}

	return out
}
