package hvsr

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-hvsr/internal/testutil"
)

var testEpoch = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func flatPSD(windows int, periods []float64, db float64) ChannelPSD {
	times := make([]time.Time, windows)
	for i := range times {
		times[i] = testEpoch.Add(time.Duration(i) * 30 * time.Second)
	}

	return ChannelPSD{
		PeriodBinCenters: periods,
		Values:           testutil.Rows(windows, testutil.DC(db, len(periods))),
		Times:            times,
		Delta:            0.01,
		Len:              6000,
	}
}

func TestChannelPSDValidate(t *testing.T) {
	periods := []float64{0.1, 0.2, 0.4}

	ok := flatPSD(3, periods, -140)
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if got := ok.WindowSeconds(); got != 60 {
		t.Fatalf("WindowSeconds = %v, want 60", got)
	}

	tests := []struct {
		name   string
		mutate func(*ChannelPSD)
	}{
		{"one bin", func(c *ChannelPSD) { c.PeriodBinCenters = []float64{1} }},
		{"decreasing", func(c *ChannelPSD) { c.PeriodBinCenters = []float64{0.1, 0.4, 0.2} }},
		{"non-positive", func(c *ChannelPSD) { c.PeriodBinCenters = []float64{0, 0.2, 0.4} }},
		{"nan", func(c *ChannelPSD) { c.PeriodBinCenters = []float64{0.1, math.NaN(), 0.4} }},
		{"short row", func(c *ChannelPSD) { c.Values[1] = c.Values[1][:2] }},
		{"no windows", func(c *ChannelPSD) { c.Values, c.Times = nil, nil }},
		{"missing times", func(c *ChannelPSD) { c.Times = c.Times[:2] }},
		{"zero delta", func(c *ChannelPSD) { c.Delta = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := flatPSD(3, append([]float64(nil), periods...), -140)
			tt.mutate(&c)

			if err := c.Validate(); !errors.Is(err, ErrDataShape) {
				t.Fatalf("err = %v, want ErrDataShape", err)
			}
		})
	}
}

func TestDeleteWindowsDoesNotMutate(t *testing.T) {
	c := flatPSD(5, []float64{0.1, 0.2}, -140)
	for i := range c.Values {
		c.Values[i][0] = float64(i)
	}

	out := c.DeleteWindows([]int{1, 3})
	if out.WindowCount() != 3 || len(out.Times) != 3 {
		t.Fatalf("got %d windows, %d times", out.WindowCount(), len(out.Times))
	}

	for i, want := range []float64{0, 2, 4} {
		if out.Values[i][0] != want {
			t.Fatalf("row %d = %v, want %v", i, out.Values[i][0], want)
		}
	}

	if c.WindowCount() != 5 || c.Values[1][0] != 1 {
		t.Fatal("receiver was modified")
	}

	if !out.Times[1].Equal(c.Times[2]) {
		t.Fatalf("times not aligned with rows")
	}
}

func TestComponentsWindowCountMismatch(t *testing.T) {
	periods := []float64{0.1, 0.2}

	var c Components
	c[ChannelZ] = flatPSD(4, periods, -140)
	c[ChannelN] = flatPSD(4, periods, -140)
	c[ChannelE] = flatPSD(3, periods, -140)

	if err := c.Validate(); !errors.Is(err, ErrDataShape) {
		t.Fatalf("err = %v, want ErrDataShape", err)
	}

	c[ChannelE] = flatPSD(4, periods, -140)
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	out := c.DeleteWindows([]int{0, 2})
	for _, ch := range Channels() {
		if out[ch].WindowCount() != 2 || len(out[ch].Times) != 2 {
			t.Fatalf("channel %s: %d windows", ch, out[ch].WindowCount())
		}
	}
}
