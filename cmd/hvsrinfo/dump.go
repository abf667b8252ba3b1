package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cwbudde/algo-hvsr/measure/hvsr"
	"gopkg.in/yaml.v3"
)

// psdDump is the on-disk form of [hvsr.Components] and the exclusions
// detected on the traces they came from.
type psdDump struct {
	Channels   map[string]channelDump `yaml:"channels"`
	Exclusions []exclusionDump        `yaml:"exclusions,omitempty"`
}

type exclusionDump struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

type channelDump struct {
	PeriodBinCenters []float64   `yaml:"period_bin_centers"`
	Values           [][]float64 `yaml:"values"`
	Times            []time.Time `yaml:"times"`
	Delta            float64     `yaml:"delta"`
	Len              int         `yaml:"len"`
}

func encodeComponents(w io.Writer, c hvsr.Components, exclusions []hvsr.TimeRange) error {
	d := psdDump{Channels: make(map[string]channelDump, len(c))}

	for _, r := range exclusions {
		d.Exclusions = append(d.Exclusions, exclusionDump{Start: r.Start, End: r.End})
	}

	for _, ch := range hvsr.Channels() {
		p := c[ch]
		d.Channels[ch.String()] = channelDump{
			PeriodBinCenters: p.PeriodBinCenters,
			Values:           p.Values,
			Times:            p.Times,
			Delta:            p.Delta,
			Len:              p.Len,
		}
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode psd dump: %w", err)
	}

	return enc.Close()
}

func decodeComponents(r io.Reader) (hvsr.Components, []hvsr.TimeRange, error) {
	var (
		d   psdDump
		out hvsr.Components
	)

	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return out, nil, fmt.Errorf("failed to parse psd dump: %w", err)
	}

	for _, ch := range hvsr.Channels() {
		p, ok := lookupChannel(d.Channels, ch)
		if !ok {
			return out, nil, fmt.Errorf("psd dump has no %s channel", ch)
		}

		out[ch] = hvsr.ChannelPSD{
			PeriodBinCenters: p.PeriodBinCenters,
			Values:           p.Values,
			Times:            p.Times,
			Delta:            p.Delta,
			Len:              p.Len,
		}
	}

	var exclusions []hvsr.TimeRange
	for _, e := range d.Exclusions {
		exclusions = append(exclusions, hvsr.TimeRange{Start: e.Start, End: e.End})
	}

	return out, exclusions, out.Validate()
}

func lookupChannel(channels map[string]channelDump, ch hvsr.Channel) (channelDump, bool) {
	for name, p := range channels {
		if strings.EqualFold(name, ch.String()) {
			return p, true
		}
	}

	return channelDump{}, false
}
