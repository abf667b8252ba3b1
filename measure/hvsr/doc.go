// Package hvsr computes Horizontal-to-Vertical Spectral Ratio curves from
// three-component ambient-noise power spectra and grades the curve peaks
// with the SESAME (2004) reliability and clarity criteria.
//
// The pipeline runs in a fixed order:
//
//	outlier PSD filter -> aggregation -> curve combination ->
//	outlier curve filter -> peak extraction -> assessment -> selection
//
// Input spectra are provided per channel as [ChannelPSD] values in dB,
// indexed [window][period bin]. All output curves are reported on an
// ascending frequency axis. Use [NewAnalyzer] and [Analyzer.Analyze] for
// the full run, or the individual stages ([Combine], [FindPeaks],
// [InitPeaks], [Assessor.Assess], [SelectBest]) when building a custom pipeline.
package hvsr
