package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/pipeline"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#C2185B")
	passColor    = lipgloss.Color("#00AA00")
	failColor    = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(20)

	valueStyle = lipgloss.NewStyle().Bold(true)

	issueStyle = lipgloss.NewStyle().Foreground(failColor)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

func scoreStyle(r *analyzer.Report) lipgloss.Style {
	if r.Passed {
		return valueStyle.Foreground(passColor)
	}
	return valueStyle.Foreground(failColor)
}

func row(sb *strings.Builder, key, value string) {
	sb.WriteString("  ")
	sb.WriteString(keyStyle.Render(key))
	sb.WriteString(valueStyle.Render(value))
	sb.WriteString("\n")
}

// renderResult formats a compile result for the terminal.
func renderResult(res *pipeline.Result, outPath string) string {
	var sb strings.Builder
	r := res.Report

	sb.WriteString(titleStyle.Render("sonido-pulido"))
	sb.WriteString("\n")
	row(&sb, "Compile", res.ID.String())
	row(&sb, "Output", outPath)
	row(&sb, "Attempts", fmt.Sprintf("%d (%d regenerations)", res.Attempts, res.Regenerations))

	sb.WriteString(sectionStyle.Render("Score"))
	sb.WriteString("\n")
	if res.Baseline != nil {
		row(&sb, "Baseline", fmt.Sprintf("%.1f", res.Baseline.OverallScore))
	}
	sb.WriteString("  ")
	sb.WriteString(keyStyle.Render("Final"))
	sb.WriteString(scoreStyle(r).Render(fmt.Sprintf("%.1f / %.0f", r.OverallScore, r.Threshold)))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Levels"))
	sb.WriteString("\n")
	row(&sb, "Loudness", fmt.Sprintf("%.1f LUFS", r.LoudnessLUFS))
	row(&sb, "Peak", fmt.Sprintf("%.2f dBFS", r.PeakDB))
	row(&sb, "RMS", fmt.Sprintf("%.2f dBFS", r.RMSDB))
	row(&sb, "Dynamic range", fmt.Sprintf("%.1f dB", r.DynamicRangeDB))
	row(&sb, "Clipping", fmt.Sprintf("%.3f%%", r.ClippingPct))
	row(&sb, "Silence", fmt.Sprintf("%.1f%% (longest %.2fs, %d gaps)", r.SilencePct, r.LongestSilenceS, len(r.Gaps)))

	sb.WriteString(sectionStyle.Render("Spectrum"))
	sb.WriteString("\n")
	row(&sb, "Centroid", fmt.Sprintf("%.0f Hz", r.SpectralCentroidHz))
	row(&sb, "Rolloff", fmt.Sprintf("%.0f Hz", r.SpectralRolloffHz))
	row(&sb, "Flatness", fmt.Sprintf("%.3f", r.SpectralFlatness))
	row(&sb, "Flux", fmt.Sprintf("%.4f", r.SpectralFlux))
	b := r.BandEnergies
	row(&sb, "Bands", fmt.Sprintf("sub %.0f  bass %.0f  lowmid %.0f  mid %.0f  highmid %.0f  high %.0f",
		b.SubBass, b.Bass, b.LowMid, b.Mid, b.HighMid, b.High))

	if r.Channels == 2 {
		sb.WriteString(sectionStyle.Render("Stereo"))
		sb.WriteString("\n")
		row(&sb, "Width", fmt.Sprintf("%.1f%%", r.StereoWidthPct))
		row(&sb, "Correlation", fmt.Sprintf("%.2f", r.PhaseCorrelation))
	}

	sb.WriteString(sectionStyle.Render("Stages"))
	sb.WriteString("\n")
	for _, s := range res.Stages {
		status := fmt.Sprintf("%dms", s.Elapsed.Milliseconds())
		if s.Diagnostics["skipped"] == true {
			status = "skipped"
		}
		row(&sb, s.Name, status)
	}

	if len(r.Issues) > 0 || len(r.Warnings) > 0 {
		sb.WriteString(sectionStyle.Render("Findings"))
		sb.WriteString("\n")
		for _, issue := range r.Issues {
			sb.WriteString("  " + issueStyle.Render("✗ "+issue) + "\n")
		}
		for _, w := range r.Warnings {
			sb.WriteString("  " + warnStyle.Render("! "+w) + "\n")
		}
	}

	return sb.String()
}

func printError(err error) {
	style := lipgloss.NewStyle().Bold(true).Foreground(failColor)
	fmt.Fprintln(os.Stderr, style.Render("Error: ")+err.Error())
}
