package main

import (
	"fmt"
	"strings"

	"github.com/INIS2/DeepLook/deeplook"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	colorGood    = lipgloss.Color("#8BC34A")
	colorBad     = lipgloss.Color("#e53935")
	colorWarn    = lipgloss.Color("#FFC107")
	colorNeutral = lipgloss.Color("#9e9e9e")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorNeutral)
	labelStyle   = lipgloss.NewStyle().Width(14).Foreground(colorNeutral)
)

// badgeStyle colors a status by its badge class.
func badgeStyle(s deeplook.Status) lipgloss.Style {
	switch s.Badge() {
	case "good":
		return lipgloss.NewStyle().Foreground(colorGood)
	case "bad":
		return lipgloss.NewStyle().Foreground(colorBad).Bold(true)
	case "warn":
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorNeutral)
	}
}

func importanceStyle(level string) lipgloss.Style {
	switch level {
	case deeplook.ImportanceHigh:
		return lipgloss.NewStyle().Foreground(colorBad)
	case deeplook.ImportanceMid:
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorNeutral)
	}
}

func bar(ratio float64, width int) string {
	n := int(ratio*float64(width) + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

func renderDashboard(d deeplook.Dashboard) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DeepLook"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  projects %d · items %d · deficient %d · good %d%%",
		d.ProjectCount, d.ItemCount, d.DeficientCount, d.GoodRate)))
	b.WriteString("\n")

	if d.Empty() {
		b.WriteString(mutedStyle.Render("no result sources loaded"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(headingStyle.Render("Status"))
	b.WriteString("\n")
	for _, c := range d.Distribution.Counts {
		ratio := 0.0
		if d.Distribution.Total > 0 {
			ratio = float64(c.Count) / float64(d.Distribution.Total)
		}
		style := badgeStyle(c.Status)
		fmt.Fprintf(&b, "  %s %5d  %s\n",
			style.Width(10).Render(string(c.Status)), c.Count, style.Render(bar(ratio, barWidth)))
	}

	b.WriteString(headingStyle.Render("Top weaknesses"))
	b.WriteString("\n")
	if len(d.Weaknesses) == 0 {
		b.WriteString(mutedStyle.Render("  no deficient items"))
		b.WriteString("\n")
	}
	for i, w := range d.Weaknesses {
		fmt.Fprintf(&b, "  %d. %-8s %s  %s %d\n", i+1, w.Code, w.Title,
			badgeStyle(deeplook.StatusDeficient).Render(bar(w.Ratio, barWidth/2)), w.Count)
	}

	b.WriteString(headingStyle.Render("Projects"))
	b.WriteString("\n")
	for _, p := range d.Projects {
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			titleStyle.Render(p.Label),
			mutedStyle.Render("["+p.Category+"]"),
			badgeStyle(p.MainStatus).Render(string(p.MainStatus)))
		b.WriteString("    ")
		b.WriteString(segmentBar(p))
		b.WriteString("\n")
	}
	return b.String()
}

func segmentBar(p deeplook.ProjectSummary) string {
	if p.NoData {
		return mutedStyle.Render("no data")
	}
	var bars, legend []string
	for _, s := range p.Segments {
		style := badgeStyle(s.Status)
		bars = append(bars, style.Render(bar(s.Percent/100, barWidth)))
		legend = append(legend, fmt.Sprintf("%s %d", s.Status, s.Count))
	}
	return strings.Join(bars, "") + "  " + mutedStyle.Render(strings.Join(legend, " / "))
}

func renderItems(p *deeplook.Project, res deeplook.FilterResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(p.Label), mutedStyle.Render(fmt.Sprintf("%d / %d", res.Shown, res.Total)))
	if res.Shown == 0 {
		b.WriteString(mutedStyle.Render("  no matching items"))
		b.WriteString("\n")
		return b.String()
	}
	for _, it := range res.Items {
		d := deeplook.Detail(it)
		fmt.Fprintf(&b, "  %-8s %s %s  %s\n",
			d.Code,
			badgeStyle(it.Status).Width(10).Render(string(it.Status)),
			importanceStyle(d.ImportanceLevel).Width(4).Render(d.ImportanceLabel),
			d.Title)
	}
	return b.String()
}

func renderDetail(d deeplook.ItemDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n",
		titleStyle.Render(d.Code+" "+d.Title),
		badgeStyle(d.Status).Render(string(d.Status)),
		importanceStyle(d.ImportanceLevel).Render(d.ImportanceLabel))
	if !d.Matched {
		b.WriteString(mutedStyle.Render("no checklist entry for this code"))
		b.WriteString("\n")
	}
	fields := []struct{ label, value string }{
		{"분류", d.Category},
		{"중요도", d.Importance},
		{"페이지", d.Page},
		{"점검 내용", d.Description},
		{"점검 목적", d.Purpose},
		{"보안 위협", d.Threat},
		{"참고", d.Reference},
		{"대상", d.Target},
		{"양호판단", d.GoodCriteria},
		{"취약판단", d.BadCriteria},
		{"조치방법", d.Remediation},
		{"조치 시 영향", d.Impact},
		{"비고/코멘트", d.Remark},
		{"결과덤프", d.Dump},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(f.label), f.value)
	}
	for _, s := range d.Steps {
		b.WriteString(headingStyle.Render(fmt.Sprintf("점검조치 %d %s", s.Number, s.Title)))
		b.WriteString("\n")
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	return b.String()
}
