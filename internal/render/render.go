// Package render formats resolved context and audit results for terminals.
package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/electriceye-tools/eectl/internal/findings"
	"github.com/electriceye-tools/eectl/internal/preflight"
)

var (
	primary = lipgloss.Color("#33A8FF")
	muted   = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#10B981")
	warning = lipgloss.Color("#F59E0B")
	failure = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(18)

	valueStyle = lipgloss.NewStyle().Bold(true)

	passStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(warning).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(failure).Bold(true)
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// Context renders the resolved deployment context as a labelled block per
// lookup.
func Context(c preflight.Context) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Caller Identity") + "\n")
	b.WriteString(row("Account", c.Identity.AccountID) + "\n")
	b.WriteString(row("ARN", c.Identity.ARN) + "\n")
	b.WriteString(row("User ID", c.Identity.UserID) + "\n")
	b.WriteString(row("Partition", c.Identity.Partition) + "\n")
	b.WriteString("\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Availability Zones (%s)", c.Region)) + "\n")
	if len(c.AvailabilityZones) == 0 {
		b.WriteString(labelStyle.Render("none available") + "\n")
	}
	for _, zone := range c.AvailabilityZones {
		b.WriteString(row(zone.Name, zone.ZoneID) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Events Role Policy") + "\n")
	b.WriteString(row("Name", c.EventsPolicy.Name) + "\n")
	b.WriteString(row("ARN", c.EventsPolicy.ARN) + "\n")
	b.WriteString(row("Policy ID", c.EventsPolicy.PolicyID) + "\n")
	b.WriteString(row("Default Version", c.EventsPolicy.DefaultVersionID) + "\n")
	b.WriteString(row("Attachments", fmt.Sprintf("%d", c.EventsPolicy.AttachmentCount)) + "\n")

	return b.String()
}

func severityStyle(label string) lipgloss.Style {
	switch label {
	case "CRITICAL", "HIGH":
		return failStyle
	case "MEDIUM", "LOW":
		return warnStyle
	default:
		return passStyle
	}
}

// AuditSummary renders a one-line-per-finding overview plus pass/fail totals.
func AuditSummary(batch []findings.Finding) string {
	var b strings.Builder
	passed, failed := 0, 0

	for _, f := range batch {
		if f.Failed() {
			failed++
			b.WriteString(severityStyle(f.Severity.Label).Render(fmt.Sprintf("%-13s", f.Severity.Label)))
		} else {
			passed++
			b.WriteString(passStyle.Render(fmt.Sprintf("%-13s", "OK")))
		}
		b.WriteString(valueStyle.Render(f.Title))
		if len(f.Resources) > 0 {
			b.WriteString(labelStyle.Render(" " + f.Resources[0].Id))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(passStyle.Render(fmt.Sprintf("%d passed", passed)))
	b.WriteString(labelStyle.Render(" / "))
	if failed > 0 {
		b.WriteString(failStyle.Render(fmt.Sprintf("%d failed", failed)))
	} else {
		b.WriteString(passStyle.Render("0 failed"))
	}
	b.WriteString("\n")

	return b.String()
}
