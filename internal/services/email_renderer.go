package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// Digest is the nightly per-household summary mailed to its members.
type Digest struct {
	HouseholdID         string
	Month               string
	Balance             decimal.Decimal
	ProjectedBalance    decimal.Decimal
	EstimatedEndOfMonth decimal.Decimal
	RiskLevel           string
	Alerts              []DigestAlert
}

// DigestAlert is one active notification listed in a digest.
type DigestAlert struct {
	EventType string
	Severity  string
	CtaTarget string
}

// RenderErrorSection renders the error section HTML.
func RenderErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var items strings.Builder
	for _, e := range errors {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(e))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">Some rows were rejected</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, items.String())
}

// RenderErrorBody renders the full HTML body for an import error email.
func RenderErrorBody(errors []string) string {
	return renderPage("#d13438", "Import Failed",
		"<p>The uploaded CSV could not be fully imported:</p>"+RenderErrorSection(errors))
}

// RenderDigestBody renders the nightly digest.
func RenderDigestBody(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table style="width: 100%%; border-collapse: collapse;">
		<tr><td>Balance</td><td style="text-align: right;">%s</td></tr>
		<tr><td>Projected balance</td><td style="text-align: right;">%s</td></tr>
		<tr><td>Estimated end of month</td><td style="text-align: right;"><b>%s</b></td></tr>
	</table>`,
		d.Balance.StringFixed(2),
		d.ProjectedBalance.StringFixed(2),
		d.EstimatedEndOfMonth.StringFixed(2),
	)

	if len(d.Alerts) == 0 {
		b.WriteString("<p>No open alerts.</p>")
	} else {
		b.WriteString(`<ul style="padding-left: 20px;">`)
		for _, a := range d.Alerts {
			fmt.Fprintf(&b, "<li><b>%s</b> (%s)", html.EscapeString(a.EventType), html.EscapeString(a.Severity))
			if a.CtaTarget != "" {
				fmt.Fprintf(&b, ` <a href="%s">review</a>`, html.EscapeString(a.CtaTarget))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	return renderPage(riskColor(d.RiskLevel), fmt.Sprintf("%s outlook", html.EscapeString(d.Month)), b.String())
}

func riskColor(level string) string {
	switch level {
	case "danger":
		return "#d13438"
	case "caution":
		return "#ca5010"
	default:
		return "#107c10"
	}
}

func renderPage(color, title, content string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, title, content)
}
