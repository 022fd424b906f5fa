package core

import (
	"fmt"
	"strings"
	"time"

	"renewtrack.com/renewtrack/utils"
)

// The digest is a self-contained HTML document; inline styles only, since
// mail clients strip everything else.

func buildDigestHTML(expired, dueSoon []Subscription, today time.Time) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<div style="background: #1e3a8a; color: white; padding: 20px; border-radius: 8px 8px 0 0;">`)
	b.WriteString(`<h1 style="margin:0; font-size: 20px;">RenewTrack - Renewal Alert</h1>`)
	fmt.Fprintf(&b, `<p style="margin: 5px 0 0; opacity: 0.8; font-size: 14px;">Date: %s</p>`, utils.FormatDate(today))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="background: white; padding: 20px; border: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">`)

	if len(expired) > 0 {
		writeDigestTable(&b, "Expired", expired, "#dc2626", "#fef2f2", "#fecaca")
	}
	if len(dueSoon) > 0 {
		writeDigestTable(&b, "Due Soon", dueSoon, "#d97706", "#fffbeb", "#fde68a")
	}

	b.WriteString(`<p style="color: #6b7280; font-size: 12px; margin-top: 20px; padding-top: 15px; border-top: 1px solid #e5e7eb;">`)
	b.WriteString(`This is an automated notification from RenewTrack.</p>`)
	b.WriteString(`</div></div>`)

	return b.String()
}

func writeDigestTable(b *strings.Builder, heading string, subs []Subscription, accent, headBG, border string) {
	fmt.Fprintf(b, `<h2 style="color: %s; font-size: 16px; border-bottom: 2px solid %s; padding-bottom: 8px;">%s (%d)</h2>`,
		accent, accent, heading, len(subs))
	b.WriteString(`<table style="width: 100%; border-collapse: collapse; margin-bottom: 20px; font-size: 13px;">`)

	fmt.Fprintf(b, `<tr style="background: %s;">`, headBG)
	for _, col := range []string{"Customer", "Service", "Domain", "End Date", "Price"} {
		fmt.Fprintf(b, `<th style="text-align: left; padding: 8px; border: 1px solid %s;">%s</th>`, border, col)
	}
	b.WriteString(`</tr>`)

	for _, s := range subs {
		b.WriteString(`<tr>`)
		cell := func(content string) {
			fmt.Fprintf(b, `<td style="padding: 8px; border: 1px solid %s;">%s</td>`, border, content)
		}
		cell(s.Customer.Name)
		cell(s.ServiceType.Name)
		cell(s.DomainOrService)
		fmt.Fprintf(b, `<td style="padding: 8px; border: 1px solid %s; color: %s; font-weight: bold;">%s</td>`,
			border, accent, utils.FormatDate(s.EndDate))
		cell(fmt.Sprintf("%s %s", s.Price.StringFixed(2), s.Currency))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
}
