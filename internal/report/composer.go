// Package report composes human-readable notifications from run output.
// Composition is pure; delivery belongs to the notify adapter.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/ports"
)

const divider = "======================================="
const rule = "-------------------------------------"

// BuildScanReport composes the security scan report. The subject
// signals at a glance whether any threats were found.
func BuildScanReport(verdicts []*core.ScanVerdict, checks []*core.MimeCheck, folder string) *ports.Report {
	var threats []*core.ScanVerdict
	clean := 0
	for _, v := range verdicts {
		if v.Infected() {
			threats = append(threats, v)
		} else {
			clean++
		}
	}

	var mismatches []*core.MimeCheck
	for _, c := range checks {
		if c.Match != nil && !*c.Match {
			mismatches = append(mismatches, c)
		}
	}

	var subject string
	if len(threats) > 0 {
		subject = fmt.Sprintf("Security Alert: %d Threat(s) Detected", len(threats))
	} else {
		subject = "Security Scan Completed - All Clear"
	}

	var sb strings.Builder
	sb.WriteString("File Warden - Security Scan Report\n\n")
	sb.WriteString(fmt.Sprintf("Scan Time: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Scanned Folder: %s\n\n", folder))

	sb.WriteString("SCAN SUMMARY\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Total Files Scanned: %d\n", len(verdicts)))
	sb.WriteString(fmt.Sprintf("Threats Detected: %d\n", len(threats)))
	sb.WriteString(fmt.Sprintf("Suspicious Files: %d\n", len(mismatches)))
	sb.WriteString(fmt.Sprintf("Clean Files: %d\n", clean))
	sb.WriteString(divider + "\n")

	if len(threats) > 0 {
		sb.WriteString("\nDETECTED THREATS\n")
		sb.WriteString(rule + "\n")
		for _, threat := range threats {
			sb.WriteString(fmt.Sprintf("* %s\n", filepath.Base(threat.Path)))
			sb.WriteString(fmt.Sprintf("  Threat: %s\n", threat.Detail))
			sb.WriteString(fmt.Sprintf("  Location: %s\n", threat.Path))
			if threat.QuarantinedTo != "" {
				sb.WriteString("  Status: Quarantined\n")
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("\nNO THREATS DETECTED\n")
		sb.WriteString("All files have been scanned and verified as safe.\n\n")
	}

	if len(mismatches) > 0 {
		sb.WriteString("\nFILES WITH TYPE MISMATCH\n")
		sb.WriteString(rule + "\n")
		for _, m := range mismatches {
			mime := m.MIME
			if mime == "" {
				mime = "Unknown"
			}
			sb.WriteString(fmt.Sprintf("* %s\n", filepath.Base(m.Path)))
			sb.WriteString(fmt.Sprintf("  Detected MIME: %s\n\n", mime))
		}
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("This is an automated security scan report.\n")
	sb.WriteString("Files marked as threats have been moved to quarantine.\n")

	return &ports.Report{Subject: subject, Body: sb.String()}
}

// BuildSummaryReport composes the organize-run summary notification
func BuildSummaryReport(analytics *core.RunAnalytics) *ports.Report {
	var sb strings.Builder
	sb.WriteString("File Organization Summary\n\n")
	sb.WriteString(fmt.Sprintf("Total Files Organized: %d\n", analytics.TotalFiles))
	sb.WriteString(fmt.Sprintf("Total Size: %.2f MB\n", float64(analytics.TotalSizeBytes)/(1024*1024)))
	sb.WriteString(fmt.Sprintf("Time Taken: %.2f sec\n", analytics.TimeTaken.Seconds()))

	sb.WriteString("Categories:\n")
	if len(analytics.Categories) == 0 {
		sb.WriteString("- None\n")
	}
	for _, name := range sortedKeys(analytics.Categories) {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", name, analytics.Categories[name]))
	}

	sec := analytics.Security
	if sec.Scanned > 0 {
		sb.WriteString("\nSecurity Scan:\n")
		sb.WriteString(fmt.Sprintf("- Scanned: %d\n", sec.Scanned))
		sb.WriteString(fmt.Sprintf("- Infected: %d\n", sec.Infected))
		sb.WriteString(fmt.Sprintf("- Quarantined: %d\n", sec.Quarantined))
		sb.WriteString(fmt.Sprintf("- Clean: %d\n", sec.Clean))
	}

	return &ports.Report{
		Subject: "File Warden Summary Report",
		Body:    sb.String(),
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
