package verdict

import (
	"strings"

	"github.com/aleister1102/scamsiren/internal/models"
)

const (
	invalidAdvice     = "This domain does not exist. Check the spelling of the link and do not trust it."
	unreachableAdvice = "The link exists but a safe connection could not be established. Treat it with caution and do not enter any personal data."

	highAdvice = "Do not open or interact with this page; close it now. Do not log in, do not enter personal details or one-time codes, " +
		"do not download files or scan QR codes. Verify through the official website or hotline yourself."
	mediumAdvice = "Do not enter passwords or verification codes and do not download or install anything. " +
		"Close the page and verify through official channels."
	lowAdvice = "No known threat was reported for this URL. Still avoid entering one-time codes or downloading unknown files, " +
		"and verify through official channels if in doubt."
)

// kindClauses enrich high and medium advice; order is the order of appearance.
var kindClauses = []struct {
	keys   []string
	clause string
}{
	{keys: []string{"phishing"}, clause: "Pages like this often pose as a login or support page to steal credentials and one-time codes."},
	{keys: []string{"malware"}, clause: "It may push you to download and install software that takes over the device or leaks data."},
	{keys: []string{"scam", "fraud"}, clause: "It may ask you to transfer money, add a contact or pay by scanning a code."},
	{keys: []string{"defacement"}, clause: "The site content may have been tampered with and cannot be trusted."},
}

// kindLabels maps a raw category or tag to a display label; first match wins.
var kindLabels = []struct {
	match func(string) bool
	label string
}{
	{match: func(k string) bool { return strings.Contains(k, "phishing") }, label: "phishing"},
	{match: func(k string) bool { return strings.Contains(k, "malware_download") || k == "malware" }, label: "malware"},
	{match: func(k string) bool { return strings.Contains(k, "scam") || strings.Contains(k, "fraud") }, label: "scam/fraud"},
	{match: func(k string) bool { return strings.Contains(k, "defacement") }, label: "defacement"},
	{match: func(k string) bool { return strings.Contains(k, "suspicious") }, label: "suspicious activity"},
	{match: func(k string) bool { return strings.Contains(k, "adult") || strings.Contains(k, "porn") }, label: "adult content"},
	{match: func(k string) bool { return strings.Contains(k, "crypto") }, label: "crypto related"},
}

func buildAdvice(classification models.Classification, kinds []string) string {
	var base string
	switch classification {
	case models.ClassificationHigh:
		base = highAdvice
	case models.ClassificationMedium:
		base = mediumAdvice
	default:
		return lowAdvice
	}

	parts := []string{base}
	for _, c := range kindClauses {
		for _, key := range c.keys {
			if hasKind(kinds, key) {
				parts = append(parts, c.clause)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}

func kindLabel(kind string) string {
	for _, l := range kindLabels {
		if l.match(kind) {
			return l.label
		}
	}
	return kind
}

func buildSummary(classification models.Classification, kinds []string) string {
	labels := make([]string, 0, len(kinds))
	seen := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		label := kindLabel(k)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}

	suspected := "general risk"
	if len(labels) > 0 {
		suspected = strings.Join(labels, ", ")
	}

	switch classification {
	case models.ClassificationHigh:
		return "High risk, suspected: " + suspected + "."
	case models.ClassificationMedium:
		return "Medium risk, suspected: " + suspected + "."
	default:
		return "Low risk, no known threat reported."
	}
}
