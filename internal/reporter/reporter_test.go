package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() models.URLReport {
	return models.URLReport{
		Input:        "bit.ly/abc",
		OriginalURL:  "https://bit.ly/abc",
		FinalURL:     "https://bank-login.example/",
		HopChain:     []string{"https://bit.ly/abc", "https://bank-login.example/"},
		Reachability: "exists",
		SourceTier:   models.SourceTierFreshSubmission,
		Verdict: models.RiskVerdict{
			URL:            "https://bank-login.example/",
			Classification: models.ClassificationHigh,
			Score:          80,
			Categories:     []string{"phishing"},
			Advice:         "Do not enter any credentials.",
			Summary:        "High risk, suspected: phishing",
			Reasons:        []string{"Categories: phishing"},
		},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, true)

	require.NoError(t, r.Report(sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[HIGH 80] https://bit.ly/abc\n"), out)
	assert.Contains(t, out, "  final: https://bank-login.example/ (1 hop(s))\n")
	assert.Contains(t, out, "  High risk, suspected: phishing\n")
	assert.Contains(t, out, "  advice: Do not enter any credentials.\n")
	assert.Contains(t, out, "  - Categories: phishing\n")
	assert.Contains(t, out, "  source: fresh_submission\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestConsoleReporter_NoRedirectNoFinalLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, true)

	rep := sampleReport()
	rep.FinalURL = rep.OriginalURL
	rep.SourceTier = models.SourceTierNone
	rep.FailureReason = models.FailureReason("poll_exhausted")

	require.NoError(t, r.Report(rep))
	assert.NotContains(t, buf.String(), "final:")
	assert.Contains(t, buf.String(), "  source: none (poll_exhausted)\n")
}

func TestConsoleReporter_Rejected(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, true)

	require.NoError(t, r.Rejected(nil))
	assert.Empty(t, buf.String())

	require.NoError(t, r.Rejected([]models.RejectedInput{{Input: "ftp://x", Reason: "unsupported scheme"}}))
	assert.Equal(t, "[SKIPPED] \"ftp://x\": unsupported scheme\n", buf.String())
}

func TestJSONReporter_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Report(sampleReport()))
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		var decoded models.URLReport
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		assert.Equal(t, models.ClassificationHigh, decoded.Verdict.Classification)
		assert.Equal(t, "https://bank-login.example/", decoded.FinalURL)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	r, err := New(FormatJSON, &buf, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONReporter{}, r)

	r, err = New(FormatText, &buf, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleReporter{}, r)

	_, err = New(Format("xml"), &buf, true)
	assert.Error(t, err)
}

func TestJSONReporter_Rejected(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	require.NoError(t, r.Rejected(nil))
	assert.Empty(t, buf.String())

	require.NoError(t, r.Rejected([]models.RejectedInput{
		{Input: "", Reason: "invalid input: URL is empty or only whitespace"},
		{Input: "ftp://x", Reason: "unsupported scheme"},
	}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"input":"ftp://x","reason":"unsupported scheme","rejected":true}`, lines[1])
}
