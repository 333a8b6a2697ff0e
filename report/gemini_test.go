package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigia/folga-engine/ledger"
)

func testGemini(key, baseURL string) *Gemini {
	g := NewGemini()
	g.keyFn = func() string { return key }
	g.baseURL = baseURL
	return g
}

func testOfficer() ledger.Officer {
	return ledger.Officer{
		ID:        "o-1",
		Name:      "Silva",
		Rank:      ledger.RankCabo,
		Matricula: "12345",
		Unit:      "1º BPM",
	}
}

func TestGemini_MissingKeyIsNotConfigured(t *testing.T) {
	g := testGemini("", "")

	_, err := g.GenerateOfficerReport(context.Background(), testOfficer(), nil)
	assert.ErrorIs(t, err, ledger.ErrReportNotConfigured)
}

func TestGemini_SuccessfulGeneration(t *testing.T) {
	var gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Resumo executivo."}}}},
			},
		})
	}))
	defer srv.Close()

	g := testGemini("secret", srv.URL)
	records := []ledger.LeaveRecord{{
		ID:          "r-1",
		OfficerID:   "o-1",
		ServiceType: ledger.ServiceCarnaval,
		ServiceDate: ledger.NewDate(2024, time.February, 12),
		Amount:      ledger.Days(1.5),
		Status:      ledger.StatusAvailable,
	}}

	text, err := g.GenerateOfficerReport(context.Background(), testOfficer(), records)
	require.NoError(t, err)
	assert.Equal(t, "Resumo executivo.", text)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Cabo Silva")
	assert.Contains(t, prompt, "Carnaval")
	assert.Contains(t, prompt, "1.5")
}

func TestGemini_NonOKStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := testGemini("secret", srv.URL)
	_, err := g.GenerateOfficerReport(context.Background(), testOfficer(), nil)
	assert.ErrorIs(t, err, ledger.ErrReportUnavailable)
	assert.True(t, ledger.IsReportDegraded(err))
}

func TestGemini_EmptyCandidatesIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := testGemini("secret", srv.URL)
	_, err := g.GenerateOfficerReport(context.Background(), testOfficer(), nil)
	assert.ErrorIs(t, err, ledger.ErrReportUnavailable)
}

func TestBuildPrompt_RecordHistoryShape(t *testing.T) {
	records := []ledger.LeaveRecord{{
		ServiceType: ledger.ServiceEleicao,
		ServiceDate: ledger.NewDate(2024, time.October, 6),
		Amount:      ledger.Days(1),
		Status:      ledger.StatusUsed,
		DateUsed:    ledger.NewDate(2024, time.November, 1),
		Notes:       "plantão",
	}}

	prompt, err := buildPrompt(testOfficer(), records)
	require.NoError(t, err)

	// The embedded history is the Portuguese JSON view.
	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	require.True(t, start >= 0 && end > start)

	var views []map[string]string
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end+1]), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Operação Eleição", views[0]["servico"])
	assert.Equal(t, "Gozada", views[0]["status"])
	assert.Equal(t, "2024-11-01", views[0]["dataGozo"])
}
