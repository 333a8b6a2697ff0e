/*
Package report implements the narrative-report collaborator.

PURPOSE:
  Turns a read-only snapshot of one officer's ledger into a short
  executive summary using the Generative Language REST API. The ledger
  engine works fully without this package: every failure here degrades
  to a ReportUnavailable-class error and never blocks a ledger
  operation.

CONFIGURATION:
  The API key is read lazily from the environment on each call, so a
  missing or invalid key surfaces as ErrReportNotConfigured instead of
  breaking startup.
*/
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vigia/folga-engine/ledger"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultModel    = "gemini-2.0-flash"

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv = "GEMINI_API_KEY"
)

// Gemini implements ledger.ReportGenerator over the Generative Language
// REST API.
type Gemini struct {
	Client *http.Client
	Model  string

	// keyFn is a seam for tests; defaults to reading APIKeyEnv.
	keyFn func() string
	// baseURL overrides the API endpoint in tests.
	baseURL string
}

// NewGemini creates a generator with sane defaults.
func NewGemini() *Gemini {
	return &Gemini{
		Client: &http.Client{Timeout: 30 * time.Second},
		Model:  defaultModel,
		keyFn:  func() string { return os.Getenv(APIKeyEnv) },
	}
}

// request/response shapes for the generateContent call. Only the fields
// we use are declared.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateOfficerReport produces the executive summary for one officer.
func (g *Gemini) GenerateOfficerReport(ctx context.Context, officer ledger.Officer, records []ledger.LeaveRecord) (string, error) {
	key := g.keyFn()
	if key == "" {
		return "", ledger.ErrReportNotConfigured
	}

	prompt, err := buildPrompt(officer, records)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrReportUnavailable, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrReportUnavailable, err)
	}

	url := fmt.Sprintf(defaultEndpoint, g.Model)
	if g.baseURL != "" {
		url = fmt.Sprintf(g.baseURL+"/v1beta/models/%s:generateContent", g.Model)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrReportUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrReportUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %s", ledger.ErrReportUnavailable, resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrReportUnavailable, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ledger.ErrReportUnavailable)
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// recordView is the JSON shape fed into the prompt.
type recordView struct {
	ServiceType        string `json:"servico"`
	ServiceDescription string `json:"descricao,omitempty"`
	ServiceDate        string `json:"dataServico"`
	Amount             string `json:"quantidade"`
	Status             string `json:"status"`
	DateUsed           string `json:"dataGozo,omitempty"`
	Notes              string `json:"observacoes,omitempty"`
}

func buildPrompt(officer ledger.Officer, records []ledger.LeaveRecord) (string, error) {
	views := make([]recordView, len(records))
	for i, r := range records {
		views[i] = recordView{
			ServiceType:        r.ServiceType.Label(),
			ServiceDescription: r.ServiceDescription,
			ServiceDate:        r.ServiceDate.String(),
			Amount:             r.Amount.String(),
			Status:             r.Status.Label(),
			DateUsed:           r.DateUsed.String(),
			Notes:              r.Notes,
		}
	}
	history, err := json.Marshal(views)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Atue como um oficial administrativo da Polícia Militar.
Analise os dados do seguinte policial e gere um resumo executivo curto (máximo 3 parágrafos) sobre a situação de suas folgas.

Dados do Policial:
Nome: %s %s
Matrícula: %s
Unidade: %s

Histórico de Folgas (JSON):
%s

O resumo deve focar em:
1. Saldo total de folgas disponíveis.
2. Padrão de aquisição (quais serviços geram mais folgas).
3. Alerta se houver muitas folgas acumuladas sem uso.
4. Sugestão educada para planejamento de gozo caso haja saldo positivo.

Use linguagem formal, militar e direta.`,
		officer.Rank.Label(), officer.Name, officer.Matricula, officer.Unit, history), nil
}
