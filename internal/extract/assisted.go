package extract

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/pkg/anthropic"
)

// maxExcerptChars bounds the page text sent to the model.
const maxExcerptChars = 12000

// assistSystemText pins the model to strict JSON output.
const assistSystemText = "You extract retail price data from retailer page text. Return JSON only, no prose."

// assistPrompt is the structured instruction set. The hard rules enforce the
// never-guess invariant: identifier must be verbatim present, no inferred
// values, no per-unit derivation without an explicit pack count.
type assistPrompt struct {
	Task      string            `json:"task"`
	HardRules []string          `json:"hard_rules"`
	Inputs    map[string]string `json:"inputs"`
	Schema    map[string]string `json:"output_schema"`
}

// assistResponse is the declared output contract of the assisted extractor.
type assistResponse struct {
	Valid           bool     `json:"valid"`
	Currency        *string  `json:"currency"`
	RSV             *float64 `json:"rsv"`
	VATInfo         *string  `json:"vat_info"`
	PromoPrice      *float64 `json:"promo_price"`
	PackFormat      *string  `json:"pack_format"`
	Flag            string   `json:"flag"`
	EvidenceSnippet *string  `json:"evidence_snippet"`
}

// Assisted delegates extraction to a language model under a strict
// instruction set. Any transport failure or unparsable output degrades to a
// rejection with flag No-data; this path never raises past the pipeline.
type Assisted struct {
	client anthropic.Client
	model  string
}

// NewAssisted creates the assisted strategy.
func NewAssisted(client anthropic.Client, modelID string) *Assisted {
	return &Assisted{client: client, model: modelID}
}

func (a *Assisted) Name() string { return "assisted" }

// Extract sends a bounded text excerpt to the model and maps its JSON
// answer onto a row or a rejection.
func (a *Assisted) Extract(ctx context.Context, req Request) Outcome {
	text := req.Text
	if len(text) > maxExcerptChars {
		text = text[:maxExcerptChars]
	}

	prompt := assistPrompt{
		Task: "Extract price data from the provided retailer page text.",
		HardRules: []string{
			"Return JSON only, no prose.",
			"Do NOT guess. If uncertain, return null.",
			"EAN must be explicitly present in the provided text; if not, return {\"valid\": false}.",
			"Return the non-promotional FULL price (rsv) if shown; if only a promo price exists, set rsv=null and promo_price to the promo.",
			"Do NOT derive a per-unit price from a multipack unless the pack count is explicit.",
		},
		Inputs: map[string]string{
			"market":    req.Market,
			"ean":       req.EAN,
			"vendor":    req.Vendor,
			"url":       req.URL,
			"page_text": text,
		},
		Schema: map[string]string{
			"valid":            "boolean",
			"currency":         "string|null",
			"rsv":              "number|null",
			"vat_info":         "string|null",
			"promo_price":      "number|null",
			"pack_format":      "string|null",
			"flag":             "Comparable|Promo-only|Non-comparable|No-data",
			"evidence_snippet": "string|null",
		},
	}

	promptJSON, err := json.MarshalIndent(prompt, "", "  ")
	if err != nil {
		return a.degraded(req, err)
	}

	temperature := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   1024,
		System:      assistSystemText,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: string(promptJSON)},
		},
	})
	if err != nil {
		return a.degraded(req, err)
	}

	var parsed assistResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		return a.degraded(req, err)
	}

	if !parsed.Valid {
		return Rejected("EAN not explicitly verifiable on page/source")
	}
	if parsed.RSV == nil && parsed.PromoPrice == nil {
		return Rejected(ReasonNoPrice)
	}

	flag := model.ParseFlag(parsed.Flag)
	currency := ""
	if parsed.Currency != nil {
		currency = *parsed.Currency
	}
	vatInfo := ""
	if parsed.VATInfo != nil {
		vatInfo = *parsed.VATInfo
	}
	evidence := ""
	if parsed.EvidenceSnippet != nil {
		evidence = truncateRunes(*parsed.EvidenceSnippet, evidenceLen)
	}

	return Outcome{Row: &model.PriceRow{
		Vendor:     req.Vendor,
		Market:     req.Market,
		Currency:   currency,
		RSV:        parsed.RSV,
		VATInfo:    vatInfo,
		PromoPrice: parsed.PromoPrice,
		Flag:       flag,
		PackFormat: parsed.PackFormat,
		SourceURL:  req.URL,
		Evidence:   evidence,
		Comparable: flag == model.FlagComparable,
	}}
}

// degraded converts any assisted-path failure into a No-data rejection with
// a diagnostic evidence string.
func (a *Assisted) degraded(req Request, err error) Outcome {
	zap.L().Warn("extract: assisted strategy degraded",
		zap.String("ean", req.EAN),
		zap.String("url", req.URL),
		zap.Error(err),
	)
	return Outcome{
		Reason:    string(model.FlagNoData) + ": assisted extraction failed: " + err.Error(),
		Transient: true,
	}
}

// cleanJSON strips markdown code fences the model sometimes wraps around
// its JSON answer.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
