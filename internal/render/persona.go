package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"RWAPulse/internal/domain/models"
)

// Post is the rendered narrative for one signal.
type Post struct {
	Kind     models.SignalKind `json:"kind"`
	Headline string            `json:"headline"`
	Body     string            `json:"body"`
	Tags     []string          `json:"tags"`
}

// String lays the post out for a terminal.
func (p Post) String() string {
	var b strings.Builder
	b.WriteString(p.Headline)
	for _, line := range strings.Split(p.Body, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("\n   ")
		b.WriteString(line)
	}
	if len(p.Tags) > 0 {
		b.WriteString("\n   ")
		b.WriteString(strings.Join(p.Tags, " "))
	}
	return b.String()
}

const postTemplates = `
{{define "arbitrage.on_chain_discount.headline"}}THE BALANCE IS DISTURBED: {{name .}}{{end}}
{{define "arbitrage.on_chain_discount.body"}}Low tide at {{.CheapestVenue}}: {{money .LowPrice}}  |  High tide at {{.MostExpensiveVenue}}: {{money .HighPrice}}
Divergence: {{pct .DivergencePct}}% (Undervalued On-Chain)
Counsel: Bridge the realms. Restore value where it lies dormant.{{end}}

{{define "arbitrage.off_chain_discount.headline"}}ILLUSION DETECTED: {{name .}}{{end}}
{{define "arbitrage.off_chain_discount.body"}}Low tide at {{.CheapestVenue}}: {{money .LowPrice}}  |  High tide at {{.MostExpensiveVenue}}: {{money .HighPrice}}
Premium: {{pct .DivergencePct}}% (Overvalued On-Chain)
Counsel: Do not be swayed. Seek the artifact in the physical world.{{end}}

{{define "scarcity_warning.headline"}}THE TIDE RECEDES: {{name .}}{{end}}
{{define "scarcity_warning.body"}}On-Chain Vaults: Only {{.Scarcity.OnChainCount}} left (the realm holds {{.Scarcity.OffChainCount}})
Counsel: When the water vanishes, the rare stones are revealed.{{end}}

{{define "liquidity_crisis.headline"}}THE SILENCE BEFORE THE STORM: {{name .}}{{end}}
{{define "liquidity_crisis.body"}}Volume has fallen by {{pct .Liquidity.VolumeTrendPct}}% across the window.
The crowd has left, yet value remains.
Counsel: When the noise fades, the wise begin to accumulate.{{end}}

{{define "stable.headline"}}{{if .NoData}}THE WATERS ARE DARK: {{name .}}{{else}}HARMONY RESTORED: {{name .}}{{end}}{{end}}
{{define "stable.body"}}{{if .NoData}}No venue shows a price. The Oracle waits.{{else}}Low tide at {{.CheapestVenue}}: {{money .LowPrice}}  |  High tide at {{.MostExpensiveVenue}}: {{money .HighPrice}}
The difference between realms is a mere {{pct .DivergencePct}}%.
{{if .Watch}}The currents stir. The Oracle keeps one eye open.{{else}}True power lies in patience. We watch. We wait.{{end}}{{end}}{{end}}

{{define "specs"}}{{with .VolatilityPct}}Tech specs: Div {{pct $.DivergencePct}}% | Vol {{pct .}}%{{end}}{{end}}
`

var tagsByKind = map[models.SignalKind][]string{
	models.KindArbitrage: {"#RWA", "#Arbitrage"},
	models.KindScarcity:  {"#RWA", "#Scarcity"},
	models.KindLiquidity: {"#RWA", "#Liquidity"},
	models.KindStable:    {"#RWA", "#RWAPulse"},
}

// Persona turns signals into oracle-voiced posts.
type Persona struct {
	tpl *template.Template
}

func NewPersona() (*Persona, error) {
	tpl, err := template.New("post").Funcs(template.FuncMap{
		"money": Money,
		"pct":   Pct,
		"name":  displayName,
	}).Parse(postTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse post templates: %w", err)
	}
	return &Persona{tpl: tpl}, nil
}

// Render builds the post for sig. A signal whose detail does not match its kind is an error.
func (p *Persona) Render(sig models.Signal) (Post, error) {
	key, err := templateKey(sig)
	if err != nil {
		return Post{}, err
	}
	head, err := p.exec(key+".headline", sig)
	if err != nil {
		return Post{}, err
	}
	body, err := p.exec(key+".body", sig)
	if err != nil {
		return Post{}, err
	}
	specs, err := p.exec("specs", sig)
	if err != nil {
		return Post{}, err
	}
	if specs != "" {
		body += "\n" + specs
	}
	return Post{
		Kind:     sig.Kind,
		Headline: head,
		Body:     body,
		Tags:     append([]string(nil), tagsByKind[sig.Kind]...),
	}, nil
}

func (p *Persona) exec(name string, sig models.Signal) (string, error) {
	var buf bytes.Buffer
	if err := p.tpl.ExecuteTemplate(&buf, name, sig); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func templateKey(sig models.Signal) (string, error) {
	switch sig.Kind {
	case models.KindArbitrage:
		if sig.Arbitrage != nil && sig.Arbitrage.Direction == models.OffChainDiscount {
			return "arbitrage.off_chain_discount", nil
		}
		return "arbitrage.on_chain_discount", nil
	case models.KindScarcity:
		if sig.Scarcity == nil {
			return "", fmt.Errorf("signal %s: scarcity detail missing", sig.AssetID)
		}
	case models.KindLiquidity:
		if sig.Liquidity == nil {
			return "", fmt.Errorf("signal %s: liquidity detail missing", sig.AssetID)
		}
	case models.KindStable:
	default:
		return "", fmt.Errorf("signal %s: unknown kind %q", sig.AssetID, sig.Kind)
	}
	return string(sig.Kind), nil
}

func displayName(sig models.Signal) string {
	if sig.DisplayName != "" {
		return sig.DisplayName
	}
	return sig.AssetID
}
