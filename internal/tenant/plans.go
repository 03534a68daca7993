package tenant

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Plan tiers.
const (
	PlanBasic = "basic"
	PlanPro   = "pro"
)

// Plan describes what one tier may do per UTC day.
type Plan struct {
	Name      string
	DailyCap  int
	Languages []string
}

// Allows reports whether lang is one of the plan's languages. Comparison is
// on the base language, so "en-GB" is allowed by "en".
func (p Plan) Allows(lang string) bool {
	want := baseOf(lang)
	if want == "" {
		return false
	}
	for _, l := range p.Languages {
		if l == want {
			return true
		}
	}
	return false
}

// Plans maps tier names to plans. Lookups of unknown tiers fall back to basic.
type Plans struct {
	byName map[string]Plan
}

// NewPlans validates language codes and builds a plan table. A basic plan is
// required.
func NewPlans(plans ...Plan) (Plans, error) {
	out := Plans{byName: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return Plans{}, fmt.Errorf("tenant: plan without a name")
		}
		if p.DailyCap < 0 {
			return Plans{}, fmt.Errorf("tenant: plan %q has a negative cap", name)
		}
		langs := make([]string, 0, len(p.Languages))
		for _, code := range p.Languages {
			tag, err := language.Parse(code)
			if err != nil {
				return Plans{}, fmt.Errorf("tenant: plan %q: language %q: %w", name, code, err)
			}
			base, _ := tag.Base()
			langs = append(langs, base.String())
		}
		out.byName[name] = Plan{Name: name, DailyCap: p.DailyCap, Languages: langs}
	}
	if _, ok := out.byName[PlanBasic]; !ok {
		return Plans{}, fmt.Errorf("tenant: plan table needs a %q plan", PlanBasic)
	}
	return out, nil
}

// DefaultPlans returns the basic (el, en) and pro (el, en, de, fr, it, es)
// tiers with the given daily caps.
func DefaultPlans(basicCap, proCap int) Plans {
	p, err := NewPlans(
		Plan{Name: PlanBasic, DailyCap: basicCap, Languages: []string{"el", "en"}},
		Plan{Name: PlanPro, DailyCap: proCap, Languages: []string{"el", "en", "de", "fr", "it", "es"}},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// For returns the plan for name (case-insensitive), or basic when the name
// is empty or unknown.
func (ps Plans) For(name string) Plan {
	if p, ok := ps.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return ps.byName[PlanBasic]
}

func baseOf(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
