package analysis

import "strings"

// Aspect is a dimension on which products are compared.
type Aspect string

// The aspect catalogue, in display order.
const (
	AspectUserInterface Aspect = "User Interface"
	AspectFeatures      Aspect = "Features"
	AspectPricing       Aspect = "Pricing"
	AspectCommunity     Aspect = "Community Support"
	AspectIntegrations  Aspect = "Integrations"
	AspectPerformance   Aspect = "Speed / Performance"
	AspectSecurity      Aspect = "Security / Compliance"
	AspectScalability   Aspect = "Scalability / Enterprise Readiness"
)

// fallbackAspects is what the prompt compares when no aspect is selected.
const fallbackAspects = "Pricing, Features, User Interface"

// Aspects returns the full catalogue in display order.
func Aspects() []Aspect {
	return []Aspect{
		AspectUserInterface,
		AspectFeatures,
		AspectPricing,
		AspectCommunity,
		AspectIntegrations,
		AspectPerformance,
		AspectSecurity,
		AspectScalability,
	}
}

// DefaultAspects are preselected in the UI.
func DefaultAspects() []Aspect {
	return []Aspect{AspectUserInterface, AspectFeatures, AspectPricing}
}

// JoinAspects renders aspects for the prompt, falling back to
// "Pricing, Features, User Interface" when none are given.
func JoinAspects(aspects []Aspect) string {
	parts := make([]string, 0, len(aspects))
	for _, a := range aspects {
		if s := strings.TrimSpace(string(a)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fallbackAspects
	}
	return strings.Join(parts, ", ")
}

// ParseAspects converts free-form names to aspects. Unknown names are kept
// as custom aspects, since the model can compare on anything.
func ParseAspects(names []string) []Aspect {
	known := make(map[string]Aspect)
	for _, a := range Aspects() {
		known[strings.ToLower(string(a))] = a
	}

	out := make([]Aspect, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if a, ok := known[strings.ToLower(name)]; ok {
			out = append(out, a)
			continue
		}
		out = append(out, Aspect(name))
	}
	return out
}
