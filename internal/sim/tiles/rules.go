package tiles

import (
	"fmt"
	"strings"
)

type RuleKind uint8

const (
	RuleIndex RuleKind = iota + 1
	RuleProperty
	RuleRange
)

func (k RuleKind) String() string {
	switch k {
	case RuleIndex:
		return "index"
	case RuleProperty:
		return "property"
	case RuleRange:
		return "range"
	default:
		return fmt.Sprintf("RuleKind(%d)", uint8(k))
	}
}

// IndexList selects one of the caller-supplied tile index lists.
type IndexList uint8

const (
	IndexQuarry IndexList = iota + 1
	IndexCustom
)

// PropertyAll is the property token meaning "every tile of the map".
const PropertyAll = "All"

// Rule is one include or exclude rule, resolved from its textual form at load time.
type Rule struct {
	Kind RuleKind

	List     IndexList // RuleIndex
	Property string    // RuleProperty
	Range    string    // RuleRange
}

// ParseTerrainRule resolves a terrain-type token. "quarry" and "custom"
// (any case) select the matching tile index list; anything else names a
// terrain property.
func ParseTerrainRule(token string) Rule {
	switch {
	case strings.EqualFold(token, "quarry"):
		return Rule{Kind: RuleIndex, List: IndexQuarry}
	case strings.EqualFold(token, "custom"):
		return Rule{Kind: RuleIndex, List: IndexCustom}
	default:
		return Rule{Kind: RuleProperty, Property: token}
	}
}

func ParseTerrainRules(tokens []string) []Rule {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, ParseTerrainRule(t))
	}
	return out
}

func RangeRule(s string) Rule {
	return Rule{Kind: RuleRange, Range: s}
}

func RangeRules(ranges []string) []Rule {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, RangeRule(r))
	}
	return out
}

func (r Rule) String() string {
	switch r.Kind {
	case RuleIndex:
		if r.List == IndexCustom {
			return "custom"
		}
		return "quarry"
	case RuleProperty:
		return r.Property
	case RuleRange:
		return r.Range
	default:
		return r.Kind.String()
	}
}
