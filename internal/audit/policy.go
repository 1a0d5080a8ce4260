package audit

import (
	"encoding/json"
	"fmt"
)

// resourcePolicy is the minimal slice of a Lambda resource-based policy the
// public-exposure checks evaluate.
type resourcePolicy struct {
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string          `json:"Effect"`
	Principal json.RawMessage `json:"Principal"`
	Condition map[string]any  `json:"Condition"`
}

func parseResourcePolicy(doc string) (resourcePolicy, error) {
	var p resourcePolicy
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return resourcePolicy{}, fmt.Errorf("parsing resource policy: %w", err)
	}
	return p, nil
}

// wildcardPrincipal reports whether the statement principal is "*", either as
// a bare string or as {"AWS": "*"}.
func (s policyStatement) wildcardPrincipal() bool {
	var str string
	if err := json.Unmarshal(s.Principal, &str); err == nil {
		return str == "*"
	}

	var obj struct {
		AWS json.RawMessage `json:"AWS"`
	}
	if err := json.Unmarshal(s.Principal, &obj); err != nil || obj.AWS == nil {
		return false
	}
	if err := json.Unmarshal(obj.AWS, &str); err == nil {
		return str == "*"
	}
	var list []string
	if err := json.Unmarshal(obj.AWS, &list); err == nil {
		for _, p := range list {
			if p == "*" {
				return true
			}
		}
	}
	return false
}

// allowsPublicInvoke reports whether any statement grants Allow to a wildcard
// principal without a restricting condition.
func (p resourcePolicy) allowsPublicInvoke() bool {
	for _, s := range p.Statement {
		if s.Effect == "Allow" && s.wildcardPrincipal() && len(s.Condition) == 0 {
			return true
		}
	}
	return false
}

// allowsPublicLayerAccess is the layer variant: a statement is still
// considered scoped when it carries a StringEquals aws:PrincipalOrgID
// condition.
func (p resourcePolicy) allowsPublicLayerAccess() bool {
	for _, s := range p.Statement {
		if s.Effect != "Allow" || !s.wildcardPrincipal() {
			continue
		}
		if hasPrincipalOrgCondition(s.Condition) {
			continue
		}
		return true
	}
	return false
}

func hasPrincipalOrgCondition(condition map[string]any) bool {
	stringEquals, ok := condition["StringEquals"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = stringEquals["aws:PrincipalOrgID"]
	return ok
}
