package passenger

import "github.com/kilianp07/drt/core/model"

// Violation causes reported by the built-in validators.
const (
	CauseSameLink        = "from_link_equals_to_link"
	CauseUnknownFromLink = "from_link_unknown"
	CauseUnknownToLink   = "to_link_unknown"
)

// DefaultValidator rejects trips that start and end on the same link.
type DefaultValidator struct{}

func (DefaultValidator) Validate(req *model.Request) []string {
	if req.FromLink == req.ToLink {
		return []string{CauseSameLink}
	}
	return nil
}

// LinkValidator rejects requests whose links are unknown to Known.
type LinkValidator struct {
	Known func(model.LinkID) bool
}

func (v LinkValidator) Validate(req *model.Request) []string {
	if v.Known == nil {
		return nil
	}
	var causes []string
	if !v.Known(req.FromLink) {
		causes = append(causes, CauseUnknownFromLink)
	}
	if !v.Known(req.ToLink) {
		causes = append(causes, CauseUnknownToLink)
	}
	return causes
}

// Validators runs every validator and concatenates their causes.
type Validators []Validator

func (vs Validators) Validate(req *model.Request) []string {
	var causes []string
	for _, v := range vs {
		causes = append(causes, v.Validate(req)...)
	}
	return causes
}
