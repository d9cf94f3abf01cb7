// Package authz holds the authorization gate consulted before audit trail
// reads. The orchestration core never evaluates permissions itself; it only
// asks this gate whether a caller may look at what was recorded.
package authz

import "context"

// Actor is the authenticated principal behind a request.
type Actor struct {
	ID           string
	Capabilities []string
}

// HasCapability reports whether the actor carries the named capability.
func (a Actor) HasCapability(name string) bool {
	for _, c := range a.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// CapabilityViewAuditTrail gates read access to the audit trail. There is
// deliberately no edit or delete capability: no grant anywhere in the system
// may mutate an audit entry once written.
const CapabilityViewAuditTrail = "datawipe.view_trail"

// Gate answers capability questions about an actor. Implementations are
// external collaborators; the core only depends on this contract.
type Gate interface {
	// MayViewAuditTrail reports whether the actor may read audit entries.
	MayViewAuditTrail(ctx context.Context, actor Actor) bool
}

// CapabilityGate is the default Gate: it answers from the capabilities carried
// on the actor itself.
type CapabilityGate struct{}

func NewCapabilityGate() *CapabilityGate {
	return &CapabilityGate{}
}

func (g *CapabilityGate) MayViewAuditTrail(_ context.Context, actor Actor) bool {
	return actor.HasCapability(CapabilityViewAuditTrail)
}
