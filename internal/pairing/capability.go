package pairing

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/pairgate/internal/domain/token"
)

// DefaultProbeTTL is how long a node's capability probe stays fresh. A node
// that has not re-probed (or reconnected) within the TTL drops out of
// eligibility answers until it reports again.
const DefaultProbeTTL = 15 * time.Minute

// CapabilityProbe is one node's reported capability snapshot.
type CapabilityProbe struct {
	NodeID   string
	Caps     []string
	Commands []string
	Bins     []string
}

// CapabilityRegistry tracks which mesh nodes currently satisfy capability
// and binary requirements. It is an explicitly constructed, dependency-
// injected object with its own lifecycle — callers receive it from the
// wiring main rather than importing a module-level singleton.
type CapabilityRegistry struct {
	probes *gocache.Cache
}

// NewCapabilityRegistry creates a registry whose probes expire after ttl.
// A non-positive ttl falls back to DefaultProbeTTL.
func NewCapabilityRegistry(ttl time.Duration) *CapabilityRegistry {
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}
	return &CapabilityRegistry{
		probes: gocache.New(ttl, ttl/2),
	}
}

// RecordProbe stores (or refreshes) a node's capability snapshot.
func (c *CapabilityRegistry) RecordProbe(nodeID string, caps, commands, bins []string) {
	c.probes.Set(nodeID, &CapabilityProbe{
		NodeID:   nodeID,
		Caps:     token.NormalizeScopes(caps),
		Commands: token.NormalizeScopes(commands),
		Bins:     token.NormalizeScopes(bins),
	}, gocache.DefaultExpiration)
}

// Forget drops a node's probe, removing it from eligibility answers
// immediately (used when a node's token is revoked).
func (c *CapabilityRegistry) Forget(nodeID string) {
	c.probes.Delete(nodeID)
}

// Eligible reports whether the node's most recent fresh probe covers every
// required capability and binary. A node with no fresh probe is ineligible.
func (c *CapabilityRegistry) Eligible(nodeID string, requiredCaps, requiredBins []string) bool {
	entry, ok := c.probes.Get(nodeID)
	if !ok {
		return false
	}
	probe := entry.(*CapabilityProbe)
	return token.ScopesAllow(token.NormalizeScopes(requiredCaps), probe.Caps) &&
		token.ScopesAllow(token.NormalizeScopes(requiredBins), probe.Bins)
}

// EligibleNodes returns the ids of every node whose fresh probe covers the
// requirements, sorted by the underlying iteration order of the cache (not
// stable across calls).
func (c *CapabilityRegistry) EligibleNodes(requiredCaps, requiredBins []string) []string {
	caps := token.NormalizeScopes(requiredCaps)
	bins := token.NormalizeScopes(requiredBins)

	eligible := make([]string, 0)
	for nodeID, item := range c.probes.Items() {
		probe := item.Object.(*CapabilityProbe)
		if token.ScopesAllow(caps, probe.Caps) && token.ScopesAllow(bins, probe.Bins) {
			eligible = append(eligible, nodeID)
		}
	}
	return eligible
}

//Personal.AI order the ending
