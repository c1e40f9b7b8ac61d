package browser

// ResourcePolicy decides, per intercepted network request, whether a
// resource type may load. Types absent from the map are allowed, so a
// policy only needs to list what it denies.
type ResourcePolicy map[string]bool

// DefaultResourcePolicy blocks heavyweight resources that a move-list
// extraction never needs. Documents and scripts pass through: the move list
// is rendered client-side.
func DefaultResourcePolicy() ResourcePolicy {
	return ResourcePolicy{
		"image":      false,
		"stylesheet": false,
		"font":       false,
		"media":      false,
	}
}

// Allows reports whether the given resource type may load under this policy.
func (p ResourcePolicy) Allows(resourceType string) bool {
	allowed, listed := p[resourceType]
	if !listed {
		return true
	}
	return allowed
}
