// Package override installs fixed-value getters over host object properties.
// It is a best-effort helper: hosts may refuse the install, and a property
// the unmodified host never had must not gain one, since a new property is
// itself a detectable signal.
package override

// missing is the unexported type behind Missing so no other value can
// masquerade as the marker.
type missing struct{}

// Missing marks a property that had no value on the unmodified host.
var Missing any = missing{}

// Host is the adapter onto the live object the getter is installed into.
// Implementations cross the environment boundary and may fail for
// non-configurable or hostile properties.
type Host interface {
	DefineGetter(name string, get func() any) error
}

// Options carries the override triple.
type Options struct {
	// Object is the host handle receiving the getter.
	Object Host
	// Original is the property's pre-override value, or Missing.
	Original any
	// Target is the value the installed getter returns.
	Target any
}

// Property installs a getter returning opt.Target at name on opt.Object.
// When the original value is Missing nothing is installed. Install failures
// are swallowed; either way the original value is returned so the caller can
// still reason about the pre-override state.
func Property(name string, opt Options) any {
	if opt.Original == Missing {
		return opt.Original
	}
	if opt.Object == nil {
		return opt.Original
	}

	target := opt.Target
	_ = opt.Object.DefineGetter(name, func() any { return target })

	return opt.Original
}
