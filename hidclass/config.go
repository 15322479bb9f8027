package hidclass

import "github.com/dlkj/hidra/usb"

// Config describes one interface before allocation. A Config is an
// inert value: building it claims nothing. Allocate consumes it
// exactly once and returns the live interface.
type Config interface {
	Allocate(alloc *usb.Allocator) Interface
}

// Allocate claims bus resources for every config, head first, and
// returns the resulting interfaces as a Group in config order. An
// empty config list yields the empty Group without touching alloc.
//
// Allocation has no error path: the allocator panics on exhaustion,
// which is a startup misconfiguration.
func Allocate(alloc *usb.Allocator, configs ...Config) Group {
	members := make([]Interface, 0, len(configs))
	for _, c := range configs {
		members = append(members, c.Allocate(alloc))
	}
	return Group{members: members}
}

// WrapConfig decorates another config. Allocating it allocates Inner
// first and hands the result to New; the wrapper consumes no bus
// resources of its own, so it keeps the inner interface number.
//
// Wrapper settings travel in the New closure. Typed constructors such
// as Managed build WrapConfig values so callers rarely spell one out.
type WrapConfig struct {
	Inner Config
	New   func(Interface) Interface
}

func (c WrapConfig) Allocate(alloc *usb.Allocator) Interface {
	return c.New(c.Inner.Allocate(alloc))
}
