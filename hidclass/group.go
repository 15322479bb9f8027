package hidclass

import "github.com/dlkj/hidra/usb"

// Group is the ordered, fixed set of interfaces making up one device
// function. Groups come out of Allocate (or NewGroup for interfaces
// allocated by hand) and are never resized afterwards.
type Group struct {
	members []Interface
}

// NewGroup collects already-allocated interfaces. Callers composing
// devices directly keep their typed handles and group them here for
// dispatch.
func NewGroup(members ...Interface) Group {
	return Group{members: members}
}

// Len returns the number of interfaces in the group.
func (g Group) Len() int { return len(g.members) }

// At returns the interface at position i in allocation order.
func (g Group) At(i int) Interface { return g.members[i] }

// Find returns the interface with the given number, or nil. Numbers
// are unique within a group, so the first match is the only one.
func (g Group) Find(id usb.InterfaceNumber) Interface {
	for _, m := range g.members {
		if m.ID() == id {
			return m
		}
	}
	return nil
}

// Reset resets every member exactly once, in order.
func (g Group) Reset() {
	for _, m := range g.members {
		m.Reset()
	}
}

// WriteDescriptors emits every member's descriptors in order. The
// first failure aborts the walk and is returned unchanged; descriptors
// already written stand.
func (g Group) WriteDescriptors(w DescriptorWriter) error {
	for _, m := range g.members {
		if err := m.WriteDescriptors(w); err != nil {
			return err
		}
	}
	return nil
}

// GetString asks members in order for the string index; the first one
// claiming it wins. Returns ("", false) when no member does.
func (g Group) GetString(index usb.StringIndex, langID uint16) (string, bool) {
	for _, m := range g.members {
		if s, ok := m.GetString(index, langID); ok {
			return s, ok
		}
	}
	return "", false
}
