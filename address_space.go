// address_space.go - the per-task logical mapping table (§4.4).
//
// A fixed-size table of (page -> frame, flags) records that the core
// reasons about directly. The external paging shim performs the concrete
// page-table writes; Apply here is the source of truth the shim's result
// must stay in lockstep with.

package main

// Mapping records one logical page->frame translation.
type Mapping struct {
	Page  VirtPage
	Frame PhysFrame
	Flags PageFlags
}

// AddressSpaceError is the closed taxonomy of logical-mapping failures.
type AddressSpaceError int

const (
	ErrAlreadyMapped AddressSpaceError = iota + 1
	ErrNotMapped
	ErrCapacityExceeded
)

func (e AddressSpaceError) String() string {
	switch e {
	case ErrAlreadyMapped:
		return "AlreadyMapped"
	case ErrNotMapped:
		return "NotMapped"
	case ErrCapacityExceeded:
		return "CapacityExceeded"
	default:
		return "AddressSpaceError(?)"
	}
}

// Error satisfies the error interface so Apply can return these values
// directly as the error result.
func (e AddressSpaceError) Error() string { return e.String() }

// MemActionKind distinguishes the two address-space operations.
type MemActionKind int

const (
	MemActionMap MemActionKind = iota
	MemActionUnmap
)

// MemAction is a pure description of one address-space mutation.
type MemAction struct {
	Kind  MemActionKind
	Page  VirtPage
	Frame PhysFrame // only meaningful for MemActionMap
	Flags PageFlags // only meaningful for MemActionMap
}

// AddressSpace is a bounded table of up to MaxMappings page mappings plus
// the physical frame backing this task's concrete page-table root.
type AddressSpace struct {
	rootPageFrame    PhysFrame
	hasRootPageFrame bool
	mappings         [MaxMappings]Mapping
	present          [MaxMappings]bool
}

// SetRootFrame records the physical frame holding this address space's
// concrete page-table root, assigned once at task creation.
func (as *AddressSpace) SetRootFrame(f PhysFrame) {
	as.rootPageFrame = f
	as.hasRootPageFrame = true
}

// RootFrame returns the concrete page-table root frame, if one has been
// assigned.
func (as *AddressSpace) RootFrame() (PhysFrame, bool) {
	return as.rootPageFrame, as.hasRootPageFrame
}

// NewAddressSpace returns an empty address space.
func NewAddressSpace() AddressSpace {
	return AddressSpace{}
}

// Apply mutates the logical map according to action, following the rules
// in §4.4: Map fails on a page already present or a full table; Unmap
// fails on an absent page. On failure the map is left unchanged.
func (as *AddressSpace) Apply(action MemAction) error {
	switch action.Kind {
	case MemActionMap:
		for i := range as.mappings {
			if as.present[i] && as.mappings[i].Page == action.Page {
				return ErrAlreadyMapped
			}
		}
		for i := range as.mappings {
			if !as.present[i] {
				as.mappings[i] = Mapping{Page: action.Page, Frame: action.Frame, Flags: action.Flags}
				as.present[i] = true
				return nil
			}
		}
		return ErrCapacityExceeded
	case MemActionUnmap:
		for i := range as.mappings {
			if as.present[i] && as.mappings[i].Page == action.Page {
				as.present[i] = false
				as.mappings[i] = Mapping{}
				return nil
			}
		}
		return ErrNotMapped
	default:
		return ErrNotMapped
	}
}

// Lookup returns the mapping for page, if any.
func (as *AddressSpace) Lookup(page VirtPage) (Mapping, bool) {
	for i := range as.mappings {
		if as.present[i] && as.mappings[i].Page == page {
			return as.mappings[i], true
		}
	}
	return Mapping{}, false
}

// MappingCount reports how many mappings are currently present.
func (as *AddressSpace) MappingCount() int {
	n := 0
	for _, p := range as.present {
		if p {
			n++
		}
	}
	return n
}

// ForEachMapping calls f for every present mapping, in table order.
func (as *AddressSpace) ForEachMapping(f func(Mapping)) {
	for i := range as.mappings {
		if as.present[i] {
			f(as.mappings[i])
		}
	}
}
