// addr.go - newtypes for physical/virtual addresses and the page-flag set.
//
// Raw uint64 addresses get a type so that a physical address and a
// virtual address can never be silently swapped. No page-table bit
// twiddling happens here; that is the paging shim's job.

package main

import "fmt"

// PageSize is the only page size this kernel supports.
const PageSize uint64 = 4096

// PhysAddr is a byte-granular physical address.
type PhysAddr uint64

// AlignDown rounds down to the containing page boundary.
func (a PhysAddr) AlignDown() PhysAddr {
	return PhysAddr(uint64(a) &^ (PageSize - 1))
}

// Frame returns the physical frame containing this address.
func (a PhysAddr) Frame() PhysFrame {
	return PhysFrame{Number: uint64(a) / PageSize}
}

func (a PhysAddr) String() string { return fmt.Sprintf("PhysAddr(%#x)", uint64(a)) }

// VirtAddr is a byte-granular virtual address.
type VirtAddr uint64

// AlignDown rounds down to the containing page boundary.
func (a VirtAddr) AlignDown() VirtAddr {
	return VirtAddr(uint64(a) &^ (PageSize - 1))
}

// Page returns the virtual page containing this address.
func (a VirtAddr) Page() VirtPage {
	return VirtPage{Number: uint64(a) / PageSize}
}

func (a VirtAddr) String() string { return fmt.Sprintf("VirtAddr(%#x)", uint64(a)) }

// PhysFrame names a 4 KiB physical frame by index.
type PhysFrame struct {
	Number uint64
}

// StartAddress returns the frame's first byte address.
func (f PhysFrame) StartAddress() PhysAddr { return PhysAddr(f.Number * PageSize) }

func (f PhysFrame) String() string { return fmt.Sprintf("PhysFrame(%#x)", f.StartAddress()) }

// VirtPage names a 4 KiB virtual page by index.
type VirtPage struct {
	Number uint64
}

// StartAddress returns the page's first byte address.
func (p VirtPage) StartAddress() VirtAddr { return VirtAddr(p.Number * PageSize) }

func (p VirtPage) String() string { return fmt.Sprintf("VirtPage(%#x)", p.StartAddress()) }

// PageFlags is a small bitset mirroring the x86_64 PTE bits the kernel
// cares about.
type PageFlags uint8

const (
	FlagPresent PageFlags = 1 << iota
	FlagWritable
	FlagUser
	FlagNoExec
)

// Contains reports whether every bit in want is set in f.
func (f PageFlags) Contains(want PageFlags) bool {
	return f&want == want
}

func (f PageFlags) String() string {
	s := ""
	if f.Contains(FlagPresent) {
		s += "P"
	}
	if f.Contains(FlagWritable) {
		s += "W"
	}
	if f.Contains(FlagUser) {
		s += "U"
	}
	if f.Contains(FlagNoExec) {
		s += "X"
	}
	if s == "" {
		return "-"
	}
	return s
}
