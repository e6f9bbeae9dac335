package main

import "testing"

func TestGuardedReadWriteRoundTrip(t *testing.T) {
	mem := NewPhysMem()
	frames := NewFrameAllocator(DefaultMemoryMap())
	paging := NewPagingShim(mem, frames)

	as := NewAddressSpace()
	frame, ok := paging.AllocateFrame()
	if !ok {
		t.Fatalf("AllocateFrame failed")
	}
	page := VirtAddr(0x2000).Page()
	if err := as.Apply(MemAction{Kind: MemActionMap, Page: page, Frame: frame, Flags: FlagPresent | FlagWritable | FlagUser}); err != nil {
		t.Fatalf("map failed: %v", err)
	}

	addr := page.StartAddress() + 8
	if !paging.GuardedWrite64(&as, addr, 0xDEADBEEF) {
		t.Fatalf("GuardedWrite64 should succeed on a present+writable mapping")
	}
	v, ok := paging.GuardedRead64(&as, addr)
	if !ok || v != 0xDEADBEEF {
		t.Fatalf("GuardedRead64 = (%#x, %v), want (0xdeadbeef, true)", v, ok)
	}
}

func TestGuardedAccessToUnmappedPageFails(t *testing.T) {
	mem := NewPhysMem()
	frames := NewFrameAllocator(DefaultMemoryMap())
	paging := NewPagingShim(mem, frames)
	as := NewAddressSpace()

	_, ok := paging.GuardedRead64(&as, VirtAddr(0x5000))
	if ok {
		t.Fatalf("read through an empty address space should fail, not succeed")
	}
	if paging.GuardedWrite64(&as, VirtAddr(0x5000), 1) {
		t.Fatalf("write through an empty address space should fail, not succeed")
	}
}

func TestGuardedWriteRejectsReadOnlyMapping(t *testing.T) {
	mem := NewPhysMem()
	frames := NewFrameAllocator(DefaultMemoryMap())
	paging := NewPagingShim(mem, frames)
	as := NewAddressSpace()

	frame, _ := paging.AllocateFrame()
	page := VirtAddr(0x3000).Page()
	_ = as.Apply(MemAction{Kind: MemActionMap, Page: page, Frame: frame, Flags: FlagPresent | FlagUser})

	if paging.GuardedWrite64(&as, page.StartAddress(), 1) {
		t.Fatalf("write to a non-writable mapping must fail")
	}
}

func TestFrameAllocatorSkipsReservedRegions(t *testing.T) {
	fa := NewFrameAllocator(DefaultMemoryMap())
	frame, ok := fa.AllocateFrame()
	if !ok {
		t.Fatalf("expected a frame from the usable region")
	}
	if frame.StartAddress() < PhysAddr(0x10_0000) {
		t.Fatalf("frame %v falls inside the reserved region", frame)
	}
}

func TestFrameAllocatorExhaustion(t *testing.T) {
	regions := []MemoryRegion{{StartPhys: 0, EndPhys: PhysAddr(2 * PageSize), RegionType: RegionUsable}}
	fa := NewFrameAllocator(regions)
	if _, ok := fa.AllocateFrame(); !ok {
		t.Fatalf("expected first frame to succeed")
	}
	if _, ok := fa.AllocateFrame(); !ok {
		t.Fatalf("expected second frame to succeed")
	}
	if _, ok := fa.AllocateFrame(); ok {
		t.Fatalf("expected exhaustion on third allocation")
	}
}
