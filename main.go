// main.go - boot entry point.

package main

import (
	"flag"
	"fmt"
	"os"
)

// Version is the kernel's reported build version, printed by -features.
const Version = "0.1.0"

func main() {
	maxTicks := flag.Int("ticks", 64, "maximum ticks to run before forcing a stop")
	traceSyscalls := flag.Bool("trace-syscalls", false, "enable syscall-boundary tracing")
	traceIPC := flag.Bool("trace-ipc", false, "enable IPC fast/slow-path tracing")
	logCapacity := flag.Int("log-capacity", 256, "event log ring buffer capacity")
	interactive := flag.Bool("monitor", false, "drop into the interactive debug monitor instead of running to completion")
	scriptPath := flag.String("script", "", "run a Lua script against the kernel instead of the fixed demo workload")
	showFeatures := flag.Bool("features", false, "print build/version information and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kernel [options]\n\nBoots the cooperative kernel state machine and runs its fixed demo workload.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showFeatures {
		printFeatures()
		return
	}

	mem := NewPhysMem()
	frames := NewFrameAllocator(DefaultMemoryMap())
	paging := NewPagingShim(mem, frames)

	k := NewKernelState(paging, *logCapacity)
	k.trace = TraceFlags{Syscalls: *traceSyscalls, IPCPaths: *traceIPC}
	if names := k.trace.Names(); len(names) > 0 {
		fmt.Printf("trace enabled: %v\n", names)
	}
	k.BootstrapDemo()

	var stateSlot KernelStateSlot
	stateSlot.Register(k)

	if *scriptPath != "" {
		src, err := os.ReadFile(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading script: %v\n", err)
			os.Exit(1)
		}
		if err := k.RunScript(string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "error running script: %v\n", err)
			os.Exit(1)
		}
		k.DumpEvents()
		return
	}

	if *interactive {
		NewMonitor(k).Run()
		k.DumpEvents()
		return
	}

	// Ticks are driven through the single-borrow slot rather than k
	// directly, the same path arch-side interrupt code would use to
	// reach kernel state on real hardware.
	for i := 0; i < *maxTicks; i++ {
		halted := false
		if !stateSlot.WithKernelState(func(ks *KernelState) {
			ks.Tick()
			halted = ks.ShouldHalt()
		}) {
			break
		}
		if halted {
			break
		}
	}

	k.DumpEvents()
}

func printFeatures() {
	fmt.Printf("formal kernel state machine %s\n", Version)
	fmt.Printf("max tasks: %d  max endpoints: %d  max mappings per task: %d\n", MaxTasks, MaxEndpoints, MaxMappings)
}
