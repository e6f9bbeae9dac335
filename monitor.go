// monitor.go - interactive debug monitor REPL.
//
// Drives the kernel one tick at a time from stdin and prints
// task/endpoint/event-log state. Commands follow the usual machine-
// monitor conventions: a name-plus-args line format and $/0x/bare-hex
// index parsing, with an optional raw-mode single-keystroke stepping
// loop via golang.org/x/term when a real terminal is attached.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// MonitorCommand is a parsed command with name and arguments.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return MonitorCommand{}
	}
	parts := strings.Fields(input)
	return MonitorCommand{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

// parseIndex parses a task or endpoint table index in $hex, 0x, bare
// hex, or bare decimal form.
func parseIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "$") {
		v, err := strconv.ParseUint(s[1:], 16, 64)
		return int(v), err == nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return int(v), err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return int(v), err == nil
}

// Monitor is the interactive REPL wrapping a KernelState.
type Monitor struct {
	k    *KernelState
	in   *bufio.Scanner
	raw  bool
	fd   int
	oldS *term.State
}

// NewMonitor builds a monitor reading commands from stdin. Raw mode is
// only engaged if stdin is a real terminal; piped input (scripts, tests)
// falls back to plain line buffering.
func NewMonitor(k *KernelState) *Monitor {
	return &Monitor{k: k, in: bufio.NewScanner(os.Stdin), fd: int(os.Stdin.Fd())}
}

// Run prints the banner and loops reading/executing commands until the
// user quits or stdin closes.
func (m *Monitor) Run() {
	fmt.Println("kernel monitor - type 'help' for commands")
	for {
		fmt.Print("(kmon) ")
		if !m.in.Scan() {
			return
		}
		cmd := ParseCommand(m.in.Text())
		if cmd.Name == "" {
			continue
		}
		if m.dispatch(cmd) {
			return
		}
	}
}

// dispatch executes one command, returning true if the monitor should
// exit.
func (m *Monitor) dispatch(cmd MonitorCommand) bool {
	switch cmd.Name {
	case "help", "?":
		m.printHelp()
	case "quit", "exit", "q":
		return true
	case "tick", "t":
		n := 1
		if len(cmd.Args) > 0 {
			if v, ok := parseIndex(cmd.Args[0]); ok {
				n = v
			}
		}
		for i := 0; i < n && !m.k.ShouldHalt(); i++ {
			m.k.Tick()
		}
		fmt.Printf("ticked to tick=%d halted=%v\n", m.k.tickCount, m.k.halted)
	case "step", "s":
		m.stepInteractive()
	case "tasks", "ps":
		m.printTasks()
	case "ep", "endpoints":
		m.printEndpoints()
	case "events", "log":
		m.k.log.Dump(stdoutSink)
	case "kill":
		if len(cmd.Args) < 1 {
			fmt.Println("usage: kill <idx>")
			return false
		}
		idx, ok := parseIndex(cmd.Args[0])
		if !ok {
			fmt.Println("bad index")
			return false
		}
		m.k.Kill(idx, KillTestInjected)
	default:
		fmt.Printf("unknown command %q (try 'help')\n", cmd.Name)
	}
	return false
}

func (m *Monitor) printHelp() {
	fmt.Println("  tick [n]     advance the scheduler n ticks (default 1)")
	fmt.Println("  step         single-keystroke stepping (space=tick, q=back)")
	fmt.Println("  tasks        dump the task table")
	fmt.Println("  ep           dump the endpoint table")
	fmt.Println("  events       dump the retained event log")
	fmt.Println("  kill <idx>   kill a task by table index")
	fmt.Println("  quit         leave the monitor")
}

func (m *Monitor) printTasks() {
	for i := 0; i < m.k.numTasks; i++ {
		t := &m.k.tasks[i]
		root := "-"
		if f, ok := t.AddressSpace.RootFrame(); ok {
			root = f.String()
		}
		fmt.Printf("  [%d] %-8s state=%-8s mappings=%d root=%s\n", i, t.Id, t.State, t.AddressSpace.MappingCount(), root)
	}
}

func (m *Monitor) printEndpoints() {
	for i := 0; i < m.k.numEndpoints; i++ {
		e := &m.k.endpoints[i]
		fmt.Printf("  %s recv_waiter=%v senders=%d reply_waiters=%d\n",
			e.Id, e.hasRecvWaiter, len(e.sendQueue), len(e.replyQueue))
	}
}

// stepInteractive ticks the kernel one keystroke at a time: space or 's'
// advances one tick and prints a compact status line, 'q' (or Escape, or
// stdin not being a terminal) returns to the line-oriented prompt.
func (m *Monitor) stepInteractive() {
	if err := m.enterRaw(); err != nil || !m.raw {
		// Piped input: degrade to a single tick, same as "tick 1".
		m.k.Tick()
		fmt.Printf("tick=%d halted=%v\n", m.k.tickCount, m.k.halted)
		return
	}
	defer m.exitRaw()

	fmt.Print("stepping: space/s=tick, q=done\r\n")
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch buf[0] {
		case ' ', 's':
			m.k.Tick()
			cur := &m.k.tasks[m.k.currentTask]
			fmt.Printf("tick=%d current=[%d]%s state=%s halted=%v\r\n",
				m.k.tickCount, m.k.currentTask, cur.Id, cur.State, m.k.halted)
		case 'q', 0x1B:
			return
		}
	}
}

// enterRaw puts stdin in raw mode, mirroring terminal_host.go's Start.
func (m *Monitor) enterRaw() error {
	if !term.IsTerminal(m.fd) {
		return nil
	}
	old, err := term.MakeRaw(m.fd)
	if err != nil {
		return err
	}
	m.oldS = old
	m.raw = true
	return nil
}

// exitRaw restores stdin, mirroring terminal_host.go's Stop.
func (m *Monitor) exitRaw() {
	if m.raw && m.oldS != nil {
		_ = term.Restore(m.fd, m.oldS)
		m.raw = false
	}
}
