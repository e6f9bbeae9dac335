package main

import "testing"

func TestParseCommandSplitsNameAndArgs(t *testing.T) {
	cmd := ParseCommand("  Kill 3  ")
	if cmd.Name != "kill" || len(cmd.Args) != 1 || cmd.Args[0] != "3" {
		t.Fatalf("unexpected parse: %+v", cmd)
	}
	if ParseCommand("   ").Name != "" {
		t.Fatalf("blank input should parse to an empty command")
	}
}

func TestParseIndexForms(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"7", 7, true},
		{"0x1f", 31, true},
		{"$1f", 31, true},
		{"", 0, false},
		{"zz", 0, false},
	}
	for _, c := range cases {
		got, ok := parseIndex(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("parseIndex(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
