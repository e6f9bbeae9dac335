// script.go - Lua-scripted syscall sequences for driving the kernel
// outside the fixed demo workload.
//
// A test scenario (a specific interleaving of sends/receives/kills) can
// be expressed as a short Lua script rather than a bespoke Go test
// fixture for every case.

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// RunScript executes a Lua script against k, exposing a small
// kernel.* table of functions the script can call to drive the state
// machine and observe it.
func (k *KernelState) RunScript(src string) error {
	L := lua.NewState()
	defer L.Close()

	kernelTable := L.NewTable()
	L.SetField(kernelTable, "tick", L.NewFunction(k.luaTick))
	L.SetField(kernelTable, "send", L.NewFunction(k.luaSend))
	L.SetField(kernelTable, "recv", L.NewFunction(k.luaRecv))
	L.SetField(kernelTable, "reply", L.NewFunction(k.luaReply))
	L.SetField(kernelTable, "kill", L.NewFunction(k.luaKill))
	L.SetField(kernelTable, "task_state", L.NewFunction(k.luaTaskState))
	L.SetField(kernelTable, "halted", L.NewFunction(k.luaHalted))
	L.SetGlobal("kernel", kernelTable)

	if err := L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (k *KernelState) luaTick(L *lua.LState) int {
	n := 1
	if L.GetTop() >= 1 {
		n = int(L.CheckNumber(1))
	}
	for i := 0; i < n && !k.halted; i++ {
		k.Tick()
	}
	return 0
}

func (k *KernelState) luaSend(L *lua.LState) int {
	idx := int(L.CheckNumber(1))
	ep := int(L.CheckNumber(2))
	msg := uint64(L.CheckNumber(3))
	k.IpcSend(idx, EndpointId(ep), msg)
	return 0
}

func (k *KernelState) luaRecv(L *lua.LState) int {
	idx := int(L.CheckNumber(1))
	ep := int(L.CheckNumber(2))
	k.IpcRecv(idx, EndpointId(ep))
	return 0
}

func (k *KernelState) luaReply(L *lua.LState) int {
	idx := int(L.CheckNumber(1))
	ep := int(L.CheckNumber(2))
	msg := uint64(L.CheckNumber(3))
	k.IpcReply(idx, EndpointId(ep), msg)
	return 0
}

func (k *KernelState) luaKill(L *lua.LState) int {
	idx := int(L.CheckNumber(1))
	k.Kill(idx, KillTestInjected)
	return 0
}

func (k *KernelState) luaTaskState(L *lua.LState) int {
	idx := int(L.CheckNumber(1))
	if idx < 0 || idx >= k.numTasks {
		L.Push(lua.LString("invalid"))
		return 1
	}
	L.Push(lua.LString(k.tasks[idx].State.String()))
	return 1
}

func (k *KernelState) luaHalted(L *lua.LState) int {
	L.Push(lua.LBool(k.halted))
	return 1
}
