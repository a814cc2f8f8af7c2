package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM removes every global that lets a config file run commands,
// read or write files, or load more code. string, table, math and the
// basic functions stay.
func sandboxLuaVM(L *lua.LState) {
	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)

	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("module", lua.LNil)
	L.SetGlobal("package", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)

	// debug.setmetatable and friends would undo the read-only platform table.
	L.SetGlobal("debug", lua.LNil)

	L.SetGlobal("collectgarbage", lua.LNil)
}

// newSandboxedVM creates a size-limited Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: luaCallStackSize,
		RegistrySize:  luaRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
