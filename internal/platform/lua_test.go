package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: OSMac, Bitness: Bitness64, Arch: "arm64", ProcessorName: "Apple M1"}
	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("mac")},
		{"bitness", `return platform.bitness`, lua.LString("64")},
		{"processor", `return platform.processor`, lua.LString("Apple M1")},
		{"is_mac", `return platform.is_mac`, lua.LTrue},
		{"is_windows", `return platform.is_windows`, lua.LFalse},
		{"is_apple_silicon", `return platform.is_apple_silicon`, lua.LTrue},
		{"when true", `return platform.when(platform.is_mac, "x")`, lua.LString("x")},
		{"when false", `return platform.when(platform.is_linux, "x")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("DoString() error = %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInjectPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: OSLinux, Bitness: Bitness64}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if err := L.DoString(`platform.os = "win"`); err == nil {
		t.Error("expected error when writing to platform table")
	}
}
