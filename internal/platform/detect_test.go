package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
)

func newTestDetector(goos, goarch string, wordSize int, stats []cpu.InfoStat, err error) *RealDetector {
	return &RealDetector{
		goos:     goos,
		goarch:   goarch,
		wordSize: wordSize,
		cpuInfo: func(ctx context.Context) ([]cpu.InfoStat, error) {
			return stats, err
		},
	}
}

func TestRealDetector_Detect(t *testing.T) {
	tests := []struct {
		name          string
		goos          string
		goarch        string
		wordSize      int
		stats         []cpu.InfoStat
		cpuErr        error
		wantOS        string
		wantBitness   string
		wantProcessor string
		wantAppleSi   bool
		wantErr       bool
	}{
		{
			name:          "linux amd64",
			goos:          "linux",
			goarch:        "amd64",
			wordSize:      64,
			stats:         []cpu.InfoStat{{ModelName: "Intel(R) Core(TM) i7"}},
			wantOS:        OSLinux,
			wantBitness:   Bitness64,
			wantProcessor: "Intel(R) Core(TM) i7",
		},
		{
			name:        "windows 386",
			goos:        "windows",
			goarch:      "386",
			wordSize:    32,
			wantOS:      OSWindows,
			wantBitness: Bitness32,
		},
		{
			name:          "apple silicon under rosetta",
			goos:          "darwin",
			goarch:        "amd64",
			wordSize:      64,
			stats:         []cpu.InfoStat{{ModelName: ""}, {ModelName: "Apple M2"}},
			wantOS:        OSMac,
			wantBitness:   Bitness64,
			wantProcessor: "Apple M2",
			wantAppleSi:   true,
		},
		{
			name:        "cpu info failure falls back",
			goos:        "darwin",
			goarch:      "arm64",
			wordSize:    64,
			cpuErr:      errors.New("sysctl failed"),
			wantOS:      OSMac,
			wantBitness: Bitness64,
			wantAppleSi: true,
		},
		{
			name:     "unsupported os",
			goos:     "plan9",
			goarch:   "amd64",
			wordSize: 64,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(tt.goos, tt.goarch, tt.wordSize, tt.stats, tt.cpuErr)
			info, err := d.Detect(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.OS != tt.wantOS {
				t.Errorf("OS = %q, want %q", info.OS, tt.wantOS)
			}
			if info.Bitness != tt.wantBitness {
				t.Errorf("Bitness = %q, want %q", info.Bitness, tt.wantBitness)
			}
			if info.ProcessorName != tt.wantProcessor {
				t.Errorf("ProcessorName = %q, want %q", info.ProcessorName, tt.wantProcessor)
			}
			if info.IsAppleSilicon() != tt.wantAppleSi {
				t.Errorf("IsAppleSilicon() = %v, want %v", info.IsAppleSilicon(), tt.wantAppleSi)
			}
		})
	}
}

func TestRealDetector_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDetector("linux", "amd64", 64, nil, context.Canceled)
	if _, err := d.Detect(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestInfo_WithOverrides(t *testing.T) {
	base := Info{OS: OSLinux, Bitness: Bitness64, Arch: "amd64"}

	got := base.WithOverrides(OSWindows, "")
	if got.OS != OSWindows || got.Bitness != Bitness64 {
		t.Errorf("WithOverrides() = %+v", got)
	}
	if base.OS != OSLinux {
		t.Error("WithOverrides() must not modify the receiver")
	}
}

func TestValidate(t *testing.T) {
	for _, name := range SupportedOS {
		if err := ValidateOS(name); err != nil {
			t.Errorf("ValidateOS(%q) error = %v", name, err)
		}
	}
	if err := ValidateOS("darwin"); err == nil {
		t.Error("ValidateOS(darwin) should fail")
	}
	if err := ValidateBitness("64"); err != nil {
		t.Errorf("ValidateBitness(64) error = %v", err)
	}
	if err := ValidateBitness("16"); err == nil {
		t.Error("ValidateBitness(16) should fail")
	}
}
