package platform

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v4/cpu"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos     string
	goarch   string
	cpuInfo  func(ctx context.Context) ([]cpu.InfoStat, error)
	wordSize int
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		cpuInfo:  cpu.InfoWithContext,
		wordSize: strconv.IntSize,
	}
}

// Detect performs platform detection and returns platform information.
//
// The processor model name comes from gopsutil. If gopsutil fails the name
// is left empty and detection continues; a cancelled context is a hard
// failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	osName, err := normalizeOS(d.goos)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}

	info := &Info{
		OS:      osName,
		Bitness: bitnessFromWordSize(d.wordSize),
		Arch:    d.goarch,
	}

	stats, err := d.cpuInfo(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}
	info.ProcessorName = processorName(stats)

	return info, nil
}
