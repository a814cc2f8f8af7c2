// Package version turns the user's version token into a concrete,
// adapter-native version string.
package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
)

// Kind identifies how a Selector is resolved.
type Kind int

const (
	// KindLatest resolves to the newest upstream release.
	KindLatest Kind = iota
	// KindCompatible resolves to the release matching the installed browser,
	// falling back to KindLatest.
	KindCompatible
	// KindExplicit is already a concrete version.
	KindExplicit
)

// Selector tokens.
const (
	TokenLatest     = "latest"
	TokenCompatible = "compatible"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLatest:
		return TokenLatest
	case KindCompatible:
		return TokenCompatible
	case KindExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Selector is a parsed version token.
type Selector struct {
	Kind  Kind
	Value string // set for KindExplicit only
}

// ParseSelector parses a user-supplied version token. An empty token means
// "compatible", which is what the CLI uses when no ":version" is given.
func ParseSelector(token string) Selector {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", TokenCompatible:
		return Selector{Kind: KindCompatible}
	case TokenLatest:
		return Selector{Kind: KindLatest}
	default:
		return Selector{Kind: KindExplicit, Value: strings.TrimSpace(token)}
	}
}

// String returns the token form of the selector.
func (s Selector) String() string {
	if s.Kind == KindExplicit {
		return s.Value
	}
	return s.Kind.String()
}

// Source is the part of a source adapter the resolver needs.
type Source interface {
	Name() string
	LatestVersion(ctx context.Context) (string, error)
	CompatibleVersion(ctx context.Context) (string, error)
}

// ErrNotSupported is returned by CompatibleVersion when a browser family has
// no notion of a browser-compatible driver release.
var ErrNotSupported = errors.New("compatible version lookup not supported")

// Resolve turns sel into a concrete version using src.
//
// Compatible resolution is best effort: if the family does not support it,
// or the local browser cannot be probed, the latest version is used instead.
func Resolve(ctx context.Context, sel Selector, src Source, log logger.Logger) (string, error) {
	log = logger.OrNop(log)

	switch sel.Kind {
	case KindExplicit:
		if sel.Value == "" {
			return "", fmt.Errorf("resolve %s version: empty explicit version", src.Name())
		}
		return sel.Value, nil

	case KindCompatible:
		v, err := src.CompatibleVersion(ctx)
		if err == nil {
			log.Debug("Resolved compatible version", "driver", src.Name(), "version", v)
			return v, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, ErrNotSupported) {
			log.Debug("Compatible version not supported, using latest", "driver", src.Name())
		} else {
			log.Warn("Unable to determine compatible version, using latest", "driver", src.Name(), "error", err)
		}
		return resolveLatest(ctx, src, log)

	case KindLatest:
		return resolveLatest(ctx, src, log)

	default:
		return "", fmt.Errorf("resolve %s version: unknown selector kind %d", src.Name(), sel.Kind)
	}
}

func resolveLatest(ctx context.Context, src Source, log logger.Logger) (string, error) {
	v, err := src.LatestVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve latest %s version: %w", src.Name(), err)
	}
	if v == "" {
		return "", fmt.Errorf("resolve latest %s version: upstream returned no version", src.Name())
	}
	log.Debug("Resolved latest version", "driver", src.Name(), "version", v)
	return v, nil
}
