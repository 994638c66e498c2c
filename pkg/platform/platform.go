package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Platform is the architecture and ABI a toolchain root is populated for.
type Platform struct {
	Arch string `yaml:"arch" json:"arch"`
	ABI  string `yaml:"abi" json:"abi"`
}

// CurrentPlatform returns the platform of the running binary.
func CurrentPlatform() Platform {
	arch := NormalizeArch(runtime.GOARCH)
	return Platform{Arch: arch, ABI: ABIForArch(arch)}
}

// New builds a Platform from possibly unnormalized values, deriving the ABI when empty.
func New(arch, abi string) Platform {
	arch = NormalizeArch(arch)
	if abi == "" {
		abi = ABIForArch(arch)
	}
	return Platform{Arch: arch, ABI: strings.ToLower(strings.TrimSpace(abi))}
}

// Accepts reports whether a package built for pkgArch can be installed on p.
// Empty, "all", "any" and "noarch" match every platform.
func (p Platform) Accepts(pkgArch string) bool {
	a := strings.ToLower(strings.TrimSpace(pkgArch))
	switch a {
	case "", AnyArch, "any", "noarch":
		return true
	}
	return NormalizeArch(a) == p.Arch
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.Arch, p.ABI)
}

// NormalizeArch maps Go and vendor architecture spellings onto package architecture names.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "arm64", "aarch64", "arm64-v8a":
		return ArchAArch64
	case "arm", "armv7", "armv7l", "armv7a", "armeabi-v7a":
		return ArchARM
	case "386", "x86", "i386", "i486", "i586", "i686":
		return ArchI686
	case "amd64", "x86_64", "x64":
		return ArchX8664
	default:
		return arch
	}
}

// ABIForArch returns the Android ABI matching a package architecture.
func ABIForArch(arch string) string {
	switch NormalizeArch(arch) {
	case ArchAArch64:
		return ABIArm64V8a
	case ArchARM:
		return ABIArmeabiV7a
	case ArchI686:
		return ABIX86
	case ArchX8664:
		return ABIX8664
	default:
		return ""
	}
}

// IsValidArch reports whether arch normalizes to a known architecture.
func IsValidArch(arch string) bool {
	return slices.Contains(ValidArch(), NormalizeArch(arch))
}
