// Package platform provides constants and utilities for handling the CPU architecture and
// Android ABI that packages are built for.
package platform

const (
	// ArchAArch64 is 64-bit ARM.
	ArchAArch64 = "aarch64"
	// ArchARM is 32-bit ARM (armv7).
	ArchARM = "arm"
	// ArchI686 is 32-bit x86.
	ArchI686 = "i686"
	// ArchX8664 is 64-bit x86.
	ArchX8664 = "x86_64"

	// AnyArch marks architecture independent packages.
	AnyArch = "all"

	// ABIArm64V8a is the Android ABI for aarch64.
	ABIArm64V8a = "arm64-v8a"
	// ABIArmeabiV7a is the Android ABI for arm.
	ABIArmeabiV7a = "armeabi-v7a"
	// ABIX86 is the Android ABI for i686.
	ABIX86 = "x86"
	// ABIX8664 is the Android ABI for x86_64.
	ABIX8664 = "x86_64"
)

// ValidArch returns a list of valid architecture values.
func ValidArch() []string {
	return []string{
		ArchAArch64,
		ArchARM,
		ArchI686,
		ArchX8664,
	}
}

// ValidABI returns a list of valid ABI values.
func ValidABI() []string {
	return []string{
		ABIArm64V8a,
		ABIArmeabiV7a,
		ABIX86,
		ABIX8664,
	}
}
