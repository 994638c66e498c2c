package model

// InstallState is what the local state directory says about a package.
type InstallState int

const (
	// NotInstalled means neither a description nor a manifest exists.
	NotInstalled InstallState = iota
	// DescribedOnly means a description exists but no manifest; a previous install did not finish unpacking.
	DescribedOnly
	// Installed means the package was unpacked and its manifest exists.
	Installed
)

func (s InstallState) String() string {
	switch s {
	case NotInstalled:
		return "not-installed"
	case DescribedOnly:
		return "described-only"
	case Installed:
		return "installed"
	default:
		return "unknown"
	}
}

// HasDescription reports whether a description file exists for the package.
func (s InstallState) HasDescription() bool {
	return s == DescribedOnly || s == Installed
}
