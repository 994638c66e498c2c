package hooks

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

// Environment describes the variables every lifecycle script sees.
type Environment struct {
	Root  string
	Arch  string
	ABI   string
	Extra map[string]string
}

// Vars returns the toolchain variables, without the inherited process environment.
// PATH holds only the toolchain directories; Merge appends the inherited PATH.
func (e Environment) Vars() map[string]string {
	vars := map[string]string{
		"PATH":       filepath.Join(e.Root, "bin") + string(os.PathListSeparator) + filepath.Join(e.Root, "sbin"),
		"HOME":       filepath.Join(e.Root, "home"),
		"TMPDIR":     filepath.Join(e.Root, "tmp"),
		"CCPKG_ROOT": e.Root,
		"PREFIX":     e.Root,
		"CCPKG_ARCH": e.Arch,
		"CCPKG_ABI":  e.ABI,
	}
	for k, v := range e.Extra {
		vars[k] = v
	}
	return vars
}

// Merge layers Vars over sysEnv and returns a sorted KEY=VALUE list.
// The toolchain PATH is prepended to the inherited one.
func (e Environment) Merge(sysEnv []string) []string {
	envMap := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	vars := e.Vars()
	_, pathOverridden := e.Extra["PATH"]
	for k, v := range vars {
		if k == "PATH" && !pathOverridden {
			if sysPath := envMap["PATH"]; sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// Prepare creates the HOME and TMPDIR directories scripts expect to exist.
func (e Environment) Prepare() error {
	for _, dir := range []string{filepath.Join(e.Root, "home"), filepath.Join(e.Root, "tmp")} {
		if err := fsutil.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}
