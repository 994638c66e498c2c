package hooks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_Merge(t *testing.T) {
	env := Environment{Root: "/data/root", Arch: "aarch64", ABI: "arm64-v8a", Extra: map[string]string{"CC": "clang"}}
	merged := env.Merge([]string{"PATH=/system/bin", "HOME=/data/user", "LANG=C"})

	asMap := map[string]string{}
	for _, kv := range merged {
		k, v, _ := strings.Cut(kv, "=")
		asMap[k] = v
	}

	sep := string(os.PathListSeparator)
	assert.Equal(t, "/data/root/bin"+sep+"/data/root/sbin"+sep+"/system/bin", asMap["PATH"])
	assert.Equal(t, "/data/root/home", asMap["HOME"])
	assert.Equal(t, "/data/root/tmp", asMap["TMPDIR"])
	assert.Equal(t, "/data/root", asMap["CCPKG_ROOT"])
	assert.Equal(t, "/data/root", asMap["PREFIX"])
	assert.Equal(t, "aarch64", asMap["CCPKG_ARCH"])
	assert.Equal(t, "arm64-v8a", asMap["CCPKG_ABI"])
	assert.Equal(t, "clang", asMap["CC"])
	assert.Equal(t, "C", asMap["LANG"])
	assert.IsNonDecreasing(t, merged)
}

func TestEnvironment_ExtraPathReplacesDefault(t *testing.T) {
	env := Environment{Root: "/r", Extra: map[string]string{"PATH": "/only"}}
	assert.Contains(t, env.Merge([]string{"PATH=/system/bin"}), "PATH=/only")
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestScriptRunner_ShellScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX shell")
	}
	root := t.TempDir()
	runner := NewScriptRunner(Environment{Root: root, Arch: "x86_64"})

	script := writeScript(t, t.TempDir(), "gcc.postinst",
		"#!/bin/sh\npwd > marker\necho \"$CCPKG_ARCH $HOME\" >> marker\n")
	require.NoError(t, runner.Run(context.Background(), PostInstall, "gcc", script))

	st, err := os.Stat(script)
	require.NoError(t, err)
	assert.NotZero(t, st.Mode().Perm()&0o100, "script is made executable")

	data, err := os.ReadFile(filepath.Join(root, "marker"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(lines[0])
	assert.Equal(t, wantRoot, gotRoot)
	assert.Equal(t, "x86_64 "+filepath.Join(root, "home"), lines[1])
	assert.DirExists(t, filepath.Join(root, "tmp"))
}

func TestScriptRunner_ShellScriptFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX shell")
	}
	runner := NewScriptRunner(Environment{Root: t.TempDir()})
	script := writeScript(t, t.TempDir(), "gcc.prerm", "#!/bin/sh\necho going away >&2\nexit 3\n")

	err := runner.Run(context.Background(), PreRemove, "gcc", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script failed")
}

func TestScriptRunner_MissingScript(t *testing.T) {
	runner := NewScriptRunner(Environment{Root: t.TempDir()})
	err := runner.Run(context.Background(), PostInstall, "gcc", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScriptRunner_TengoScript(t *testing.T) {
	root := t.TempDir()
	runner := NewScriptRunner(Environment{Root: root, Arch: "aarch64", ABI: "arm64-v8a"})

	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{
			name: "variables are visible",
			script: `#!tengo
if root == "" || arch != "aarch64" || packageName != "gcc" || hookType != "postinst" {
	err = "unexpected variables"
}
if env["CCPKG_ABI"] != "arm64-v8a" {
	err = "unexpected environment"
}`,
		},
		{
			name:    "err variable fails the script",
			script:  "#!tengo\nerr = \"configure failed\"\n",
			wantErr: true,
		},
		{
			name:    "runtime error",
			script:  "#!tengo\nnon_existent_function()\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, t.TempDir(), "gcc.postinst", tt.script)
			err := runner.Run(context.Background(), PostInstall, "gcc", script)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStripShebang(t *testing.T) {
	assert.Equal(t, "       \nx := 1", string(stripShebang([]byte("#!tengo\nx := 1"))))
	assert.Equal(t, "x := 1", string(stripShebang([]byte("x := 1"))))
}
