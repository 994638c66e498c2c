package hooks

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.trai.ch/zerr"
)

// TengoExecutor runs lifecycle scripts written for the embedded Tengo interpreter.
//
// Scripts see the variables root, arch, abi, packageName, hookType and env (a map of the
// script environment). Setting err to a non-empty string or an error value fails the script.
type TengoExecutor struct {
	env Environment
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor(env Environment) *TengoExecutor {
	return &TengoExecutor{env: env}
}

// Execute compiles and runs script. The shebang line is blanked first since Tengo does not parse it.
func (e *TengoExecutor) Execute(ctx context.Context, hook HookType, pkg string, script []byte) error {
	scriptInstance := tengo.NewScript(stripShebang(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))

	envVars := make(map[string]interface{})
	for k, v := range e.env.Vars() {
		envVars[k] = v
	}
	vars := map[string]interface{}{
		"root":        e.env.Root,
		"arch":        e.env.Arch,
		"abi":         e.env.ABI,
		"packageName": pkg,
		"hookType":    string(hook),
		"env":         envVars,
		"err":         "",
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return zerr.With(fmt.Errorf("%s: %w: %w", hook, ErrHookExecution, err), "package", pkg)
	}

	if errVar := compiled.Get("err"); errVar != nil {
		switch v := errVar.Value().(type) {
		case error:
			return zerr.With(fmt.Errorf("%w: %w", ErrHookScript, v), "package", pkg)
		case string:
			if v != "" {
				return zerr.With(fmt.Errorf("%w: %s", ErrHookScript, v), "package", pkg)
			}
		}
	}
	return nil
}

func stripShebang(script []byte) []byte {
	out := make([]byte, len(script))
	copy(out, script)
	if len(out) > 1 && out[0] == '#' && out[1] == '!' {
		for i := 0; i < len(out) && out[i] != '\n'; i++ {
			out[i] = ' '
		}
	}
	return out
}
