package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for scenario-tunable rules.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "threat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// TargetContext holds pre-packed data for one target_value call.
type TargetContext struct {
	SeekerType  string
	SeekerHouse string
	TargetType  string
	TargetKind  string
	TargetHouse string
	BaseValue   int // catalog value
	Kills       int
	Distance    int // leptons
	Flying      bool
	Armed       bool
}

// TargetValue calls the Lua target_value function. ok is false when the
// function is missing or fails, in which case callers keep the catalog value.
func (e *Engine) TargetValue(ctx TargetContext) (value int, ok bool) {
	fn := e.vm.GetGlobal("target_value")
	if fn == lua.LNil {
		return 0, false
	}

	t := e.vm.NewTable()

	sk := e.vm.NewTable()
	sk.RawSetString("type", lua.LString(ctx.SeekerType))
	sk.RawSetString("house", lua.LString(ctx.SeekerHouse))
	t.RawSetString("seeker", sk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("type", lua.LString(ctx.TargetType))
	tgt.RawSetString("kind", lua.LString(ctx.TargetKind))
	tgt.RawSetString("house", lua.LString(ctx.TargetHouse))
	tgt.RawSetString("value", lua.LNumber(ctx.BaseValue))
	tgt.RawSetString("kills", lua.LNumber(ctx.Kills))
	tgt.RawSetString("flying", lua.LBool(ctx.Flying))
	tgt.RawSetString("armed", lua.LBool(ctx.Armed))
	t.RawSetString("target", tgt)
	t.RawSetString("distance", lua.LNumber(ctx.Distance))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua target_value error", zap.String("target", ctx.TargetType), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, isNum := result.(lua.LNumber)
	if !isNum {
		e.log.Error("lua target_value returned non-number",
			zap.String("target", ctx.TargetType), zap.String("type", result.Type().String()))
		return 0, false
	}
	return int(n), true
}

// SetConstants publishes integer constants (scan mode bits and the like) as
// Lua globals. Call before scripts that reference them run.
func (e *Engine) SetConstants(consts map[string]int) {
	for name, v := range consts {
		e.vm.SetGlobal(name, lua.LNumber(v))
	}
}

// ScanMode calls the Lua scan_mode function for a seeker type. ok is false
// when the function is missing, fails or returns nil.
func (e *Engine) ScanMode(typeName, kind string) (mode uint32, ok bool) {
	fn := e.vm.GetGlobal("scan_mode")
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(typeName), lua.LString(kind)); err != nil {
		e.log.Error("lua scan_mode error", zap.String("type", typeName), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, isNum := result.(lua.LNumber)
	if !isNum || n < 0 {
		return 0, false
	}
	return uint32(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
