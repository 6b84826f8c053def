package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for damage tuning hooks.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. An empty dir gives an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}

	// Core helpers first, then damage rules that may use them.
	for _, sub := range []string{"core", "damage"} {
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

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// HasHook reports whether a global Lua function with the given name exists.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ImpactContext holds pre-packed data for one impact damage calculation.
type ImpactContext struct {
	BlockKind    string
	BlockHP      float64
	BlockMaxHP   float64
	Momentum     float64 // magnitude of relative velocity times colliding mass
	BaseDamage   float64 // damage after integrity resistance
	ColliderMass float64
	HasWeapon    bool
}

// ScaleImpactDamage calls the Lua calc_impact_damage hook, if defined, to
// adjust the damage of one impact. Without a hook, or if the hook fails, the
// base damage is used unchanged. The result is never negative.
func (e *Engine) ScaleImpactDamage(ctx ImpactContext) float64 {
	fn, ok := e.vm.GetGlobal("calc_impact_damage").(*lua.LFunction)
	if !ok {
		return ctx.BaseDamage
	}

	t := e.vm.NewTable()
	blk := e.vm.NewTable()
	blk.RawSetString("kind", lua.LString(ctx.BlockKind))
	blk.RawSetString("hp", lua.LNumber(ctx.BlockHP))
	blk.RawSetString("max_hp", lua.LNumber(ctx.BlockMaxHP))
	blk.RawSetString("has_weapon", lua.LBool(ctx.HasWeapon))
	t.RawSetString("block", blk)
	t.RawSetString("momentum", lua.LNumber(ctx.Momentum))
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("collider_mass", lua.LNumber(ctx.ColliderMass))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_impact_damage error", zap.Error(err))
		return ctx.BaseDamage
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_impact_damage returned non-number",
			zap.String("type", result.Type().String()))
		return ctx.BaseDamage
	}
	dmg := float64(n)
	if math.IsNaN(dmg) || dmg < 0 {
		return 0
	}
	return dmg
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
