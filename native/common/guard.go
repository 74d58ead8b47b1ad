package common

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects calls into module while it, or any dotted parent of it, is
// paused. "pool.borrow" is blocked by a pause on "pool" as well as on
// "pool.borrow".
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	scope := module
	for {
		if p.IsPaused(scope) {
			return ErrModulePaused
		}
		idx := strings.LastIndexByte(scope, '.')
		if idx < 0 {
			return nil
		}
		scope = scope[:idx]
	}
}

// Pauses is a mutable in-memory PauseView.
type Pauses struct {
	mu     sync.RWMutex
	paused map[string]bool
}

func NewPauses(modules ...string) *Pauses {
	p := &Pauses{paused: make(map[string]bool, len(modules))}
	for _, module := range modules {
		p.paused[module] = true
	}
	return p
}

func (p *Pauses) IsPaused(module string) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused[module]
}

func (p *Pauses) Set(module string, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if paused {
		p.paused[module] = true
		return
	}
	delete(p.paused, module)
}

// List returns the paused scopes in lexical order.
func (p *Pauses) List() []string {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.paused))
	for module := range p.paused {
		out = append(out, module)
	}
	sort.Strings(out)
	return out
}

// ActorGate decides whether an actor may call into a module at all. It is
// consulted before any state is read.
type ActorGate interface {
	Permitted(ctx context.Context, actor string) (bool, error)
}

// ActorGateFunc adapts a function to ActorGate.
type ActorGateFunc func(ctx context.Context, actor string) (bool, error)

func (f ActorGateFunc) Permitted(ctx context.Context, actor string) (bool, error) {
	return f(ctx, actor)
}
