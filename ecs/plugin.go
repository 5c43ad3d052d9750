package ecs

import "github.com/rotisserie/eris"

// Plugin bundles a reusable unit of setup: component registrations,
// resources and systems installed together. Plugins compose a world the
// way individual AddSystem calls would, but keep related pieces in one
// place.
type Plugin interface {
	Init(w *World) error
}

// AddPlugin installs a plugin into the world.
func (w *World) AddPlugin(p Plugin) error {
	if err := p.Init(w); err != nil {
		return eris.Wrapf(err, "installing plugin %T", p)
	}
	return nil
}

// AddPlugins installs a list of plugins in order, stopping at the first
// failure.
func (w *World) AddPlugins(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := w.AddPlugin(p); err != nil {
			return err
		}
	}
	return nil
}
