// Package registry is the process-local opt-in a host uses to make a live
// supervisor tree and its Executor discoverable to diagnostics run in the
// same process — the "process-local registry the host opts into" that
// cmd/actorctl's tree and stats subcommands attach through, rather than
// spawning their own demo tree. Grounded on webitel-im-delivery-service's
// internal/domain/registry.Hub: a sync.Map keyed by a stable id, with
// idempotent Register/Unregister and no ownership of the registered
// value's lifecycle.
package registry

import (
	"sort"
	"sync"

	"github.com/harborlight/actorsub/config"
	"github.com/harborlight/actorsub/executor"
	"github.com/harborlight/actorsub/observability"
	"github.com/harborlight/actorsub/supervisor"
)

// Handle bundles a named root supervisor with the Executor it schedules
// onto and the MetricsSink it reports into — exactly what cmd/actorctl
// needs to render a tree or a stats table.
type Handle struct {
	Config  config.SupervisorConfig
	Tree    *supervisor.Supervisor
	Exec    *executor.Executor
	Metrics observability.MetricsSink
}

var entries sync.Map // string (config.SupervisorConfig.Name) -> *Handle

// Register makes tree, exec and metrics discoverable under cfg.Name. It
// does not take ownership: the caller still starts/stops exec and tears
// down tree; Register only publishes a lookup, mirroring
// Hub.Register, which attaches a connection to a cell without owning the
// connection itself. Registering the same name twice replaces the
// previous entry.
func Register(cfg config.SupervisorConfig, tree *supervisor.Supervisor, exec *executor.Executor, metrics observability.MetricsSink) *Handle {
	h := &Handle{Config: cfg, Tree: tree, Exec: exec, Metrics: metrics}
	entries.Store(cfg.Name, h)
	return h
}

// Unregister removes the entry published under name, if any. A host calls
// this as part of its own teardown, after stopping the tree and executor.
func Unregister(name string) {
	entries.Delete(name)
}

// Lookup returns the Handle registered under name, if any.
func Lookup(name string) (*Handle, bool) {
	v, ok := entries.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Handle), true
}

// Names returns every currently registered name, sorted, for error
// messages and for a future "list known trees" command.
func Names() []string {
	var names []string
	entries.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
