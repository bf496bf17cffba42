//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"sync"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// Capability is one logical driver feature with one or more entry point
// versions, listed newest first.
type Capability struct {
	Name    string
	Entries []string
}

// Capabilities exposed by Context.
var (
	CapAdapterCount = Capability{"AdapterCount", []string{
		driver.EntryAdapterNumberOfAdaptersGet,
	}}
	CapAdapterInfo = Capability{"AdapterInfo", []string{
		driver.EntryAdapterAdapterInfoX3Get,
		driver.EntryAdapterAdapterInfoX2Get,
		driver.EntryAdapterAdapterInfoGet,
	}}
	CapAdapterActive = Capability{"AdapterActive", []string{
		driver.EntryAdapterActiveGet,
	}}
	CapAdapterID = Capability{"AdapterID", []string{
		driver.EntryAdapterIDGet,
	}}
	CapPrimaryAdapter = Capability{"PrimaryAdapter", []string{
		driver.EntryAdapterPrimaryGet,
	}}
	CapMemoryInfo = Capability{"MemoryInfo", []string{
		driver.EntryAdapterMemoryInfoGet,
	}}
	CapDriverVersions = Capability{"DriverVersions", []string{
		driver.EntryGraphicsVersionsX2Get,
		driver.EntryGraphicsVersionsGet,
	}}
	CapOverdriveCaps = Capability{"OverdriveCaps", []string{
		driver.EntryOverdriveCaps,
	}}
	CapPMLog = Capability{"PMLog", []string{
		driver.EntryNewQueryPMLogDataGet,
	}}
)

// Capabilities lists every capability in the order adlmon reports them.
var Capabilities = []Capability{
	CapAdapterCount,
	CapAdapterInfo,
	CapAdapterActive,
	CapAdapterID,
	CapPrimaryAdapter,
	CapMemoryInfo,
	CapDriverVersions,
	CapOverdriveCaps,
	CapPMLog,
}

// ResolveState is the lookup state of a capability.
type ResolveState int

const (
	Unresolved ResolveState = iota
	Resolved
	Unsupported
)

func (s ResolveState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Unsupported:
		return "unsupported"
	default:
		return "unresolved"
	}
}

// Resolution is the cached outcome of looking up a capability.
type Resolution struct {
	State ResolveState
	// Entry is the chosen entry point when State is Resolved.
	Entry string
	// Version counts from 1 for the oldest entry point of the capability.
	Version int
}

// resolver picks the newest available entry point per capability and
// caches the choice for the lifetime of one context.
type resolver struct {
	mu     sync.Mutex
	exists func(name string) bool
	cache  map[string]Resolution
	log    *zap.Logger
}

func newResolver(exists func(string) bool, log *zap.Logger) *resolver {
	return &resolver{exists: exists, cache: make(map[string]Resolution), log: log}
}

func (r *resolver) resolve(c Capability) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.cache[c.Name]; ok {
		return res
	}
	res := Resolution{State: Unsupported}
	for i, entry := range c.Entries {
		if r.exists(entry) {
			res = Resolution{State: Resolved, Entry: entry, Version: len(c.Entries) - i}
			break
		}
	}
	r.cache[c.Name] = res
	r.log.Debug("capability resolved",
		zap.String("capability", c.Name),
		zap.Stringer("state", res.State),
		zap.String("entry", res.Entry),
	)
	return res
}

func (r *resolver) peek(c Capability) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[c.Name]
}
