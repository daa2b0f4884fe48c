package vm

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Profiler counts procedure applications so hot procedures can be found,
// and records which procedures were installed as wrapper handlers.
//
// Handlers are marked non-loop: a handler runs once per intercepted
// operation and never drives a loop on its own, so a hot handler is a
// sign of heavy wrapping rather than a loop worth optimising.

// transient is implemented by procedures made fresh for a single
// operation, such as captured continuations. They are never profiled, so
// the profile table only holds procedures the program defined.
type transient interface {
	transient()
}

// ProcedureProfile holds profiling data for one procedure.
type ProcedureProfile struct {
	InvocationCount uint64 // atomic
	IsHot           bool
}

// Profiler is safe for concurrent use.
type Profiler struct {
	profiles sync.Map // Value -> *ProcedureProfile
	nonLoop  sync.Map // Value -> struct{}

	// HotThreshold is the invocation count at which a procedure is hot.
	HotThreshold uint64

	// OnHot is called once when a procedure becomes hot.
	OnHot func(p Procedure, profile *ProcedureProfile)
}

// NewProfiler creates a profiler with the default threshold.
func NewProfiler() *Profiler {
	return &Profiler{HotThreshold: 100}
}

// RecordInvocation counts one application of p. It reports whether this
// application made p hot.
func (p *Profiler) RecordInvocation(proc Procedure) bool {
	if p == nil || proc == nil {
		return false
	}
	if _, ok := proc.(transient); ok {
		return false
	}
	val, _ := p.profiles.LoadOrStore(proc, &ProcedureProfile{})
	profile := val.(*ProcedureProfile)

	count := atomic.AddUint64(&profile.InvocationCount, 1)
	if !profile.IsHot && count >= p.HotThreshold {
		profile.IsHot = true
		if p.OnHot != nil {
			p.OnHot(proc, profile)
		}
		return true
	}
	return false
}

// Profile returns the profile for proc, or nil if it was never applied.
func (p *Profiler) Profile(proc Value) *ProcedureProfile {
	if val, ok := p.profiles.Load(proc); ok {
		return val.(*ProcedureProfile)
	}
	return nil
}

// IsHot reports whether proc crossed the threshold.
func (p *Profiler) IsHot(proc Value) bool {
	profile := p.Profile(proc)
	return profile != nil && profile.IsHot
}

// MarkNonLoop records that v is used as a wrapper handler.
func (p *Profiler) MarkNonLoop(v Value) {
	if p == nil || v == nil {
		return
	}
	p.nonLoop.Store(v, struct{}{})
}

// IsNonLoop reports whether v was marked by MarkNonLoop.
func (p *Profiler) IsNonLoop(v Value) bool {
	_, ok := p.nonLoop.Load(v)
	return ok
}

// ProfilerStats holds aggregate profiling statistics.
type ProfilerStats struct {
	Procedures       int
	HotProcedures    int
	Handlers         int
	TotalInvocations uint64
}

// Stats returns aggregate statistics.
func (p *Profiler) Stats() ProfilerStats {
	var stats ProfilerStats
	p.profiles.Range(func(_, value any) bool {
		profile := value.(*ProcedureProfile)
		stats.Procedures++
		stats.TotalInvocations += atomic.LoadUint64(&profile.InvocationCount)
		if profile.IsHot {
			stats.HotProcedures++
		}
		return true
	})
	p.nonLoop.Range(func(_, _ any) bool {
		stats.Handlers++
		return true
	})
	return stats
}

// Top returns up to n procedures ordered by invocation count.
func (p *Profiler) Top(n int) []Procedure {
	type procCount struct {
		proc  Procedure
		count uint64
	}
	var all []procCount
	p.profiles.Range(func(key, value any) bool {
		all = append(all, procCount{key.(Procedure), atomic.LoadUint64(&value.(*ProcedureProfile).InvocationCount)})
		return true
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].count > all[j].count })

	if n > len(all) {
		n = len(all)
	}
	if n < 0 {
		n = 0
	}
	result := make([]Procedure, 0, n)
	for _, pc := range all[:n] {
		result = append(result, pc.proc)
	}
	return result
}

// Reset clears all profiling data.
func (p *Profiler) Reset() {
	p.profiles = sync.Map{}
	p.nonLoop = sync.Map{}
}
