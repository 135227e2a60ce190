package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log output
}

// Enabled reports whether Start would begin profiling.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && supported(p.Mode)
}

// Start begins profiling and returns its controller. It returns a no-op
// controller when built without the pprof tag or when p is not
// [Profiler.Enabled]. Stop is always safe to call.
func (p Profiler) Start() interface{ Stop() } {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
