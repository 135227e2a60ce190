// Package profile provides optional runtime profiling for run.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o run .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Dir: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// The run command exposes the same settings as flags:
//
//	run --pprof-mode=cpu --pprof-dir=./profiles build
//
// Profiles are written to the directory named after the mode (cpu.pprof,
// mem.pprof, and so on) and can be inspected with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// Building with the tag also registers the [net/http/pprof] handlers.
package profile
