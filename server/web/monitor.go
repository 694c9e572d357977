package web

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"runtime/pprof"

	"github.com/julienschmidt/httprouter"
)

// monitorHandler writes runtime information about the server process to the response.
func monitorHandler() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		m := new(runtime.MemStats)
		runtime.ReadMemStats(m)
		p := pprof.Lookup("goroutine")
		writeMemoryStats(w, m)
		fmt.Fprintln(w)
		writeGoroutineExpectations(w)
		fmt.Fprintln(w)
		writeGoroutineStackTraces(w, p)
	}
}

// writeMemoryStats writes the memory runtime statistics of the server.
func writeMemoryStats(w io.Writer, m *runtime.MemStats) {
	fmt.Fprintln(w, "--- Memory Stats ---")
	fmt.Fprintln(w, "Alloc (bytes on heap)", m.Alloc)
	fmt.Fprintln(w, "TotalAlloc (total heap size)", m.TotalAlloc)
	fmt.Fprintln(w, "Sys (bytes used to run server)", m.Sys)
	fmt.Fprintln(w, "Live object count (Mallocs - Frees)", m.Mallocs-m.Frees)
}

// writeGoroutineExpectations writes a message about the expected goroutines.
func writeGoroutineExpectations(w io.Writer) {
	fmt.Fprintln(w, "--- Goroutine Expectations ---")
	fmt.Fprintln(w, "Seven (7) goroutines are expected on an idling server with a postgres store.")
	fmt.Fprintln(w, "* a goroutine to run the main procedure")
	fmt.Fprintln(w, "* a goroutine listening for interrupt/termination signals so the server can stop gracefully")
	fmt.Fprintln(w, "* a goroutine to run the http server")
	fmt.Fprintln(w, "* a goroutine waiting for the run result of the http server")
	fmt.Fprintln(w, "* a goroutine to open new sql database connections")
	fmt.Fprintln(w, "* a goroutine to reset existing sql database connections")
	fmt.Fprintln(w, "* a goroutine to write profiling information about goroutines")
	fmt.Fprintln(w, "Each in-flight request adds a goroutine.")
}

// writeGoroutineStackTraces writes the goroutine runtime profile's stack traces.
func writeGoroutineStackTraces(w io.Writer, p *pprof.Profile) {
	fmt.Fprintln(w, "--- Goroutine Stack Traces ---")
	p.WriteTo(w, 1)
}
