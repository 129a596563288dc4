// Package framework contains the generic pieces of the evidence-flow test
// harness that do not know anything about the evidence-exchange domain.
//
// The general model is:
//
// 1. The harness drives external collaborators (a protocol gateway, a
// data-provider simulator, a log store) over HTTP and never hosts protocol
// endpoints of its own.
//
// 2. Each scenario path produces a PathResult with an accumulated list of
// violations; the run as a whole produces a Results aggregate whose OK()
// value decides the process exit code.
//
// 3. Per-path debug output is collected in a CapturingLogger and only
// written to the console when the path fails (or when debug output is
// requested for all paths).
//
// The domain-specific code that knows what is being tested lives in the
// scenarios, simulator, and logstore packages.
package framework
