// Package procpool provides a small, reusable pool of shell workers for
// executing tool probes. Each worker owns an embedded POSIX shell
// interpreter, so probes pay neither a process spawn nor an interpreter
// construction per check. Allocation is exclusive: no two in-flight probes
// share a worker, and when all workers are busy additional probes queue
// instead of spawning more.
package procpool
