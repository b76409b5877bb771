// Command deadlockdetect analyzes async-runtime trace logs for
// semaphore-induced deadlocks: it normalizes raw event logs, builds the
// happens-before DAG, and searches for a schedule that cannot run to
// completion under the traced semaphore semantics.
package main

func main() {
	Execute()
}
