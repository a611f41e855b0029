// Package processor drains spawn requests from a queue with a pool of worker
// goroutines, handing each one to the loader.
package processor
