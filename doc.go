// Package procexec creates processes from executable images.
//
// A process is created by reading an image through a URL, copying its
// loadable payload into a fresh physical region, validating the entry point,
// building the argument layout and standard streams, and appending the new
// execution context to the scheduler's run set inside a no-interrupts
// critical section. Invalid images are rejected silently: no context is
// created and every allocation made along the way is released.
//
// End-users typically interact with the loader through the Service facade:
//
//	srv, _ := procexec.New()
//	srv.Execute(ctx, "file:///bin/app", "file:///home", []string{"-v"})
//	for _, aContext := range srv.Contexts() {
//		fmt.Println(aContext.ID, aContext.Entry)
//	}
//
// Spawn queues the same request for a worker goroutine; Start launches the
// workers and the preemption loop.
package procexec
