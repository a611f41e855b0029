// Package execution defines the execution context, the kernel's unit of
// schedulable state, together with its memory regions, file table and
// initial argument layout.
package execution
