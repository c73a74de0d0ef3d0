// Package ir implements the core operation graph: values connected to the
// operations that use them, operations grouped into blocks, and blocks grouped
// into regions nested under operations.
//
// The graph is fully mutable. Use-def chains are maintained as intrusive
// doubly-linked lists threaded through the Operand edges, so replacing all
// uses of a value and erasing operations are constant-time per edge.
// Operations carry their dialect-qualified name, a sorted attribute
// dictionary, successor block references for terminators, and zero or more
// nested regions.
//
// Dialects register their operations through RegisterOperation; the registry
// supplies per-operation verification, custom assembly forms and constant
// folding. Unregistered operations are still representable and round-trip
// through the generic assembly form.
package ir
