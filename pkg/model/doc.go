// Package model defines the planar components that joint detection works on,
// the joints recorded against them, and the assembly that owns a set of
// components.
package model
