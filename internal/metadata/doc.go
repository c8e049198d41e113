// Package metadata holds the key/value context shared by every generation
// stage. Stored values and lazily computed bindings live side by side; the
// fixed seed fields (name, destDirName, inPlace, noEscape) are installed before
// any stage runs and survive until the run ends.
//
// A Context is not safe for concurrent mutation. Stages run one at a time, and
// the render fan-out reads through a Frozen view instead of the Context itself.
package metadata
