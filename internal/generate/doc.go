// Package generate turns a template directory into a project. It loads the
// template descriptor and file tree, runs the stage pipeline
// (ask or mock, defaults, computed, filter, render) between the before and
// after hooks, and writes the result to the destination directory.
//
// Nothing is written unless every stage and hook succeeds.
package generate
