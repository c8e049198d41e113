// Package stages provides the generation stages run by the engine:
//
//	ask       prompts for every declared question (reads: when conditions; writes: answers)
//	mock      merges caller-supplied answers instead of asking
//	defaults  fills declared defaults for keys still absent
//	computed  binds lazily evaluated expressions
//	filter    drops files whose condition is false
//	render    expands <$ $> markers in every non-exempt file
//
// Every stage reads and writes the shared metadata context and file set it
// is handed; none keeps state between runs.
package stages
