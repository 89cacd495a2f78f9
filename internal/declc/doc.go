// Package declc compiles operation declarations written in CUE into the
// registry's metadata table.
//
// Declarations describe, per receiver type, the operations the engine may
// stage: which argument positions are tracked, the consumption transition,
// and the result type. Example:
//
//	registry: {
//	    Token: {
//	        merge: {tracked: [0], transition: "preserve", result: "Token"}
//	        note:  {transition: "preserve", result: "Token"}
//	    }
//	    Res: {
//	        finalize: {transition: "consume", result: "Res"}
//	        peek:     {transition: "any", result: "Res"}
//	    }
//	}
//
// Compilation is the optional generation step of the engine's design: it
// runs before any session begins, and the engine only ever consumes the
// resulting table. Validation collects all errors rather than failing
// fast, each tagged with a stable E-code for tooling.
package declc
