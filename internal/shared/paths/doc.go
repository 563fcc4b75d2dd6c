// Package paths provides the host directories the bridge reads from and
// writes to.
//
// # Directory Structure
//
//	$HOME/
//	  └── Downloads/      (completed inbound transfers)
//	$TMPDIR/
//	  └── datash/
//	      └── downloads/  (fallback when no home directory is known)
//
// # Usage
//
//	import "github.com/GriffinCanCode/Datash/backend/internal/shared/paths"
//
//	dir := paths.Downloads()
//	if !paths.Within(dir, candidate) {
//	    // reject
//	}
package paths
