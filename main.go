// =============================================================================
// GST Returns Reporter - Main Entry Point
// =============================================================================
//
// USAGE:
//   gstreport process       - Report on every export in the input directory
//   gstreport gstr1 FILES   - Report on GSTR-1 exports
//   gstreport gstr2b FILES  - Report on GSTR-2B statements
//   gstreport gstr3b FILES  - Report on GSTR-3B returns
//   gstreport sales FILES   - Report on Tally sales registers
//   gstreport version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Return processors, reporting and configuration
//   - pkg/utils      : File discovery, archiving and naming
//   - profiles/      : One YAML profile per taxpayer
//
// =============================================================================

package main

import (
	"github.com/nihasbabu/gst-modules/cmd"
)

func main() {
	cmd.Execute()
}
