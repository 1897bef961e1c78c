// Command linscore computes linear GMM scores between speaker models and
// utterance statistics.
//
// Usage:
//
//	linscore score -f request.yaml [--normalize] [--offset-weight 1] [--format json]
//	linscore stats -f frames.yaml
//
// The request file (YAML or JSON) holds the UBM, the models (as full GMMs or
// mean supervectors), the statistics and optional channel offsets. Defaults
// for every flag may be set in ./linscore.yaml or LINSCORE_* environment
// variables.
package main

import (
	"fmt"
	"os"

	"github.com/ieee0824/linscore/cmd/linscore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
