package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Units are the constants visible to every expression. Sizes are bytes and
// rates are bytes per second.
var Units = map[string]float64{
	"KB":   1e3,
	"MB":   1e6,
	"GB":   1e9,
	"Kbps": 125,
	"Mbps": 125e3,
	"Gbps": 125e6,
}

// newEvalContext exposes Units as top-level variables.
func newEvalContext() (*hcl.EvalContext, error) {
	vars := make(map[string]cty.Value, len(Units))
	for name, v := range Units {
		val, err := gocty.ToCtyValue(v, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", name, err)
		}
		vars[name] = val
	}
	return &hcl.EvalContext{Variables: vars}, nil
}
