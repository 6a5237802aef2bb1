package blend_test

import (
	"fmt"

	"github.com/matzehuels/morphtree/pkg/blend"
)

func ExampleLagged() {
	for _, c := range []float64{0, 0.25, 0.75, 1} {
		fmt.Printf("%.3f\n", blend.Lagged(c, 40, blend.LagStep, blend.LagPeriod))
	}
	// Output:
	// 0.000
	// 0.270
	// 0.730
	// 1.000
}
