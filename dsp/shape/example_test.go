package shape_test

import (
	"fmt"

	"github.com/cwbudde/algo-wasabi/dsp/shape"
)

func ExampleDecodeMode() {
	for _, v := range []float64{0.0, 0.5, 1.0} {
		fmt.Println(shape.DecodeMode(v))
	}
	// Output:
	// smooth
	// hardclip
	// fold
}

func ExampleGateFactor() {
	fmt.Println(shape.GateFactor(0.005))
	fmt.Println(shape.GateFactor(0.5))
	// Output:
	// 0.1
	// 1
}
