package gemmbitserial_test

import (
	"fmt"

	"github.com/liuguoyou/gemmbitserial"
)

func ExampleMultiply() {
	// 2x2 signed 3-bit matrix times one unsigned 1-bit vector of depth 2.
	ctx, err := gemmbitserial.AllocGEMMContext(2, 2, 1, 3, 1, true, false)
	if err != nil {
		panic(err)
	}
	defer ctx.Release()

	if err := gemmbitserial.ImportRegular(ctx.LHS, []int32{3, -1, 0, 2}, false); err != nil {
		panic(err)
	}
	if err := gemmbitserial.ImportRegular(ctx.RHS, []int32{1, 0}, false); err != nil {
		panic(err)
	}
	if err := gemmbitserial.Multiply(ctx); err != nil {
		panic(err)
	}

	fmt.Println(ctx.Res)
	// Output: [3 0]
}
