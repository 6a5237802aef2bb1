package gesture_test

import (
	"fmt"

	"github.com/matzehuels/morphtree/pkg/gesture"
)

func ExampleClassify() {
	closed := gesture.Classify(gesture.SyntheticHand(gesture.KindClosed, 0.5, 0.5))
	open := gesture.Classify(gesture.SyntheticHand(gesture.KindOpen, 0.25, 0.5))
	none := gesture.Classify(nil)

	fmt.Println(closed.Target, closed.Active)
	fmt.Println(open.Target, open.Pointer.X)
	fmt.Println(none.Target, none.Active)
	// Output:
	// 1 true
	// 0 0.5
	// 1 false
}

func ExampleParseScript() {
	s, err := gesture.ParseScript("open:50,none:30,closed@0.2/0.4:20")
	if err != nil {
		panic(err)
	}
	fmt.Println(len(s), s.Len())
	fmt.Println(s[2].Kind, s[2].X, s[2].Y)
	// Output:
	// 3 100
	// closed 0.2 0.4
}
