package owl

func foo() int {
	x := 1
	y := &x
	return *y
}

func bar(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}

func withClosure() func() int {
	count := 0
	return func() int {
		count++
		return count
	}
}

//goowl:ignore - not interesting
func skipped() {
	_ = func() {}
}

var handler = func(n int) int {
	x := n
	return x
}

type counter struct{ n int }

func (c *counter) inc() { c.n++ }
