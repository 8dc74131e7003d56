package plain

func unused() {
	// goowl:ignore is only honored above a func
	s := []int{1, 2}
	_ = s
}
