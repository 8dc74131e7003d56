// Code generated by hand for tests. DO NOT EDIT.

package owl

func generated() int {
	v := 2
	return v
}
