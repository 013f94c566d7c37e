package iterutil

// IntIterator yields consecutive integers after its initial value.
type IntIterator struct {
	i int
}

func Int(init int) IntIterator {
	return IntIterator{i: init}
}

func (i *IntIterator) Next() int {
	i.i++
	return i.i
}
