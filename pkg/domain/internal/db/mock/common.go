package mocks

// CallLog records arguments of calls to a mock method.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Last returns arguments of the last call.
//
// The bool is false when the method has never been called.
func (l CallLog[T]) Last() (T, bool) {
	if len(l) == 0 {
		return *new(T), false
	}
	return l[len(l)-1], true
}
