package scanner

import "reflect"

func reflectName[T any](idx int) string {
	return reflect.TypeOf(*new(T)).Field(idx).Name
}
