package utils

import (
	"reflect"
)

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}

func Pointer[T any](v T) *T {
	return &v
}

func PointerValue[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
