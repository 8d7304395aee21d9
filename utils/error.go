package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorDuplicateKey is returned when a unique constraint (code, phone,
// document number) would be violated.
var ErrorDuplicateKey = errors.New("duplicate key")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
