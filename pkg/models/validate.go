package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// SanityCheck validates an assembled fact record against its struct
// constraints. A failure here means one record was mis-assembled; the
// caller drops the record and keeps going.
func SanityCheck(record interface{}) error {
	return validate.Struct(record)
}
