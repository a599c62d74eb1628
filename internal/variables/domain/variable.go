package variables

import (
	"errors"
	"strconv"
	"time"
)

// VarType is the value encoding of a global variable.
type VarType string

const (
	TypeBool  VarType = "bool"
	TypeFloat VarType = "float"
)

var (
	// ErrNotFound indicates a missing variable.
	ErrNotFound = errors.New("variables: not found")
	// ErrBadEncoding indicates a value that does not match the declared type.
	ErrBadEncoding = errors.New("variables: value does not match type")
)

// GlobalVariable is a named runtime value shared process-wide. Values are
// string-encoded: "true"/"false" for bool, a numeric string for float.
type GlobalVariable struct {
	ID        string
	Name      string
	Type      VarType
	Value     string
	UpdatedAt time.Time
}

// Validate checks the id, type, and value encoding.
func (v GlobalVariable) Validate() error {
	if v.ID == "" {
		return errors.New("variables: empty id")
	}
	if v.Name == "" {
		return errors.New("variables: empty name")
	}
	return CheckEncoding(v.Type, v.Value)
}

// CheckEncoding verifies a value against a type.
func CheckEncoding(varType VarType, value string) error {
	switch varType {
	case TypeBool:
		if value != "true" && value != "false" {
			return ErrBadEncoding
		}
	case TypeFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return ErrBadEncoding
		}
	default:
		return errors.New("variables: invalid type")
	}
	return nil
}

// Bool decodes a bool variable.
func (v GlobalVariable) Bool() (bool, error) {
	if v.Type != TypeBool {
		return false, ErrBadEncoding
	}
	return v.Value == "true", nil
}

// Float decodes a float variable.
func (v GlobalVariable) Float() (float64, error) {
	if v.Type != TypeFloat {
		return 0, ErrBadEncoding
	}
	return strconv.ParseFloat(v.Value, 64)
}
