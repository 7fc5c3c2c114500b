package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Lines stores an ordered list of messages as newline-joined TEXT.
type Lines []string

func (l Lines) Value() (driver.Value, error) {
	return strings.Join(l, "\n"), nil
}

func (l *Lines) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
	case string:
		if v == "" {
			*l = nil
		} else {
			*l = strings.Split(v, "\n")
		}
	case []byte:
		if len(v) == 0 {
			*l = nil
		} else {
			*l = strings.Split(string(v), "\n")
		}
	default:
		return fmt.Errorf("cannot scan %T into Lines", src)
	}
	return nil
}
