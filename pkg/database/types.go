package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// IntArray stores a list of integer codes in a single column.
// It is written as a JSON array, which every supported driver keeps in a
// text column; PostgreSQL array literals ({1,2,3}) are accepted on read.
type IntArray []int

// Scan implements the sql.Scanner interface for reading from the database.
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	default:
		return errors.New("IntArray: unsupported scan type")
	}
}

func (a *IntArray) scanString(s string) error {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "[") {
		return json.Unmarshal([]byte(s), a)
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		if s == "" {
			*a = IntArray{}
			return nil
		}
		parts := strings.Split(s, ",")
		out := make(IntArray, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return errors.New("IntArray: invalid array element " + p)
			}
			out = append(out, n)
		}
		*a = out
		return nil
	}

	if s == "" {
		*a = IntArray{}
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("IntArray: invalid value " + s)
	}
	*a = IntArray{n}
	return nil
}

// Value implements the driver.Valuer interface for writing to the database.
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal([]int(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (IntArray) GormDataType() string {
	return "text"
}
