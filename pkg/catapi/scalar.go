package catapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scalar holds a JSON string, number or boolean as text.
// The catalog is loose about types: ids come as numbers or strings and an
// absent redirect is sent as 0, "0", "" or null.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case bytes.Equal(data, []byte("true")):
		*s = "1"
	case bytes.Equal(data, []byte("false")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*s = Scalar(data)
	default:
		return fmt.Errorf("catapi: cannot read %s as scalar", data)
	}
	return nil
}

// String returns the raw text.
func (s Scalar) String() string {
	return string(s)
}

// Truthy reports whether s is set to something other than "" or "0".
func (s Scalar) Truthy() bool {
	return s != "" && s != "0"
}

// Float parses s as a number.
func (s Scalar) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FlexInt is an integer that may be sent as a JSON number or a numeric string.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var s Scalar
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return fmt.Errorf("catapi: %q is not an integer", string(s))
	}
	*i = FlexInt(n)
	return nil
}
