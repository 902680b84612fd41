package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric is a form number. HTML forms post numbers as strings, so it decodes
// from either a JSON number or a numeric-looking string. An empty string is 0.
type Numeric float64

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("mapper: %q is not a number", s)
		}
		*n = Numeric(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Numeric(f)
	return nil
}

func (n Numeric) Float() float64 { return float64(n) }

func (n Numeric) Int() int { return int(math.Round(float64(n))) }

// Num is a convenience for building forms in code
func Num(f float64) *Numeric {
	n := Numeric(f)
	return &n
}
