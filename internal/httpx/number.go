package httpx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Int decodes from a JSON number or a numeric string ("3", " 3 ").
type Int struct {
	Value int
	Set   bool
}

func NewInt(v int) Int { return Int{Value: v, Set: true} }

func (n *Int) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = Int{}
		return nil
	}
	raw := strings.TrimSpace(strings.Trim(string(data), `"`))
	if raw == "" {
		*n = Int{}
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// accept integral floats such as 2.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("invalid integer %q", raw)
		}
		v = int(f)
	}
	*n = Int{Value: v, Set: true}
	return nil
}

func (n Int) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}
