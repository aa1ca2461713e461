package ogmios

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Ratio is an exact rational number. On the wire it is either a JSON
// integer or a string "numerator/denominator".
type Ratio struct {
	big.Rat
}

// NewRatio returns n/d.
func NewRatio(n, d int64) Ratio {
	var r Ratio
	r.SetFrac64(n, d)
	return r
}

// ParseRatio parses "n/d" or a plain integer.
func ParseRatio(s string) (Ratio, error) {
	var r Ratio
	num, den, hasDen := strings.Cut(strings.TrimSpace(s), "/")

	n, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return r, fmt.Errorf("invalid ratio %q: bad numerator", s)
	}
	d := big.NewInt(1)
	if hasDen {
		if d, ok = new(big.Int).SetString(den, 10); !ok {
			return r, fmt.Errorf("invalid ratio %q: bad denominator", s)
		}
		if d.Sign() == 0 {
			return r, fmt.Errorf("invalid ratio %q: zero denominator", s)
		}
	}
	r.SetFrac(n, d)
	return r, nil
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseRatio(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	n, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return fmt.Errorf("invalid ratio %s: expected an integer or a \"n/d\" string", data)
	}
	r.SetInt(n)
	return nil
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// String renders the ratio as "n/d", or "n" when it is an integer.
func (r Ratio) String() string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.Rat.String()
}

// Equal reports whether both ratios denote the same number.
func (r Ratio) Equal(other Ratio) bool {
	return r.Cmp(&other.Rat) == 0
}
