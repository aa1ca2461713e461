package ogmios

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
)

const originTip = "origin"

// Tip is the ledger tip: either a point on chain or the origin.
type Tip struct {
	Origin bool
	Slot   uint64
	ID     string
}

// Origin is the tip of an empty chain.
var Origin = Tip{Origin: true}

func (t *Tip) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != originTip {
			return fmt.Errorf("expected %q or an object with slot and id, got %q", originTip, s)
		}
		*t = Origin
		return nil
	}

	var point struct {
		Slot *uint64 `json:"slot"`
		ID   *string `json:"id"`
	}
	if err := json.Unmarshal(data, &point); err != nil {
		return fmt.Errorf("expected %q or an object with slot and id: %w", originTip, err)
	}
	if point.Slot == nil || point.ID == nil {
		return fmt.Errorf("expected %q or an object with slot and id", originTip)
	}
	*t = Tip{Slot: *point.Slot, ID: *point.ID}
	return nil
}

func (t Tip) MarshalJSON() ([]byte, error) {
	if t.Origin {
		return json.Marshal(originTip)
	}
	return json.Marshal(struct {
		Slot uint64 `json:"slot"`
		ID   string `json:"id"`
	}{t.Slot, t.ID})
}

func (t Tip) String() string {
	if t.Origin {
		return originTip
	}
	return fmt.Sprintf("%d.%s", t.Slot, t.ID)
}

// Compare orders points by slot. The origin only compares with itself; ok is
// false when one side is the origin and the other a point.
func (t Tip) Compare(other Tip) (c int, ok bool) {
	switch {
	case t.Origin && other.Origin:
		return 0, true
	case t.Origin || other.Origin:
		return 0, false
	default:
		return cmp.Compare(t.Slot, other.Slot), true
	}
}
