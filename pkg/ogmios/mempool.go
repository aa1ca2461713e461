package ogmios

import (
	"encoding/json"
	"fmt"
)

type AcquireMempoolResult struct {
	// Always "mempool"
	Acquired string `json:"acquired"`
	// Slot of the snapshot
	Slot uint64 `json:"slot"`
}

// NextTransactionParams asks for full transactions rather than ids.
type NextTransactionParams struct {
	Fields string `json:"fields,omitempty" validate:"omitempty,oneof=all"`
}

var nextTransactionAll = NextTransactionParams{Fields: "all"}

// MempoolTransaction is either a full transaction or, when only ids were
// requested, a pointer to one.
type MempoolTransaction struct {
	Tx      *Tx
	Pointer *TxPointer
}

func (m MempoolTransaction) ID() string {
	if m.Tx != nil {
		return m.Tx.ID
	}
	if m.Pointer != nil {
		return m.Pointer.ID
	}
	return ""
}

func (m *MempoolTransaction) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("mempool transaction: %w", err)
	}
	if _, full := members["inputs"]; full {
		var tx Tx
		if err := json.Unmarshal(data, &tx); err != nil {
			return fmt.Errorf("mempool transaction: %w", err)
		}
		*m = MempoolTransaction{Tx: &tx}
		return nil
	}

	var ptr TxPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return fmt.Errorf("mempool transaction: %w", err)
	}
	if ptr.ID == "" {
		return fmt.Errorf("mempool transaction: missing field id")
	}
	*m = MempoolTransaction{Pointer: &ptr}
	return nil
}

func (m MempoolTransaction) MarshalJSON() ([]byte, error) {
	if m.Tx != nil {
		return json.Marshal(m.Tx)
	}
	return json.Marshal(m.Pointer)
}

// NextTransactionResult holds the next transaction of the acquired snapshot,
// or nil once the snapshot is exhausted.
type NextTransactionResult struct {
	Transaction *MempoolTransaction `json:"transaction"`
}
