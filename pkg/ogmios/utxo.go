package ogmios

// Utxo is an unspent transaction output together with its reference.
type Utxo struct {
	Transaction TxPointer `json:"transaction"`
	Index       uint32    `json:"index"`
	TxOutput
}

// OutputReference returns the pointer to this output.
func (u Utxo) OutputReference() TxOutputPointer {
	return TxOutputPointer{Transaction: u.Transaction, Index: u.Index}
}

// UtxoQuery selects outputs either by reference or by address, never both.
type UtxoQuery struct {
	OutputReferences []TxOutputPointer `json:"outputReferences,omitempty" validate:"required_without=Addresses,excluded_with=Addresses,dive"`
	// Bech32 (Shelley) or base58 (Byron) addresses
	Addresses []string `json:"addresses,omitempty" validate:"required_without=OutputReferences,excluded_with=OutputReferences,dive,required"`
}

func UtxoByOutputReferences(refs ...TxOutputPointer) UtxoQuery {
	return UtxoQuery{OutputReferences: refs}
}

func UtxoByAddresses(addresses ...string) UtxoQuery {
	return UtxoQuery{Addresses: addresses}
}
