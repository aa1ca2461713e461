package ogmios

// EvaluateParams asks the node to run every script of a transaction.
type EvaluateParams struct {
	Transaction TxCbor `json:"transaction" validate:"required"`
	// Outputs not yet on chain that the transaction spends or references
	AdditionalUtxo []Utxo `json:"additionalUtxo,omitempty"`
}

// Evaluation is the budget one validator consumed.
type Evaluation struct {
	Validator RedeemerPointer `json:"validator"`
	Budget    ExecutionUnits  `json:"budget"`
}

// TotalBudget sums the budgets of all validators.
func TotalBudget(evaluations []Evaluation) ExecutionUnits {
	var total ExecutionUnits
	for _, e := range evaluations {
		total.Memory.Add(&total.Memory.Rat, &e.Budget.Memory.Rat)
		total.CPU.Add(&total.CPU.Rat, &e.Budget.CPU.Rat)
	}
	return total
}
