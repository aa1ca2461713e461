package ogmios

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ProtocolParams holds the protocol parameters needed to build and balance
// transactions.
type ProtocolParams struct {
	// Multiplied by the size of the transaction
	MinFeeCoefficient uint64 `json:"minFeeCoefficient"`
	// Base cost for all transactions
	MinFeeConstant            AdaBalance             `json:"minFeeConstant"`
	PlutusCostModels          CostModels             `json:"plutusCostModels"`
	MinFeeReferenceScripts    MinFeeReferenceScripts `json:"minFeeReferenceScripts"`
	MinUtxoDepositCoefficient uint64                 `json:"minUtxoDepositCoefficient"`
	// Price per unit of memory and CPU
	ScriptExecutionPrices ExecutionUnits `json:"scriptExecutionPrices"`
	// Percentage of the fee that must be provided as collateral
	CollateralPercentage float64 `json:"collateralPercentage"`

	MaxTransactionSize              *NumberOfBytes   `json:"maxTransactionSize,omitempty"`
	MaxValueSize                    *NumberOfBytes   `json:"maxValueSize,omitempty"`
	MaxCollateralInputs             *uint32          `json:"maxCollateralInputs,omitempty"`
	MaxExecutionUnitsPerTransaction *ExecutionUnits  `json:"maxExecutionUnitsPerTransaction,omitempty"`
	Version                         *ProtocolVersion `json:"version,omitempty"`
}

// CostModel is the flat list of cost parameters of one Plutus version.
type CostModel []int64

type CostModels struct {
	PlutusV1 CostModel `json:"plutus:v1,omitempty"`
	PlutusV2 CostModel `json:"plutus:v2,omitempty"`
	PlutusV3 CostModel `json:"plutus:v3,omitempty"`
}

// For returns the cost model of a Plutus language.
func (m CostModels) For(lang Language) (CostModel, bool) {
	var model CostModel
	switch lang {
	case LanguagePlutusV1:
		model = m.PlutusV1
	case LanguagePlutusV2:
		model = m.PlutusV2
	case LanguagePlutusV3:
		model = m.PlutusV3
	}
	return model, model != nil
}

// MinFeeReferenceScripts prices reference scripts by size in tiers: each
// Range bytes cost Base per byte, and every following tier multiplies the
// per-byte price by Multiplier. With range 1024, base 10 and multiplier 1.2:
//
//	1 KiB:   10*1024                            = 10240
//	2 KiB:   10*1024 + 12*1024                  = 22528
//	2.5 KiB: 10*1024 + 12*1024 + 14.4*512       = 29900.8
type MinFeeReferenceScripts struct {
	Range      uint32  `json:"range"`
	Base       float64 `json:"base"`
	Multiplier float64 `json:"multiplier"`
}

// Fee returns the exact reference script fee for size bytes.
func (p MinFeeReferenceScripts) Fee(size uint64) decimal.Decimal {
	price := decimal.NewFromFloat(p.Base)
	if p.Range == 0 {
		return price.Mul(decimal.NewFromUint64(size))
	}

	multiplier := decimal.NewFromFloat(p.Multiplier)
	tier := uint64(p.Range)
	total := decimal.Zero
	for remaining := size; remaining > 0; {
		chunk := min(remaining, tier)
		total = total.Add(price.Mul(decimal.NewFromUint64(chunk)))
		price = price.Mul(multiplier)
		remaining -= chunk
	}
	return total
}

// MinFee returns the minimum fee in lovelace for a transaction of txSize
// bytes that references refScriptSize bytes of scripts. Script execution
// costs are not included.
func (p ProtocolParams) MinFee(txSize, refScriptSize uint64) uint64 {
	fee := decimal.NewFromUint64(p.MinFeeCoefficient).Mul(decimal.NewFromUint64(txSize)).
		Add(decimal.NewFromUint64(p.MinFeeConstant.Lovelace)).
		Add(p.MinFeeReferenceScripts.Fee(refScriptSize))
	return fee.Floor().BigInt().Uint64()
}

// ExecutionFee returns the lovelace cost of running scripts with budget,
// rounded up.
func (p ProtocolParams) ExecutionFee(budget ExecutionUnits) uint64 {
	memory := new(big.Rat).Mul(&budget.Memory.Rat, &p.ScriptExecutionPrices.Memory.Rat)
	cpu := new(big.Rat).Mul(&budget.CPU.Rat, &p.ScriptExecutionPrices.CPU.Rat)
	total := memory.Add(memory, cpu)

	q, r := new(big.Int).QuoRem(total.Num(), total.Denom(), new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Uint64()
}
