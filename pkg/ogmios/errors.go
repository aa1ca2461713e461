package ogmios

import (
	"encoding/json"
	"fmt"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

var (
	ErrInvalidParams = fmt.Errorf("invalid request parameters")
	ErrDuplexOnly    = fmt.Errorf("method requires a websocket connection")
)

// Ledger state query error codes.
const (
	CodeEraMismatch             = 2001
	CodeUnavailableInCurrentEra = 2002
	CodeStateAcquiredExpired    = 2003
)

// LedgerStateErrors covers every queryLedgerState/* method.
var LedgerStateErrors = jsonrpc.NewTaxonomy("ledger-state",
	jsonrpc.Structured(CodeEraMismatch, "EraMismatch",
		jsonrpc.FieldOf[Era]("query_era"),
		jsonrpc.FieldOf[Era]("ledger_era"),
	),
	jsonrpc.Unit(CodeUnavailableInCurrentEra, "UnavailableInCurrentEra"),
	jsonrpc.Single[string](CodeStateAcquiredExpired, "StateAcquiredExpired"),
)

// Mempool monitoring error codes.
const (
	CodeMustAcquireMempoolFirst = 4000
)

var MempoolErrors = jsonrpc.NewTaxonomy("mempool",
	jsonrpc.Unit(CodeMustAcquireMempoolFirst, "MustAcquireMempoolFirst"),
)

// Evaluation error codes.
const (
	CodeIncompatibleEra               = 3000
	CodeUnsupportedEra                = 3001
	CodeOverlappingAdditionalUtxo     = 3002
	CodeNodeTipTooOld                 = 3003
	CodeCannotCreateEvaluationContext = 3004
	CodeScriptExecutionFailure        = 3010
	CodeDeserialization               = -32602
)

// deserializationFields lists the per-era decoder errors of a transaction
// that could not be deserialized.
var deserializationFields = []jsonrpc.Field{
	jsonrpc.FieldOf[string]("byron"),
	jsonrpc.FieldOf[string]("shelley"),
	jsonrpc.FieldOf[string]("allegra"),
	jsonrpc.FieldOf[string]("mary"),
	jsonrpc.FieldOf[string]("alonzo"),
	jsonrpc.FieldOf[string]("babbage"),
	jsonrpc.FieldOf[string]("conway"),
}

var EvaluationErrors = jsonrpc.NewTaxonomy("evaluation",
	jsonrpc.Structured(CodeIncompatibleEra, "IncompatibleEra",
		jsonrpc.FieldOf[Era]("incompatible_era"),
	),
	jsonrpc.Structured(CodeUnsupportedEra, "UnsupportedEra",
		jsonrpc.FieldOf[Era]("unsupported_era"),
	),
	jsonrpc.Structured(CodeOverlappingAdditionalUtxo, "OverlappingAdditionalUtxo",
		jsonrpc.FieldOf[[]TxOutputPointer]("overlapping_output_references"),
	),
	jsonrpc.Structured(CodeNodeTipTooOld, "NodeTipTooOld",
		jsonrpc.FieldOf[Era]("minimum_required_era"),
		jsonrpc.FieldOf[Era]("current_node_era"),
	),
	jsonrpc.Structured(CodeCannotCreateEvaluationContext, "CannotCreateEvaluationContext",
		jsonrpc.FieldOf[string]("reason"),
	),
	jsonrpc.Structured(CodeScriptExecutionFailure, "ScriptExecutionFailure",
		jsonrpc.FieldOf[[]ScriptError]("errors"),
	),
	jsonrpc.Structured(CodeDeserialization, "Deserialization", deserializationFields...),
)

// Script execution error codes, reported per validator inside a
// ScriptExecutionFailure.
const (
	CodeInvalidRedeemerPointers    = 3011
	CodeValidationFailure          = 3012
	CodeUnsuitableOutputReference  = 3013
	CodeExtraneousRedeemers        = 3110
	CodeMissingDatums              = 3111
	CodeMissingCostModels          = 3115
	CodeUnknownOutputReferences    = 3117
	CodeExecutionBudgetOutOfBounds = 3161
)

var ScriptExecutionErrors = jsonrpc.NewTaxonomy("script-execution",
	jsonrpc.Structured(CodeInvalidRedeemerPointers, "InvalidRedeemerPointers",
		jsonrpc.FieldOf[[]RedeemerPointer]("missing_scripts"),
	),
	jsonrpc.Structured(CodeValidationFailure, "ValidationFailure",
		jsonrpc.FieldOf[string]("validation_error"),
		jsonrpc.FieldOf[[]string]("traces"),
	),
	jsonrpc.Structured(CodeUnsuitableOutputReference, "UnsuitableOutputReference",
		jsonrpc.FieldOf[TxOutputPointer]("unsuitable_output_reference"),
	),
	jsonrpc.Structured(CodeExtraneousRedeemers, "ExtraneousRedeemers",
		jsonrpc.FieldOf[[]RedeemerPointer]("extraneous_redeemers"),
	),
	jsonrpc.Structured(CodeMissingDatums, "MissingDatums",
		jsonrpc.FieldOf[[]string]("missing_datums"),
	),
	jsonrpc.Structured(CodeMissingCostModels, "MissingCostModels",
		jsonrpc.FieldOf[[]Language]("missing_cost_models"),
	),
	jsonrpc.Structured(CodeUnknownOutputReferences, "UnknownOutputReferences",
		jsonrpc.FieldOf[[]TxOutputPointer]("unknown_output_references"),
	),
	jsonrpc.Structured(CodeExecutionBudgetOutOfBounds, "ExecutionBudgetOutOfBounds",
		jsonrpc.FieldOf[ExecutionUnits]("budget_used"),
	),
)

// ScriptError is the failure of one validator during evaluation.
type ScriptError struct {
	Validator RedeemerPointer
	Error     *jsonrpc.ErrorVariant
}

func (e *ScriptError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Validator *RedeemerPointer `json:"validator"`
		Error     json.RawMessage  `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Validator == nil {
		return fmt.Errorf("script error: missing field validator")
	}
	if len(raw.Error) == 0 {
		return fmt.Errorf("script error: missing field error")
	}

	variant, err := ScriptExecutionErrors.Resolve(raw.Error)
	if err != nil {
		return fmt.Errorf("script error for %s: %w", raw.Validator, err)
	}
	e.Validator = *raw.Validator
	e.Error = variant
	return nil
}
