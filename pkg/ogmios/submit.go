package ogmios

import (
	"encoding/json"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

type SubmitParams struct {
	Transaction TxCbor `json:"transaction" validate:"required"`
}

type SubmitResult struct {
	Transaction TxID `json:"transaction"`
}

// InsufficientlyFundedOutput is an output holding less than the minimum
// ada its size requires.
type InsufficientlyFundedOutput struct {
	Output               TxOutput   `json:"output"`
	MinimumRequiredValue AdaBalance `json:"minimumRequiredValue"`
}

// Submission error codes.
const (
	CodeSubmitEraMismatch                    = 3005
	CodeInvalidSignatories                   = 3100
	CodeMissingSignatories                   = 3101
	CodeFailingNativeScripts                 = 3102
	CodeExtraneousScripts                    = 3104
	CodeMissingMetadataHash                  = 3105
	CodeMissingMetadata                      = 3106
	CodeMetadataHashMismatch                 = 3107
	CodeInvalidMetadata                      = 3108
	CodeMissingRedeemers                     = 3109
	CodeExtraneousDatums                     = 3112
	CodeScriptIntegrityHashMismatch          = 3113
	CodeOrphanScriptInputs                   = 3114
	CodeMalformedScripts                     = 3116
	CodeOutsideOfValidityInterval            = 3118
	CodeTransactionTooLarge                  = 3119
	CodeValueTooLarge                        = 3120
	CodeEmptyInputSet                        = 3121
	CodeTransactionFeeTooSmall               = 3122
	CodeValueNotConserved                    = 3123
	CodeNetworkMismatch                      = 3124
	CodeInsufficientlyFundedOutputs          = 3125
	CodeBootstrapAttributesTooLarge          = 3126
	CodeMintingOrBurningAda                  = 3127
	CodeInsufficientCollateral               = 3128
	CodeCollateralLockedByScript             = 3129
	CodeUnforeseeableSlot                    = 3130
	CodeTooManyCollateralInputs              = 3131
	CodeMissingCollateralInputs              = 3132
	CodeNonAdaCollateral                     = 3133
	CodeExecutionUnitsTooLarge               = 3134
	CodeTotalCollateralMismatch              = 3135
	CodeSpendsMismatch                       = 3136
	CodeUnauthorizedVotes                    = 3137
	CodeUnknownGovernanceProposals           = 3138
	CodeInvalidProtocolParametersUpdate      = 3139
	CodeUnknownStakePool                     = 3140
	CodeIncompleteWithdrawals                = 3141
	CodeRetirementTooLate                    = 3142
	CodeStakePoolCostTooLow                  = 3143
	CodeMetadataHashTooLarge                 = 3144
	CodeCredentialAlreadyRegistered          = 3145
	CodeUnknownCredential                    = 3146
	CodeNonEmptyRewardAccount                = 3147
	CodeInvalidGenesisDelegation             = 3148
	CodeInvalidMIRTransfer                   = 3149
	CodeForbiddenWithdrawal                  = 3150
	CodeCredentialDepositMismatch            = 3151
	CodeDRepAlreadyRegistered                = 3152
	CodeDRepNotRegistered                    = 3153
	CodeUnknownConstitutionalCommitteeMember = 3154
	CodeGovernanceProposalDepositMismatch    = 3155
	CodeConflictingCommitteeUpdate           = 3156
	CodeInvalidCommitteeUpdate               = 3157
	CodeTreasuryWithdrawalMismatch           = 3158
	CodeInvalidOrMissingPreviousProposals    = 3159
	CodeVotingOnExpiredActions               = 3160
	CodeInvalidHardForkVersionBump           = 3162
	CodeConstitutionGuardrailsHashMismatch   = 3163
	CodeConflictingInputsAndReferences       = 3164
	CodeUnauthorizedGovernanceAction         = 3165
	CodeReferenceScriptsTooLarge             = 3166
	CodeUnknownVoters                        = 3167
	CodeEmptyTreasuryWithdrawal              = 3168
	CodeUnexpectedMempoolError               = 3997
	CodeUnrecognizedCertificateType          = 3998
)

// SubmitErrors covers submitTransaction. Governance payloads whose shape
// varies across node versions are kept raw.
var SubmitErrors = jsonrpc.NewTaxonomy("submission",
	jsonrpc.Structured(CodeSubmitEraMismatch, "EraMismatch",
		jsonrpc.FieldOf[Era]("query_era"),
		jsonrpc.FieldOf[Era]("ledger_era"),
	),
	// Hex-encoded verification key hashes
	jsonrpc.Structured(CodeInvalidSignatories, "InvalidSignatories",
		jsonrpc.FieldOf[[]string]("invalid_signatories"),
	),
	jsonrpc.Structured(CodeMissingSignatories, "MissingSignatories",
		jsonrpc.FieldOf[[]string]("missing_signatories"),
	),
	jsonrpc.Structured(CodeFailingNativeScripts, "FailingNativeScripts",
		jsonrpc.FieldOf[[]string]("failing_native_scripts"),
	),
	jsonrpc.Structured(CodeExtraneousScripts, "ExtraneousScripts",
		jsonrpc.FieldOf[[]string]("extraneous_scripts"),
	),
	jsonrpc.Structured(CodeMissingMetadataHash, "MissingMetadataHash",
		jsonrpc.FieldOf[MetadataHash]("metadata"),
	),
	jsonrpc.Structured(CodeMissingMetadata, "MissingMetadata",
		jsonrpc.FieldOf[MetadataHash]("metadata"),
	),
	jsonrpc.Structured(CodeMetadataHashMismatch, "MetadataHashMismatch",
		jsonrpc.FieldOf[MetadataHash]("provided"),
		jsonrpc.FieldOf[MetadataHash]("computed"),
	),
	jsonrpc.Unit(CodeInvalidMetadata, "InvalidMetadata"),
	jsonrpc.Structured(CodeMissingRedeemers, "MissingRedeemers",
		jsonrpc.FieldOf[[]ScriptPurpose]("missing_redeemers"),
	),
	jsonrpc.Structured(CodeExtraneousRedeemers, "ExtraneousRedeemers",
		jsonrpc.FieldOf[[]RedeemerPointer]("extraneous_redeemers"),
	),
	jsonrpc.Structured(CodeMissingDatums, "MissingDatums",
		jsonrpc.FieldOf[[]string]("missing_datums"),
	),
	jsonrpc.Structured(CodeExtraneousDatums, "ExtraneousDatums",
		jsonrpc.FieldOf[[]string]("extraneous_datums"),
	),
	jsonrpc.Structured(CodeScriptIntegrityHashMismatch, "ScriptIntegrityHashMismatch",
		jsonrpc.OptionalFieldOf[string]("provided_script_integrity"),
		jsonrpc.OptionalFieldOf[string]("computed_script_integrity"),
	),
	jsonrpc.Structured(CodeOrphanScriptInputs, "OrphanScriptInputs",
		jsonrpc.FieldOf[[]TxOutputPointer]("orphan_script_inputs"),
	),
	jsonrpc.Structured(CodeMissingCostModels, "MissingCostModels",
		jsonrpc.FieldOf[[]Language]("missing_cost_models"),
	),
	jsonrpc.Structured(CodeMalformedScripts, "MalformedScripts",
		jsonrpc.FieldOf[[]string]("malformed_scripts"),
	),
	jsonrpc.Structured(CodeUnknownOutputReferences, "UnknownOutputReferences",
		jsonrpc.FieldOf[[]TxOutputPointer]("unknown_output_references"),
	),
	jsonrpc.Structured(CodeOutsideOfValidityInterval, "OutsideOfValidityInterval",
		jsonrpc.FieldOf[ValidityInterval]("validity_interval"),
		jsonrpc.FieldOf[uint64]("current_slot"),
	),
	jsonrpc.Structured(CodeTransactionTooLarge, "TransactionTooLarge",
		jsonrpc.FieldOf[uint64]("measured_transaction_size"),
		jsonrpc.FieldOf[uint64]("maximum_transaction_size"),
	),
	jsonrpc.Structured(CodeValueTooLarge, "ValueTooLarge",
		jsonrpc.FieldOf[[]TxOutput]("excessively_large_outputs"),
	),
	jsonrpc.Unit(CodeEmptyInputSet, "EmptyInputSet"),
	jsonrpc.Structured(CodeTransactionFeeTooSmall, "TransactionFeeTooSmall",
		jsonrpc.FieldOf[AdaBalance]("minimum_required_fee"),
		jsonrpc.FieldOf[AdaBalance]("provided_fee"),
	),
	jsonrpc.Structured(CodeValueNotConserved, "ValueNotConserved",
		jsonrpc.FieldOf[Balance]("value_consumed"),
		jsonrpc.FieldOf[Balance]("value_produced"),
	),
	jsonrpc.Structured(CodeNetworkMismatch, "NetworkMismatch",
		jsonrpc.FieldOf[Network]("expected_network"),
		jsonrpc.FieldOf[DiscriminatedType]("discriminated_type"),
		jsonrpc.OptionalFieldOf[[]string]("invalid_entities"),
	),
	jsonrpc.Structured(CodeInsufficientlyFundedOutputs, "InsufficientlyFundedOutputs",
		jsonrpc.FieldOf[[]InsufficientlyFundedOutput]("insufficiently_funded_outputs"),
	),
	jsonrpc.Structured(CodeBootstrapAttributesTooLarge, "BootstrapAttributesTooLarge",
		jsonrpc.FieldOf[[]TxOutput]("bootstrap_outputs"),
	),
	jsonrpc.Unit(CodeMintingOrBurningAda, "MintingOrBurningAda"),
	jsonrpc.Structured(CodeInsufficientCollateral, "InsufficientCollateral",
		jsonrpc.FieldOf[AdaBalanceDelta]("provided_collateral"),
		jsonrpc.FieldOf[AdaBalance]("minimum_required_collateral"),
	),
	jsonrpc.Structured(CodeCollateralLockedByScript, "CollateralLockedByScript",
		jsonrpc.FieldOf[[]TxOutputPointer]("unsuitable_collateral_inputs"),
	),
	jsonrpc.Structured(CodeUnforeseeableSlot, "UnforeseeableSlot",
		jsonrpc.FieldOf[uint64]("unforeseeable_slot"),
	),
	jsonrpc.Structured(CodeTooManyCollateralInputs, "TooManyCollateralInputs",
		jsonrpc.FieldOf[uint32]("maximum_collateral_inputs"),
		jsonrpc.FieldOf[uint32]("counted_collateral_inputs"),
	),
	jsonrpc.Unit(CodeMissingCollateralInputs, "MissingCollateralInputs"),
	jsonrpc.Structured(CodeNonAdaCollateral, "NonAdaCollateral",
		jsonrpc.FieldOf[Balance]("unsuitable_collateral_value"),
	),
	jsonrpc.Structured(CodeExecutionUnitsTooLarge, "ExecutionUnitsTooLarge",
		jsonrpc.FieldOf[ExecutionUnits]("provided_execution_units"),
		jsonrpc.FieldOf[ExecutionUnits]("maximum_execution_units"),
	),
	jsonrpc.Structured(CodeTotalCollateralMismatch, "TotalCollateralMismatch",
		jsonrpc.FieldOf[AdaBalance]("declared_total_collateral"),
		jsonrpc.FieldOf[AdaBalanceDelta]("computed_total_collateral"),
	),
	jsonrpc.Structured(CodeSpendsMismatch, "SpendsMismatch",
		jsonrpc.FieldOf[InputSource]("declared_spending"),
		jsonrpc.FieldOf[string]("mismatch_reason"),
	),
	jsonrpc.Structured(CodeUnauthorizedVotes, "UnauthorizedVotes",
		jsonrpc.FieldOf[[]json.RawMessage]("unauthorized_votes"),
	),
	jsonrpc.Structured(CodeUnknownGovernanceProposals, "UnknownGovernanceProposals",
		jsonrpc.FieldOf[[]json.RawMessage]("unknown_proposals"),
	),
	jsonrpc.Unit(CodeInvalidProtocolParametersUpdate, "InvalidProtocolParametersUpdate"),
	jsonrpc.Structured(CodeUnknownStakePool, "UnknownStakePool",
		jsonrpc.FieldOf[string]("unknown_stake_pool"),
	),
	jsonrpc.Structured(CodeIncompleteWithdrawals, "IncompleteWithdrawals",
		jsonrpc.FieldOf[map[string]AdaBalance]("incomplete_withdrawals"),
	),
	jsonrpc.Structured(CodeRetirementTooLate, "RetirementTooLate",
		jsonrpc.FieldOf[uint64]("current_epoch"),
		jsonrpc.FieldOf[uint64]("declared_epoch"),
		jsonrpc.FieldOf[uint64]("first_invalid_epoch"),
	),
	jsonrpc.Structured(CodeStakePoolCostTooLow, "StakePoolCostTooLow",
		jsonrpc.FieldOf[AdaBalance]("minimum_stake_pool_cost"),
		jsonrpc.FieldOf[AdaBalance]("declared_stake_pool_cost"),
	),
	jsonrpc.Structured(CodeMetadataHashTooLarge, "MetadataHashTooLarge",
		jsonrpc.FieldOf[StakePoolID]("infringing_stake_pool"),
		jsonrpc.FieldOf[NumberOfBytes]("computed_metadata_hash_size"),
	),
	jsonrpc.Structured(CodeCredentialAlreadyRegistered, "CredentialAlreadyRegistered",
		jsonrpc.FieldOf[string]("known_credential"),
		jsonrpc.FieldOf[CredentialOrigin]("from"),
	),
	jsonrpc.Structured(CodeUnknownCredential, "UnknownCredential",
		jsonrpc.FieldOf[string]("unknown_credential"),
		jsonrpc.FieldOf[CredentialOrigin]("from"),
	),
	jsonrpc.Structured(CodeNonEmptyRewardAccount, "NonEmptyRewardAccount",
		jsonrpc.FieldOf[AdaBalance]("non_empty_reward_account_balance"),
	),
	jsonrpc.Unit(CodeInvalidGenesisDelegation, "InvalidGenesisDelegation"),
	jsonrpc.Unit(CodeInvalidMIRTransfer, "InvalidMIRTransfer"),
	jsonrpc.Structured(CodeForbiddenWithdrawal, "ForbiddenWithdrawal",
		jsonrpc.FieldOf[[]string]("marginalized_credentials"),
	),
	jsonrpc.Structured(CodeCredentialDepositMismatch, "CredentialDepositMismatch",
		jsonrpc.FieldOf[AdaBalance]("provided_deposit"),
		jsonrpc.FieldOf[AdaBalance]("expected_deposit"),
	),
	jsonrpc.Structured(CodeDRepAlreadyRegistered, "DRepAlreadyRegistered",
		jsonrpc.FieldOf[json.RawMessage]("known_delegate_representative"),
	),
	jsonrpc.Structured(CodeDRepNotRegistered, "DRepNotRegistered",
		jsonrpc.FieldOf[json.RawMessage]("unknown_delegate_representative"),
	),
	jsonrpc.Structured(CodeUnknownConstitutionalCommitteeMember, "UnknownConstitutionalCommitteeMember",
		jsonrpc.FieldOf[CommitteeMember]("unknown_constitutional_committee_member"),
	),
	jsonrpc.Structured(CodeGovernanceProposalDepositMismatch, "GovernanceProposalDepositMismatch",
		jsonrpc.FieldOf[AdaBalance]("provided_deposit"),
		jsonrpc.FieldOf[AdaBalance]("expected_deposit"),
	),
	jsonrpc.Structured(CodeConflictingCommitteeUpdate, "ConflictingCommitteeUpdate",
		jsonrpc.FieldOf[[]CommitteeMember]("conflicting_members"),
	),
	jsonrpc.Structured(CodeInvalidCommitteeUpdate, "InvalidCommitteeUpdate",
		jsonrpc.FieldOf[[]CommitteeMember]("already_retired_members"),
	),
	jsonrpc.Structured(CodeTreasuryWithdrawalMismatch, "TreasuryWithdrawalMismatch",
		jsonrpc.FieldOf[AdaBalance]("provided_withdrawal"),
		jsonrpc.FieldOf[AdaBalance]("computed_withdrawal"),
	),
	jsonrpc.Structured(CodeInvalidOrMissingPreviousProposals, "InvalidOrMissingPreviousProposals",
		jsonrpc.FieldOf[[]json.RawMessage]("invalid_or_missing_previous_proposals"),
	),
	jsonrpc.Structured(CodeVotingOnExpiredActions, "VotingOnExpiredActions",
		jsonrpc.FieldOf[[]json.RawMessage]("invalid_votes"),
	),
	jsonrpc.Structured(CodeExecutionBudgetOutOfBounds, "ExecutionBudgetOutOfBounds",
		jsonrpc.FieldOf[ExecutionUnits]("budget_used"),
	),
	jsonrpc.Structured(CodeInvalidHardForkVersionBump, "InvalidHardForkVersionBump",
		jsonrpc.FieldOf[ProtocolVersion]("proposed_version"),
		jsonrpc.FieldOf[ProtocolVersion]("current_version"),
	),
	jsonrpc.Structured(CodeConstitutionGuardrailsHashMismatch, "ConstitutionGuardrailsHashMismatch",
		jsonrpc.OptionalFieldOf[string]("provided_hash"),
		jsonrpc.OptionalFieldOf[string]("expected_hash"),
	),
	jsonrpc.Structured(CodeConflictingInputsAndReferences, "ConflictingInputsAndReferences",
		jsonrpc.FieldOf[[]TxOutputPointer]("conflicting_references"),
	),
	jsonrpc.Unit(CodeUnauthorizedGovernanceAction, "UnauthorizedGovernanceAction"),
	jsonrpc.Structured(CodeReferenceScriptsTooLarge, "ReferenceScriptsTooLarge",
		jsonrpc.FieldOf[NumberOfBytes]("measured_reference_scripts"),
		jsonrpc.FieldOf[NumberOfBytes]("maximum_reference_scripts"),
	),
	jsonrpc.Structured(CodeUnknownVoters, "UnknownVoters",
		jsonrpc.FieldOf[[]json.RawMessage]("unknown_voters"),
	),
	jsonrpc.Unit(CodeEmptyTreasuryWithdrawal, "EmptyTreasuryWithdrawal"),
	jsonrpc.Single[json.RawMessage](CodeUnexpectedMempoolError, "UnexpectedMempoolError"),
	jsonrpc.Unit(CodeUnrecognizedCertificateType, "UnrecognizedCertificateType"),
	jsonrpc.Structured(CodeDeserialization, "Deserialization", deserializationFields...),
)
