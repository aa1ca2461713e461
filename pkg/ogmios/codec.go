package ogmios

import (
	"encoding/json"
	"fmt"
	"slices"
)

// unmarshalEnum decodes a JSON string that must be one of valid.
func unmarshalEnum[T ~string](data []byte, out *T, valid ...T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !slices.Contains(valid, T(s)) {
		return fmt.Errorf("unknown %T %q", *out, s)
	}
	*out = T(s)
	return nil
}

// Era is a ledger era.
type Era string

const (
	EraByron   Era = "byron"
	EraShelley Era = "shelley"
	EraAllegra Era = "allegra"
	EraMary    Era = "mary"
	EraAlonzo  Era = "alonzo"
	EraBabbage Era = "babbage"
	EraConway  Era = "conway"
)

var eras = []Era{EraByron, EraShelley, EraAllegra, EraMary, EraAlonzo, EraBabbage, EraConway}

func (e *Era) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, e, eras...) }

// Language is a script language.
type Language string

const (
	LanguageNative   Language = "native"
	LanguagePlutusV1 Language = "plutus:v1"
	LanguagePlutusV2 Language = "plutus:v2"
	LanguagePlutusV3 Language = "plutus:v3"
)

var languages = []Language{LanguageNative, LanguagePlutusV1, LanguagePlutusV2, LanguagePlutusV3}

func (l *Language) UnmarshalJSON(data []byte) error { return unmarshalEnum(data, l, languages...) }

// RedeemerPurpose tells what a redeemer is for.
type RedeemerPurpose string

const (
	PurposeSpend    RedeemerPurpose = "spend"
	PurposeMint     RedeemerPurpose = "mint"
	PurposePublish  RedeemerPurpose = "publish"
	PurposeWithdraw RedeemerPurpose = "withdraw"
	PurposeVote     RedeemerPurpose = "vote"
	PurposePropose  RedeemerPurpose = "propose"
)

var purposes = []RedeemerPurpose{PurposeSpend, PurposeMint, PurposePublish, PurposeWithdraw, PurposeVote, PurposePropose}

func (p *RedeemerPurpose) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, p, purposes...)
}

type InputSource string

const (
	InputSourceInputs      InputSource = "inputs"
	InputSourceCollaterals InputSource = "collaterals"
)

func (s *InputSource) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, InputSourceInputs, InputSourceCollaterals)
}

type CredentialOrigin string

const (
	OriginVerificationKey CredentialOrigin = "verificationKey"
	OriginScript          CredentialOrigin = "script"
)

func (o *CredentialOrigin) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, o, OriginVerificationKey, OriginScript)
}

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

func (n *Network) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, n, NetworkMainnet, NetworkTestnet)
}

// DiscriminatedType names the kind of entity a network mismatch was found on.
type DiscriminatedType string

const (
	DiscriminatedAddress              DiscriminatedType = "address"
	DiscriminatedRewardAccount        DiscriminatedType = "rewardAccount"
	DiscriminatedStakePoolCertificate DiscriminatedType = "stakePoolCertificate"
	DiscriminatedTransaction          DiscriminatedType = "transaction"
)

func (d *DiscriminatedType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, d,
		DiscriminatedAddress, DiscriminatedRewardAccount, DiscriminatedStakePoolCertificate, DiscriminatedTransaction)
}

// TxCbor carries a serialized transaction.
type TxCbor struct {
	// Hex-encoded CBOR
	CBOR string `json:"cbor" validate:"required,hexbytes"`
}

// TxPointer references a transaction by id.
type TxPointer struct {
	// Hex-encoded 32-byte blake2b digest of the transaction body
	ID string `json:"id" validate:"required,len=64,hexbytes"`
}

// TxID is the result of a submission.
type TxID = TxPointer

// TxOutputPointer references one output of a transaction.
type TxOutputPointer struct {
	Transaction TxPointer `json:"transaction"`
	Index       uint32    `json:"index"`
}

func (p TxOutputPointer) String() string {
	return fmt.Sprintf("%s#%d", p.Transaction.ID, p.Index)
}

type TxOutput struct {
	Address   string  `json:"address"`
	Value     Balance `json:"value"`
	DatumHash *string `json:"datumHash,omitempty"`
	Datum     *string `json:"datum,omitempty"`
	Script    *Script `json:"script,omitempty"`
}

// Tx is a transaction as Ogmios renders it. Only the fields needed to follow
// value flows are decoded.
type Tx struct {
	ID               string            `json:"id"`
	Spends           InputSource       `json:"spends,omitempty"`
	Inputs           []TxOutputPointer `json:"inputs"`
	Outputs          []TxOutput        `json:"outputs"`
	Collaterals      []TxOutputPointer `json:"collaterals,omitempty"`
	CollateralReturn *TxOutput         `json:"collateralReturn,omitempty"`
	Fee              *AdaBalance       `json:"fee,omitempty"`
	Network          *Network          `json:"network,omitempty"`
	// Raw serialized transaction, only present when Ogmios runs with
	// --include-transaction-cbor
	CBOR *string `json:"cbor,omitempty"`
}

// ExecutionUnits is a script budget.
type ExecutionUnits struct {
	Memory Ratio `json:"memory"`
	CPU    Ratio `json:"cpu"`
}

type RedeemerPointer struct {
	Purpose RedeemerPurpose `json:"purpose"`
	Index   uint64          `json:"index"`
}

func (p RedeemerPointer) String() string {
	return fmt.Sprintf("%s:%d", p.Purpose, p.Index)
}

type ValidityInterval struct {
	InvalidBefore    *uint64 `json:"invalidBefore"`
	InvalidHereafter *uint64 `json:"invalidHereafter"`
}

type NumberOfBytes struct {
	Bytes uint64 `json:"bytes"`
}

type ProtocolVersion struct {
	Major uint32  `json:"major"`
	Minor uint32  `json:"minor"`
	Patch *uint32 `json:"patch,omitempty"`
}

type StakePoolID struct {
	// Bech32 pool id (pool1...)
	ID string `json:"id"`
}

type MetadataHash struct {
	// Hex-encoded 32-byte blake2b digest
	Hash string `json:"hash"`
}

type CommitteeMember struct {
	// Hex-encoded 28-byte blake2b digest
	ID   string           `json:"id"`
	From CredentialOrigin `json:"from"`
}
