package ogmios

import (
	"encoding/json"
	"fmt"
)

// Script is a native or Plutus script, tagged by language. Native scripts
// carry their clause tree and optionally their CBOR; Plutus scripts always
// carry CBOR.
type Script struct {
	Language Language
	Native   *ScriptClause
	CBOR     string
}

type scriptWire struct {
	Language Language        `json:"language"`
	JSON     *ScriptClause   `json:"json,omitempty"`
	CBOR     json.RawMessage `json:"cbor,omitempty"`
}

func (s *Script) UnmarshalJSON(data []byte) error {
	var w scriptWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var cbor *string
	if !isNull(w.CBOR) {
		if err := json.Unmarshal(w.CBOR, &cbor); err != nil {
			return fmt.Errorf("script cbor: %w", err)
		}
	}

	switch w.Language {
	case LanguageNative:
		if w.JSON == nil {
			return fmt.Errorf("native script: missing field json")
		}
		*s = Script{Language: w.Language, Native: w.JSON}
		if cbor != nil {
			s.CBOR = *cbor
		}
	case LanguagePlutusV1, LanguagePlutusV2, LanguagePlutusV3:
		if cbor == nil {
			return fmt.Errorf("%s script: missing field cbor", w.Language)
		}
		*s = Script{Language: w.Language, CBOR: *cbor}
	default:
		return fmt.Errorf("script: missing field language")
	}
	return nil
}

func (s Script) MarshalJSON() ([]byte, error) {
	w := scriptWire{Language: s.Language, JSON: s.Native}
	if s.CBOR != "" {
		w.CBOR, _ = json.Marshal(s.CBOR)
	}
	return json.Marshal(w)
}

// ClauseKind is the kind of a native script clause.
type ClauseKind string

const (
	ClauseSignature ClauseKind = "signature"
	ClauseAny       ClauseKind = "any"
	ClauseAll       ClauseKind = "all"
	ClauseSome      ClauseKind = "some"
	ClauseBefore    ClauseKind = "before"
	ClauseAfter     ClauseKind = "after"
)

// ScriptClause is one node of a native script. Signature is set for
// signature clauses, Clauses for any, all and some, Slot for before and
// after.
type ScriptClause struct {
	Clause    ClauseKind
	Signature string
	Clauses   []ScriptClause
	AtLeast   uint64
	Slot      uint64
}

type clauseWire struct {
	Clause  ClauseKind      `json:"clause"`
	From    json.RawMessage `json:"from,omitempty"`
	AtLeast *uint64         `json:"atLeast,omitempty"`
	Slot    *uint64         `json:"slot,omitempty"`
}

func (c *ScriptClause) UnmarshalJSON(data []byte) error {
	var w clauseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := ScriptClause{Clause: w.Clause}
	switch w.Clause {
	case ClauseSignature:
		if err := json.Unmarshal(w.From, &out.Signature); err != nil || out.Signature == "" {
			return fmt.Errorf("signature clause: from must be a key hash")
		}
	case ClauseAny, ClauseAll, ClauseSome:
		if err := json.Unmarshal(w.From, &out.Clauses); err != nil {
			return fmt.Errorf("%s clause: %w", w.Clause, err)
		}
		if w.Clause == ClauseSome {
			if w.AtLeast == nil {
				return fmt.Errorf("some clause: missing field atLeast")
			}
			out.AtLeast = *w.AtLeast
		}
	case ClauseBefore, ClauseAfter:
		if w.Slot == nil {
			return fmt.Errorf("%s clause: missing field slot", w.Clause)
		}
		out.Slot = *w.Slot
	default:
		return fmt.Errorf("unknown script clause %q", w.Clause)
	}

	*c = out
	return nil
}

func (c ScriptClause) MarshalJSON() ([]byte, error) {
	w := clauseWire{Clause: c.Clause}
	var err error
	switch c.Clause {
	case ClauseSignature:
		w.From, err = json.Marshal(c.Signature)
	case ClauseAny, ClauseAll, ClauseSome:
		clauses := c.Clauses
		if clauses == nil {
			clauses = []ScriptClause{}
		}
		w.From, err = json.Marshal(clauses)
		if c.Clause == ClauseSome {
			w.AtLeast = &c.AtLeast
		}
	case ClauseBefore, ClauseAfter:
		w.Slot = &c.Slot
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// ScriptPurpose says what a script is run for. Governance payloads that are
// not modeled are kept raw.
type ScriptPurpose struct {
	Purpose         RedeemerPurpose  `json:"purpose"`
	OutputReference *TxOutputPointer `json:"outputReference,omitempty"`
	Policy          string           `json:"policy,omitempty"`
	RewardAccount   string           `json:"rewardAccount,omitempty"`
	Certificate     json.RawMessage  `json:"certificate,omitempty"`
	Proposal        json.RawMessage  `json:"proposal,omitempty"`
	Issuer          json.RawMessage  `json:"issuer,omitempty"`
}

func (p *ScriptPurpose) UnmarshalJSON(data []byte) error {
	type plain ScriptPurpose
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}

	var missing string
	switch out.Purpose {
	case PurposeSpend:
		if out.OutputReference == nil {
			missing = "outputReference"
		}
	case PurposeMint:
		if out.Policy == "" {
			missing = "policy"
		}
	case PurposeWithdraw:
		if out.RewardAccount == "" {
			missing = "rewardAccount"
		}
	case PurposePublish:
		if isNull(out.Certificate) {
			missing = "certificate"
		}
	case PurposePropose:
		if isNull(out.Proposal) {
			missing = "proposal"
		}
	case PurposeVote:
		if isNull(out.Issuer) {
			missing = "issuer"
		}
	default:
		return fmt.Errorf("script purpose: missing field purpose")
	}
	if missing != "" {
		return fmt.Errorf("%s purpose: missing field %s", out.Purpose, missing)
	}

	*p = ScriptPurpose(out)
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
