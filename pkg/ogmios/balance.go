package ogmios

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	adaPolicy     = "ada"
	lovelaceAsset = "lovelace"
)

var lovelacePerAda = decimal.New(1, 6)

// Assets maps a policy id to asset names and quantities.
type Assets map[string]map[string]uint64

// Balance is a multi-asset value. On the wire ada is one more policy,
// {"ada": {"lovelace": n}}, which must be present.
type Balance struct {
	Lovelace uint64
	Assets   Assets
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	var assets Assets
	if err := json.Unmarshal(data, &assets); err != nil {
		return err
	}
	lovelace, err := lovelaceOf(assets)
	if err != nil {
		return err
	}
	delete(assets, adaPolicy)

	b.Lovelace = lovelace
	b.Assets = assets
	return nil
}

func (b Balance) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]uint64, len(b.Assets)+1)
	for policy, tokens := range b.Assets {
		out[policy] = tokens
	}
	out[adaPolicy] = map[string]uint64{lovelaceAsset: b.Lovelace}
	return json.Marshal(out)
}

// Ada returns the ada part of the balance.
func (b Balance) Ada() decimal.Decimal {
	return LovelaceToAda(b.Lovelace)
}

// AdaBalance is a value that only ever holds ada.
type AdaBalance struct {
	Lovelace uint64
}

func (b *AdaBalance) UnmarshalJSON(data []byte) error {
	var assets Assets
	if err := json.Unmarshal(data, &assets); err != nil {
		return err
	}
	lovelace, err := lovelaceOf(assets)
	if err != nil {
		return err
	}
	b.Lovelace = lovelace
	return nil
}

func (b AdaBalance) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]uint64{adaPolicy: {lovelaceAsset: b.Lovelace}})
}

func (b AdaBalance) Ada() decimal.Decimal {
	return LovelaceToAda(b.Lovelace)
}

// AdaBalanceDelta is a signed amount of ada.
type AdaBalanceDelta struct {
	Lovelace int64
}

func (b *AdaBalanceDelta) UnmarshalJSON(data []byte) error {
	var assets map[string]map[string]int64
	if err := json.Unmarshal(data, &assets); err != nil {
		return err
	}
	ada, ok := assets[adaPolicy]
	if !ok {
		return errors.New("missing field ada")
	}
	lovelace, ok := ada[lovelaceAsset]
	if !ok {
		return errors.New("missing field ada.lovelace")
	}
	b.Lovelace = lovelace
	return nil
}

func (b AdaBalanceDelta) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]int64{adaPolicy: {lovelaceAsset: b.Lovelace}})
}

func lovelaceOf(assets Assets) (uint64, error) {
	ada, ok := assets[adaPolicy]
	if !ok {
		return 0, errors.New("missing field ada")
	}
	lovelace, ok := ada[lovelaceAsset]
	if !ok {
		return 0, errors.New("missing field ada.lovelace")
	}
	return lovelace, nil
}

// LovelaceToAda converts an amount of lovelace to ada.
func LovelaceToAda(lovelace uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lovelace), -6)
}

// AdaToLovelace converts ada to lovelace. It fails for negative amounts and
// for amounts finer than one lovelace.
func AdaToLovelace(ada decimal.Decimal) (uint64, error) {
	lovelace := ada.Mul(lovelacePerAda)
	if lovelace.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", ada)
	}
	if !lovelace.Equal(lovelace.Truncate(0)) {
		return 0, fmt.Errorf("amount %s is not a whole number of lovelace", ada)
	}
	return lovelace.BigInt().Uint64(), nil
}
