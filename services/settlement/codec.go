package settlement

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"lukechampine.com/blake3"

	"vusdpool/native/pool"
)

type wireMutation struct {
	Account string `json:"account,omitempty"`
	Field   string `json:"field"`
	Delta   string `json:"delta"`
}

func encodeMutations(muts []pool.Mutation) (string, error) {
	wire := make([]wireMutation, 0, len(muts))
	for _, m := range muts {
		wire = append(wire, wireMutation{Account: string(m.Account), Field: m.Field.String(), Delta: m.Delta.String()})
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeMutations(raw string) ([]pool.Mutation, error) {
	var wire []wireMutation
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("settlement: decode mutations: %w", err)
	}
	out := make([]pool.Mutation, 0, len(wire))
	for _, w := range wire {
		field, err := pool.ParseField(w.Field)
		if err != nil {
			return nil, err
		}
		delta, err := pool.ParseDelta(w.Delta)
		if err != nil {
			return nil, err
		}
		out = append(out, pool.Mutation{Account: pool.AccountID(w.Account), Field: field, Delta: delta})
	}
	return out, nil
}

// Digest fingerprints the settlement-relevant content of a receipt. Backends
// use it as an idempotency key.
func Digest(receipt pool.Receipt) string {
	var b strings.Builder
	b.WriteString(receipt.ID)
	b.WriteByte('|')
	b.WriteString(string(receipt.Op))
	b.WriteByte('|')
	b.WriteString(string(receipt.Actor))
	b.WriteByte('|')
	b.WriteString(string(receipt.Counterparty))
	b.WriteByte('|')
	b.WriteString(receipt.Amount.Dec())
	b.WriteByte('|')
	b.WriteString(receipt.Bonus.Dec())
	for _, m := range receipt.Mutations {
		b.WriteByte('|')
		b.WriteString(m.String())
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// toReceipt rebuilds the parts of a receipt Compensate needs.
func (r Record) toReceipt() (pool.Receipt, error) {
	muts, err := decodeMutations(r.Mutations)
	if err != nil {
		return pool.Receipt{}, err
	}
	return pool.Receipt{
		ID:           r.ID,
		Op:           pool.Operation(r.Op),
		Actor:        pool.AccountID(r.Actor),
		Counterparty: pool.AccountID(r.Counterparty),
		Mutations:    muts,
		CommittedAt:  r.CommittedAt,
	}, nil
}
