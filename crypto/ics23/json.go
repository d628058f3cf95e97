package ics23

import (
	"encoding/json"
	"fmt"
)

// Enums are written by name and read either by name or by number, the two
// forms produced by cosmjs and by gogoproto JSON.

func (op HashOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

func (op *HashOp) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, func(name string) (int32, bool) {
		for k, n := range hashOpNames {
			if n == name {
				return int32(k), true
			}
		}
		return 0, false
	})
	if err != nil {
		return fmt.Errorf("hash op: %w", err)
	}
	*op = HashOp(v)
	return nil
}

func (op LengthOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

func (op *LengthOp) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, func(name string) (int32, bool) {
		for k, n := range lengthOpNames {
			if n == name {
				return int32(k), true
			}
		}
		return 0, false
	})
	if err != nil {
		return fmt.Errorf("length op: %w", err)
	}
	*op = LengthOp(v)
	return nil
}

func unmarshalEnum(data []byte, byName func(string) (int32, bool)) (int32, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, ok := byName(name)
		if !ok {
			return 0, fmt.Errorf("unknown name %q", name)
		}
		return v, nil
	}
	var v int32
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseExistenceProofs decodes a JSON array of existence proofs as printed
// by cosmjs ExistenceProof.toJSON and wraps each one as a CommitmentProof.
func ParseExistenceProofs(data []byte) ([]*CommitmentProof, error) {
	var exists []*ExistenceProof
	if err := json.Unmarshal(data, &exists); err != nil {
		return nil, err
	}
	proofs := make([]*CommitmentProof, len(exists))
	for i, p := range exists {
		proofs[i] = NewExistProof(p)
	}
	return proofs, nil
}
