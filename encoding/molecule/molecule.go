package molecule

import (
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types/molecule"
	"github.com/softprodev/ckb-nft-kabletop/encoding"
	"github.com/softprodev/ckb-nft-kabletop/wallet"
)

// RoundWitness is one signed round as carried in a transaction witness.
type RoundWitness struct {
	Signature wallet.Signature
	Round     encoding.MoveRecord
}

func PackBytesOpt(b []byte) molecule.BytesOpt {
	return molecule.NewBytesOptBuilder().Set(*types.PackBytes(b)).Build()
}

// PackRoundWitness frames a signed round as WitnessArgs with the signature in
// the lock field and the encoded move record in the input_type field.
func PackRoundWitness(w RoundWitness) []byte {
	args := molecule.NewWitnessArgsBuilder().
		Lock(PackBytesOpt(w.Signature[:])).
		InputType(PackBytesOpt(w.Round.Pack())).
		Build()
	return args.AsSlice()
}

// UnpackRoundWitness decodes a witness produced by PackRoundWitness. The
// output_type field must be empty.
func UnpackRoundWitness(b []byte) (RoundWitness, error) {
	args, err := molecule.WitnessArgsFromSlice(b, false)
	if err != nil {
		return RoundWitness{}, fmt.Errorf("%w: witness args: %v", encoding.ErrFormat, err)
	}
	if !args.OutputType().IsNone() {
		return RoundWitness{}, fmt.Errorf("%w: unexpected output_type in round witness", encoding.ErrFormat)
	}
	sig, err := unpackBytesOpt(args.Lock(), "signature")
	if err != nil {
		return RoundWitness{}, err
	}
	rec, err := unpackBytesOpt(args.InputType(), "move record")
	if err != nil {
		return RoundWitness{}, err
	}
	var w RoundWitness
	if w.Signature, err = wallet.SignatureFromBytes(sig); err != nil {
		return RoundWitness{}, fmt.Errorf("%w: %v", encoding.ErrFormat, err)
	}
	if w.Round, err = encoding.UnpackMoveRecord(rec); err != nil {
		return RoundWitness{}, err
	}
	return w, nil
}

func unpackBytesOpt(opt *molecule.BytesOpt, what string) ([]byte, error) {
	if opt.IsNone() {
		return nil, fmt.Errorf("%w: missing %s", encoding.ErrFormat, what)
	}
	b, err := opt.IntoBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", encoding.ErrFormat, what, err)
	}
	return b.RawData(), nil
}
