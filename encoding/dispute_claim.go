package encoding

import "github.com/softprodev/ckb-nft-kabletop/wallet"

// DisputeClaim is stored in the data of a disputed stake cell. It names the
// round the submitter claims as final and carries that round so the claim
// can be settled without the rest of the chain.
type DisputeClaim struct {
	RoundOffset uint8
	Signature   wallet.Signature
	Round       MoveRecord
}

// Pack returns the canonical encoding:
// u8 roundOffset; 65B signature; MoveRecord round.
func (c DisputeClaim) Pack() []byte {
	var w writer
	w.u8(c.RoundOffset)
	w.fixed(c.Signature[:])
	c.Round.write(&w)
	return w.buf
}

func UnpackDisputeClaim(b []byte) (DisputeClaim, error) {
	rd := newReader(b)
	var c DisputeClaim
	var err error
	if c.RoundOffset, err = rd.u8("round offset"); err != nil {
		return DisputeClaim{}, err
	}
	sig, err := rd.fixed(wallet.SignatureLength, "signature")
	if err != nil {
		return DisputeClaim{}, err
	}
	copy(c.Signature[:], sig)
	if c.Round, err = readMoveRecord(rd); err != nil {
		return DisputeClaim{}, err
	}
	if err := rd.finish("dispute claim"); err != nil {
		return DisputeClaim{}, err
	}
	return c, nil
}
