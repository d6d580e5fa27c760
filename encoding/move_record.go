package encoding

// MoveRecord is one round of play: the mover and the script fragments it
// submits, in execution order.
type MoveRecord struct {
	Mover      Mover
	Operations [][]byte
}

// Pack returns the canonical encoding:
// u8 mover; count + (count+bytes) per fragment.
func (r MoveRecord) Pack() []byte {
	var w writer
	r.write(&w)
	return w.buf
}

func (r MoveRecord) write(w *writer) {
	w.u8(uint8(r.Mover))
	w.count(len(r.Operations))
	for _, op := range r.Operations {
		w.bytes(op)
	}
}

func UnpackMoveRecord(b []byte) (MoveRecord, error) {
	rd := newReader(b)
	rec, err := readMoveRecord(rd)
	if err != nil {
		return MoveRecord{}, err
	}
	if err := rd.finish("move record"); err != nil {
		return MoveRecord{}, err
	}
	return rec, nil
}

func readMoveRecord(rd *reader) (MoveRecord, error) {
	m, err := rd.u8("mover")
	if err != nil {
		return MoveRecord{}, err
	}
	mover := Mover(m)
	if !mover.Valid() {
		return MoveRecord{}, formatErr("invalid mover tag %d", m)
	}
	n, err := rd.count(countLen, "operations")
	if err != nil {
		return MoveRecord{}, err
	}
	ops := make([][]byte, n)
	for i := range ops {
		if ops[i], err = rd.bytes("operation"); err != nil {
			return MoveRecord{}, err
		}
	}
	return MoveRecord{Mover: mover, Operations: ops}, nil
}
