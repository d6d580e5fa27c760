package backend

import (
	"errors"
	"fmt"
)

const (
	sinceRelativeFlag = uint64(1) << 63
	sinceMetricMask   = uint64(0x3) << 61
	sinceReservedMask = uint64(0x1f) << 56
	sinceValueMask    = (uint64(1) << 56) - 1
)

type SinceMetric uint8

const (
	SinceBlockNumber SinceMetric = iota
	SinceEpoch
	SinceTimestamp
)

func (m SinceMetric) String() string {
	switch m {
	case SinceBlockNumber:
		return "block number"
	case SinceEpoch:
		return "epoch"
	case SinceTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("unknown metric %d", uint8(m))
	}
}

// Since is a decoded CKB input since field.
type Since struct {
	Relative bool
	Metric   SinceMetric
	Value    uint64
}

// ParseSince decodes the raw since field of a cell input.
func ParseSince(raw uint64) (Since, error) {
	if raw&sinceReservedMask != 0 {
		return Since{}, errors.New("since has reserved bits set")
	}
	metric := SinceMetric((raw & sinceMetricMask) >> 61)
	if metric > SinceTimestamp {
		return Since{}, errors.New("since has invalid metric")
	}
	return Since{
		Relative: raw&sinceRelativeFlag != 0,
		Metric:   metric,
		Value:    raw & sinceValueMask,
	}, nil
}

// Raw encodes the since field as stored in a cell input.
func (s Since) Raw() uint64 {
	raw := s.Value & sinceValueMask
	raw |= uint64(s.Metric) << 61
	if s.Relative {
		raw |= sinceRelativeFlag
	}
	return raw
}

// BlockNumberSince returns a since field locking an input by block number.
func BlockNumberSince(blocks uint64, relative bool) Since {
	return Since{Relative: relative, Metric: SinceBlockNumber, Value: blocks}
}
