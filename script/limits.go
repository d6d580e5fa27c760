package script

import "github.com/softprodev/ckb-nft-kabletop/channel/defaults"

type Limits struct {
	MaxOperations   int    `yaml:"max_operations"`
	MaxFragmentSize int    `yaml:"max_fragment_size"`
	MaxSteps        uint64 `yaml:"max_steps"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxOperations:   defaults.MaxOperations,
		MaxFragmentSize: defaults.MaxFragmentSize,
		MaxSteps:        defaults.MaxReplaySteps,
	}
}
