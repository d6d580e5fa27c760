package encoding

import "fmt"

// Mover tags the player who produced a move record.
type Mover uint8

const (
	Player1 Mover = 1
	Player2 Mover = 2
)

func (m Mover) Valid() bool {
	return m == Player1 || m == Player2
}

// Opponent returns the other player. It panics on an invalid mover.
func (m Mover) Opponent() Mover {
	switch m {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	panic(fmt.Sprintf("invalid mover %d", uint8(m)))
}

// Index returns the zero based player index.
func (m Mover) Index() int {
	return int(m) - 1
}

func (m Mover) String() string {
	switch m {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return fmt.Sprintf("mover(%d)", uint8(m))
}

func ParseMover(s string) (Mover, error) {
	switch s {
	case "player1", "1":
		return Player1, nil
	case "player2", "2":
		return Player2, nil
	}
	return 0, fmt.Errorf("unknown mover %q", s)
}
