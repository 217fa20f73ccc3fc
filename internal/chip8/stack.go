package chip8

import "fmt"

// Stack holds subroutine return addresses. It lives outside the address space so
// a runaway ROM cannot overwrite the font table or its own code through it.
type Stack struct {
	entries [StackDepth]uint16
	sp      int
}

func (s *Stack) Push(addr uint16) error {
	if s.sp == StackDepth {
		return fmt.Errorf("pushing 0x%04X at depth %d: %w", addr, s.sp, ErrStackOverflow)
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	addr := s.entries[s.sp]
	s.entries[s.sp] = 0
	return addr, nil
}

// Len returns the number of return addresses on the stack.
func (s *Stack) Len() int {
	return s.sp
}

func (s *Stack) String() string {
	return fmt.Sprintf("%v", s.entries[:s.sp])
}
