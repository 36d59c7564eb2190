package typeparser

import (
	"fmt"

	"ctypereader/utils"
)

// PadStructMembers inserts padding fields so that every member sits on its natural
// boundary within utils.Alignment, and returns the padded members and the struct size.
//
// Members whose size is a multiple of the alignment start a new slot. Smaller members
// (1 or 2 bytes) share a slot; padding is inserted before a member that would be
// misaligned or cross the slot boundary, and after the last member of the struct.
//
// A member that is larger than the alignment but not a multiple of it can't be laid
// out; the struct then gets size 0 and the members are returned unchanged.
func PadStructMembers(members []Field) ([]Field, int, error) {
	padded := make([]Field, 0, len(members)+2)
	total := 0
	pending := 0 // bytes used in the current slot

	pad := func(size int) {
		padded = append(padded, makePadField(size))
		total += size
		pending = (pending + size) % utils.Alignment
	}

	for _, m := range members {
		size := m.Size
		if size%utils.Alignment == 0 {
			if pending > 0 {
				pad(utils.Alignment - pending)
			}
			padded = append(padded, m)
			total += size
			continue
		}

		if size > utils.Alignment {
			if m.ArrayLen > 0 {
				return members, 0, fmt.Errorf("%w - %s (%d bytes)", ErrUnsupportedArrayLayout, m.Name, size)
			}
			return members, 0, fmt.Errorf("%w for %s (%d bytes)", ErrBadMemberSize, m.Name, size)
		}

		align := m.ElemSize()
		if align > 0 && pending%align != 0 {
			pad(align - pending%align)
		}
		if pending+size > utils.Alignment {
			pad(utils.Alignment - pending)
		}
		padded = append(padded, m)
		total += size
		pending = (pending + size) % utils.Alignment
	}

	if pending > 0 {
		pad(utils.Alignment - pending)
	}
	return padded, total, nil
}

// CalcUnionSize returns the size of the largest member rounded up to the alignment.
func CalcUnionSize(members []Field) int {
	size := 0
	for _, m := range members {
		if m.Size > size {
			size = m.Size
		}
	}
	return utils.AlignUp(size, utils.Alignment)
}
