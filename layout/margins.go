package layout

import "photo2pdf/contracts"

// ResolveMargins converts a margin specification to point offsets. Nothing is
// clamped: oversized margins produce an empty content box downstream.
func ResolveMargins(m contracts.Margins) contracts.Insets {
	t, r, b, l := m.Sides()
	return contracts.Insets{
		Top:    MmToPt(t),
		Right:  MmToPt(r),
		Bottom: MmToPt(b),
		Left:   MmToPt(l),
	}
}
