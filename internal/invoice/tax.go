package invoice

// VATRate maps an effective tax percentage to one of the VAT labels the
// processor accepts. The enumeration is closed: any other percentage (e.g.
// a rounding mix of several tax components) yields no label, and the line
// is sent without a tax mode rather than with a guessed one.
func VATRate(percent int64) (string, bool) {
	switch percent {
	case 0:
		return "0%", true
	case 10:
		return "10%", true
	case 18:
		return "18%", true
	default:
		return "", false
	}
}
