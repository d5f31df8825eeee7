package expr

// True is the guard that always holds.
const True = "true"

// And conjoins two guards textually. The empty guard and True are
// identities.
func And(a, b string) string {
	if a == "" || a == True {
		if b == "" {
			return True
		}
		return b
	}
	if b == "" || b == True {
		return a
	}
	return "(" + a + ") && (" + b + ")"
}
