package domain

// Identity is the verified principal behind a request.
type Identity struct {
	// Subject is the "sub" claim of the verified token.
	Subject string
	// Claims holds every other claim of the token, untouched.
	Claims map[string]any
}
