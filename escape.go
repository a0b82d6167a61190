package buildscript

var (
	escapedLF = []byte(`\n`)
	escapedCR = []byte(`\r`)
)

// isSpecial reports whether ch would end a line on the directive stream.
// Only LF and CR need escaping: every other byte, including NUL, tab, quote
// and backslash, is ordinary line content to the build tool.
func isSpecial(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

// escapeSpecial is only ever called with bytes accepted by isSpecial.
func escapeSpecial(ch byte) []byte {
	if ch == '\n' {
		return escapedLF
	}
	return escapedCR
}

// indexSpecial returns the index of the first special byte in p, or -1.
func indexSpecial(p []byte) int {
	for i, ch := range p {
		if isSpecial(ch) {
			return i
		}
	}
	return -1
}
