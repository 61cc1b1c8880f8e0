package orm

// prefixRange returns the [start, end) range holding every key that begins
// with prefix. The end is nil when no key sorts after the prefix range.
func prefixRange(prefix []byte) ([]byte, []byte) {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
