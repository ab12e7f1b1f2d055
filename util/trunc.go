package util

// TruncateRight keeps the first len number of runes of text.
func TruncateRight(text string, len int) string {
	return TruncateRightWithSuffix(text, len, "")
}

// TruncateRightWithSuffix keeps the first len number of runes of text and only append the suffix if truncation happens.
func TruncateRightWithSuffix(text string, len int, suffix string) string {
	rs := make([]rune, 0, max(len, 0))
	i := 0
	for _, r := range text {
		if i >= len {
			return string(rs) + suffix
		}

		rs = append(rs, r)
		i++
	}

	return string(rs)
}
