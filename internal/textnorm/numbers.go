package textnorm

import "strconv"

var countWords = map[string]int{
	"um":     1,
	"uma":    1,
	"dois":   2,
	"duas":   2,
	"tres":   3,
	"quatro": 4,
	"cinco":  5,
	"seis":   6,
	"sete":   7,
	"oito":   8,
	"nove":   9,
	"dez":    10,
}

// ParseCount reads a small cardinal written as digits or as a Portuguese
// number word ("um" to "dez"). The word must already be normalized.
func ParseCount(word string) (int, bool) {
	if n, ok := countWords[word]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// CountPattern is a regexp fragment matching the inputs ParseCount accepts.
const CountPattern = `\d{1,3}|uma|um|duas|dois|tres|quatro|cinco|seis|sete|oito|nove|dez`
