package strutils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var englishPrinter = message.NewPrinter(language.English)

// FormatThousands renders n with a comma between every group of three digits, e.g. 1,234,567
func FormatThousands(n int64) string {
	return englishPrinter.Sprintf("%d", n)
}
