package encoding

import "strings"

// mojibake maps UTF-8 sequences that were decoded as Windows-1252 back to
// the character that was meant. Longer sequences come first so the replacer
// never splits one of them.
var mojibake = []string{
	"â‚¬", "€",
	"â€ž", "„",
	"â€œ", "“",
	"â€\u201c", "–",
	"â€™", "’",
	"Ã„", "Ä",
	"Ã–", "Ö",
	"Ãœ", "Ü",
	"ÃŸ", "ß",
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã¼", "ü",
	"Ã©", "é",
	"Ã¨", "è",
	"Ãª", "ê",
	"Ã¡", "á",
	"Ã¢", "â",
	"Ã§", "ç",
	"Ã³", "ó",
	"Ã²", "ò",
	"Ã±", "ñ",
	"Ã\u00a0", "à",
	"Ã‰", "É",
	"Â°", "°",
	"Â§", "§",
	"Â\u00a0", " ",
}

var mojibakeReplacer = strings.NewReplacer(mojibake...)

// Repair fixes accented characters that were mangled by a wrong decoding
// step somewhere between the bank and us.
func Repair(s string) string {
	if !strings.ContainsAny(s, "ÃâÂ") {
		return s
	}

	return mojibakeReplacer.Replace(s)
}
