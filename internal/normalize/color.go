package normalize

import (
	"regexp"
	"strings"
)

// Canonical color vocabulary.
const (
	Black   = "BLACK"
	White   = "WHITE"
	Blue    = "BLUE"
	Purple  = "PURPLE"
	Green   = "GREEN"
	Red     = "RED"
	Pink    = "PINK"
	Gold    = "GOLD"
	Desert  = "DESERT"
	Natural = "NATURAL"
	Brown   = "BROWN"
	Silver  = "SILVER"
	Orange  = "ORANGE"
)

// canonicalColors is ordered longest first so glued tokens split greedily.
var canonicalColors = []string{
	Natural, Purple, Desert, Silver, Orange, Black, White, Green,
	Brown, Blue, Pink, Gold, Red,
}

type emojiColor struct {
	glyph string
	name  string
}

// emojiColors covers the square/heart markers of ZN Cell and the circle
// markers of Rei das Caixas.
var emojiColors = []emojiColor{
	{"⬛", Black},
	{"⚫", Black},
	{"🖤", Black},
	{"⬜", White},
	{"⚪", White},
	{"🤍", White},
	{"🏳️", White},
	{"🏳", White},
	{"🟦", Blue},
	{"🔵", Blue},
	{"💙", Blue},
	{"🟪", Purple},
	{"🟣", Purple},
	{"💜", Purple},
	{"🟩", Green},
	{"🟢", Green},
	{"💚", Green},
	{"🟥", Red},
	{"🔴", Red},
	{"♥️", Red},
	{"♥", Red},
	{"❤️", Red},
	{"❤", Red},
	{"🩷", Pink},
	{"💗", Pink},
	{"🥇", Gold},
	{"🟡", Gold},
	{"💛", Gold},
	{"🐪", Desert},
	{"🩶", Natural},
	{"🟤", Brown},
	{"🟫", Brown},
	{"🟠", Orange},
	{"🟧", Orange},
}

var localizedColors = []struct {
	re   *regexp.Regexp
	name string
}{
	{wordPattern("preto", "preta", "grafite", "meia-noite", "midnight", "graphite"), Black},
	{wordPattern("branco", "branca", "estelar", "starlight"), White},
	{wordPattern("azul"), Blue},
	{wordPattern("roxo", "roxa", "lilás", "lilas"), Purple},
	{wordPattern("verde"), Green},
	{wordPattern("vermelho", "vermelha"), Red},
	{wordPattern("rosa", "rose", "rosé"), Pink},
	{wordPattern("dourado", "dourada"), Gold},
	{wordPattern("deserto"), Desert},
	{wordPattern("marrom"), Brown},
	{wordPattern("prata", "prateado", "prateada"), Silver},
	{wordPattern("laranja"), Orange},
}

var (
	reEmoji      = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{2190}-\x{21FF}\x{FE0F}\x{200D}\x{20E3}]`)
	reColorToken = regexp.MustCompile(`[A-Z]+`)
)

func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}])(` + strings.Join(quoted, "|") + `)([^\p{L}]|$)`)
}

// NormalizeColor maps a color fragment ("⬛", "Preto", "BLACKBLACK",
// "GREENBLUE GREEN", "Azul (vitrine)") to one canonical color name. When no
// canonical color is recognized the trimmed input is returned.
func NormalizeColor(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	found, cleaned := detectColors(trimmed, true)
	switch len(found) {
	case 0:
		return trimmed
	case 1:
		return found[0]
	}

	for _, c := range found {
		if strings.HasPrefix(cleaned, c) {
			return c
		}
	}
	return found[0]
}

// ExtractColors returns every distinct canonical color mentioned on a line,
// in order of appearance.
func ExtractColors(line string) []string {
	found, _ := detectColors(line, false)
	return found
}

func detectColors(text string, trimAnnotations bool) ([]string, string) {
	s := text
	for _, e := range emojiColors {
		s = strings.ReplaceAll(s, e.glyph, " "+e.name+" ")
	}
	for _, lc := range localizedColors {
		// Applied twice so adjacent words sharing a separator are both replaced.
		s = lc.re.ReplaceAllString(s, "${1}"+lc.name+"${3}")
		s = lc.re.ReplaceAllString(s, "${1}"+lc.name+"${3}")
	}
	s = reEmoji.ReplaceAllString(s, " ")
	if i := strings.IndexAny(s, ".("); trimAnnotations && i >= 0 {
		s = s[:i]
	}
	s = collapseSpaces(strings.ToUpper(s))

	var found []string
	seen := map[string]bool{}
	for _, token := range reColorToken.FindAllString(s, -1) {
		for _, c := range splitGlued(token) {
			if !seen[c] {
				seen[c] = true
				found = append(found, c)
			}
		}
	}
	return found, s
}

// splitGlued splits a token made only of canonical color names
// ("BLACKBLACK", "GREENBLUE") into its parts. Tokens with any other
// content yield nothing.
func splitGlued(token string) []string {
	if token == "" {
		return nil
	}
	for _, c := range canonicalColors {
		if !strings.HasPrefix(token, c) {
			continue
		}
		rest := token[len(c):]
		if rest == "" {
			return []string{c}
		}
		if tail := splitGlued(rest); tail != nil {
			return append([]string{c}, tail...)
		}
	}
	return nil
}
