package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Language é o idioma em que a saída do modelo deve vir.
type Language string

const (
	Japanese Language = "ja"
	English  Language = "en"
)

// DefaultLanguage é usado quando o cliente não informa o idioma.
const DefaultLanguage = Japanese

var languageMatcher = language.NewMatcher([]language.Tag{language.Japanese, language.English})

// ParseLanguage aceita qualquer tag BCP 47 ("en", "en-US", "ja-JP"...).
// Só inglês é reconhecido como inglês; o resto cai em japonês.
func ParseLanguage(s string) Language {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	if idx == 1 {
		return English
	}
	return Japanese
}

// Directive é a frase anexada à instrução para forçar o idioma da saída.
func (l Language) Directive() string {
	if l == English {
		return "Output language: English. Write the entire response in English."
	}
	return "出力言語: 日本語。回答はすべて日本語で書いてください。"
}
