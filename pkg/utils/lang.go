package utils

import (
	"github.com/abadojack/whatlanggo"
)

var whatLangOpts = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Deu: true,
		whatlanggo.Fra: true,
		whatlanggo.Spa: true,
		whatlanggo.Cmn: true,
	},
}

// WhatLang guesses the language of a user question so the generation
// oracle can be asked to answer in kind.
func WhatLang(query string) string {
	info := whatlanggo.DetectWithOptions(query, whatLangOpts)
	return info.Lang.String()
}
