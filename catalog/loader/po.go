// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"maps"
	"slices"
	"strings"

	"github.com/leonelquinteros/gotext"

	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// poEscaper reverses the escaping gettext applies inside quoted strings.
var poEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

// parsePO loads translated messages keyed by msgid. Plural forms are joined
// with "|" so they read like a choice string.
func parsePO(b *builder, data []byte) {
	po := gotext.NewPo()
	po.Parse(data)

	translations := po.GetDomain().GetTranslations()
	src := string(data)
	lines := newLineIndex(data)

	ids := slices.SortedFunc(maps.Keys(translations), natsort.Compare)

	for _, id := range ids {
		tr := translations[id]
		if id == "" || tr == nil {
			continue
		}

		value := tr.Trs[0]
		if tr.PluralID != "" {
			value = joinPlurals(tr.Trs)
		}

		// Untranslated entries have only empty forms.
		if strings.Trim(value, "|") == "" {
			continue
		}

		b.set(id, value, findLine(src, lines, `msgid "`+poEscaper.Replace(id)+`"`))
	}
}

func joinPlurals(forms map[int]string) string {
	indexes := slices.Sorted(maps.Keys(forms))
	parts := make([]string, 0, len(indexes))

	for _, i := range indexes {
		parts = append(parts, forms[i])
	}

	return strings.Join(parts, "|")
}
