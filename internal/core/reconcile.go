package core

// Reconcile pairs each default-language row with the first row of every other
// language sharing its id. Entries follow the order of defaultRows; a language
// with no matching row is left out of the entry.
//
// languages must not contain the default language.
func Reconcile(table LanguageTable, defaultRows []Row, languages []string) []ReconciledEntry {
	// First occurrence of an id wins, as a linear scan would.
	index := make(map[string]map[string]Row, len(languages))
	for _, lang := range languages {
		byID := make(map[string]Row, len(table[lang]))
		for _, row := range table[lang] {
			if _, seen := byID[row.ID()]; !seen {
				byID[row.ID()] = row
			}
		}
		index[lang] = byID
	}

	entries := make([]ReconciledEntry, 0, len(defaultRows))
	for _, row := range defaultRows {
		entry := ReconciledEntry{Default: row, Translations: make(map[string]Row)}
		for _, lang := range languages {
			if match, ok := index[lang][row.ID()]; ok {
				entry.Translations[lang] = match
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
