package core

import "path/filepath"

// ContentLoader reads one logical content file in every enabled language.
type ContentLoader struct {
	languagesDir string
	languages    []string
}

// NewContentLoader reads tables under languagesDir/<lang>/.
func NewContentLoader(languagesDir string, languages []string) *ContentLoader {
	return &ContentLoader{languagesDir: languagesDir, languages: languages}
}

// Load returns the rows found for relPath in each language, plus the
// languages whose file exists, in configured order. Missing files are skipped;
// other read errors abort the load.
func (l *ContentLoader) Load(relPath string) (LanguageTable, []string, error) {
	table := make(LanguageTable)
	var found []string

	for _, lang := range l.languages {
		rows, ok, err := ReadTable(filepath.Join(l.languagesDir, lang, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		table[lang] = rows
		found = append(found, lang)
	}

	return table, found, nil
}
