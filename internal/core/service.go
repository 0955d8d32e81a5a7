package core

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
	"github.com/penyaskito/dashboard-initiative/internal/id"
	"github.com/penyaskito/dashboard-initiative/internal/logging"
	"github.com/penyaskito/dashboard-initiative/internal/state"
)

// Options configure a Service.
type Options struct {
	ModulePath        string   // Directory holding default_content/
	DefaultLanguage   string   // Language entities are created in
	Languages         []string // Enabled languages, including the default
	BodyFormat        string
	AuthorRole        string
	AuthorEmailDomain string
	RegistryKey       string        // State key of the provenance registry
	Targets           []Target      // Imported in order by ImportContent
	MaxWait           time.Duration // How long a run waits for a running one
}

func (o *Options) applyDefaults() {
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = "en"
	}
	if len(o.Languages) == 0 {
		o.Languages = []string{o.DefaultLanguage}
	}
	if o.BodyFormat == "" {
		o.BodyFormat = "basic_html"
	}
	if o.AuthorRole == "" {
		o.AuthorRole = "author"
	}
	if o.AuthorEmailDomain == "" {
		o.AuthorEmailDomain = "example.com"
	}
	if o.RegistryKey == "" {
		o.RegistryKey = "demo_dashboard_content_uuids"
	}
	if len(o.Targets) == 0 {
		o.Targets = DefaultTargets()
	}
}

// LanguagesDir returns <module>/default_content/languages.
func (o Options) LanguagesDir() string {
	return filepath.Join(o.ModulePath, "default_content", "languages")
}

// Service imports demo content and deletes what it imported.
type Service struct {
	opts       Options
	entities   entity.Manager
	provenance *Provenance
	authors    *AuthorResolver
	paths      *NodePathIndex
	structurer *Structurer
	loader     *ContentLoader
	guard      *RunGuard
}

// NewService wires the import pipeline over an entity store and a state store.
func NewService(entities entity.Manager, st state.Store, opts Options) (*Service, error) {
	opts.applyDefaults()
	if opts.ModulePath == "" {
		return nil, fmt.Errorf("new service: module path is required")
	}
	if !slices.Contains(opts.Languages, opts.DefaultLanguage) {
		return nil, fmt.Errorf("new service: languages %v do not include default %q", opts.Languages, opts.DefaultLanguage)
	}

	users, err := entities.Storage(entity.TypeUser)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	provenance := NewProvenance(st, opts.RegistryKey)
	authors := NewAuthorResolver(users, provenance, opts.AuthorRole, opts.AuthorEmailDomain)
	paths := NewNodePathIndex()

	return &Service{
		opts:       opts,
		entities:   entities,
		provenance: provenance,
		authors:    authors,
		paths:      paths,
		structurer: NewStructurer(StructurerOptions{
			LanguagesDir:    opts.LanguagesDir(),
			DefaultLanguage: opts.DefaultLanguage,
			BodyFormat:      opts.BodyFormat,
		}, authors, paths),
		loader: NewContentLoader(opts.LanguagesDir(), opts.Languages),
		guard:  NewRunGuard(opts.MaxWait),
	}, nil
}

// Targets returns the configured import targets in order.
func (s *Service) Targets() []Target {
	return slices.Clone(s.opts.Targets)
}

func (s *Service) begin(ctx context.Context) (context.Context, string, error) {
	runID, err := id.Generate("run")
	if err != nil {
		return ctx, "", err
	}
	if err := s.guard.Acquire(ctx, runID); err != nil {
		return ctx, "", err
	}
	return logging.ContextWithRunID(ctx, runID), runID, nil
}

// ImportContent imports every configured target in order (articles, then
// pages). It stops at the first failure; entities created before it stay in
// place and remain tracked for deletion.
func (s *Service) ImportContent(ctx context.Context) (ImportResult, error) {
	ctx, runID, err := s.begin(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	defer s.guard.Release()

	start := time.Now()
	authorsBefore := s.authors.Created()
	result := ImportResult{RunID: runID}
	logger := logging.FromContext(ctx)
	logger.Info("import started", "targets", len(s.opts.Targets))

	for _, target := range s.opts.Targets {
		kr, err := s.importTarget(ctx, target)
		result.Kinds = append(result.Kinds, kr)
		if err != nil {
			result.AuthorsCreated = s.authors.Created() - authorsBefore
			result.Duration = time.Since(start)
			logger.Error("import failed", "target", target.String(), "error", err)
			return result, err
		}
	}

	result.AuthorsCreated = s.authors.Created() - authorsBefore
	result.Duration = time.Since(start)
	logger.Info("import complete", "authors_created", result.AuthorsCreated, "duration", result.Duration)
	return result, nil
}

// ImportOne imports a single entity type and bundle.
func (s *Service) ImportOne(ctx context.Context, entityType string, kind Kind) (KindResult, error) {
	ctx, _, err := s.begin(ctx)
	if err != nil {
		return KindResult{}, err
	}
	defer s.guard.Release()

	return s.importTarget(ctx, Target{EntityType: entityType, Kind: kind})
}

func (s *Service) importTarget(ctx context.Context, target Target) (KindResult, error) {
	result := KindResult{Target: target}
	logger := logging.WithFields(ctx, "entity_type", target.EntityType, "bundle", target.Kind)

	def, ok := Get(target.Kind)
	if !ok || def.EntityType != target.EntityType {
		return result, fmt.Errorf("import %s: %w", target, ErrUnknownKind)
	}
	storage, err := s.entities.Storage(target.EntityType)
	if err != nil {
		return result, fmt.Errorf("import %s: %w", target, err)
	}

	table, found, err := s.loader.Load(target.SourcePath())
	if err != nil {
		return result, fmt.Errorf("import %s: %w", target, err)
	}
	result.Languages = found

	defaultRows, ok := table[s.opts.DefaultLanguage]
	if !ok {
		result.Skipped = true
		logger.Info("no default language file, nothing to import", "langcode", s.opts.DefaultLanguage)
		return result, nil
	}

	translated := slices.DeleteFunc(slices.Clone(found), func(lang string) bool {
		return lang == s.opts.DefaultLanguage
	})
	for _, lang := range found {
		if rows := table[lang]; len(rows) > 0 {
			if err := ValidateHeaders(rows[0].Columns(), def.Columns); err != nil {
				return result, fmt.Errorf("import %s (%s): %w", target, lang, err)
			}
		}
	}

	for _, entry := range Reconcile(table, defaultRows, translated) {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import %s: %w", target, err)
		}

		rec, err := s.structurer.Structure(ctx, target.Kind, entry.Default, s.opts.DefaultLanguage)
		if err != nil {
			return result, fmt.Errorf("import %s: %w", target, err)
		}
		e, err := storage.Create(rec.Values())
		if err != nil {
			return result, fmt.Errorf("import %s row %q: %w", target, entry.Default.ID(), err)
		}
		if err := storage.Save(ctx, e); err != nil {
			return result, fmt.Errorf("save %s row %q: %w", target, entry.Default.ID(), err)
		}
		if err := s.provenance.Record(ctx, map[string]string{e.UUID(): target.EntityType}); err != nil {
			return result, err
		}
		result.Created++

		for _, lang := range translated {
			row, ok := entry.Translations[lang]
			if !ok {
				continue
			}
			trec, err := s.structurer.Structure(ctx, target.Kind, row, lang)
			if err != nil {
				return result, fmt.Errorf("import %s: %w", target, err)
			}
			if err := e.AddTranslation(lang, trec.Values()); err != nil {
				return result, err
			}
			if err := storage.Save(ctx, e); err != nil {
				return result, fmt.Errorf("save %s translation of %s %d: %w", lang, target, e.ID(), err)
			}
			result.Translations++
		}

		logger.Debug("entity imported", "source_id", entry.Default.ID(), "id", e.ID(),
			"translations", len(entry.Translations))
	}

	logger.Info("import finished", "created", result.Created, "translations", result.Translations,
		"languages", found)
	return result, nil
}

// DeleteImportedContent deletes every entity recorded by earlier imports.
// Running it again after success is a no-op.
func (s *Service) DeleteImportedContent(ctx context.Context) (DeleteResult, error) {
	ctx, runID, err := s.begin(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	defer s.guard.Release()

	start := time.Now()
	result, err := s.provenance.DeleteAll(ctx, s.entities)
	result.RunID = runID
	result.Duration = time.Since(start)
	if err != nil {
		logging.FromContext(ctx).Error("delete failed", "error", err)
		return result, err
	}
	logging.FromContext(ctx).Info("delete complete", "tracked", result.Tracked, "missing", result.Missing)
	return result, nil
}

// Tracked returns the provenance registry (uuid to entity type).
func (s *Service) Tracked(ctx context.Context) (map[string]string, error) {
	return s.provenance.Tracked(ctx)
}

// TrackedCounts returns the number of tracked entities per entity type.
func (s *Service) TrackedCounts(ctx context.Context) (map[string]int, error) {
	return s.provenance.Counts(ctx)
}

// NodePath returns the slug recorded for a source row during this process's
// imports. ok is false for rows never structured.
func (s *Service) NodePath(langcode string, kind Kind, sourceID string) (string, bool) {
	return s.paths.Lookup(langcode, kind, sourceID)
}

// ResolvePath returns the slug of a source row. Rows structured by this
// process come from the path index; any other row is read from its language
// file without importing anything. ok is false when the row does not exist.
func (s *Service) ResolvePath(langcode string, kind Kind, sourceID string) (slug string, ok bool, err error) {
	if slug, ok := s.paths.Lookup(langcode, kind, sourceID); ok {
		return slug, true, nil
	}

	def, found := Get(kind)
	if !found {
		return "", false, fmt.Errorf("resolve path %s: %w", kind, ErrUnknownKind)
	}
	if !slices.Contains(s.opts.Languages, langcode) {
		return "", false, nil
	}

	target := Target{EntityType: def.EntityType, Kind: kind}
	rows, _, err := ReadTable(filepath.Join(s.opts.LanguagesDir(), langcode, filepath.FromSlash(target.SourcePath())))
	if err != nil {
		return "", false, fmt.Errorf("resolve path %s: %w", target, err)
	}
	for _, row := range rows {
		if row.ID() == sourceID {
			return row.Get("slug"), true, nil
		}
	}
	return "", false, nil
}

// RunStatus reports the run currently holding the guard, if any.
func (s *Service) RunStatus() RunStatus {
	return s.guard.Status()
}

// WaitForRuns blocks until the running import or delete finishes.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.guard.WaitForDrain(ctx)
}
