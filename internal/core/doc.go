// Package core imports multilingual demo content from CSV files into an
// entity store and can remove everything it imported.
//
// # Source layout
//
// Content lives under <module>/default_content/languages/<langcode>/. Each
// import target reads <entity type>/<bundle>.csv in every enabled language.
// Article bodies are separate files in article_body/.
//
// # Pipeline
//
//  1. [ContentLoader] reads one table per language; missing files are skipped.
//  2. [Reconcile] pairs default-language rows with translated rows by the id column.
//  3. [Structurer] turns each row into a [ContentRecord] using the strategy
//     registered for its [Kind] (see [Register]).
//  4. [Service] creates the entity in the default language, records its uuid
//     with [Provenance], then attaches and saves each translation.
//
// Authors named in rows are resolved by [AuthorResolver], which creates an
// account on first reference and tracks it like any other imported entity.
//
// # Kind Registry
//
// Kinds are registered at init time:
//
//	core.Register(core.KindDefinition{
//	    Kind:       "event",
//	    EntityType: entity.TypeNode,
//	    Columns:    []core.FieldSpec{{Name: "id", Required: true}},
//	    Structure:  structureEvent,
//	})
//
// A kind without a registration is rejected with [ErrUnknownKind].
package core
