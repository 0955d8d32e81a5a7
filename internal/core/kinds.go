package core

import "github.com/penyaskito/dashboard-initiative/internal/entity"

// contentColumns are the columns read by the built-in node kinds.
var contentColumns = []FieldSpec{
	{Name: "id", Type: FieldText, Required: true},
	{Name: "title", Type: FieldText, Required: true},
	{Name: "status", Type: FieldBool, Required: true},
	{Name: "body", Type: FieldText},
	{Name: "slug", Type: FieldText},
	{Name: "author", Type: FieldText},
}

func init() {
	Register(KindDefinition{
		Kind:       KindArticle,
		EntityType: entity.TypeNode,
		Label:      "Articles",
		Columns:    contentColumns,
		Structure:  structureArticle,
	})
	Register(KindDefinition{
		Kind:       KindPage,
		EntityType: entity.TypeNode,
		Label:      "Pages",
		Columns:    contentColumns,
		Structure:  structurePage,
	})
}

// DefaultTargets lists what a full import creates, in order.
func DefaultTargets() []Target {
	return []Target{
		{EntityType: entity.TypeNode, Kind: KindArticle},
		{EntityType: entity.TypeNode, Kind: KindPage},
	}
}
