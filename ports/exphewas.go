package ports

import (
	"context"

	"phewasview/domain/phewas"
)

// GeneResolver maps a free-text gene token to an Ensembl ID and display symbol.
// Implementations never return errors; ok is false on any failure.
type GeneResolver interface {
	ResolveGene(ctx context.Context, token string) (ensemblID, symbol string, ok bool)
}

// ResultFetcher retrieves association rows for one gene
type ResultFetcher interface {
	FetchResults(ctx context.Context, ensemblID string, subset phewas.Subset) ([]phewas.AssociationRow, error)
}

// CatalogSource retrieves the outcome reference table
type CatalogSource interface {
	FetchCatalog(ctx context.Context) (*phewas.Catalog, error)
}

// PhewasAPI is the full upstream surface
type PhewasAPI interface {
	GeneResolver
	ResultFetcher
	CatalogSource
}
