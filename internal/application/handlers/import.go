package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/kinship/internal/domain/services"
	"github.com/ersonp/kinship/internal/infrastructure/parsers"
)

// ImportHandler handles importing persons and relationships from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "csv", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // How to handle duplicate relationships
}

// Handle imports a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	doc, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	return h.service.Import(ctx, doc, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	})
}
