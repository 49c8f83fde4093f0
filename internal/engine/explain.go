package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

const (
	maxDefinitions    = 20
	maxRelatedSymbols = 10
	maxExplainUsages  = 10
)

// Explain returns every definition of a symbol with its signature and doc
// comment, related symbols from the same files, and a sample of usages.
func (e *Engine) Explain(ctx context.Context, symbol string) (*types.SymbolExplanation, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}

	rows, err := e.store.FindSymbolsByName(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: find symbol: %v", types.ErrInternal, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: symbol %q", types.ErrPathNotFound, symbol)
	}

	explanation := &types.SymbolExplanation{Name: symbol, Found: true}
	related := make(map[string]bool)
	seenFiles := make(map[int64]bool)

	for i, row := range rows {
		if i >= maxDefinitions {
			break
		}
		f, err := e.store.GetFileByID(ctx, row.FileID)
		if err != nil {
			continue
		}
		explanation.Definitions = append(explanation.Definitions, types.SymbolDefinition{
			Path:       f.Path,
			Kind:       row.Kind,
			StartLine:  row.StartLine,
			EndLine:    row.EndLine,
			Signature:  row.Signature,
			DocComment: row.DocComment,
		})

		if seenFiles[row.FileID] {
			continue
		}
		seenFiles[row.FileID] = true
		siblings, err := e.store.SymbolsByFile(ctx, row.FileID)
		if err != nil {
			continue
		}
		for _, sib := range siblings {
			if sib.Name != symbol {
				related[sib.Name] = true
			}
		}
	}

	refs, err := e.FindRefs(ctx, symbol, refsLimitCap)
	if err == nil {
		for _, ref := range refs {
			if ref.Role != types.RoleUsage {
				continue
			}
			explanation.UsageCount++
			if len(explanation.Usages) < maxExplainUsages {
				explanation.Usages = append(explanation.Usages, ref)
			}
		}
	}

	names := make([]string, 0, len(related))
	for name := range related {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxRelatedSymbols {
		names = names[:maxRelatedSymbols]
	}
	explanation.Related = names

	return explanation, nil
}
