package importer

import (
	"context"
	"strings"

	"github.com/nikbrunner/shelf/internal/backend"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/validation"
)

// Summary reports what an import did.
type Summary struct {
	Added       int
	Duplicates  int // URL already stored, or repeated in the file
	Invalid     int
	Collections int
}

// Importer loads parsed documents into a backend.
type Importer struct {
	backend  backend.Backend
	validate *validation.Validator
	log      logger.Logger
}

// New creates an Importer writing to b.
func New(b backend.Backend, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{backend: b, validate: validation.New(), log: log}
}

// Import creates every new bookmark of doc and one collection per folder
// holding the bookmarks directly inside it. Bookmarks whose URL is already
// stored are not duplicated but still join their folder's collection.
// Invalid entries are skipped and counted; a backend failure aborts.
func (im *Importer) Import(ctx context.Context, doc *Document) (Summary, error) {
	var summary Summary

	existing, err := im.backend.ListBookmarks(ctx)
	if err != nil {
		return summary, domainerrors.AsTransport("list bookmarks", err)
	}
	byURL := make(map[string]string, len(existing))
	for _, b := range existing {
		byURL[urlKey(b.URL)] = b.ID
	}

	members := make(map[string][]string)
	for _, entry := range doc.Entries {
		if err := im.validate.Draft(entry.Draft); err != nil {
			im.log.Debug("skipping invalid entry", logger.String("url", entry.Draft.URL), logger.Error(err))
			summary.Invalid++
			continue
		}

		key := urlKey(entry.Draft.URL)
		id, ok := byURL[key]
		if ok {
			summary.Duplicates++
		} else {
			created, err := im.backend.CreateBookmark(ctx, entry.Draft)
			if err != nil {
				return summary, domainerrors.AsTransport("create bookmark", err)
			}
			id = created.ID
			byURL[key] = id
			summary.Added++
		}
		for _, name := range entry.Collections {
			members[name] = append(members[name], id)
		}
	}

	for _, name := range doc.Collections {
		if _, err := im.backend.CreateCollection(ctx, name, model.UniqueIDs(members[name])); err != nil {
			return summary, domainerrors.AsTransport("create collection "+name, err)
		}
		summary.Collections++
	}

	im.log.Info("import finished",
		logger.Int("added", summary.Added),
		logger.Int("duplicates", summary.Duplicates),
		logger.Int("invalid", summary.Invalid),
		logger.Int("collections", summary.Collections))
	return summary, nil
}

func urlKey(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
