package importer

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/utils/validation"
)

// ImportFilters loads the taxonomy feed: an array of
// {name: <table key>, value: [{id?, name}]} wrappers. Feed ids are
// preserved exactly: downstream entities reference taxonomy rows by these
// ids, so a re-run must never reassign them.
func (imp *Importer) ImportFilters(ctx context.Context, path string) (Stats, error) {
	items, err := readFeed(path)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = imp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockImports(tx); err != nil {
			return err
		}

		for _, item := range items {
			table, known := taxonomyTables[stringAt(item, "name")]
			values, isList := item["value"].([]any)
			if !known || !isList {
				stats.Skipped++
				continue
			}

			for _, v := range values {
				vm, ok := v.(map[string]any)
				if !ok {
					stats.Skipped++
					continue
				}
				name := validation.SanitizeString(stringAt(vm, "name"))
				if name == "" {
					stats.Skipped++
					continue
				}

				var id uint
				if p := uintAt(vm, "id"); p != nil {
					id = *p
				}

				created, err := upsertTaxonomy(tx, table, id, name)
				if err != nil {
					return err
				}
				if created {
					stats.Created++
				} else {
					stats.Updated++
				}
			}
		}
		return nil
	})
	return stats, err
}

// upsertTaxonomy creates or updates one lookup row. With an id: update the
// name of the existing row, or create the row under that exact id. Without
// one: find-or-create by name.
func upsertTaxonomy(tx *gorm.DB, table string, id uint, name string) (bool, error) {
	var row taxonomyRow

	if id != 0 {
		err := tx.Table(table).Where("id = ?", id).Take(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return true, tx.Table(table).Create(map[string]any{"id": id, "name": name}).Error
		case err != nil:
			return false, err
		}
		if row.Name != name {
			return false, tx.Table(table).Where("id = ?", id).Update("name", name).Error
		}
		return false, nil
	}

	err := tx.Table(table).Where("name = ?", name).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true, tx.Table(table).Create(map[string]any{"name": name}).Error
	case err != nil:
		return false, err
	}
	return false, nil
}
