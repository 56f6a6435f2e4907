package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"recipebook/domain"
	"recipebook/entities"
	"recipebook/internal/utils"

	"gorm.io/gorm"
)

// SeedIngredients replaces the whole ingredient reference dataset with the
// rows of a CSV file (name,measurement_unit). The wipe and the inserts run in
// one transaction, so a malformed row leaves the old dataset in place.
func SeedIngredients(db *gorm.DB, path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	ingredients := make([]entities.Ingredient, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return fmt.Errorf("ingredient row %d: expected 2 columns, got %d", i+1, len(row))
		}
		seed := domain.IngredientSeedRow{Name: row[0], MeasurementUnit: row[1]}
		if err := utils.Validate.Struct(seed); err != nil {
			return fmt.Errorf("ingredient row %d: %w", i+1, err)
		}
		ingredients = append(ingredients, entities.Ingredient{
			Name:            seed.Name,
			MeasurementUnit: seed.MeasurementUnit,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&entities.Ingredient{}).Error; err != nil {
			return err
		}
		return tx.Create(&ingredients).Error
	})
}

// SeedTags replaces the tag dataset with the rows of a CSV file
// (name,color,slug). Same transactional replace-all semantics as
// SeedIngredients.
func SeedTags(db *gorm.DB, path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	tags := make([]entities.Tag, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return fmt.Errorf("tag row %d: expected 3 columns, got %d", i+1, len(row))
		}
		seed := domain.TagSeedRow{Name: row[0], Color: row[1], Slug: row[2]}
		if err := utils.Validate.Struct(seed); err != nil {
			return fmt.Errorf("tag row %d: %w", i+1, err)
		}
		tags = append(tags, entities.Tag{
			Name:  seed.Name,
			Color: seed.Color,
			Slug:  seed.Slug,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&entities.Tag{}).Error; err != nil {
			return err
		}
		return tx.Create(&tags).Error
	})
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty dataset", path)
	}
	return rows, nil
}
