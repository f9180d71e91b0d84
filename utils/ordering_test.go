package utils

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func orderingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&courseModels.Section{}))
	return db
}

func seedSections(t *testing.T, db *gorm.DB, courseID uint, count int) []courseModels.Section {
	t.Helper()
	sections := make([]courseModels.Section, 0, count)
	for i := 0; i < count; i++ {
		section := courseModels.Section{
			CourseID:   courseID,
			Title:      "Section",
			OrderIndex: NextOrderIndex(db, &courseModels.Section{}, "course_id", courseID),
		}
		require.NoError(t, db.Create(&section).Error)
		sections = append(sections, section)
	}
	return sections
}

func currentOrder(t *testing.T, db *gorm.DB, courseID uint) []int {
	t.Helper()
	var indexes []int
	require.NoError(t, db.Model(&courseModels.Section{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("id asc").Pluck("order_index", &indexes).Error)
	return indexes
}

func TestNextOrderIndexAppends(t *testing.T) {
	db := orderingTestDB(t)

	assert.Equal(t, 1, NextOrderIndex(db, &courseModels.Section{}, "course_id", 1))

	seedSections(t, db, 1, 3)
	assert.Equal(t, []int{1, 2, 3}, currentOrder(t, db, 1))
	assert.Equal(t, 4, NextOrderIndex(db, &courseModels.Section{}, "course_id", 1))

	// Scoped per parent
	assert.Equal(t, 1, NextOrderIndex(db, &courseModels.Section{}, "course_id", 2))
}

func TestCompactOrderAfterDelete(t *testing.T) {
	db := orderingTestDB(t)
	sections := seedSections(t, db, 1, 4)

	// Remove the second section and close the gap
	removed := sections[1]
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&removed).UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return CompactOrderAfter(tx, &courseModels.Section{}, "course_id", 1, removed.OrderIndex)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, currentOrder(t, db, 1))
}

func TestReorderSiblings(t *testing.T) {
	db := orderingTestDB(t)
	sections := seedSections(t, db, 1, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReorderSiblings(tx, &courseModels.Section{}, "course_id", 1,
			[]uint{sections[2].ID, sections[0].ID, sections[1].ID})
	})
	require.NoError(t, err)

	// sections[2] moved to the front
	assert.Equal(t, []int{2, 3, 1}, currentOrder(t, db, 1))
}

func TestReorderSiblingsRejectsBadSets(t *testing.T) {
	db := orderingTestDB(t)
	sections := seedSections(t, db, 1, 3)

	cases := map[string][]uint{
		"missing id":   {sections[0].ID, sections[1].ID},
		"foreign id":   {sections[0].ID, sections[1].ID, 999},
		"duplicate id": {sections[0].ID, sections[1].ID, sections[1].ID},
		"empty":        {},
	}

	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			err := db.Transaction(func(tx *gorm.DB) error {
				return ReorderSiblings(tx, &courseModels.Section{}, "course_id", 1, ids)
			})
			assert.ErrorIs(t, err, ErrInvalidOrderIDs)

			// Order untouched
			assert.Equal(t, []int{1, 2, 3}, currentOrder(t, db, 1))
		})
	}
}
