package utils

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInvalidOrderIDs is returned when a reorder request does not supply an
// exact permutation of the current sibling IDs.
var ErrInvalidOrderIDs = errors.New("supplied ids do not match the current sibling set")

// Sibling lists (sections of a course, lessons of a section, questions of a
// quiz, ...) keep a dense 1..N order_index. These helpers are the only code
// that mutates order_index; delete/reorder callers must run them inside one
// transaction so a partial failure cannot leave gaps or duplicates.

// NextOrderIndex returns max(order_index)+1 within the parent scope
func NextOrderIndex(db *gorm.DB, model interface{}, scopeColumn string, scopeID uint) int {
	var max int
	db.Model(model).
		Where(scopeColumn+" = ? AND is_deleted = ?", scopeID, false).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max)
	return max + 1
}

// CompactOrderAfter shifts every sibling past the removed position down by one
func CompactOrderAfter(tx *gorm.DB, model interface{}, scopeColumn string, scopeID uint, removedIndex int) error {
	return tx.Model(model).
		Where(scopeColumn+" = ? AND is_deleted = ? AND order_index > ?", scopeID, false, removedIndex).
		UpdateColumn("order_index", gorm.Expr("order_index - 1")).Error
}

// ReorderSiblings assigns order_index = position+1 following orderedIDs.
// The list must contain every current sibling exactly once; otherwise
// ErrInvalidOrderIDs is returned and no row is touched.
func ReorderSiblings(tx *gorm.DB, model interface{}, scopeColumn string, scopeID uint, orderedIDs []uint) error {
	var current []uint
	if err := tx.Model(model).
		Where(scopeColumn+" = ? AND is_deleted = ?", scopeID, false).
		Pluck("id", &current).Error; err != nil {
		return err
	}

	if len(current) != len(orderedIDs) {
		return ErrInvalidOrderIDs
	}
	existing := make(map[uint]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	seen := make(map[uint]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !existing[id] || seen[id] {
			return ErrInvalidOrderIDs
		}
		seen[id] = true
	}

	for position, id := range orderedIDs {
		if err := tx.Model(model).
			Where("id = ?", id).
			UpdateColumn("order_index", position+1).Error; err != nil {
			return err
		}
	}
	return nil
}
