package controllers

import (
	"context"

	"lms/database"
	courseModels "lms/models/course"
	"lms/utils"
)

// SectionNode is one section with its ordered content, as served to clients
type SectionNode struct {
	Section     courseModels.Section      `json:"section"`
	Lessons     []courseModels.Lesson     `json:"lessons"`
	Quizzes     []courseModels.Quiz       `json:"quizzes"`
	Assignments []courseModels.Assignment `json:"assignments"`
}

// loadCourseStructure builds the section tree of a course, ordered by
// order_index at every level. Reads through the cache; content writes under
// the course invalidate the whole namespace.
func loadCourseStructure(courseID uint) ([]SectionNode, error) {
	ctx := context.Background()
	cacheKey := utils.CourseCachePrefix(courseID) + "structure"

	var cached []SectionNode
	if utils.CacheGetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	db := database.Database.Db

	var sections []courseModels.Section
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&sections).Error; err != nil {
		return nil, err
	}

	nodes := make([]SectionNode, 0, len(sections))
	for _, section := range sections {
		node := SectionNode{Section: section}
		if err := db.Where("section_id = ? AND is_deleted = ?", section.ID, false).
			Order("order_index asc").Find(&node.Lessons).Error; err != nil {
			return nil, err
		}
		if err := db.Where("section_id = ? AND is_deleted = ?", section.ID, false).
			Order("order_index asc").Find(&node.Quizzes).Error; err != nil {
			return nil, err
		}
		if err := db.Where("section_id = ? AND is_deleted = ?", section.ID, false).
			Order("order_index asc").Find(&node.Assignments).Error; err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	utils.CacheSetJSON(ctx, cacheKey, nodes, 0)
	return nodes, nil
}
