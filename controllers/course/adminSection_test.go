package controllers_test

import (
	"fmt"
	"testing"

	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) seedCourse(t *testing.T) courseModels.Course {
	t.Helper()
	course := courseModels.Course{Title: "Go Basics", InstructorID: env.instructor.ID, IsPublished: true, Status: "PUBLISHED"}
	require.NoError(t, env.db.Create(&course).Error)
	return course
}

func (env *testEnv) sectionOrder(t *testing.T, courseID uint) map[uint]int {
	t.Helper()
	var sections []courseModels.Section
	require.NoError(t, env.db.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&sections).Error)
	order := make(map[uint]int, len(sections))
	for _, section := range sections {
		order[section.ID] = section.OrderIndex
	}
	return order
}

func TestSectionLifecycleKeepsOrderDense(t *testing.T) {
	env := setupTestEnv(t)
	course := env.seedCourse(t)
	base := fmt.Sprintf("/admin/course/%d", course.ID)

	// Create three sections; each lands at the end
	ids := make([]uint, 0, 3)
	for _, title := range []string{"Intro", "Middle", "Outro"} {
		status, envelope := env.request(t, "POST", base+"/section", env.instructorToken, fiber.Map{"title": title})
		require.Equal(t, fiber.StatusCreated, status)
		data := envelope["data"].(map[string]interface{})
		ids = append(ids, uint(data["ID"].(float64)))
		assert.Equal(t, float64(len(ids)), data["order_index"])
	}

	// Delete the middle one; the gap closes
	status, _ := env.request(t, "DELETE", fmt.Sprintf("%s/section/%d", base, ids[1]), env.instructorToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	order := env.sectionOrder(t, course.ID)
	assert.Equal(t, 1, order[ids[0]])
	assert.Equal(t, 2, order[ids[2]])

	// Reorder the remaining two
	status, _ = env.request(t, "PATCH", base+"/sections/reorder", env.instructorToken, fiber.Map{
		"ordered_ids": []uint{ids[2], ids[0]},
	})
	require.Equal(t, fiber.StatusOK, status)

	order = env.sectionOrder(t, course.ID)
	assert.Equal(t, 1, order[ids[2]])
	assert.Equal(t, 2, order[ids[0]])
}

func TestDeleteSectionBlockedByContent(t *testing.T) {
	env := setupTestEnv(t)
	course := env.seedCourse(t)

	section := courseModels.Section{CourseID: course.ID, Title: "Week 1", OrderIndex: 1}
	require.NoError(t, env.db.Create(&section).Error)
	lesson := courseModels.Lesson{SectionID: section.ID, CourseID: course.ID, Title: "L1", OrderIndex: 1}
	require.NoError(t, env.db.Create(&lesson).Error)

	status, envelope := env.request(t, "DELETE",
		fmt.Sprintf("/admin/course/%d/section/%d", course.ID, section.ID), env.instructorToken, nil)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "SECTION_HAS_CONTENT", envelope["code"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["lessons"])

	// Section untouched
	var kept courseModels.Section
	require.NoError(t, env.db.Where("id = ? AND is_deleted = ?", section.ID, false).First(&kept).Error)
}

func TestReorderSectionsRejectsPartialSets(t *testing.T) {
	env := setupTestEnv(t)
	course := env.seedCourse(t)

	sections := make([]courseModels.Section, 3)
	for i := range sections {
		sections[i] = courseModels.Section{CourseID: course.ID, Title: "S", OrderIndex: i + 1}
		require.NoError(t, env.db.Create(&sections[i]).Error)
	}

	status, envelope := env.request(t, "PATCH",
		fmt.Sprintf("/admin/course/%d/sections/reorder", course.ID), env.instructorToken, fiber.Map{
			"ordered_ids": []uint{sections[0].ID, sections[1].ID},
		})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SECTION_IDS", envelope["code"])

	// Order untouched
	order := env.sectionOrder(t, course.ID)
	for i, section := range sections {
		assert.Equal(t, i+1, order[section.ID])
	}
}

func TestInstructorCannotManageForeignCourse(t *testing.T) {
	env := setupTestEnv(t)

	course := courseModels.Course{Title: "Someone else's", InstructorID: env.instructor.ID + 100, IsPublished: true}
	require.NoError(t, env.db.Create(&course).Error)

	status, envelope := env.request(t, "POST",
		fmt.Sprintf("/admin/course/%d/section", course.ID), env.instructorToken, fiber.Map{"title": "Week 1"})
	require.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", envelope["code"])
}
