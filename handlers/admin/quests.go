// handlers/admin/quests.go - quest management for the admin console
package admin

import (
	"errors"
	"time"

	"pollquest/database"
	"pollquest/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuestRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	QuestType       string     `json:"quest_type"`
	Category        string     `json:"category"`
	RequirementType string     `json:"requirement_type"`
	Target          int        `json:"target"`
	PollCategory    string     `json:"poll_category"`
	Timeframe       string     `json:"timeframe"`
	PointReward     int        `json:"point_reward"`
	BadgeRewardID   *uint      `json:"badge_reward_id"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	MaxCompletions  int        `json:"max_completions"`
	SortOrder       int        `json:"sort_order"`
	IsActive        *bool      `json:"is_active"`
}

var validQuestTypes = map[string]bool{
	models.QuestTypePollParticipation: true,
	models.QuestTypePollCreation:      true,
	models.QuestTypeSocialReferral:    true,
}

var validCategories = map[string]bool{
	models.CategoryDaily:   true,
	models.CategoryWeekly:  true,
	models.CategoryMonthly: true,
	models.CategoryOneTime: true,
	models.CategorySpecial: true,
}

var validRequirements = map[string]bool{
	models.RequirementVoteCount:        true,
	models.RequirementPollCount:        true,
	models.RequirementReferralCount:    true,
	models.RequirementUniqueCategories: true,
	models.RequirementConsecutiveDays:  true,
}

func (r *QuestRequest) validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if !validQuestTypes[r.QuestType] {
		return errors.New("invalid quest_type")
	}
	if !validCategories[r.Category] {
		return errors.New("invalid category")
	}
	if !validRequirements[r.RequirementType] {
		return errors.New("invalid requirement_type")
	}
	if r.Target <= 0 {
		return errors.New("target must be positive")
	}
	if r.PointReward < 0 {
		return errors.New("point_reward cannot be negative")
	}
	return nil
}

// GetQuests returns all quests, including inactive ones.
// GET /api/admin/quests
func GetQuests(c *fiber.Ctx) error {
	db := database.GetDB()

	var quests []models.Quest
	if err := db.Preload("BadgeReward").
		Order("sort_order ASC, id ASC").
		Find(&quests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch quests"})
	}

	return c.JSON(fiber.Map{"success": true, "quests": quests, "total": len(quests)})
}

// CreateQuest creates a quest definition.
// POST /api/admin/quests
func CreateQuest(c *fiber.Ctx) error {
	var req QuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	quest := models.Quest{
		Title:           req.Title,
		Description:     req.Description,
		QuestType:       req.QuestType,
		Category:        req.Category,
		RequirementType: req.RequirementType,
		Target:          req.Target,
		PollCategory:    req.PollCategory,
		Timeframe:       req.Timeframe,
		PointReward:     req.PointReward,
		BadgeRewardID:   req.BadgeRewardID,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxCompletions:  req.MaxCompletions,
		SortOrder:       req.SortOrder,
		IsActive:        true,
	}
	if req.IsActive != nil {
		quest.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&quest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create quest"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "quest": quest})
}

// UpdateQuest edits a quest definition.
// PUT /api/admin/quests/:id
func UpdateQuest(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quest id"})
	}

	var req QuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var quest models.Quest
	if err := db.First(&quest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Quest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch quest"})
	}

	quest.Title = req.Title
	quest.Description = req.Description
	quest.QuestType = req.QuestType
	quest.Category = req.Category
	quest.RequirementType = req.RequirementType
	quest.Target = req.Target
	quest.PollCategory = req.PollCategory
	quest.Timeframe = req.Timeframe
	quest.PointReward = req.PointReward
	quest.BadgeRewardID = req.BadgeRewardID
	quest.StartsAt = req.StartsAt
	quest.EndsAt = req.EndsAt
	quest.MaxCompletions = req.MaxCompletions
	quest.SortOrder = req.SortOrder
	if req.IsActive != nil {
		quest.IsActive = *req.IsActive
	}

	if err := db.Save(&quest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update quest"})
	}

	return c.JSON(fiber.Map{"success": true, "quest": quest})
}

// DeleteQuest deactivates a quest. Progress rows reference quests, so rows
// are never hard-deleted once any user has progress.
// DELETE /api/admin/quests/:id
func DeleteQuest(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quest id"})
	}

	db := database.GetDB()
	var quest models.Quest
	if err := db.First(&quest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Quest not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch quest"})
	}

	var progressCount int64
	db.Model(&models.UserQuestProgress{}).Where("quest_id = ?", quest.ID).Count(&progressCount)

	if progressCount > 0 {
		if err := db.Model(&quest).Update("is_active", false).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to deactivate quest"})
		}
		return c.JSON(fiber.Map{"success": true, "deactivated": true})
	}

	if err := db.Delete(&quest).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete quest"})
	}

	return c.JSON(fiber.Map{"success": true, "deleted": true})
}
