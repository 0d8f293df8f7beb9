// handlers/admin/catalog.go - shop, badge and milestone management
package admin

import (
	"errors"

	"pollquest/database"
	"pollquest/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Shop items

type ShopItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Cost        int    `json:"cost"`
	Stock       *int   `json:"stock"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// GetShopItems returns the full catalog, including inactive items.
// GET /api/admin/shop
func GetShopItems(c *fiber.Ctx) error {
	var items []models.ShopItem
	if err := database.GetDB().Order("sort_order ASC, id ASC").Find(&items).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch shop items"})
	}
	return c.JSON(fiber.Map{"success": true, "items": items, "total": len(items)})
}

// CreateShopItem adds a catalog entry.
// POST /api/admin/shop
func CreateShopItem(c *fiber.Ctx) error {
	var req ShopItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Cost <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "name and a positive cost are required"})
	}

	item := models.ShopItem{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Cost:        req.Cost,
		Stock:       -1,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if req.Stock != nil {
		item.Stock = *req.Stock
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&item).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create shop item"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "item": item})
}

// UpdateShopItem edits a catalog entry.
// PUT /api/admin/shop/:id
func UpdateShopItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item id"})
	}

	var req ShopItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Cost <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "name and a positive cost are required"})
	}

	db := database.GetDB()
	var item models.ShopItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Shop item not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch shop item"})
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Icon = req.Icon
	item.Cost = req.Cost
	item.SortOrder = req.SortOrder
	if req.Stock != nil {
		item.Stock = *req.Stock
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := db.Save(&item).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update shop item"})
	}
	return c.JSON(fiber.Map{"success": true, "item": item})
}

// DeleteShopItem deactivates an item; redemptions keep their reference.
// DELETE /api/admin/shop/:id
func DeleteShopItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item id"})
	}

	db := database.GetDB()
	result := db.Model(&models.ShopItem{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to deactivate shop item"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Shop item not found"})
	}
	return c.JSON(fiber.Map{"success": true, "deactivated": true})
}

// Badges

type BadgeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
	Category    string `json:"category"`
}

var validRarities = map[string]bool{
	models.RarityCommon:    true,
	models.RarityRare:      true,
	models.RarityEpic:      true,
	models.RarityLegendary: true,
}

// GetBadges returns the badge catalog.
// GET /api/admin/badges
func GetBadges(c *fiber.Ctx) error {
	var badges []models.Badge
	if err := database.GetDB().Order("id ASC").Find(&badges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badges"})
	}
	return c.JSON(fiber.Map{"success": true, "badges": badges, "total": len(badges)})
}

// CreateBadge adds a badge to the catalog.
// POST /api/admin/badges
func CreateBadge(c *fiber.Ctx) error {
	var req BadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	rarity := req.Rarity
	if rarity == "" {
		rarity = models.RarityCommon
	}
	if !validRarities[rarity] {
		return c.Status(400).JSON(fiber.Map{"error": "invalid rarity"})
	}

	badge := models.Badge{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Rarity:      rarity,
		Category:    req.Category,
	}
	if err := database.GetDB().Create(&badge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create badge"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "badge": badge})
}

// UpdateBadge edits a badge.
// PUT /api/admin/badges/:id
func UpdateBadge(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid badge id"})
	}

	var req BadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	if req.Rarity != "" && !validRarities[req.Rarity] {
		return c.Status(400).JSON(fiber.Map{"error": "invalid rarity"})
	}

	db := database.GetDB()
	var badge models.Badge
	if err := db.First(&badge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Badge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badge"})
	}

	badge.Name = req.Name
	badge.Description = req.Description
	badge.Icon = req.Icon
	if req.Rarity != "" {
		badge.Rarity = req.Rarity
	}
	badge.Category = req.Category

	if err := db.Save(&badge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update badge"})
	}
	return c.JSON(fiber.Map{"success": true, "badge": badge})
}

// Milestones

type MilestoneRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"is_active"`
}

// GetMilestones returns all milestones.
// GET /api/admin/milestones
func GetMilestones(c *fiber.Ctx) error {
	var milestones []models.Milestone
	if err := database.GetDB().Order("threshold ASC").Find(&milestones).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch milestones"})
	}
	return c.JSON(fiber.Map{"success": true, "milestones": milestones, "total": len(milestones)})
}

// CreateMilestone adds a point-threshold unlock.
// POST /api/admin/milestones
func CreateMilestone(c *fiber.Ctx) error {
	var req MilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Threshold <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "name and a positive threshold are required"})
	}

	milestone := models.Milestone{
		Name:        req.Name,
		Description: req.Description,
		Threshold:   req.Threshold,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if req.IsActive != nil {
		milestone.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&milestone).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create milestone"})
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "milestone": milestone})
}

// UpdateMilestone edits a milestone.
// PUT /api/admin/milestones/:id
func UpdateMilestone(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid milestone id"})
	}

	var req MilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Threshold <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "name and a positive threshold are required"})
	}

	db := database.GetDB()
	var milestone models.Milestone
	if err := db.First(&milestone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Milestone not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch milestone"})
	}

	milestone.Name = req.Name
	milestone.Description = req.Description
	milestone.Threshold = req.Threshold
	milestone.Icon = req.Icon
	if req.IsActive != nil {
		milestone.IsActive = *req.IsActive
	}

	if err := db.Save(&milestone).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update milestone"})
	}
	return c.JSON(fiber.Map{"success": true, "milestone": milestone})
}
