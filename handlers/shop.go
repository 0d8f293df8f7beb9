// handlers/shop.go
package handlers

import (
	"errors"

	"pollquest/database"
	"pollquest/models"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRequest struct {
	WalletAddress string `json:"walletAddress"`
	ItemID        uint   `json:"itemId"`
}

// GetShopItems returns the active catalog.
// GET /api/shop
func GetShopItems(c *fiber.Ctx) error {
	db := database.GetDB()

	var items []models.ShopItem
	if err := db.Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch shop items"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
		"total":   len(items),
	})
}

// PurchaseItem redeems points for a shop item. Balance check, stock
// decrement, negative ledger row and redemption record run in one
// transaction.
// POST /api/shop/purchase
func PurchaseItem(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	wallet := utils.NormalizeWallet(req.WalletAddress)
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}
	if req.ItemID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "itemId is required"})
	}

	db := database.GetDB()

	var profile models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	var redemption models.RewardRedemption
	var item models.ShopItem

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_active = ?", req.ItemID, true).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(404, "Shop item not found")
			}
			return err
		}

		if item.Stock == 0 {
			return fiber.NewError(409, "Item out of stock")
		}
		if item.Stock > 0 {
			// Guarded decrement so two buyers cannot take the last unit.
			result := tx.Model(&models.ShopItem{}).
				Where("id = ? AND stock > 0", item.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(409, "Item out of stock")
			}
		}

		// Guarded balance deduction; fails instead of going negative.
		result := tx.Model(&models.UserProfile{}).
			Where("id = ? AND total_points >= ?", profile.ID, item.Cost).
			UpdateColumn("total_points", gorm.Expr("total_points - ?", item.Cost))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(400, "Insufficient points")
		}

		itemRef := item.ID
		ledger := models.PointTransaction{
			UserID:      profile.ID,
			Amount:      -item.Cost,
			Type:        models.TxShopPurchase,
			ReferenceID: &itemRef,
			Description: "Redeemed: " + item.Name,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		redemption = models.RewardRedemption{
			UserID:         profile.ID,
			ShopItemID:     item.ID,
			PointsSpent:    item.Cost,
			RedemptionCode: uuid.New().String(),
			Status:         models.RedemptionPending,
		}
		return tx.Create(&redemption).Error
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to complete purchase"})
	}

	var updated models.UserProfile
	db.First(&updated, profile.ID)

	return c.JSON(fiber.Map{
		"success":          true,
		"redemption":       redemption,
		"item":             item.Name,
		"points_spent":     item.Cost,
		"remaining_points": updated.TotalPoints,
	})
}

// GetRedemptions lists the wallet's purchase history.
// GET /api/shop/redemptions?wallet=0x...
func GetRedemptions(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Query("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()
	var profile models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	var redemptions []models.RewardRedemption
	if err := db.Preload("Item").
		Where("user_id = ?", profile.ID).
		Order("created_at DESC").
		Find(&redemptions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch redemptions"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"redemptions": redemptions,
		"total":       len(redemptions),
	})
}
