// handlers/quests.go
package handlers

import (
	"log"

	"pollquest/models"
	"pollquest/services"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
)

type SyncActivityRequest struct {
	WalletAddress   string `json:"walletAddress"`
	ActivityType    string `json:"activityType"`
	OnChainID       string `json:"onChainId"`
	TransactionHash string `json:"transactionHash"`
	Metadata        struct {
		Category string `json:"category"`
		PollID   string `json:"pollId"`
	} `json:"metadata"`
}

var allowedActivityTypes = map[string]bool{
	models.ActivityPollVote:      true,
	models.ActivityPollCreate:    true,
	models.ActivitySurveyRespond: true,
	models.ActivitySurveyCreate:  true,
	models.ActivityReferral:      true,
	models.ActivityShare:         true,
}

// SyncActivity ingests one relayed activity event and runs it through the
// quest engine.
// POST /api/quests/sync
func SyncActivity(c *fiber.Ctx) error {
	var req SyncActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.WalletAddress == "" || req.ActivityType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "walletAddress and activityType are required"})
	}
	if !utils.IsValidWallet(req.WalletAddress) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}
	if !allowedActivityTypes[req.ActivityType] {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown activity type"})
	}

	event := models.ActivityEvent{
		WalletAddress:   req.WalletAddress,
		ActivityType:    req.ActivityType,
		OnChainID:       req.OnChainID,
		TransactionHash: req.TransactionHash,
		Category:        req.Metadata.Category,
		PollID:          req.Metadata.PollID,
	}

	completed, err := services.GetQuestEngine().ProcessActivity(event)
	if err != nil {
		log.Printf("Failed to process activity for %s: %v", req.WalletAddress, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to process activity"})
	}

	if completed == nil {
		completed = []models.QuestCompletionResult{}
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"completedQuests": completed,
		"questsCompleted": len(completed),
	})
}

// GetQuests returns all active quests with the wallet's progress view.
// GET /api/quests?wallet=0x...
func GetQuests(c *fiber.Ctx) error {
	wallet := c.Query("wallet")
	if wallet == "" {
		return c.Status(400).JSON(fiber.Map{"error": "wallet query parameter is required"})
	}
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	quests, err := services.GetQuestEngine().GetQuestsWithProgress(wallet)
	if err != nil {
		log.Printf("Failed to load quests for %s: %v", wallet, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load quests"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quests":  quests,
		"total":   len(quests),
	})
}

// GetStats returns the wallet's all-time aggregates.
// GET /api/quests/stats?wallet=0x...
func GetStats(c *fiber.Ctx) error {
	wallet := c.Query("wallet")
	if wallet == "" {
		return c.Status(400).JSON(fiber.Map{"error": "wallet query parameter is required"})
	}
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	stats, err := services.GetQuestEngine().GetUserStats(wallet)
	if err != nil {
		log.Printf("Failed to load stats for %s: %v", wallet, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load stats"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
