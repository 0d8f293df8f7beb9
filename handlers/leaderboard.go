// handlers/leaderboard.go
package handlers

import (
	"strconv"
	"time"

	"pollquest/database"
	"pollquest/models"

	"github.com/gofiber/fiber/v2"
)

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url"`
	PeriodPoints  int    `json:"period_points"`
	TotalPoints   int    `json:"total_points"`
	CurrentStreak int    `json:"current_streak"`
}

// GetLeaderboard returns the points ranking for a period, aggregated from
// the transaction ledger.
// GET /api/leaderboard?period=weekly|monthly|all_time&limit=50&offset=0
func GetLeaderboard(c *fiber.Ctx) error {
	period := c.Query("period", "all_time")
	limit := clampInt(parseIntDefault(c.Query("limit"), 50), 1, 100)
	offset := maxInt(parseIntDefault(c.Query("offset"), 0), 0)

	db := database.GetDB()
	now := time.Now().UTC()

	var since time.Time
	switch period {
	case "weekly":
		since = models.StartOfWeek(now)
	case "monthly":
		since = models.StartOfMonth(now)
	case "all_time":
		// no window
	default:
		return c.Status(400).JSON(fiber.Map{"error": "period must be weekly, monthly or all_time"})
	}

	var entries []LeaderboardEntry
	var total int64

	if period == "all_time" {
		var profiles []models.UserProfile
		if err := db.Order("total_points DESC, id ASC").
			Limit(limit).Offset(offset).
			Find(&profiles).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
		}
		db.Model(&models.UserProfile{}).Count(&total)

		for i, p := range profiles {
			entries = append(entries, LeaderboardEntry{
				Rank:          offset + i + 1,
				UserID:        p.ID,
				WalletAddress: p.WalletAddress,
				DisplayName:   p.DisplayName,
				AvatarURL:     p.AvatarURL,
				PeriodPoints:  p.TotalPoints,
				TotalPoints:   p.TotalPoints,
				CurrentStreak: p.CurrentStreak,
			})
		}
	} else {
		// Period boards rank points earned in the window; spending
		// (negative amounts) does not reduce standing.
		if err := db.Raw(`
			SELECT
				p.id AS user_id,
				p.wallet_address,
				p.display_name,
				p.avatar_url,
				COALESCE(SUM(t.amount), 0) AS period_points,
				p.total_points,
				p.current_streak
			FROM user_profiles p
			JOIN point_transactions t ON t.user_id = p.id
			WHERE t.created_at >= ? AND t.amount > 0
			GROUP BY p.id, p.wallet_address, p.display_name, p.avatar_url, p.total_points, p.current_streak
			ORDER BY period_points DESC, p.total_points DESC, p.id ASC
			LIMIT ? OFFSET ?
		`, since, limit, offset).Scan(&entries).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
		}

		db.Raw(`
			SELECT COUNT(DISTINCT t.user_id)
			FROM point_transactions t
			WHERE t.created_at >= ? AND t.amount > 0
		`, since).Scan(&total)

		for i := range entries {
			entries[i].Rank = offset + i + 1
		}
	}

	if entries == nil {
		entries = []LeaderboardEntry{}
	}

	return c.JSON(fiber.Map{
		"period":      period,
		"leaderboard": entries,
		"total":       total,
	})
}

// helpers
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
