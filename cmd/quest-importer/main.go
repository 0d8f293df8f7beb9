// cmd/quest-importer - seeds quests, badges, milestones and shop items from a JSON file
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"pollquest/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type SeedFile struct {
	Badges     []SeedBadge     `json:"badges"`
	Milestones []SeedMilestone `json:"milestones"`
	Quests     []SeedQuest     `json:"quests"`
	ShopItems  []SeedShopItem  `json:"shop_items"`
}

type SeedBadge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
	Category    string `json:"category"`
}

type SeedMilestone struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
}

type SeedQuest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	QuestType       string     `json:"quest_type"`
	Category        string     `json:"category"`
	RequirementType string     `json:"requirement_type"`
	Target          int        `json:"target"`
	PollCategory    string     `json:"poll_category"`
	Timeframe       string     `json:"timeframe"`
	PointReward     int        `json:"point_reward"`
	BadgeName       string     `json:"badge_name"` // resolved to badge_reward_id
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	MaxCompletions  int        `json:"max_completions"`
	SortOrder       int        `json:"sort_order"`
}

type SeedShopItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Cost        int    `json:"cost"`
	Stock       *int   `json:"stock"` // omitted means unlimited
	SortOrder   int    `json:"sort_order"`
}

func main() {
	seedPath := flag.String("file", "./seed/quests.json", "path to the seed JSON file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatal("Failed to read seed file:", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		log.Fatal("Failed to parse seed file:", err)
	}

	badgeIDs := map[string]uint{}

	for _, sb := range seed.Badges {
		badge := models.Badge{Name: sb.Name}
		db.Where("name = ?", sb.Name).FirstOrInit(&badge)
		badge.Description = sb.Description
		badge.Icon = sb.Icon
		if sb.Rarity != "" {
			badge.Rarity = sb.Rarity
		} else if badge.Rarity == "" {
			badge.Rarity = models.RarityCommon
		}
		badge.Category = sb.Category
		if err := db.Save(&badge).Error; err != nil {
			log.Fatalf("Failed to upsert badge %q: %v", sb.Name, err)
		}
		badgeIDs[badge.Name] = badge.ID
	}
	fmt.Printf("Upserted %d badges\n", len(seed.Badges))

	for _, sm := range seed.Milestones {
		milestone := models.Milestone{Name: sm.Name}
		db.Where("name = ?", sm.Name).FirstOrInit(&milestone)
		milestone.Description = sm.Description
		milestone.Threshold = sm.Threshold
		milestone.Icon = sm.Icon
		milestone.IsActive = true
		if err := db.Save(&milestone).Error; err != nil {
			log.Fatalf("Failed to upsert milestone %q: %v", sm.Name, err)
		}
	}
	fmt.Printf("Upserted %d milestones\n", len(seed.Milestones))

	for _, sq := range seed.Quests {
		quest := models.Quest{Title: sq.Title}
		db.Where("title = ?", sq.Title).FirstOrInit(&quest)
		quest.Description = sq.Description
		quest.QuestType = sq.QuestType
		quest.Category = sq.Category
		quest.RequirementType = sq.RequirementType
		quest.Target = sq.Target
		quest.PollCategory = sq.PollCategory
		quest.Timeframe = sq.Timeframe
		quest.PointReward = sq.PointReward
		quest.StartsAt = sq.StartsAt
		quest.EndsAt = sq.EndsAt
		quest.MaxCompletions = sq.MaxCompletions
		quest.SortOrder = sq.SortOrder
		quest.IsActive = true

		if sq.BadgeName != "" {
			id, ok := badgeIDs[sq.BadgeName]
			if !ok {
				var badge models.Badge
				if err := db.Where("name = ?", sq.BadgeName).First(&badge).Error; err != nil {
					log.Fatalf("Quest %q references unknown badge %q", sq.Title, sq.BadgeName)
				}
				id = badge.ID
			}
			quest.BadgeRewardID = &id
		}

		if err := db.Save(&quest).Error; err != nil {
			log.Fatalf("Failed to upsert quest %q: %v", sq.Title, err)
		}
	}
	fmt.Printf("Upserted %d quests\n", len(seed.Quests))

	for _, si := range seed.ShopItems {
		item := models.ShopItem{Name: si.Name}
		db.Where("name = ?", si.Name).FirstOrInit(&item)
		item.Description = si.Description
		item.Icon = si.Icon
		item.Cost = si.Cost
		if si.Stock != nil {
			item.Stock = *si.Stock
		} else if item.ID == 0 {
			item.Stock = -1
		}
		item.SortOrder = si.SortOrder
		item.IsActive = true
		if err := db.Save(&item).Error; err != nil {
			log.Fatalf("Failed to upsert shop item %q: %v", si.Name, err)
		}
	}
	fmt.Printf("Upserted %d shop items\n", len(seed.ShopItems))

	fmt.Println("✅ Seed import complete")
}
