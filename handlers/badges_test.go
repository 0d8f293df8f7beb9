package handlers

import (
	"net/http"
	"testing"
	"time"

	"pollquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBadges(t *testing.T) {
	app, db := setupApp(t)
	profile := seedProfile(t, db, testWallet, "CODE00AA")

	earned := models.Badge{Name: "Voter", Rarity: models.RarityCommon}
	unearned := models.Badge{Name: "Creator", Rarity: models.RarityRare}
	require.NoError(t, db.Create(&earned).Error)
	require.NoError(t, db.Create(&unearned).Error)
	require.NoError(t, db.Create(&models.UserBadge{
		UserID: profile.ID, BadgeID: earned.ID, EarnedAt: time.Now().UTC(),
	}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/badges?wallet="+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["earned"])

	badges := body["badges"].([]interface{})
	require.Len(t, badges, 2)
	byName := map[string]map[string]interface{}{}
	for _, b := range badges {
		entry := b.(map[string]interface{})
		byName[entry["name"].(string)] = entry
	}
	assert.Equal(t, true, byName["Voter"]["earned"])
	assert.NotEmpty(t, byName["Voter"]["earned_at"])
	assert.Equal(t, false, byName["Creator"]["earned"])
}

func TestGetBadgesUnknownWallet(t *testing.T) {
	app, db := setupApp(t)
	require.NoError(t, db.Create(&models.Badge{Name: "Voter", Rarity: models.RarityCommon}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/badges?wallet="+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"], "full catalog is visible")
	assert.EqualValues(t, 0, body["earned"], "nothing earned without a profile")
}

func TestGetMilestones(t *testing.T) {
	app, db := setupApp(t)
	profile := seedProfile(t, db, testWallet, "CODE00AA")
	require.NoError(t, db.Model(profile).Update("total_points", 120).Error)

	reached := models.Milestone{Name: "Hundred", Threshold: 100, IsActive: true}
	pending := models.Milestone{Name: "Thousand", Threshold: 1000, IsActive: true}
	hidden := models.Milestone{Name: "Hidden", Threshold: 50, IsActive: false}
	require.NoError(t, db.Create(&reached).Error)
	require.NoError(t, db.Create(&pending).Error)
	require.NoError(t, db.Create(&hidden).Error)
	require.NoError(t, db.Create(&models.UserMilestone{
		UserID: profile.ID, MilestoneID: reached.ID, AchievedAt: time.Now().UTC(),
	}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/milestones?wallet="+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 120, body["total_points"])

	milestones := body["milestones"].([]interface{})
	require.Len(t, milestones, 2, "inactive milestones are hidden")
	first := milestones[0].(map[string]interface{})
	assert.Equal(t, "Hundred", first["name"], "ordered by threshold")
	assert.Equal(t, true, first["achieved"])
	second := milestones[1].(map[string]interface{})
	assert.Equal(t, false, second["achieved"])
}
