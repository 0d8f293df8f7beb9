package handlers

import (
	"net/http"
	"testing"

	"pollquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncBody(wallet, activityType, onChainID string) map[string]interface{} {
	return map[string]interface{}{
		"walletAddress": wallet,
		"activityType":  activityType,
		"onChainId":     onChainID,
	}
}

func TestSyncActivityValidation(t *testing.T) {
	app, _ := setupApp(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing wallet", syncBody("", models.ActivityPollVote, "v1")},
		{"missing activity type", syncBody(testWallet, "", "v1")},
		{"malformed wallet", syncBody("not-a-wallet", models.ActivityPollVote, "v1")},
		{"unknown activity type", syncBody(testWallet, "poll_delete", "v1")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/quests/sync", tc.body), -1)
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSyncActivityFlow(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	quest := models.Quest{
		Title:           "Daily Voter",
		QuestType:       models.QuestTypePollParticipation,
		Category:        models.CategoryDaily,
		RequirementType: models.RequirementVoteCount,
		Target:          1,
		PointReward:     5,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&quest).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/quests/sync",
		syncBody(testWallet, models.ActivityPollVote, "vote-1")), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["questsCompleted"])

	completed, ok := body["completedQuests"].([]interface{})
	require.True(t, ok)
	require.Len(t, completed, 1)
	first := completed[0].(map[string]interface{})
	assert.Equal(t, "Daily Voter", first["quest_title"])

	// Replay of the same on-chain event completes nothing.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/quests/sync",
		syncBody(testWallet, models.ActivityPollVote, "vote-1")), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.EqualValues(t, 0, body["questsCompleted"])

	var profile models.UserProfile
	require.NoError(t, db.Where("wallet_address = ?", testWallet).First(&profile).Error)
	assert.Equal(t, 5, profile.TotalPoints)
}

func TestSyncActivityUnknownWalletSucceedsQuietly(t *testing.T) {
	app, db := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/quests/sync",
		syncBody(testWallet, models.ActivityPollVote, "vote-1")), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 0, body["questsCompleted"])

	var count int64
	db.Model(&models.ActivitySyncRecord{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetQuests(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	quest := models.Quest{
		Title:           "Five Votes",
		QuestType:       models.QuestTypePollParticipation,
		Category:        models.CategoryDaily,
		RequirementType: models.RequirementVoteCount,
		Target:          5,
		PointReward:     15,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&quest).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/quests?wallet="+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"])
	quests := body["quests"].([]interface{})
	require.Len(t, quests, 1)
	progress := quests[0].(map[string]interface{})["progress"].(map[string]interface{})
	assert.EqualValues(t, 0, progress["current_value"])
	assert.EqualValues(t, 5, progress["target"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/quests", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode, "wallet parameter is required")
	decodeBody(t, resp)
}

func TestGetStats(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	for _, id := range []string{"v1", "v2"} {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/quests/sync",
			syncBody(testWallet, models.ActivityPollVote, id)), -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		decodeBody(t, resp)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/quests/stats?wallet="+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_votes"])
	assert.EqualValues(t, 1, stats["current_streak"])
}
