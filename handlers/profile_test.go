package handlers

import (
	"net/http"
	"testing"

	"pollquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	app, db := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"walletAddress": "0X00000000000000000000000000000000000000AA",
		"displayName":   "Voter One",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["created"])
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, testWallet, profile["wallet_address"], "wallet is stored lowercased")
	assert.Equal(t, "Voter One", profile["display_name"])
	assert.Len(t, profile["referral_code"], 8)

	// Second connect returns the existing row.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"walletAddress": testWallet,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["created"])

	var count int64
	db.Model(&models.UserProfile{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateProfileWithReferral(t *testing.T) {
	app, db := setupApp(t)
	referrer := seedProfile(t, db, otherWallet, "FRIEND01")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"walletAddress": testWallet,
		"referralCode":  "friend01",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Nil(t, body["referral_error"])
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, otherWallet, profile["referred_by"], "code lookup is case-insensitive")

	var referral models.Referral
	require.NoError(t, db.Where("referred_wallet = ?", testWallet).First(&referral).Error)
	assert.Equal(t, referrer.WalletAddress, referral.ReferrerWallet)
	assert.Equal(t, models.ReferralPending, referral.Status)
}

func TestCreateProfileUnknownReferralCode(t *testing.T) {
	app, db := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"walletAddress": testWallet,
		"referralCode":  "NOSUCH99",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["created"], "profile creation stands")
	assert.Equal(t, "unknown referral code", body["referral_error"])

	var count int64
	db.Model(&models.Referral{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetProfile(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/profile/"+testWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, testWallet, profile["wallet_address"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/profile/"+otherWallet, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	decodeBody(t, resp)
}

func TestUpdateProfile(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/profile/"+testWallet, map[string]interface{}{
		"displayName": "  New Name  ",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	decodeBody(t, resp)

	var updated models.UserProfile
	require.NoError(t, db.Where("wallet_address = ?", testWallet).First(&updated).Error)
	assert.Equal(t, "New Name", updated.DisplayName)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/profile/"+testWallet, map[string]interface{}{}), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode, "empty update is rejected")
	decodeBody(t, resp)
}

func TestGetTransactions(t *testing.T) {
	app, db := setupApp(t)
	profile := seedProfile(t, db, testWallet, "CODE00AA")

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.PointTransaction{
			UserID: profile.ID,
			Amount: 10,
			Type:   models.TxQuestCompletion,
		}).Error)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet,
		"/api/profile/"+testWallet+"/transactions?limit=2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["limit"])
	transactions := body["transactions"].([]interface{})
	assert.Len(t, transactions, 2)
}

func TestApplyReferral(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, otherWallet, "FRIEND01")
	seedProfile(t, db, testWallet, "CODE00AA")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/referral/apply", map[string]interface{}{
		"walletAddress": testWallet,
		"referralCode":  "FRIEND01",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, otherWallet, body["referred_by"])

	// Applying a second code is rejected.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/referral/apply", map[string]interface{}{
		"walletAddress": testWallet,
		"referralCode":  "FRIEND01",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	decodeBody(t, resp)
}

func TestApplyReferralSelfRefer(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, testWallet, "CODE00AA")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/referral/apply", map[string]interface{}{
		"walletAddress": testWallet,
		"referralCode":  "CODE00AA",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "cannot refer yourself", body["error"])
}

func TestGetReferrals(t *testing.T) {
	app, db := setupApp(t)
	seedProfile(t, db, otherWallet, "FRIEND01")

	require.NoError(t, db.Create(&models.Referral{
		ReferrerWallet: otherWallet,
		ReferredWallet: testWallet,
		CodeUsed:       "FRIEND01",
		Status:         models.ReferralRewarded,
	}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/referral?wallet="+otherWallet, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["completed"])
}
