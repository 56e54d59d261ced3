package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ProjectConfig struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	IsActive      bool   `json:"is_active"`
	ClaimsEnabled bool   `json:"claims_enabled"`
}

type VestingPool struct {
	ID           uint   `json:"id"`
	ProjectID    uint   `json:"project_id"`
	VaultAddress string `json:"vault_address"`
	Status       string `json:"status"`
}

type VestingGrant struct {
	ID            uint   `json:"id"`
	PoolID        uint   `json:"pool_id"`
	HolderAddress string `json:"holder_address"`
	IsCancelled   bool   `json:"is_cancelled"`
}

type AvailableResponse struct {
	HolderAddress  string `json:"holder_address"`
	TotalAvailable string `json:"total_available"`
	Grants         []struct {
		GrantID   uint   `json:"grant_id"`
		Available string `json:"available"`
	} `json:"grants"`
}

const testHolder = "FGnwNsEBxHsKH4nRkK2mFLqfL6kICBg1yh4dVZWSWdRU"

func TestClaimLifecycleAPI(t *testing.T) {
	var projectID, poolID, grantID uint

	// Test Case 1: Create Project
	t.Run("Create Project", func(t *testing.T) {
		request := struct {
			Name string `json:"name"`
		}{Name: "integration-test-project"}

		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/project-config", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var project ProjectConfig
		err = json.NewDecoder(resp.Body).Decode(&project)
		require.NoError(t, err)
		assert.True(t, project.ClaimsEnabled)
		projectID = project.ID
	})

	// Test Case 2: Create Pool
	t.Run("Create Pool", func(t *testing.T) {
		request := map[string]interface{}{
			"project_id":            projectID,
			"token_id":              1,
			"vault_address":         "9B5XszUGdMaxCZ7uSQhPzdks5ZQSmWxrmzCSvtJ6Ns6g",
			"total_pool_amount":     "1000000",
			"start_time":            time.Now().Add(-48 * time.Hour).Unix(),
			"cliff_duration_secs":   3600,
			"vesting_duration_secs": 86400 * 30,
		}

		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/pool-config", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var pool VestingPool
		err = json.NewDecoder(resp.Body).Decode(&pool)
		require.NoError(t, err)
		assert.Equal(t, "active", pool.Status)
		poolID = pool.ID
	})

	// Test Case 3: Create Grant
	t.Run("Create Grant", func(t *testing.T) {
		request := map[string]interface{}{
			"pool_id":          poolID,
			"holder_address":   testHolder,
			"total_allocation": "10000",
		}

		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/grant-config", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var grant VestingGrant
		err = json.NewDecoder(resp.Body).Decode(&grant)
		require.NoError(t, err)
		grantID = grant.ID
	})

	// Test Case 4: Query Availability
	t.Run("Get Available", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/claim/available?holder_address=%s", BaseURL, testHolder))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response AvailableResponse
		err = json.NewDecoder(resp.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, testHolder, response.HolderAddress)
		assert.NotEmpty(t, response.Grants)
	})

	// Test Case 5: Missing holder is rejected
	t.Run("Get Available Without Holder", func(t *testing.T) {
		resp, err := http.Get(BaseURL + "/claim/available")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	// Test Case 6: Over-ask is rejected with a reason code
	t.Run("Compute Rejects Over Ask", func(t *testing.T) {
		request := map[string]interface{}{
			"holder_address":   testHolder,
			"requested_amount": "999999999999",
		}
		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/claim/compute", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var response struct {
			Code string `json:"code"`
		}
		err = json.NewDecoder(resp.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "RequestExceedsAvailable", response.Code)
	})

	// Test Case 7: Cancel Grant
	t.Run("Cancel Grant", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/grant-config/%d/cancel", BaseURL, grantID), nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var grant VestingGrant
		err = json.NewDecoder(resp.Body).Decode(&grant)
		require.NoError(t, err)
		assert.True(t, grant.IsCancelled)
	})

	// Test Case 8: Cancelled grant no longer counts toward availability
	t.Run("Cancelled Grant Excluded", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/claim/available?holder_address=%s", BaseURL, testHolder))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response AvailableResponse
		err = json.NewDecoder(resp.Body).Decode(&response)
		require.NoError(t, err)
		for _, g := range response.Grants {
			assert.NotEqual(t, grantID, g.GrantID)
		}
	})
}
