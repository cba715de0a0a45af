package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
	"github.com/stretchr/testify/assert"
)

func TestListProfiles(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	tests, profile := seedCatalog(t, db)

	router := setupTestRouter()
	router.GET("/profiles", ListProfiles)

	req, _ := http.NewRequest(http.MethodGet, "/profiles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)

	first := data[0].(map[string]interface{})
	assert.Equal(t, profile.Name, first["name"])

	// Bundled tests come back resolved
	bundled := first["tests"].([]interface{})
	assert.Len(t, bundled, 2)
	bundledFirst := bundled[0].(map[string]interface{})
	assert.Equal(t, tests[0].Name, bundledFirst["name"])
}

func TestCreateProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	tests, _ := seedCatalog(t, db)

	cases := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Successfully create profile",
			requestBody: map[string]interface{}{
				"name":        "Diabetes Screen",
				"price":       800,
				"description": "Glucose and HbA1c panel",
				"tests":       []uint{tests[0].ID, tests[1].ID},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Fail with duplicate name",
			requestBody: map[string]interface{}{
				"name":  "Diabetes Screen",
				"price": 900,
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "PROFILE_EXISTS",
		},
		{
			name: "Fail with unknown test id",
			requestBody: map[string]interface{}{
				"name":  "Ghost Panel",
				"price": 500,
				"tests": []uint{9999},
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "UNKNOWN_TEST",
		},
		{
			name: "Fail with zero price",
			requestBody: map[string]interface{}{
				"name":  "Zero Panel",
				"price": 0,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/profiles", CreateProfile)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/profiles", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var response map[string]interface{}
				json.Unmarshal(w.Body.Bytes(), &response)
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	tests, profile := seedCatalog(t, db)

	t.Run("Successfully update profile and tests", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/profiles/:id", UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{
			"name":        "Full Body Checkup Plus",
			"price":       1500,
			"description": "Expanded package",
			"tests":       []uint{tests[2].ID},
		})
		req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/profiles/%d", profile.ID), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.Profile
		db.Preload("Tests").First(&fresh, profile.ID)
		assert.Equal(t, "Full Body Checkup Plus", fresh.Name)
		assert.Equal(t, float64(1500), fresh.Price)
		assert.Len(t, fresh.Tests, 1)
		assert.Equal(t, tests[2].ID, fresh.Tests[0].ID)
	})

	t.Run("Fail with unknown id", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/profiles/:id", UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{"name": "Ghost", "price": 100})
		req, _ := http.NewRequest(http.MethodPut, "/profiles/9999", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	_, profile := seedCatalog(t, db)

	router := setupTestRouter()
	router.DELETE("/profiles/:id", DeleteProfile)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/profiles/%d", profile.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Profile{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Catalog tests survive bundle deletion
	var testCount int64
	db.Model(&models.LabTest{}).Count(&testCount)
	assert.Equal(t, int64(3), testCount)
}
