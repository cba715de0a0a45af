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

func TestListLabTests(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	db.Create(&models.LabTest{Name: "Vitamin D", Price: 900})
	db.Create(&models.LabTest{Name: "CBC", Price: 300})
	db.Create(&models.LabTest{Name: "Lipid Panel", Price: 550})

	router := setupTestRouter()
	router.GET("/tests", ListLabTests)

	req, _ := http.NewRequest(http.MethodGet, "/tests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Len(t, data, 3)

	// Sorted by name
	names := make([]string, 0, len(data))
	for _, item := range data {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{"CBC", "Lipid Panel", "Vitamin D"}, names)
}

func TestCreateLabTest(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	cases := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
	}{
		{
			name:           "Successfully create test",
			requestBody:    map[string]interface{}{"name": "HbA1c", "price": 450},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Fail with zero price",
			requestBody:    map[string]interface{}{"name": "Free Test", "price": 0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail with negative price",
			requestBody:    map[string]interface{}{"name": "Negative Test", "price": -10},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail with missing name",
			requestBody:    map[string]interface{}{"price": 450},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/tests", CreateLabTest)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/tests", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUpdateLabTest(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	test := models.LabTest{Name: "CBC", Price: 300}
	db.Create(&test)

	t.Run("Successfully update", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/tests/:id", UpdateLabTest)

		body, _ := json.Marshal(map[string]interface{}{"name": "CBC Extended", "price": 350})
		req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/tests/%d", test.ID), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.LabTest
		db.First(&fresh, test.ID)
		assert.Equal(t, "CBC Extended", fresh.Name)
		assert.Equal(t, float64(350), fresh.Price)
	})

	t.Run("Fail with unknown id", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/tests/:id", UpdateLabTest)

		body, _ := json.Marshal(map[string]interface{}{"name": "Ghost", "price": 100})
		req, _ := http.NewRequest(http.MethodPut, "/tests/9999", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteLabTest(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	test := models.LabTest{Name: "CBC", Price: 300}
	db.Create(&test)

	t.Run("Successfully delete", func(t *testing.T) {
		router := setupTestRouter()
		router.DELETE("/tests/:id", DeleteLabTest)

		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/tests/%d", test.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		db.Model(&models.LabTest{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Fail with already-deleted id", func(t *testing.T) {
		router := setupTestRouter()
		router.DELETE("/tests/:id", DeleteLabTest)

		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/tests/%d", test.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
