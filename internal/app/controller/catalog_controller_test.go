package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicationController_CRUD(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/publications", service.PublicationInput{
		Category:    "Magazine",
		Title:       "Vidusara",
		Publisher:   "Upali Newspapers",
		PublishType: "Weekly",
		Price:       60,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["publication"].(map[string]interface{})
	id := uint(created["id"].(float64))
	assert.Equal(t, "Vidusara", created["title"])

	w = env.do(t, http.MethodGet, fmt.Sprintf("/publications/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/publications/%d", id), service.PublicationInput{
		Category: "Magazine",
		Title:    "Vidusara Weekly",
		Price:    70,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)["publication"].(map[string]interface{})
	assert.Equal(t, "Vidusara Weekly", updated["title"])
	assert.Equal(t, float64(70), updated["price"])

	w = env.do(t, http.MethodGet, "/publications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/publications/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/publications/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PUBLICATION_NOT_FOUND", decode(t, w)["error"])
}

func TestPublicationController_Create_Invalid(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/publications", map[string]interface{}{"category": "Newspaper"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", decode(t, w)["error"])

	w = env.do(t, http.MethodPost, "/publications", service.PublicationInput{
		Category: "Pamphlet",
		Title:    "Flyer",
		Price:    1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicationController_Search(t *testing.T) {
	env := setupControllerTest(t)
	env.createPublication(t, "Daily News", 50, 10)
	env.createPublication(t, "Sunday Observer", 80, 10)

	w := env.do(t, http.MethodGet, "/publications/search?q=daily", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(1), response["count"])
	first := response["publications"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Daily News", first["title"])
}

func TestPublicationController_InvalidID(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodGet, "/publications/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_ID", decode(t, w)["error"])
}

func TestStockController_SetAndAdjust(t *testing.T) {
	env := setupControllerTest(t)
	pub := env.createPublication(t, "Daily News", 50, 10)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/stock/%d", pub.ID), map[string]int{"quantity": 25})
	assert.Equal(t, http.StatusOK, w.Code)
	stock := decode(t, w)["stock"].(map[string]interface{})
	assert.Equal(t, float64(25), stock["quantity"])

	w = env.do(t, http.MethodPost, fmt.Sprintf("/stock/%d/adjust", pub.ID), map[string]int{"delta": -5})
	assert.Equal(t, http.StatusOK, w.Code)
	stock = decode(t, w)["stock"].(map[string]interface{})
	assert.Equal(t, float64(20), stock["quantity"])

	w = env.do(t, http.MethodGet, "/stock", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestStockController_SetNegative(t *testing.T) {
	env := setupControllerTest(t)
	pub := env.createPublication(t, "Daily News", 50, 10)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/stock/%d", pub.ID), map[string]int{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STOCK_NEGATIVE", decode(t, w)["error"])

	w = env.do(t, http.MethodPut, fmt.Sprintf("/stock/%d", pub.ID), map[string]int{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerController_CRUD(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/customers", service.CustomerInput{
		Name:      "Ruwan Perera",
		Address:   "7 Lake Drive, Colombo 08",
		ContactNo: "0719876543",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["customer"].(map[string]interface{})
	id := uint(created["id"].(float64))
	assert.Equal(t, "Prepaid", created["customer_type"])

	w = env.do(t, http.MethodPut, fmt.Sprintf("/customers/%d", id), service.CustomerInput{
		Name:         "Ruwan Perera",
		CustomerType: "Postpaid",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Postpaid", decode(t, w)["customer"].(map[string]interface{})["customer_type"])

	w = env.do(t, http.MethodGet, "/customers", nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = env.do(t, http.MethodGet, fmt.Sprintf("/customers/%d/bills", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/customers/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", decode(t, w)["error"])
}

func TestCustomerController_InvalidType(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/customers", service.CustomerInput{
		Name:         "Ruwan Perera",
		CustomerType: "Credit",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
