package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minjukim/wishmall/internal/models"
	"github.com/minjukim/wishmall/internal/mykafka"
)

type ItemHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
	ES        *elasticsearch.Client
	ESIndex   string
}

func (h *ItemHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "item_events", fmt.Sprint(event["itemID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ItemHandler) index(c echo.Context, item *models.Item) {
	if h.ES == nil {
		return
	}
	body, err := json.Marshal(item)
	if err != nil {
		c.Logger().Errorf("ES marshal error: %v", err)
		return
	}
	res, err := h.ES.Index(
		h.ESIndex,
		bytes.NewReader(body),
		h.ES.Index.WithDocumentID(strconv.FormatUint(uint64(item.ID), 10)),
		h.ES.Index.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}
	res.Body.Close()
}

func (h *ItemHandler) deindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	res, err := h.ES.Delete(
		h.ESIndex,
		strconv.FormatUint(uint64(id), 10),
		h.ES.Delete.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
		return
	}
	res.Body.Close()
}

// ListItems returns the whole catalog, optionally filtered to one owner.
func (h *ItemHandler) ListItems(c echo.Context) error {
	q := h.DB.Model(&models.Item{}).Order("id ASC")

	if userParam := c.QueryParam("userId"); userParam != "" {
		userID, err := strconv.Atoi(userParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
		}
		q = q.Where("user_id = ?", userID)
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Season   string  `json:"season"`
		Category string  `json:"category"`
		URL      string  `json:"url"`
		ImageURL string  `json:"imageUrl"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if !models.ValidSeason(req.Season) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid season")
	}
	if !models.ValidCategory(req.Category) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if req.ImageURL == "" {
		req.ImageURL = models.DefaultImageURL
	}

	item := models.Item{
		Name:     req.Name,
		Price:    req.Price,
		Season:   req.Season,
		Category: req.Category,
		UserID:   userID,
		URL:      req.URL,
		ImageURL: req.ImageURL,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &item)
	h.publish(c, map[string]any{
		"type":   "item_created",
		"itemID": item.ID,
		"userID": userID,
		"name":   item.Name,
	})

	return c.JSON(http.StatusCreated, item)
}

// PatchItem shallow-merges the provided fields onto the stored record.
// The id and the owner never change.
func (h *ItemHandler) PatchItem(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name     *string  `json:"name"`
		Price    *float64 `json:"price"`
		Season   *string  `json:"season"`
		Category *string  `json:"category"`
		URL      *string  `json:"url"`
		ImageURL *string  `json:"imageUrl"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if item.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Season != nil {
		if !models.ValidSeason(*req.Season) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid season")
		}
		item.Season = *req.Season
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		item.Category = *req.Category
	}
	if req.URL != nil {
		item.URL = *req.URL
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
		if item.ImageURL == "" {
			item.ImageURL = models.DefaultImageURL
		}
	}

	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &item)
	h.publish(c, map[string]any{
		"type":   "item_updated",
		"itemID": item.ID,
		"userID": userID,
		"name":   item.Name,
	})

	return c.JSON(http.StatusOK, item)
}

// DeleteItem removes a catalog record. Cart lines referencing it are left
// untouched: they are snapshots, not foreign keys.
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if item.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.deindex(c, item.ID)
	h.publish(c, map[string]any{
		"type":   "item_deleted",
		"itemID": item.ID,
		"userID": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item deleted successfully",
	})
}
