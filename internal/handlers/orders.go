package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minjukim/wishmall/internal/models"
	"github.com/minjukim/wishmall/internal/mykafka"
)

const maxPaymentPasswordLen = 6

type OrderHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Payment struct {
	Bank     string `json:"bank"`
	Password string `json:"password"`
}

// OrderResponse mirrors the storefront wire shape: items are display
// strings like "Coat (x2)" and the payment password is always masked.
type OrderResponse struct {
	ID       uint     `json:"id"`
	UserID   uint     `json:"userId"`
	Date     string   `json:"date"`
	Items    []string `json:"items"`
	Total    float64  `json:"total"`
	Customer Customer `json:"customer"`
	Payment  Payment  `json:"payment"`
}

func orderResponse(order *models.Order, lines []models.OrderItem) OrderResponse {
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		items = append(items, fmt.Sprintf("%s (x%d)", l.Name, l.Quantity))
	}
	return OrderResponse{
		ID:     order.ID,
		UserID: order.UserID,
		Date:   order.Date,
		Items:  items,
		Total:  order.Total,
		Customer: Customer{
			Name:    order.CustomerName,
			Phone:   order.CustomerPhone,
			Address: order.CustomerAddress,
		},
		Payment: Payment{
			Bank:     order.PaymentBank,
			Password: "***",
		},
	}
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// CreateOrder is the checkout: it snapshots the cart into an order and
// clears the cart in one transaction, so a failure anywhere leaves
// neither a half-written order nor a stale cart.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		Customer Customer `json:"customer"`
		Payment  Payment  `json:"payment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Customer.Name == "" || req.Customer.Phone == "" || req.Customer.Address == "" || req.Payment.Bank == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "customer and payment fields are required")
	}
	if req.Payment.Password != "***" && len(req.Payment.Password) > maxPaymentPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "account password must be 6 digits or less")
	}

	var (
		order models.Order
		lines []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}

		var total float64
		for _, it := range cartItems {
			total += it.Price * float64(it.Quantity)
		}

		order = models.Order{
			UserID:          userID,
			Date:            time.Now().UTC().Format(time.RFC3339),
			Total:           total,
			CustomerName:    req.Customer.Name,
			CustomerPhone:   req.Customer.Phone,
			CustomerAddress: req.Customer.Address,
			PaymentBank:     req.Payment.Bank,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		lines = make([]models.OrderItem, 0, len(cartItems))
		for _, it := range cartItems {
			line := models.OrderItem{
				OrderID:  order.ID,
				Name:     it.Name,
				Price:    it.Price,
				Quantity: it.Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			lines = append(lines, line)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusCreated, orderResponse(&order, lines))
}

// ListOrders returns every order of the user, newest first. Date-range
// filtering stays a client concern.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		var lines []models.OrderItem
		if err := h.DB.Where("order_id = ?", orders[i].ID).Order("id ASC").Find(&lines).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp = append(resp, orderResponse(&orders[i], lines))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_deleted",
		"userID":  userID,
		"orderID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order deleted successfully",
	})
}
