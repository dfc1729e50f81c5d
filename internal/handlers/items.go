package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/store"
)

// ItemHandler manages the menu catalog.
type ItemHandler struct {
	items store.ItemStore
	seed  func() ([]models.Item, error)
}

// NewItemHandler constructs ItemHandler. seed supplies the starter dataset
// for InsertSeedItems.
func NewItemHandler(items store.ItemStore, seed func() ([]models.Item, error)) *ItemHandler {
	return &ItemHandler{items: items, seed: seed}
}

type itemRequest struct {
	Name      string  `json:"name" validate:"required"`
	Category  string  `json:"category" validate:"required"`
	Price     float64 `json:"price" validate:"gt=0"`
	ImageURL  string  `json:"imageUrl" validate:"required"`
	OpenTime  string  `json:"openTime" validate:"required"`
	CloseTime string  `json:"closeTime" validate:"required"`
}

func (r itemRequest) toModel() *models.Item {
	return &models.Item{
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		ImageURL:  r.ImageURL,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
	}
}

// ListItems returns the whole menu.
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.items.ListItems(c.UserContext())
	if err != nil {
		slog.Error("list items failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch items")
	}
	return c.JSON(items)
}

// CreateItem adds a menu entry.
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	item := req.toModel()
	if err := h.items.CreateItem(c.UserContext(), item); err != nil {
		slog.Error("create item failed", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "Failed to add item")
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem overwrites every editable field of an item.
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req itemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	item, err := h.items.UpdateItem(c.UserContext(), id, req.toModel())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		slog.Error("update item failed", "item_id", id, "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "Failed to update item")
	}

	return c.JSON(item)
}

// DeleteItem removes an item.
func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.items.DeleteItem(c.UserContext(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		slog.Error("delete item failed", "item_id", id, "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "Failed to delete item")
	}

	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// InsertSeedItems bulk-inserts the starter menu.
func (h *ItemHandler) InsertSeedItems(c *fiber.Ctx) error {
	items, err := h.seed()
	if err != nil {
		slog.Error("load seed items failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Item insertion failed")
	}

	if err := h.items.CreateItems(c.UserContext(), items); err != nil {
		slog.Error("insert seed items failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Item insertion failed")
	}

	return c.Status(fiber.StatusCreated).JSON(items)
}
