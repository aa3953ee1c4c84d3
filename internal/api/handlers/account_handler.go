package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type AccountHandler struct {
	s service.AccountService
}

func NewAccountHandler(s service.AccountService) *AccountHandler {
	return &AccountHandler{s: s}
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var ac transfer.AccountCreation
	if err := c.BodyParser(&ac); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	account, err := h.s.Create(c.Context(), &ac)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(account)
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.s.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list accounts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) RemoveAccount(c *fiber.Ctx) error {
	if err := h.s.Remove(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove account",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *AccountHandler) Login(c *fiber.Ctx) error {
	if err := h.s.Login(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged in",
	})
}

func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	if err := h.s.Logout(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out",
	})
}
