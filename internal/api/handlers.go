package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tradelog/tradelog/internal/auth"
	"github.com/tradelog/tradelog/internal/config"
	"github.com/tradelog/tradelog/internal/imgproxy"
	"github.com/tradelog/tradelog/internal/logger"
	"github.com/tradelog/tradelog/internal/prices"
	"github.com/tradelog/tradelog/internal/snapshot"
)

type Handlers struct {
	config   *config.Config
	prices   *prices.Service
	images   *imgproxy.Service
	verifier auth.Verifier
	validate *validator.Validate
}

func NewHandlers(cfg *config.Config, priceSvc *prices.Service, imgSvc *imgproxy.Service, verifier auth.Verifier) *Handlers {
	return &Handlers{
		config:   cfg,
		prices:   priceSvc,
		images:   imgSvc,
		verifier: verifier,
		validate: validator.New(),
	}
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":  true,
		"now": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetNews handles GET /api/news. It always answers 200 with a well-formed
// document: a missing or corrupt snapshot reads as the empty snapshot.
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(snapshot.Read(h.config.NewsPath()))
}

// GetPrices handles GET /api/prices. 503 happens only when upstream fails
// and no fetch has ever succeeded in this process.
func (h *Handlers) GetPrices(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")

	resp, err := h.prices.Current(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("price feed unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "price_feed_unavailable",
			"message": err.Error(),
		})
	}
	return c.JSON(resp)
}

// GetImage handles GET /api/img?u=<url>. Failures are content-free (400 or
// 204) so the client can uniformly hide the image.
func (h *Handlers) GetImage(c *fiber.Ctx) error {
	res := h.images.Get(c.Context(), c.Query("u"))

	switch res.Status {
	case fiber.StatusOK:
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderCacheControl, res.CacheControl)
		return c.Status(fiber.StatusOK).Send(res.Body)
	default:
		return c.SendStatus(res.Status)
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/login against the pluggable credential verifier.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	user, err := h.verifier.Verify(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid_credentials",
			})
		}
		logger.Get().Error().Err(err).Msg("credential verification failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "verification_failed",
		})
	}

	token, err := auth.IssueToken(user.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "token_issue_failed",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
