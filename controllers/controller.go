package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pricewatch/apperrors"
	"pricewatch/cache"
	"pricewatch/logger"
	"pricewatch/models"
	"pricewatch/pricing"
)

const headerCache = "X-Cache"

// Store is everything the handlers need from persistence.
type Store interface {
	pricing.Store
	CreateBrand(ctx context.Context, name string) (*models.Brand, error)
	CreateMobile(ctx context.Context, mobile *models.Mobile) error
	AppendPrice(ctx context.Context, price *models.MobilePrice) error
}

type Controller struct {
	store    Store
	engine   *pricing.Engine
	cache    cache.Cache
	logger   *slog.Logger
	timeout  time.Duration
	validate *validator.Validate
}

func New(store Store, engine *pricing.Engine, c cache.Cache, logger *slog.Logger, timeout time.Duration) *Controller {
	if c == nil {
		c = cache.Nop{}
	}
	return &Controller{
		store:    store,
		engine:   engine,
		cache:    c,
		logger:   logger,
		timeout:  timeout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Response is the success envelope. Warnings list snapshot rows that were
// left out of the results.
type Response struct {
	Success  bool              `json:"success"`
	Data     any               `json:"data"`
	Warnings []pricing.Warning `json:"warnings,omitempty"`
}

func (h *Controller) log(c *fiber.Ctx) *slog.Logger {
	return logger.FromContext(c.UserContext(), h.logger)
}

func (h *Controller) loadView(c *fiber.Ctx) (*pricing.View, error) {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	view, err := h.engine.Load(ctx, h.store)
	if err != nil {
		var fetchErr *pricing.FetchError
		if errors.As(err, &fetchErr) {
			return nil, apperrors.ServiceUnavailableWrap(err, "Price data is temporarily unavailable")
		}
		return nil, apperrors.InternalWrap(err, "Failed to load price data")
	}
	if w := view.Warnings(); len(w) > 0 {
		h.log(c).Warn("snapshot has rows excluded from results", "count", len(w), "first", w[0].String())
	}
	return view, nil
}

// serveView answers a read request from the response cache, or builds it from
// a fresh view and caches the encoded envelope.
func (h *Controller) serveView(c *fiber.Ctx, build func(*pricing.View) (any, error)) error {
	ctx := c.UserContext()
	key := cache.Key(c.Path(), canonicalQuery(c))

	body, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.log(c).Warn("cache read failed", "error", err)
	}
	if ok {
		c.Set(headerCache, "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	view, err := h.loadView(c)
	if err != nil {
		return err
	}
	data, err := build(view)
	if err != nil {
		return err
	}
	body, err = json.Marshal(Response{Success: true, Data: data, Warnings: view.Warnings()})
	if err != nil {
		return apperrors.InternalWrap(err, "Failed to encode response")
	}
	if err := h.cache.Set(ctx, key, body); err != nil {
		h.log(c).Warn("cache write failed", "error", err)
	}

	c.Set(headerCache, "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func canonicalQuery(c *fiber.Ctx) string {
	q := c.Queries()
	v := make(url.Values, len(q))
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v.Set(k, q[k])
	}
	return v.Encode()
}

// queryLimit parses an optional non-negative limit. Zero means no limit.
func queryLimit(c *fiber.Ctx, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.BadRequest("limit must be a non-negative integer")
	}
	return n, nil
}

func (h *Controller) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.BadRequestWrap(err, "Invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Request validation failed").WithDetails(describe(verrs))
		}
		return apperrors.BadRequestWrap(err, "Invalid request body")
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), rule))
	}
	return strings.Join(parts, "; ")
}

// orEmpty keeps empty results encoded as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *Controller) created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

func (h *Controller) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
