// Package http exposes the document store through the /api/db bridge routes
// consumed by the mongodb adapter.
package http

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/mongostore"
	"vitamend-data/internal/donation/adapter/security"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/contextkeys"
	apperrors "vitamend-data/internal/shared/errors"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"
	"vitamend-data/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// DatabaseInitializer provisions the active provider's schema when the bridge
// is not backed by its own document store.
type DatabaseInitializer interface {
	InitializeDatabase(ctx context.Context) (model.InitResult, error)
}

// StatsReader computes the transparency counters.
type StatsReader interface {
	Stats(ctx context.Context) (model.DonationStats, error)
}

// BridgeDeps collects the collaborators of the bridge routes. Store is
// required; everything else is optional.
type BridgeDeps struct {
	Store    mongostore.Store
	Provider model.Provider
	// Initializer handles POST /init for providers other than mongodb.
	Initializer DatabaseInitializer
	Images      ImageStore
	// Stats serves GET /stats when set.
	Stats StatsReader
	// Medicines feeds /ws/medicines. It defaults to Store, which is only
	// the active catalog when the provider is mongodb.
	Medicines MedicineSource
	// Tokens enables admin protection when set.
	Tokens  *security.TokenService
	Limiter *SubmissionLimiter
	Bus     eventbus.EventBusInterface
	Now     func() time.Time
	Log     logger.Logger
}

// BridgeHandler serves the document store over HTTP.
type BridgeHandler struct {
	store       mongostore.Store
	provider    model.Provider
	initializer DatabaseInitializer
	images      ImageStore
	stats       StatsReader
	medicines   MedicineSource
	tokens      *security.TokenService
	limiter     *SubmissionLimiter
	bus         eventbus.EventBusInterface
	now         func() time.Time
	log         logger.Logger
}

// NewBridgeHandler creates the handler.
func NewBridgeHandler(deps BridgeDeps) *BridgeHandler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.NewNopLogger()
	}
	if deps.Provider == "" {
		deps.Provider = model.ProviderMongoDB
	}
	if deps.Medicines == nil {
		deps.Medicines = deps.Store
	}
	return &BridgeHandler{
		store:       deps.Store,
		provider:    deps.Provider,
		initializer: deps.Initializer,
		images:      deps.Images,
		stats:       deps.Stats,
		medicines:   deps.Medicines,
		tokens:      deps.Tokens,
		limiter:     deps.Limiter,
		bus:         deps.Bus,
		now:         deps.Now,
		log:         deps.Log.WithComponent("bridge"),
	}
}

// RegisterRoutes mounts the bridge routes on router, normally the /api/db group.
func (h *BridgeHandler) RegisterRoutes(router fiber.Router) {
	admin := h.RequireAdmin()
	limit := h.limiter.Middleware()

	router.Post("/init", admin, h.InitDatabase)

	router.Get("/donations", h.ListDonations)
	router.Post("/donations", limit, h.CreateDonation)
	router.Get("/donations/:id", h.GetDonation)
	router.Patch("/donations/:id/status", admin, h.UpdateDonationStatus)

	router.Get("/medicines", h.ListMedicines)
	router.Post("/medicines", admin, h.CreateMedicine)
	router.Get("/medicines/:id", h.GetMedicine)

	router.Get("/volunteers", h.ListVolunteers)
	router.Post("/volunteers", limit, h.CreateVolunteer)

	router.Get("/profiles/:userId", h.GetProfile)
	router.Put("/profiles/:userId", h.UpsertProfile)

	router.Get("/stats", h.GetStats)

	router.Post("/images", h.UploadImage)
	router.Delete("/images", admin, h.DeleteImage)

	h.registerFeed(router)
}

// RequireAdmin checks the bearer token when admin protection is enabled.
func (h *BridgeHandler) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h.tokens == nil {
			return c.Next()
		}

		auth := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Authorization header required",
			})
		}

		claims, err := h.tokens.Validate(token)
		if err != nil {
			h.log.WithFields(map[string]interface{}{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("Rejected bridge admin token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		c.SetUserContext(context.WithValue(c.UserContext(), contextkeys.SubjectKey, claims.Subject))
		return c.Next()
	}
}

// Health pings the document store.
func (h *BridgeHandler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(h.requestContext(c)); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"provider": h.provider,
			"error":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"provider": h.provider,
	})
}

func (h *BridgeHandler) InitDatabase(c *fiber.Ctx) error {
	ctx := h.requestContext(c)

	if h.provider != model.ProviderMongoDB {
		if h.initializer == nil {
			return c.JSON(model.InitResult{
				Success: false,
				Message: fmt.Sprintf("Provider %s does not use this API route for initialization.", h.provider),
			})
		}
		result, err := h.initializer.InitializeDatabase(ctx)
		if err != nil {
			return c.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		return c.JSON(result)
	}

	already, err := h.store.Initialize(ctx, model.SeedMedicines(h.now()))
	if err != nil {
		h.log.WithContext(ctx).Errorf("Database initialization failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to initialize MongoDB: %v", err),
		})
	}
	if already {
		return c.JSON(model.InitResult{
			Success:            true,
			Message:            "MongoDB is already initialized.",
			AlreadyInitialized: true,
		})
	}

	h.publish(ctx, eventbus.EventTypeDatabaseInitialized, h.provider)
	h.publish(ctx, eventbus.EventTypeMedicineChanged, nil)
	return c.JSON(model.InitResult{
		Success: true,
		Message: "MongoDB collections initialized successfully!",
	})
}

func (h *BridgeHandler) ListDonations(c *fiber.Ctx) error {
	donations, err := h.store.ListDonations(h.requestContext(c))
	if err != nil {
		return h.readFailure(c, "list donations", err)
	}
	return c.JSON(donations)
}

// donationRequest is the POST /donations body: the donor's input plus the
// URLs of already uploaded images.
type donationRequest struct {
	model.DonationInput
	ImageURLs []string `json:"imageUrls"`
}

func (h *BridgeHandler) CreateDonation(c *fiber.Ctx) error {
	var req donationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	ctx := h.requestContext(c)
	donation := model.NewDonation(req.DonationInput, req.ImageURLs, h.now())
	id, err := h.store.CreateDonation(ctx, donation)
	if err != nil {
		h.log.WithContext(ctx).Errorf("Failed to create donation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.publish(ctx, eventbus.EventTypeDonationSubmitted, id)
	return c.Status(fiber.StatusCreated).JSON(model.Ok(model.CreatedID{ID: id}, model.MsgDonationSubmitted))
}

func (h *BridgeHandler) GetDonation(c *fiber.Ctx) error {
	donation, err := h.store.FindDonation(h.requestContext(c), c.Params("id"))
	if err != nil {
		return h.lookupFailure(c, "Donation", err)
	}
	return c.JSON(donation)
}

type statusRequest struct {
	Status model.DonationStatus `json:"status"`
}

func (h *BridgeHandler) UpdateDonationStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(model.Fail[model.Empty](model.MsgInvalidStatus))
	}

	ctx := h.requestContext(c)
	id := c.Params("id")
	if err := h.store.SetDonationStatus(ctx, id, req.Status); err != nil {
		if apperrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(model.Fail[model.Empty](model.MsgDonationNotFound))
		}
		h.log.WithContext(ctx).Errorf("Failed to update donation %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(model.Fail[model.Empty](err.Error()))
	}

	changedBy := utils.SubjectOrAnonymous(ctx)
	h.log.WithContext(ctx).Infof("Donation %s set to %s by %s", id, req.Status, changedBy)
	h.publish(ctx, eventbus.EventTypeDonationStatusChanged, fiber.Map{"id": id, "status": req.Status, "by": changedBy})
	return c.JSON(model.OkEmpty())
}

func (h *BridgeHandler) ListMedicines(c *fiber.Ctx) error {
	medicines, err := h.store.ListAvailableMedicines(h.requestContext(c))
	if err != nil {
		return h.readFailure(c, "list medicines", err)
	}
	return c.JSON(medicines)
}

func (h *BridgeHandler) CreateMedicine(c *fiber.Ctx) error {
	var in model.MedicineInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	ctx := h.requestContext(c)
	id, err := h.store.CreateMedicine(ctx, model.NewMedicine(in, h.now()))
	if err != nil {
		h.log.WithContext(ctx).Errorf("Failed to create medicine: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.publish(ctx, eventbus.EventTypeMedicineChanged, id)
	return c.Status(fiber.StatusCreated).JSON(model.Ok(model.CreatedID{ID: id}, ""))
}

func (h *BridgeHandler) GetMedicine(c *fiber.Ctx) error {
	medicine, err := h.store.FindMedicine(h.requestContext(c), c.Params("id"))
	if err != nil {
		return h.lookupFailure(c, "Medicine", err)
	}
	return c.JSON(medicine)
}

func (h *BridgeHandler) ListVolunteers(c *fiber.Ctx) error {
	volunteers, err := h.store.ListVolunteers(h.requestContext(c))
	if err != nil {
		return h.readFailure(c, "list volunteers", err)
	}
	return c.JSON(volunteers)
}

func (h *BridgeHandler) CreateVolunteer(c *fiber.Ctx) error {
	var in model.VolunteerInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	ctx := h.requestContext(c)
	id, err := h.store.CreateVolunteer(ctx, model.NewVolunteer(in, h.now()))
	if err != nil {
		h.log.WithContext(ctx).Errorf("Failed to create volunteer: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	h.publish(ctx, eventbus.EventTypeVolunteerSubmitted, id)
	return c.Status(fiber.StatusCreated).JSON(model.Ok(model.CreatedID{ID: id}, model.MsgVolunteerSubmitted))
}

func (h *BridgeHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.store.FindProfile(h.requestContext(c), c.Params("userId"))
	if err != nil {
		return h.lookupFailure(c, "Profile", err)
	}
	return c.JSON(profile)
}

func (h *BridgeHandler) UpsertProfile(c *fiber.Ctx) error {
	var update model.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.Fail[model.Empty]("Invalid request body"))
	}
	update.ID = c.Params("userId")

	ctx := h.requestContext(c)
	if err := h.store.UpsertProfile(ctx, update); err != nil {
		h.log.WithContext(ctx).Errorf("Failed to upsert profile %s: %v", update.ID, err)
		return c.Status(apperrors.HTTPStatus(err)).JSON(model.Fail[model.Empty](err.Error()))
	}

	h.publish(ctx, eventbus.EventTypeProfileUpserted, update.ID)
	return c.JSON(model.OkEmpty())
}

func (h *BridgeHandler) UploadImage(c *fiber.Ctx) error {
	if h.images == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Image storage is not configured",
		})
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "file is required",
		})
	}
	f, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "cannot read file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "cannot read file",
		})
	}

	ctx := h.requestContext(c)
	file := model.File{
		Name:        header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}
	url, err := h.images.Upload(ctx, file, c.FormValue("folder"))
	if err != nil {
		h.log.WithContext(ctx).Errorf("Image upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"url": url},
	})
}

func (h *BridgeHandler) DeleteImage(c *fiber.Ctx) error {
	if h.images == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Image storage is not configured",
		})
	}

	target := c.Query("url")
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "url is required",
		})
	}

	ctx := h.requestContext(c)
	deleted, err := h.images.Destroy(ctx, target)
	if err != nil {
		h.log.WithContext(ctx).Errorf("Image delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": deleted})
}

// GetStats returns the transparency counters.
func (h *BridgeHandler) GetStats(c *fiber.Ctx) error {
	if h.stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Statistics are not available",
		})
	}
	stats, err := h.stats.Stats(h.requestContext(c))
	if err != nil {
		return h.readFailure(c, "compute stats", err)
	}
	return c.JSON(stats)
}

func (h *BridgeHandler) readFailure(c *fiber.Ctx, op string, err error) error {
	h.log.WithContext(h.requestContext(c)).Errorf("Failed to %s: %v", op, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": err.Error(),
	})
}

func (h *BridgeHandler) lookupFailure(c *fiber.Ctx, resource string, err error) error {
	switch {
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": resource + " not found",
		})
	case apperrors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid " + strings.ToLower(resource) + " id",
		})
	}
	return h.readFailure(c, "load "+strings.ToLower(resource), err)
}

func (h *BridgeHandler) requestContext(c *fiber.Ctx) context.Context {
	ctx := context.WithValue(c.UserContext(), contextkeys.ProviderKey, string(h.provider))
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		ctx = context.WithValue(ctx, contextkeys.RequestIDKey, rid)
	}
	return ctx
}

func (h *BridgeHandler) publish(ctx context.Context, eventType string, data interface{}) {
	if h.bus == nil {
		return
	}
	h.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewBasicEventWithSource(eventType, data, "bridge"))
}
