package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/logging"
	"github.com/lborres/evently/services"
)

type Adapter struct {
	app    *fiber.App
	logger logging.Logger

	// handlers serve endpoints added through Config.Endpoints
	handlers map[string]fiber.Handler
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, logger logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{app: app, logger: logger, handlers: make(map[string]fiber.Handler)}
}

// Handle sets the handler for an extra endpoint with the given operation ID.
// It must be called before RegisterRoutes. Behind a protected endpoint the
// handler reads the caller with SessionFrom.
func (a *Adapter) Handle(operationID string, h fiber.Handler) {
	a.handlers[operationID] = h
}

type handlerFactory func(a *Adapter, h core.AuthHandler) fiber.Handler

var handlerFactories = map[string]handlerFactory{
	services.OpRegister:        (*Adapter).handleRegister,
	services.OpLogin:           (*Adapter).handleLogin,
	services.OpRequestRecovery: (*Adapter).handleRequestRecovery,
	services.OpConfirmRecovery: (*Adapter).handleConfirmRecovery,
	services.OpGetSession:      (*Adapter).handleGetSession,
}

// RegisterRoutes mounts every endpoint under basePath. Protected endpoints
// run behind the bearer token middleware.
func (a *Adapter) RegisterRoutes(handler core.AuthHandler, endpoints []*core.Endpoint, basePath string) error {
	api := a.app.Group(basePath)

	for _, ep := range endpoints {
		h, err := a.handlerFor(ep.Metadata.OperationID, handler)
		if err != nil {
			return err
		}

		if ep.Protected {
			api.Add([]string{ep.Method}, ep.Path, a.Protected(handler), h)
		} else {
			api.Add([]string{ep.Method}, ep.Path, h)
		}
	}

	return nil
}

func (a *Adapter) handlerFor(operationID string, handler core.AuthHandler) (fiber.Handler, error) {
	if factory, ok := handlerFactories[operationID]; ok {
		return factory(a, handler), nil
	}
	if h, ok := a.handlers[operationID]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: no fiber handler for operation %q", core.ErrConfig, operationID)
}
