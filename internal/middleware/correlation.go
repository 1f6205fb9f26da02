package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/skillpath/internal/observability"
)

const (
	// HeaderCorrelationID carries the request correlation id in both directions.
	HeaderCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
	localCorrelationID  = "correlation_id"
)

// CorrelationID tags every request with an id taken from X-Correlation-ID or
// X-Request-ID, or a fresh UUID. The id is echoed back and bound to the user context,
// so store calls and published changes made for the request carry it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := firstHeader(c, HeaderCorrelationID, headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(localCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(observability.WithCorrelation(c.UserContext(), id))
		return c.Next()
	}
}

// GetCorrelationID returns the correlation id of the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}

func firstHeader(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(c.Get(name)); value != "" {
			return value
		}
	}
	return ""
}
