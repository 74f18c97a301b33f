package mongoh

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ready-made producers for Default. Producers run once per fill, at fill time,
// so every normalized document gets a fresh value.

// Now produces the current UTC time.
func Now() any { return time.Now().UTC() }

// NewObjectID produces a fresh BSON ObjectId.
func NewObjectID() any { return primitive.NewObjectID() }

// NewUUID produces a fresh UUID string.
func NewUUID() any { return uuid.NewString() }
