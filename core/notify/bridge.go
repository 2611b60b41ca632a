package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Bridge persists device push tokens on user records. Delivery itself is the
// platform's business; this is the only write the app performs.
type Bridge struct {
	client record.Client
	logger core.Logger
}

func NewBridge(client record.Client, logger core.Logger) *Bridge {
	return &Bridge{client: client, logger: logger}
}

// Registration identifies one device registration.
type Registration struct {
	ID     string
	UserID string
	Token  string
}

// RegisterDeviceToken stores token on the user's record, replacing any
// previous one (one active device registration per user).
func (b *Bridge) RegisterDeviceToken(ctx context.Context, userID, token string) (Registration, error) {
	if userID == "" || token == "" {
		return Registration{}, errors.New("user id and token are required")
	}

	body := map[string]interface{}{"pushToken": token}
	if err := b.client.UpdateRecord(ctx, record.CollectionUsers, userID, body, nil); err != nil {
		return Registration{}, errors.Wrap(err, "storing push token")
	}

	reg := Registration{ID: uuid.NewString(), UserID: userID, Token: token}
	b.logger.Debug("notify: registered device token", reg.ID)
	return reg, nil
}

// UnregisterDeviceToken clears the user's stored push token.
func (b *Bridge) UnregisterDeviceToken(ctx context.Context, userID string) error {
	body := map[string]interface{}{"pushToken": ""}
	err := b.client.UpdateRecord(ctx, record.CollectionUsers, userID, body, nil)
	return errors.Wrap(err, "clearing push token")
}
