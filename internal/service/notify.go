package service

import (
	"context"

	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// pusher sends order notifications. Failures are logged, never returned.
type pusher struct {
	users storage.IUserStorage
	push  utils.Notifier
	log   logger.ILogger
}

func newPusher(users storage.IUserStorage, push utils.Notifier, log logger.ILogger) *pusher {
	return &pusher{users: users, push: push, log: log}
}

func (p *pusher) order(ctx context.Context, userID, orderID uint64, kind, title, body string) {
	if p == nil {
		return
	}
	u, err := p.users.GetByID(ctx, userID)
	if err != nil || u.FCMToken == "" {
		return
	}

	data := map[string]string{"order_id": utils.Uint64ToString(orderID), "type": kind}
	if err := p.push.SendNotification(ctx, u.FCMToken, title, body, data); err != nil {
		p.log.Warning("order notification failed",
			logger.Uint64("order_id", orderID),
			logger.String("type", kind),
			logger.Error(err))
	}
}
