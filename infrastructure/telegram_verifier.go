package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tapown/domain/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// TelegramVerifier checks channel membership through the Telegram Bot API.
// Platforms other than Telegram cannot be queried from here; those checks are
// routed to a fallback verifier.
type TelegramVerifier struct {
	api      *tgbotapi.BotAPI
	fallback func(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error)
}

// NewTelegramVerifier creates a verifier backed by the Telegram Bot API.
// timeout bounds each membership lookup.
func NewTelegramVerifier(token string, timeout time.Duration) (*TelegramVerifier, error) {
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot api: %w", err)
	}

	log.WithField("bot", api.Self.UserName).Info("Telegram verifier authorized")

	return &TelegramVerifier{
		api: api,
		// Membership on external platforms cannot be observed by the bot,
		// so delayed missions on them are granted after the waiting window.
		fallback: assumeMember,
	}, nil
}

// IsMember reports whether the account is a member of the referenced channel
func (v *TelegramVerifier) IsMember(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error) {
	if platform != entities.PlatformTelegram {
		return v.fallback(ctx, platform, channelRef, accountID)
	}

	member, err := v.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channelRef,
			UserID:             accountID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to query chat member %d in %s: %w", accountID, channelRef, err)
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}

func assumeMember(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error) {
	log.WithFields(log.Fields{
		"platform":  platform,
		"channel":   channelRef,
		"accountId": accountID,
	}).Debug("Membership not verifiable on platform, assuming member")
	return true, nil
}

// AssumeVerifier treats every membership check as satisfied.
// Used for platforms with no queryable membership API and in tests.
type AssumeVerifier struct{}

// NewAssumeVerifier creates a verifier that always reports membership
func NewAssumeVerifier() *AssumeVerifier {
	return &AssumeVerifier{}
}

// IsMember always reports true
func (v *AssumeVerifier) IsMember(ctx context.Context, platform entities.Platform, channelRef string, accountID int64) (bool, error) {
	return true, nil
}
