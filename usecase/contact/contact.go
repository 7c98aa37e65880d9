package contact

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

// Verifier checks a bot-verification token issued to the browser.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type UseCase struct {
	messages repository.ContactRepository
	verifier Verifier
	logger   *zap.Logger
}

func New(messages repository.ContactRepository, verifier Verifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		messages: messages,
		verifier: verifier,
		logger:   logger,
	}
}

// Submit verifies the captcha token and stores the message.
func (uc *UseCase) Submit(ctx context.Context, msg *domain.ContactMessage, token string) (*domain.ContactMessage, error) {
	if msg == nil {
		return nil, domain.ErrInvalidPayload
	}
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Message = strings.TrimSpace(msg.Message)

	if uc.verifier != nil {
		ok, err := uc.verifier.Verify(ctx, token, msg.RemoteIP)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "bot verification unavailable", err)
		}
		if !ok {
			uc.logger.Info("contact message rejected by verification", zap.String("remote_ip", msg.RemoteIP))
			return nil, domain.ErrVerificationFailed
		}
	}

	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
