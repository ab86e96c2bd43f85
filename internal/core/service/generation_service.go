package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/api/metrics"
	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// GenerationLock serializes generation attempts per account. Implementations
// are best-effort: when the lock cannot be taken or the backing store is
// down, the caller proceeds anyway and relies on the conditional credit
// decrement to keep the balance invariant.
type GenerationLock interface {
	Acquire(ctx context.Context, accountID string) (bool, error)
	Release(ctx context.Context, accountID string) error
}

const (
	fallbackChunkSize   = 10
	defaultFallbackWait = 3 * time.Second
)

// fallbackDocument is the fixed substitute payload emitted when the provider
// call fails. Clients reassemble it byte-for-byte from the 10-char slices.
const fallbackDocument = `{
  "roadmap_title": "AI Engineer (Mock)",
  "summary": "API Connection Failed - Showing Backup Plan.",
  "stages": [
    {
      "stage_id": "1",
      "title": "Python Basics",
      "description": "Learn Python syntax.",
      "learning_objectives": ["Variables", "Loops"],
      "project_idea": "Calculator"
    }
  ]
}`

// GenerationService is the gate controller in front of the roadmap
// generator: it checks account eligibility, charges one credit, relays the
// gateway stream, and substitutes the fallback document in-band when the
// provider fails. A generation that reached the streaming phase never
// surfaces an upstream error to the transport.
type GenerationService struct {
	accounts ports.AccountRepository
	gateway  ports.RoadmapGenerator
	lock     GenerationLock
	audit    AuditDispatcher
	log      zerolog.Logger

	// fallbackWait is how long the stream stays silent between the failure
	// diagnostics and the mock payload. Overridden in tests.
	fallbackWait time.Duration
}

func NewGenerationService(
	accounts ports.AccountRepository,
	gateway ports.RoadmapGenerator,
	lock GenerationLock,
	audit AuditDispatcher,
	log zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		accounts:     accounts,
		gateway:      gateway,
		lock:         lock,
		audit:        audit,
		log:          log,
		fallbackWait: defaultFallbackWait,
	}
}

// Authorize runs every eligibility check and, when the account is metered,
// charges one credit before any generation work starts. Pay-per-attempt: a
// later provider failure is not refunded.
func (s *GenerationService) Authorize(ctx context.Context, userID string) (*domain.Account, error) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("generation lock unavailable, proceeding anyway")
		} else if acquired {
			defer func() {
				if releaseErr := s.lock.Release(context.WithoutCancel(ctx), userID); releaseErr != nil {
					s.log.Warn().Err(releaseErr).Str("user_id", userID).Msg("failed to release generation lock")
				}
			}()
		} else {
			s.log.Debug().Str("user_id", userID).Msg("concurrent generation attempt, relying on conditional decrement")
		}
	}

	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}
	if !account.IsAgentEnabled {
		return nil, domain.ErrAgentDisabled
	}
	if !account.HasCredits() {
		return nil, domain.ErrCreditsExhausted
	}

	if account.Credits != domain.UnlimitedCredits {
		decremented, err := s.accounts.DecrementCredit(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		if !decremented {
			// A concurrent request spent the last credit first.
			return nil, domain.ErrCreditsExhausted
		}
		account.Credits--

		metrics.CreditsConsumedTotal.Inc()
		if s.audit != nil {
			s.audit.Enqueue(domain.AuditEntry{
				AccountID: account.ID,
				Action:    domain.AuditCreditConsumed,
				ActorID:   account.ID,
				Detail:    fmt.Sprintf("remaining=%d", account.Credits),
				Timestamp: time.Now().UTC(),
			})
		}
	}

	return account, nil
}

// Stream relays the gateway output through emit. On gateway failure it emits
// the diagnostic markers, waits, then emits the fallback document in
// 10-char slices with no pacing. The returned error is non-nil only when
// emission itself fails (caller gone), never for an upstream failure.
func (s *GenerationService) Stream(ctx context.Context, account *domain.Account, input ports.GenerateInput, emit ports.EmitFunc) error {
	started := time.Now()
	metrics.GenerationsStartedTotal.Inc()
	s.log.Info().
		Str("user_id", account.ID).
		Str("goal", input.UserGoal).
		Str("skill_level", input.SkillLevel).
		Msg("generation request")

	if err := emit("[DEBUG] Connecting to generation provider..."); err != nil {
		return err
	}

	err := s.gateway.StreamGeneration(ctx, input.UserGoal, input.SkillLevel, emit)
	if err == nil {
		metrics.GenerationDuration.WithLabelValues("delivered").Observe(time.Since(started).Seconds())
		return nil
	}
	if ctx.Err() != nil {
		// Caller disconnected; nothing left to deliver to.
		return ctx.Err()
	}

	s.log.Warn().Err(err).Str("user_id", account.ID).Msg("provider call failed, switching to fallback")
	metrics.GenerationFallbacksTotal.Inc()

	if emitErr := emit(fmt.Sprintf("[DEBUG] Exception: %v", err)); emitErr != nil {
		return emitErr
	}
	if emitErr := emit(fmt.Sprintf("[DEBUG] Trace: %+v", err)); emitErr != nil {
		return emitErr
	}
	if emitErr := emit("[DEBUG] Waiting 3 seconds before activating Mock Protocol..."); emitErr != nil {
		return emitErr
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.fallbackWait):
	}

	if emitErr := emit("[DEBUG] SWITCHING TO MOCK DATA NOW."); emitErr != nil {
		return emitErr
	}

	for start := 0; start < len(fallbackDocument); {
		end := start
		for i := 0; i < fallbackChunkSize && end < len(fallbackDocument); i++ {
			_, size := utf8.DecodeRuneInString(fallbackDocument[end:])
			end += size
		}
		if emitErr := emit(fallbackDocument[start:end]); emitErr != nil {
			return emitErr
		}
		start = end
	}

	metrics.GenerationDuration.WithLabelValues("fallback").Observe(time.Since(started).Seconds())
	return nil
}
