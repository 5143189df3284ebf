package connectionapp

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	connectionEntity "postpilot/internal/core/connection"
	"postpilot/internal/platforms"
	connectionPort "postpilot/internal/ports/connection"
	"postpilot/internal/vault"
)

// ConnectionService runs the two-phase OAuth exchange and owns the encrypted
// credential rows. The callback's upsert is the single terminal write; no
// half-written credential ever persists.
type ConnectionService struct {
	ConnectionRepository connectionPort.ConnectionRepository
	Registry             *platforms.Registry
	Vault                *vault.Vault
	Logger               *zap.Logger
	stateKey             []byte
	publicBaseURL        string
	now                  func() time.Time
}

func NewConnectionService(
	repo connectionPort.ConnectionRepository,
	registry *platforms.Registry,
	v *vault.Vault,
	stateKey []byte,
	publicBaseURL string,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		ConnectionRepository: repo,
		Registry:             registry,
		Vault:                v,
		Logger:               logger,
		stateKey:             stateKey,
		publicBaseURL:        publicBaseURL,
		now:                  time.Now,
	}
}

func (s *ConnectionService) redirectURI(platform string) string {
	return s.publicBaseURL + "/connect/" + platform + "/callback"
}

// Init mints a PKCE verifier, wraps it with the caller's identity in a
// signed state token, and returns the provider authorization URL.
func (s *ConnectionService) Init(ctx context.Context, userID, platform, origin string) (string, error) {
	provider, ok := s.Registry.Get(platform)
	if !ok {
		return "", fmt.Errorf("%w: %q", connectionEntity.ErrUnsupportedPlatform, platform)
	}

	verifier, err := newVerifier()
	if err != nil {
		return "", fmt.Errorf("failed to generate verifier: %w", err)
	}
	state, err := encodeState(stateToken{
		UserID:   userID,
		Verifier: verifier,
		IssuedAt: s.now().Unix(),
		Origin:   origin,
	}, s.stateKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	return provider.AuthorizationURL(state, challengeS256(verifier), s.redirectURI(platform)), nil
}

// Callback exchanges the authorization code, resolves the account identity,
// and upserts the encrypted credential. It returns the caller origin from
// the state so the HTTP layer can always redirect the browser back, even on
// failure.
func (s *ConnectionService) Callback(ctx context.Context, platform, code, rawState string) (origin string, err error) {
	tok, err := decodeState(rawState, s.stateKey, s.now())
	if err != nil {
		return "", err
	}
	origin = tok.Origin

	provider, ok := s.Registry.Get(platform)
	if !ok {
		return origin, fmt.Errorf("%w: %q", connectionEntity.ErrUnsupportedPlatform, platform)
	}
	if code == "" {
		return origin, fmt.Errorf("%w: missing code", ErrBadState)
	}
	userID, err := uuid.FromString(tok.UserID)
	if err != nil {
		return origin, fmt.Errorf("%w: bad user id", ErrBadState)
	}

	tokens, err := provider.ExchangeToken(ctx, code, tok.Verifier, s.redirectURI(platform))
	if err != nil {
		return origin, fmt.Errorf("token exchange failed: %w", err)
	}
	identity, err := provider.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		return origin, fmt.Errorf("identity fetch failed: %w", err)
	}

	accessEnc, err := s.Vault.Encrypt(tokens.AccessToken)
	if err != nil {
		return origin, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	conn := &connectionEntity.Connection{
		ID:                   uuid.Must(uuid.NewV4()),
		UserID:               userID,
		Platform:             platform,
		AccountID:            identity.AccountID,
		AccountName:          identity.AccountName,
		AccessTokenEncrypted: accessEnc,
		AccessTokenHash:      vault.Fingerprint(tokens.AccessToken),
		Status:               connectionEntity.StatusConnected,
	}
	if tokens.RefreshToken != "" {
		refreshEnc, err := s.Vault.Encrypt(tokens.RefreshToken)
		if err != nil {
			return origin, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		refreshHash := vault.Fingerprint(tokens.RefreshToken)
		conn.RefreshTokenEncrypted = &refreshEnc
		conn.RefreshTokenHash = &refreshHash
	}
	if tokens.ExpiresIn > 0 {
		expiresAt := s.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		conn.ExpiresAt = &expiresAt
	}

	if _, err := s.ConnectionRepository.Upsert(ctx, conn); err != nil {
		return origin, fmt.Errorf("failed to store connection: %w", err)
	}

	s.Logger.Info("platform connected",
		zap.String("userID", userID.String()),
		zap.String("platform", platform),
		zap.String("accountID", identity.AccountID))
	return origin, nil
}

// ListConnections returns status rows without any token material.
func (s *ConnectionService) ListConnections(ctx context.Context, userID string) ([]*connectionPort.ConnectionDTO, error) {
	conns, err := s.ConnectionRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*connectionPort.ConnectionDTO, 0, len(conns))
	for _, c := range conns {
		dto := &connectionPort.ConnectionDTO{
			Platform:    c.Platform,
			AccountID:   c.AccountID,
			AccountName: c.AccountName,
			Status:      c.Status,
		}
		if c.ExpiresAt != nil {
			exp := c.ExpiresAt.UTC().Format(time.RFC3339)
			dto.ExpiresAt = &exp
		}
		out = append(out, dto)
	}
	return out, nil
}
