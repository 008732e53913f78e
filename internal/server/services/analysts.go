package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/server/auth"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
)

const minPasswordLength = 8

// AnalystService authenticates claim analysts and issues access tokens.
type AnalystService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

func NewAnalystService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AnalystService {
	return &AnalystService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials and returns a bearer token. Unknown e-mails
// and wrong passwords both yield common.ErrorUnauthorized after the same
// amount of hashing work.
func (s *AnalystService) Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Analysts(s.db).GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyPassword([]byte(req.Password), auth.NewSalt(), nil)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !auth.VerifyPassword([]byte(req.Password), a.Salt, a.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	issued := s.now().UTC()
	token, err := auth.GenerateToken(auth.Principal{AnalystID: a.ID, Email: a.Email}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &schemas.TokenResponse{
		AccessToken: token,
		TokenType:   strings.TrimSpace(common.BearerPrefix),
		ExpiresAt:   issued.Add(s.accessTokenValidityDuration),
	}, nil
}

// Create registers an analyst account.
func (s *AnalystService) Create(ctx context.Context, email, password string) (*models.Analyst, error) {
	email = normalizeEmail(email)

	errs := &schemas.ValidationError{}
	if !strings.Contains(email, "@") {
		errs.Add("email", "must be an e-mail address")
	}
	if len(password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	salt := auth.NewSalt()
	a, err := s.repomanager.Analysts(s.db).Create(ctx, &models.Analyst{
		Email:        email,
		PasswordHash: auth.HashPassword([]byte(password), salt),
		Salt:         salt,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, storageErr("error creating analyst", err)
	}
	return a, nil
}

// Authenticate resolves a bearer token to the analyst it was issued for.
func (s *AnalystService) Authenticate(token string) (*auth.Principal, error) {
	return auth.ParseToken(token, s.jwtSecret)
}
