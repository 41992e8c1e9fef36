package middleware

import (
	"errors"
	"strings"
	"time"

	"FundChain/config"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AccountIDKey guarda no gin.Context a conta autenticada (claim sub).
const AccountIDKey = "account_id"

var (
	ErrMissingToken = appErrors.NewAuthError(appErrors.ErrUnauthorized.Code, "Token de autenticação não informado")
	ErrInvalidToken = appErrors.NewAuthError(appErrors.ErrUnauthorized.Code, "Token de autenticação inválido ou expirado")
)

type JwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJwtService(cfg config.JWTConfig) (*JwtService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("JWT_SECRET é obrigatório")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("JWT_TTL deve ser maior que zero")
	}
	return &JwtService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// GenerateToken emite um HS256 cujo subject é o identificador da conta.
func (s *JwtService) GenerateToken(account string) (string, time.Time, error) {
	account, err := shared.NormalizeAccount("account", account)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   account,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, appErrors.ErrInternalServer.WithError(err)
	}
	return signed, expiresAt, nil
}

// ValidateToken devolve a conta do token ou ErrInvalidToken.
func (s *JwtService) ValidateToken(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken.WithError(err)
	}

	account, err := shared.NormalizeAccount("sub", claims.Subject)
	if err != nil {
		return "", ErrInvalidToken.WithError(err)
	}
	return account, nil
}

func AuthMiddleware(s *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, ErrMissingToken)
			return
		}

		account, err := s.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, appErrors.FromError(err))
			return
		}

		c.Set(AccountIDKey, account)
		c.Next()
	}
}

func AccountFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(AccountIDKey)
	if !exists {
		return "", false
	}
	account, ok := value.(string)
	return account, ok && account != ""
}
