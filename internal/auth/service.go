package auth

import (
	"crypto/subtle"
	"errors"
)

// Service errors.
var (
	ErrUnknownAPIKey = errors.New("unknown api key")
)

// KeyedOperator binds a pre-shared API key to an operator identity.
// Keys are provisioned through configuration, not stored in the database.
type KeyedOperator struct {
	APIKey   string
	Operator Operator
}

// Service exchanges pre-shared operator API keys for access tokens.
type Service struct {
	jwt       *JWTService
	operators []KeyedOperator
}

// NewService creates a new auth service.
func NewService(jwtService *JWTService, operators []KeyedOperator) *Service {
	return &Service{
		jwt:       jwtService,
		operators: operators,
	}
}

// ExchangeAPIKey validates the key and issues an access token.
func (s *Service) ExchangeAPIKey(apiKey string) (*TokenResponse, error) {
	for i := range s.operators {
		if subtle.ConstantTimeCompare([]byte(s.operators[i].APIKey), []byte(apiKey)) == 1 {
			operator := s.operators[i].Operator
			token, _, err := s.jwt.GenerateAccessToken(&operator)
			if err != nil {
				return nil, err
			}
			return &TokenResponse{
				AccessToken: token,
				TokenType:   "Bearer",
				ExpiresIn:   int64(AccessTokenExpiry.Seconds()),
				Operator:    &operator,
			}, nil
		}
	}
	return nil, ErrUnknownAPIKey
}
