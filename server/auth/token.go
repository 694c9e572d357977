// Package auth signs and verifies the json web tokens that gate the game, matchmaking, and account servers.
package auth

import (
	"encoding/json"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"github.com/permutationlock/catacrawl/game"
)

const (
	// AuthIssuer is the issuer claim of account tokens.
	AuthIssuer = "tic_tac_toe_auth"
	// MatchmakerIssuer is the issuer claim of join tokens.
	MatchmakerIssuer = "tic_tac_toe_matchmaker"
)

type (
	// Tokenizer creates and reads account tokens from http traffic.
	Tokenizer interface {
		Create(username string, id game.PlayerID) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// Config contains fields shared by token readers and writers.
	Config struct {
		// Secret is the HS256 key shared by the servers.
		Secret []byte
		// TimeFunc supplies the current time since the unix epoch, in seconds.
		// Used to set how long created tokens are valid.
		TimeFunc func() int64
		// ValidSec is the length of time created tokens are valid from the issuing time, in seconds.
		ValidSec int64
	}

	// Verifier checks the signature and issuer of login tokens and extracts their payload.
	Verifier struct {
		method  jwt.SigningMethod
		issuers []string
		Config
	}

	// Signer creates the join tokens the matchmaking server sends to matched sessions.
	Signer struct {
		method jwt.SigningMethod
		issuer string
		Config
	}

	// AccountTokenizer creates and reads the tokens the account server issues on login.
	AccountTokenizer struct {
		method jwt.SigningMethod
		Config
	}

	// loginClaims covers both token layouts the servers accept.
	// Account tokens carry the whole login payload in game_data.
	// Join tokens carry the recipient id, group session, and module payload as separate claims.
	loginClaims struct {
		GameData json.RawMessage `json:"game_data,omitempty"`
		ID       game.PlayerID   `json:"id,omitempty"`
		Data     json.RawMessage `json:"data,omitempty"`
		jwt.RegisteredClaims
	}

	joinClaims struct {
		ID      game.PlayerID   `json:"id"`
		Session string          `json:"session"`
		Data    json.RawMessage `json:"data"`
		jwt.RegisteredClaims
	}

	accountClaims struct {
		GameData game.LoginData `json:"game_data"`
		jwt.RegisteredClaims // username stored in Subject ("sub") field
	}
)

// NewVerifier creates a Verifier that accepts tokens from the issuers.
func (cfg Config) NewVerifier(issuers ...string) (*Verifier, error) {
	switch {
	case len(cfg.Secret) == 0:
		return nil, fmt.Errorf("creating verifier: validation: secret required")
	case len(issuers) == 0:
		return nil, fmt.Errorf("creating verifier: validation: issuer required")
	}
	v := Verifier{
		method:  jwt.SigningMethodHS256,
		issuers: issuers,
		Config:  cfg,
	}
	return &v, nil
}

// NewSigner creates a Signer that signs tokens as the issuer.
func (cfg Config) NewSigner(issuer string) (*Signer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating signer: validation: %w", err)
	}
	if len(issuer) == 0 {
		return nil, fmt.Errorf("creating signer: validation: issuer required")
	}
	s := Signer{
		method: jwt.SigningMethodHS256,
		issuer: issuer,
		Config: cfg,
	}
	return &s, nil
}

// NewAccountTokenizer creates an AccountTokenizer.
func (cfg Config) NewAccountTokenizer() (*AccountTokenizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating account tokenizer: validation: %w", err)
	}
	at := AccountTokenizer{
		method: jwt.SigningMethodHS256,
		Config: cfg,
	}
	return &at, nil
}

// validate ensures the configuration can create tokens.
func (cfg Config) validate() error {
	switch {
	case len(cfg.Secret) == 0:
		return fmt.Errorf("secret required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ValidSec <= 0:
		return fmt.Errorf("positive valid second count required")
	}
	return nil
}

// Login verifies the login token and returns its payload, normalized to {"id": ..., "data": ...}.
func (v *Verifier) Login(tokenString string) (json.RawMessage, error) {
	var claims loginClaims
	if _, err := jwt.ParseWithClaims(tokenString, &claims, v.keyFunc); err != nil {
		return nil, fmt.Errorf("verifying login token: %w", err)
	}
	ok := false
	for _, issuer := range v.issuers {
		if claims.Issuer == issuer {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	switch {
	case len(claims.GameData) > 0:
		return claims.GameData, nil
	case len(claims.Data) > 0:
		login := game.LoginData{
			ID:   claims.ID,
			Data: claims.Data,
		}
		b, err := json.Marshal(login)
		if err != nil {
			return nil, fmt.Errorf("encoding login payload: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("missing game_data claim")
}

// keyFunc ensures the signing method of the token is correct before returning the key.
func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != v.method {
		return nil, fmt.Errorf("incorrect token signing method")
	}
	return v.Secret, nil
}

// Sign creates a join token for the player in the matched group.
func (s *Signer) Sign(id game.PlayerID, groupID string, data json.RawMessage) (string, error) {
	now := s.TimeFunc()
	claims := joinClaims{
		ID:      id,
		Session: groupID,
		Data:    data,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Unix(now+s.ValidSec, 0)),
		},
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.Secret)
}

// Create converts a user to an account token string.
// The game_data claim makes the token double as a matchmaking login.
func (at *AccountTokenizer) Create(username string, id game.PlayerID) (string, error) {
	now := at.TimeFunc()
	claims := accountClaims{
		GameData: game.LoginData{
			ID:   id,
			Data: json.RawMessage(`{}`),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    AuthIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Unix(now+at.ValidSec, 0)),
		},
	}
	token := jwt.NewWithClaims(at.method, claims)
	return token.SignedString(at.Secret)
}

// ReadUsername extracts the username from the account token string.
func (at *AccountTokenizer) ReadUsername(tokenString string) (string, error) {
	var claims accountClaims
	if _, err := jwt.ParseWithClaims(tokenString, &claims, at.keyFunc); err != nil {
		return "", err
	}
	if claims.Issuer != AuthIssuer {
		return "", fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims.Subject, nil
}

// keyFunc ensures the signing method of the token is correct before returning the key.
func (at *AccountTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != at.method {
		return nil, fmt.Errorf("incorrect token signing method")
	}
	return at.Secret, nil
}
