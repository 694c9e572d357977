package auth

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

func TestNewVerifier(t *testing.T) {
	newVerifierTests := []struct {
		secret  []byte
		issuers []string
		wantOk  bool
	}{
		{},
		{
			secret: []byte("secret"),
		},
		{
			secret:  []byte("secret"),
			issuers: []string{AuthIssuer, MatchmakerIssuer},
			wantOk:  true,
		},
	}
	for i, test := range newVerifierTests {
		cfg := Config{
			Secret: test.secret,
		}
		v, err := cfg.NewVerifier(test.issuers...)
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case v == nil:
			t.Errorf("Test %v: wanted verifier", i)
		}
	}
}

func TestNewSigner(t *testing.T) {
	timeFunc := func() int64 { return 0 }
	newSignerTests := []struct {
		Config
		issuer string
		wantOk bool
	}{
		{},
		{ // no time func
			Config: Config{Secret: []byte("secret")},
			issuer: MatchmakerIssuer,
		},
		{ // no valid sec
			Config: Config{Secret: []byte("secret"), TimeFunc: timeFunc},
			issuer: MatchmakerIssuer,
		},
		{ // no issuer
			Config: Config{Secret: []byte("secret"), TimeFunc: timeFunc, ValidSec: 3600},
		},
		{
			Config: Config{Secret: []byte("secret"), TimeFunc: timeFunc, ValidSec: 3600},
			issuer: MatchmakerIssuer,
			wantOk: true,
		},
	}
	for i, test := range newSignerTests {
		s, err := test.Config.NewSigner(test.issuer)
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case s == nil:
			t.Errorf("Test %v: wanted signer", i)
		}
	}
}

func TestVerifierLoginJoinToken(t *testing.T) {
	cfg := Config{
		Secret:   []byte("secret"),
		TimeFunc: func() int64 { return time.Now().Unix() },
		ValidSec: 3600,
	}
	s, err := cfg.NewSigner(MatchmakerIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tokenString, err := s.Sign(5, "g1", json.RawMessage(`{"matched":true,"players":[5,9]}`))
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	v, err := cfg.NewVerifier(AuthIssuer, MatchmakerIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	got, err := v.Login(tokenString)
	want := `{"id":5,"data":{"matched":true,"players":[5,9]}}`
	switch {
	case err != nil:
		t.Errorf("unwanted error: %v", err)
	case want != string(got):
		t.Errorf("login payload not normalized:\nwanted %v\ngot    %v", want, string(got))
	}
}

func TestVerifierLoginAccountToken(t *testing.T) {
	cfg := Config{
		Secret:   []byte("secret"),
		TimeFunc: func() int64 { return time.Now().Unix() },
		ValidSec: 3600,
	}
	at, err := cfg.NewAccountTokenizer()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tokenString, err := at.Create("selene", 7)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	v, err := cfg.NewVerifier(AuthIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	got, err := v.Login(tokenString)
	want := `{"id":7,"data":{}}`
	switch {
	case err != nil:
		t.Errorf("unwanted error: %v", err)
	case want != string(got):
		t.Errorf("login payload not extracted from game_data claim:\nwanted %v\ngot    %v", want, string(got))
	}
}

func TestVerifierLoginBad(t *testing.T) {
	secret := []byte("secret")
	timeFunc := func() int64 { return time.Now().Unix() }
	sign := func(method jwt.SigningMethod, key []byte, claims jwt.Claims) string {
		tokenString, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("signing test token: %v", err)
		}
		return tokenString
	}
	okClaims := func(issuer string) jwt.MapClaims {
		return jwt.MapClaims{
			"iss":       issuer,
			"game_data": map[string]interface{}{"id": 1, "data": map[string]interface{}{}},
		}
	}
	loginBadTests := []struct {
		name        string
		tokenString string
	}{
		{
			name:        "garbage",
			tokenString: "not.a.token",
		},
		{
			name:        "wrong secret",
			tokenString: sign(jwt.SigningMethodHS256, []byte("other"), okClaims(AuthIssuer)),
		},
		{
			name:        "wrong signing method",
			tokenString: sign(jwt.SigningMethodHS512, secret, okClaims(AuthIssuer)),
		},
		{
			name:        "wrong issuer",
			tokenString: sign(jwt.SigningMethodHS256, secret, okClaims("imposter")),
		},
		{
			name:        "no issuer",
			tokenString: sign(jwt.SigningMethodHS256, secret, jwt.MapClaims{"game_data": map[string]interface{}{"id": 1}}),
		},
		{
			name:        "missing game_data",
			tokenString: sign(jwt.SigningMethodHS256, secret, jwt.MapClaims{"iss": AuthIssuer}),
		},
		{
			name: "expired",
			tokenString: sign(jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"iss":       AuthIssuer,
				"exp":       timeFunc() - 60,
				"game_data": map[string]interface{}{"id": 1},
			}),
		},
	}
	cfg := Config{
		Secret: secret,
	}
	v, err := cfg.NewVerifier(AuthIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	for i, test := range loginBadTests {
		if _, err := v.Login(test.tokenString); err == nil {
			t.Errorf("Test %v (%v): wanted error", i, test.name)
		}
	}
}

func TestAccountTokenizerReadUsername(t *testing.T) {
	cfg := Config{
		Secret:   []byte("secret"),
		TimeFunc: func() int64 { return time.Now().Unix() },
		ValidSec: 3600,
	}
	at, err := cfg.NewAccountTokenizer()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tokenString, err := at.Create("selene", 7)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	got, err := at.ReadUsername(tokenString)
	switch {
	case err != nil:
		t.Errorf("unwanted error: %v", err)
	case got != "selene":
		t.Errorf("wanted selene, got %v", got)
	}
	badCfg := Config{
		Secret:   []byte("other"),
		TimeFunc: cfg.TimeFunc,
		ValidSec: cfg.ValidSec,
	}
	badAt, err := badCfg.NewAccountTokenizer()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, err := badAt.ReadUsername(tokenString); err == nil {
		t.Error("wanted error reading token with different secret")
	}
}

func TestAccountTokenizerRejectsJoinToken(t *testing.T) {
	cfg := Config{
		Secret:   []byte("secret"),
		TimeFunc: func() int64 { return time.Now().Unix() },
		ValidSec: 3600,
	}
	s, err := cfg.NewSigner(MatchmakerIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tokenString, err := s.Sign(5, "g1", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	at, err := cfg.NewAccountTokenizer()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, err := at.ReadUsername(tokenString); err == nil || !strings.Contains(err.Error(), "issuer") {
		t.Errorf("wanted issuer error reading join token as account token, got %v", err)
	}
}

func TestSignExpiry(t *testing.T) {
	cfg := Config{
		Secret:   []byte("secret"),
		TimeFunc: func() int64 { return 1000 },
		ValidSec: 60,
	}
	s, err := cfg.NewSigner(MatchmakerIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tokenString, err := s.Sign(5, "g1", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	v, err := cfg.NewVerifier(MatchmakerIssuer)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	defer func() { jwt.TimeFunc = time.Now }()
	jwt.TimeFunc = func() time.Time { return time.Unix(1030, 0) }
	if _, err := v.Login(tokenString); err != nil {
		t.Errorf("unwanted error before expiry: %v", err)
	}
	jwt.TimeFunc = func() time.Time { return time.Unix(1061, 0) }
	if _, err := v.Login(tokenString); err == nil {
		t.Error("wanted error after expiry")
	}
}
