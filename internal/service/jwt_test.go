package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")
	defer InitJWT("")

	token, err := GenerateJWT("lane-3", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sub, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "lane-3" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestJWTRejects(t *testing.T) {
	InitJWT("test-secret")
	defer InitJWT("")

	expired, err := GenerateJWT("lane-1", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	otherRole := jwt.NewWithClaims(jwt.SigningMethodHS256, ScorekeeperClaims{
		Role:             "viewer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	})
	viewer, err := otherRole.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, ScorekeeperClaims{Role: RoleScorekeeper})
	forged, _ := wrongKey.SignedString([]byte("other"))

	for name, tok := range map[string]string{"expired": expired, "role": viewer, "key": forged, "garbage": "abc"} {
		if _, err := ParseJWT(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestJWTDisabled(t *testing.T) {
	InitJWT("")
	if JWTEnabled() {
		t.Fatalf("empty secret should disable tokens")
	}
	if _, err := GenerateJWT("x", time.Hour); !errors.Is(err, ErrJWTDisabled) {
		t.Fatalf("generate without secret: %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"  Ann ":                     "Ann",
		"<b>Bob</b>":                 "Bob",
		"<script>x()</script>Carol":  "Carol",
		"O'Neil & Sons":              "O'Neil & Sons",
		"":                           "",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q) = %q; want %q", in, got, want)
		}
	}
	long := ""
	for i := 0; i < 100; i++ {
		long += "é"
	}
	if got := []rune(SanitizeName(long)); len(got) != maxNameLen {
		t.Fatalf("long name kept %d runes", len(got))
	}
}
