package verify

import (
	"strings"
	"testing"
)

func TestHashCodeRoundTrip(t *testing.T) {
	digest, err := hashCode("123456")
	if err != nil {
		t.Fatalf("hashCode() error = %v", err)
	}

	if !strings.HasPrefix(digest, "$argon2id$v=19$") {
		t.Errorf("digest %q missing argon2id header", digest)
	}
	if strings.Contains(digest, "123456") {
		t.Error("digest contains the raw code")
	}
	if !verifyCode("123456", digest) {
		t.Error("verifyCode() rejected the correct code")
	}
	if verifyCode("123457", digest) {
		t.Error("verifyCode() accepted a wrong code")
	}
}

func TestHashCodeSalted(t *testing.T) {
	a, err := hashCode("123456")
	if err != nil {
		t.Fatalf("hashCode() error = %v", err)
	}
	b, err := hashCode("123456")
	if err != nil {
		t.Fatalf("hashCode() error = %v", err)
	}
	if a == b {
		t.Error("two digests of the same code are identical; salt is not applied")
	}
}

func TestVerifyCodeMalformedDigest(t *testing.T) {
	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$notbase64!!$x",
		"$bcrypt$whatever",
	}
	for _, d := range malformed {
		if verifyCode("123456", d) {
			t.Errorf("verifyCode() accepted malformed digest %q", d)
		}
	}
}
